package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resolverYAML = `
members:
  a: "4H"
  b: "4L"
slots:
  - start: "08:30"
    end: "09:25"
  - start: "09:25"
    end: "10:20"
  - start: "10:20"
    end: "10:45"
    tag: "break"
week:
  Monday:
    "08:30": { a: "DAA", b: "DAA/DBMS Lab" }
    "09:25": { a: "IAI", b: "DAA/DBMS Lab" }
    "10:20": { a: "Tea Break", b: "Tea Break" }
  Saturday:
    "08:30": { a: "RM", b: "RM" }
`

func mustClock(t *testing.T, s string) Minutes {
	t.Helper()

	m, err := ParseClock(s)
	require.NoError(t, err)

	return m
}

func TestResolveBoundaries(t *testing.T) {
	week, err := Parse([]byte(resolverYAML))
	require.NoError(t, err)

	// exact slot start is inclusive
	slot, ok := week.Resolve(time.Monday, mustClock(t, "08:30"))
	require.True(t, ok)
	assert.Equal(t, "DAA", slot.A)

	// exact slot end belongs to the next slot
	slot, ok = week.Resolve(time.Monday, mustClock(t, "09:25"))
	require.True(t, ok)
	assert.Equal(t, "IAI", slot.A)

	// end of the last slot resolves to nothing
	_, ok = week.Resolve(time.Monday, mustClock(t, "10:45"))
	assert.False(t, ok)
}

func TestResolveOutsideHours(t *testing.T) {
	week, err := Parse([]byte(resolverYAML))
	require.NoError(t, err)

	_, ok := week.Resolve(time.Monday, mustClock(t, "07:00"))
	assert.False(t, ok, "before first boundary")

	_, ok = week.Resolve(time.Monday, mustClock(t, "18:00"))
	assert.False(t, ok, "after last boundary")
}

func TestResolveRestDay(t *testing.T) {
	week, err := Parse([]byte(resolverYAML))
	require.NoError(t, err)

	_, ok := week.Resolve(time.Sunday, mustClock(t, "10:30"))
	assert.False(t, ok)
}

func TestResolveDayWithPartialSchedule(t *testing.T) {
	week, err := Parse([]byte(resolverYAML))
	require.NoError(t, err)

	// Saturday only has the first slot filled in; a time inside a later
	// boundary has no assigned activity and resolves to nothing.
	_, ok := week.Resolve(time.Saturday, mustClock(t, "09:30"))
	assert.False(t, ok)

	slot, ok := week.Resolve(time.Saturday, mustClock(t, "08:45"))
	require.True(t, ok)
	assert.Equal(t, "RM", slot.A)
}

func TestResolveExactlyOneSlot(t *testing.T) {
	week, err := Parse([]byte(resolverYAML))
	require.NoError(t, err)

	// every minute of the day yields at most one slot
	for m := Minutes(0); m < 24*60; m++ {
		matches := 0
		for _, b := range week.Boundaries {
			if m >= b.Start && m < b.End {
				matches++
			}
		}
		assert.LessOrEqual(t, matches, 1, "minute %s", m)
	}
}

func TestResolveIsPure(t *testing.T) {
	week, err := Parse([]byte(resolverYAML))
	require.NoError(t, err)

	first, ok1 := week.Resolve(time.Monday, mustClock(t, "10:30"))
	second, ok2 := week.Resolve(time.Monday, mustClock(t, "10:30"))

	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}
