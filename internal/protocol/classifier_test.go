package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var opportunities = []string{
	"Sports", "Library", "Office Hours", "Mentor", "Club Activity",
	"Tea Break", "Lunch", "Soft Skill Training", "FREE",
}

func TestClassify(t *testing.T) {
	c := NewClassifier(opportunities, nil)

	tests := []struct {
		name string
		a, b string
		want CoordinationState
	}{
		{"both free", "Tea Break", "Tea Break", StateSync},
		{"one free", "FREE", "DBMS", StateAsync},
		{"other free", "IAI", "Office Hours", StateAsync},
		{"both busy", "DAA", "DAA/DBMS Lab", StateCombat},
		{"matching is case sensitive", "free", "FREE", StateAsync},
		{"sports counts as free", "Sports", "Sports", StateSync},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.a, tt.b))
		})
	}
}

func TestClassifyIsSymmetric(t *testing.T) {
	c := NewClassifier(opportunities, nil)

	pairs := [][2]string{
		{"FREE", "DBMS"},
		{"Lunch", "Lunch"},
		{"DAA", "COA"},
		{"Library", "SEC"},
	}

	for _, pair := range pairs {
		assert.Equal(t, c.Classify(pair[0], pair[1]), c.Classify(pair[1], pair[0]), "%v", pair)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	c := NewClassifier(opportunities, nil)

	first := c.Classify("FREE", "COA")
	second := c.Classify("FREE", "COA")

	assert.Equal(t, first, second)
}

func TestClassifyNoSlot(t *testing.T) {
	c := NewClassifier(opportunities, nil)

	// off-schedule time counts as both free
	assert.Equal(t, StateSync, c.ClassifyNoSlot())
}

func TestClassifyStealthDisabled(t *testing.T) {
	c := NewClassifier(opportunities, nil)

	// with no stealth set, stealth-flavoured activities fold into free
	assert.Equal(t, StateSync, c.Classify("Library", "Mentor"))
	assert.Equal(t, StateAsync, c.Classify("Library", "SEC"))
}

func TestClassifyStealthEnabled(t *testing.T) {
	c := NewClassifier(opportunities, []string{"Library", "Mentor", "Sports"})

	tests := []struct {
		name string
		a, b string
		want CoordinationState
	}{
		{"stealth overrides sync", "Library", "Mentor", StateStealth},
		{"stealth overrides async", "Library", "SEC", StateStealth},
		{"plain free stays sync", "Tea Break", "Lunch", StateSync},
		{"plain one-free stays async", "FREE", "DBMS", StateAsync},
		{"combat never turns stealth", "DAA", "COA", StateCombat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.a, tt.b))
		})
	}
}

func TestCoordinationStateString(t *testing.T) {
	assert.Equal(t, "SYNC", StateSync.String())
	assert.Equal(t, "ASYNC", StateAsync.String())
	assert.Equal(t, "COMBAT", StateCombat.String())
	assert.Equal(t, "STEALTH", StateStealth.String())
}

func TestCoordinationStateJSON(t *testing.T) {
	b, err := StateSync.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"SYNC"`, string(b))
}
