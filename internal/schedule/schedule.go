package schedule

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Minutes is a time of day expressed as minutes since midnight.
type Minutes int

func ParseClock(s string) (Minutes, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
	}

	return Minutes(t.Hour()*60 + t.Minute()), nil
}

func (m Minutes) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// ClockOf projects a wall-clock instant onto the day grid.
func ClockOf(t time.Time) Minutes {
	return Minutes(t.Hour()*60 + t.Minute())
}

// Activity holds the two founders' assignments for one slot.
type Activity struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// Boundary is one [Start, End) interval of the working day. Tag is a
// rendering hint (break, lunch) and plays no part in classification.
type Boundary struct {
	Start Minutes
	End   Minutes
	Tag   string
}

type Day map[Minutes]Activity

// Weekly is the static timetable. It is loaded once at startup and never
// mutated afterwards; a day absent from Days (the rest day) is legal.
type Weekly struct {
	Members       [2]string
	Boundaries    []Boundary
	Days          map[time.Weekday]Day
	Opportunities []string
	Stealth       []string
}

type fileBoundary struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	Tag   string `yaml:"tag"`
}

type fileSchedule struct {
	Members struct {
		A string `yaml:"a"`
		B string `yaml:"b"`
	} `yaml:"members"`
	Slots         []fileBoundary                 `yaml:"slots"`
	Opportunities []string                       `yaml:"opportunities"`
	Stealth       []string                       `yaml:"stealth"`
	Week          map[string]map[string]Activity `yaml:"week"`
}

var weekdays = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

// Load reads and validates the weekly schedule file. Malformed configuration
// is rejected here so lookups never have to deal with it.
func Load(path string) (*Weekly, error) {
	const op = "schedule.Load"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	week, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return week, nil
}

func Parse(data []byte) (*Weekly, error) {
	const op = "schedule.Parse"

	var file fileSchedule
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	week := &Weekly{
		Members:       [2]string{file.Members.A, file.Members.B},
		Days:          make(map[time.Weekday]Day, len(file.Week)),
		Opportunities: file.Opportunities,
		Stealth:       file.Stealth,
	}

	if len(file.Slots) == 0 {
		return nil, fmt.Errorf("%s: no slot boundaries defined", op)
	}

	for _, slot := range file.Slots {
		start, err := ParseClock(slot.Start)
		if err != nil {
			return nil, fmt.Errorf("%s: slot start: %w", op, err)
		}

		end, err := ParseClock(slot.End)
		if err != nil {
			return nil, fmt.Errorf("%s: slot end: %w", op, err)
		}

		week.Boundaries = append(week.Boundaries, Boundary{Start: start, End: end, Tag: slot.Tag})
	}

	starts := make(map[Minutes]struct{}, len(week.Boundaries))

	for i, b := range week.Boundaries {
		if b.Start >= b.End {
			return nil, fmt.Errorf("%s: slot %s-%s is empty or inverted", op, b.Start, b.End)
		}

		if i > 0 {
			prev := week.Boundaries[i-1]
			if b.Start < prev.Start {
				return nil, fmt.Errorf("%s: slot boundaries are not sorted at %s", op, b.Start)
			}
			if b.Start < prev.End {
				return nil, fmt.Errorf("%s: slots %s-%s and %s-%s overlap", op, prev.Start, prev.End, b.Start, b.End)
			}
		}

		starts[b.Start] = struct{}{}
	}

	for dayName, entries := range file.Week {
		day, ok := weekdays[dayName]
		if !ok {
			return nil, fmt.Errorf("%s: unknown day name %q", op, dayName)
		}

		parsed := make(Day, len(entries))

		for startStr, activity := range entries {
			start, err := ParseClock(startStr)
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", op, dayName, err)
			}

			if _, ok := starts[start]; !ok {
				return nil, fmt.Errorf("%s: %s %s does not match any slot boundary", op, dayName, start)
			}

			parsed[start] = activity
		}

		week.Days[day] = parsed
	}

	return week, nil
}
