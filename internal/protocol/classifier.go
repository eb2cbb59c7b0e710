package protocol

import "fmt"

// CoordinationState is the derived joint-availability label for one moment.
type CoordinationState int

const (
	// StateCombat: both founders are in class, no coordination possible.
	StateCombat CoordinationState = iota
	// StateAsync: exactly one founder is free, delegation/solo-work window.
	StateAsync
	// StateSync: both founders are free, highest-priority collaboration window.
	StateSync
	// StateStealth: an opportunity window driven by a stealth activity.
	// Only produced when a stealth set is configured.
	StateStealth
)

func (s CoordinationState) String() string {
	switch s {
	case StateCombat:
		return "COMBAT"
	case StateAsync:
		return "ASYNC"
	case StateSync:
		return "SYNC"
	case StateStealth:
		return "STEALTH"
	}
	return fmt.Sprintf("CoordinationState(%d)", int(s))
}

func (s CoordinationState) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Vocabulary is a set of activity labels treated as "this founder is free".
// Matching is case-sensitive on the literal label.
type Vocabulary map[string]struct{}

func NewVocabulary(labels []string) Vocabulary {
	v := make(Vocabulary, len(labels))
	for _, label := range labels {
		v[label] = struct{}{}
	}
	return v
}

func (v Vocabulary) Free(label string) bool {
	_, ok := v[label]
	return ok
}

// Classifier maps a pair of activity labels to a CoordinationState.
//
// The stealth set is an explicit configuration decision: when empty, the
// classifier uses the plain three-state rule and stealth activities count as
// ordinary free time. When non-empty, any
// non-COMBAT window involving a stealth activity is reported as STEALTH
// ("opportunity detected") instead of SYNC/ASYNC.
type Classifier struct {
	vocab   Vocabulary
	stealth Vocabulary
}

func NewClassifier(opportunities, stealth []string) *Classifier {
	return &Classifier{
		vocab:   NewVocabulary(opportunities),
		stealth: NewVocabulary(stealth),
	}
}

// Classify is total and symmetric in its arguments: every label pair yields
// a defined state, and swapping the founders never changes the result.
func (c *Classifier) Classify(a, b string) CoordinationState {
	aFree := c.vocab.Free(a)
	bFree := c.vocab.Free(b)

	var state CoordinationState

	switch {
	case aFree && bFree:
		state = StateSync
	case aFree || bFree:
		state = StateAsync
	default:
		return StateCombat
	}

	if len(c.stealth) > 0 && (c.stealth.Free(a) || c.stealth.Free(b)) {
		return StateStealth
	}

	return state
}

// ClassifyNoSlot is the policy for times outside every schedule boundary
// (rest day, before or after hours): both founders count as free.
func (c *Classifier) ClassifyNoSlot() CoordinationState {
	return StateSync
}
