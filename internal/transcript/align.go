package transcript

import (
	"fmt"
	"strings"
)

// Decision records whether one original sentence survives the edit.
type Decision struct {
	SourceIndex int    `json:"source_index"`
	Text        string `json:"text"`
	Keep        bool   `json:"keep"`
}

// Aligner classifies every original sentence as kept or dropped. The result
// has one Decision per original unit, in original order, and is empty when
// original is empty.
type Aligner interface {
	Align(original, edited []SentenceUnit) []Decision
}

// SetAligner keeps an original sentence iff its normalized text appears
// anywhere in the edited transcript. Order and repetition in the edited
// transcript are ignored.
type SetAligner struct{}

// Align implements Aligner.
func (SetAligner) Align(original, edited []SentenceUnit) []Decision {
	present := make(map[string]struct{}, len(edited))
	for _, unit := range edited {
		present[Normalize(unit.Text)] = struct{}{}
	}
	decisions := make([]Decision, 0, len(original))
	for i, unit := range original {
		_, keep := present[Normalize(unit.Text)]
		decisions = append(decisions, Decision{SourceIndex: i, Text: unit.Text, Keep: keep})
	}
	return decisions
}

// NewAligner returns the aligner registered under name ("set" or "lcs").
func NewAligner(name string) (Aligner, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "set":
		return SetAligner{}, nil
	case "lcs":
		return LCSAligner{}, nil
	default:
		return nil, fmt.Errorf("unknown aligner %q", name)
	}
}

// KeptCount returns the number of kept decisions.
func KeptCount(decisions []Decision) int {
	n := 0
	for _, d := range decisions {
		if d.Keep {
			n++
		}
	}
	return n
}
