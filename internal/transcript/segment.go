package transcript

import "strings"

// SentenceUnit is one sentence of a transcript, in reading order.
type SentenceUnit struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// Segment splits text after each run of sentence terminators (. ! ?),
// keeping the terminators with their sentence. Fragments are trimmed and
// empty ones discarded. Text after the last terminator becomes its own unit.
func Segment(text string) []SentenceUnit {
	units := make([]SentenceUnit, 0, strings.Count(text, ".")+1)
	emit := func(fragment string) {
		if fragment = strings.TrimSpace(fragment); fragment != "" {
			units = append(units, SentenceUnit{Text: fragment, Index: len(units)})
		}
	}

	start := 0
	for i := 0; i < len(text); i++ {
		if !isTerminator(text[i]) {
			continue
		}
		end := i + 1
		for end < len(text) && isTerminator(text[end]) {
			end++
		}
		emit(text[start:end])
		start = end
		i = end - 1
	}
	emit(text[start:])

	if len(units) == 0 {
		return []SentenceUnit{}
	}
	return units
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

// Texts returns the sentence texts of units.
func Texts(units []SentenceUnit) []string {
	out := make([]string, len(units))
	for i, unit := range units {
		out[i] = unit.Text
	}
	return out
}
