// Package timeline assigns source-media time ranges to transcript sentences.
package timeline

import (
	"fmt"
	"math"

	"recut/internal/services"
	"recut/internal/transcript"
)

// EditSegment is the time slice of source media spoken as one original
// sentence. Segments of one mapping are contiguous and end at the media
// duration.
type EditSegment struct {
	SourceIndex int     `json:"source_index" yaml:"source_index"`
	Text        string  `json:"text,omitempty" yaml:"text,omitempty"`
	Keep        bool    `json:"keep" yaml:"keep"`
	Start       float64 `json:"start" yaml:"start"`
	End         float64 `json:"end" yaml:"end"`
}

// Duration returns End - Start.
func (s EditSegment) Duration() float64 {
	return s.End - s.Start
}

// Mapper turns keep decisions into timed segments covering [0, total).
type Mapper interface {
	Map(decisions []transcript.Decision, total float64) ([]EditSegment, error)
}

// UniformMapper assumes a constant speech rate and gives every sentence an
// equal share of the total duration. Transcripts carry no timestamps, so
// cut points are estimates; a timestamp-aware Mapper can replace this one
// without touching the edit plan compiler.
type UniformMapper struct{}

// Map implements Mapper. Boundary i is total*i/count so that neighbouring
// segments share the exact same float and the last End equals total. Every
// segment must have End > Start.
func (UniformMapper) Map(decisions []transcript.Decision, total float64) ([]EditSegment, error) {
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return nil, services.Wrap(services.ErrInvalidDuration, "mapping", "uniform", fmt.Sprintf("total duration %v must be positive", total), nil)
	}
	count := len(decisions)
	if count == 0 {
		return nil, services.Wrap(services.ErrInvalidDuration, "mapping", "uniform", "no sentences to map", nil)
	}

	segments := make([]EditSegment, count)
	start := 0.0
	for i, d := range decisions {
		end := total * float64(i+1) / float64(count)
		if i == count-1 {
			end = total
		}
		if !(end > start) || math.IsInf(end, 0) {
			return nil, services.Wrap(services.ErrInvalidDuration, "mapping", "uniform",
				fmt.Sprintf("total duration %v is too short for %d sentences", total, count), nil)
		}
		segments[i] = EditSegment{
			SourceIndex: d.SourceIndex,
			Text:        d.Text,
			Keep:        d.Keep,
			Start:       start,
			End:         end,
		}
		start = end
	}
	return segments, nil
}
