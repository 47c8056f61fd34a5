package timeline_test

import (
	"errors"
	"math"
	"testing"

	"recut/internal/services"
	"recut/internal/timeline"
	"recut/internal/transcript"
)

func decisions(keep ...bool) []transcript.Decision {
	out := make([]transcript.Decision, len(keep))
	for i, k := range keep {
		out[i] = transcript.Decision{SourceIndex: i, Keep: k}
	}
	return out
}

func TestUniformMapperScenario(t *testing.T) {
	original := transcript.Segment("A. B. C.")
	edited := transcript.Segment("A. C.")
	segments, err := timeline.UniformMapper{}.Map(transcript.SetAligner{}.Align(original, edited), 30)
	if err != nil {
		t.Fatalf("Map returned error: %v", err)
	}
	want := []timeline.EditSegment{
		{SourceIndex: 0, Text: "A.", Keep: true, Start: 0, End: 10},
		{SourceIndex: 1, Text: "B.", Keep: false, Start: 10, End: 20},
		{SourceIndex: 2, Text: "C.", Keep: true, Start: 20, End: 30},
	}
	if len(segments) != len(want) {
		t.Fatalf("got %d segments, want %d", len(segments), len(want))
	}
	for i := range want {
		if segments[i] != want[i] {
			t.Fatalf("segment %d = %+v, want %+v", i, segments[i], want[i])
		}
	}
}

func TestUniformMapperContiguity(t *testing.T) {
	for _, total := range []float64{0.001, 1, 7.3, 29.97, 3600.123} {
		for n := 1; n <= 37; n++ {
			keep := make([]bool, n)
			segments, err := timeline.UniformMapper{}.Map(decisions(keep...), total)
			if err != nil {
				t.Fatalf("total=%v n=%d: %v", total, n, err)
			}
			if segments[0].Start != 0 {
				t.Fatalf("total=%v n=%d: first start %v", total, n, segments[0].Start)
			}
			if segments[n-1].End != total {
				t.Fatalf("total=%v n=%d: last end %v", total, n, segments[n-1].End)
			}
			sum := 0.0
			for i, seg := range segments {
				if seg.End <= seg.Start {
					t.Fatalf("total=%v n=%d: empty segment %d %+v", total, n, i, seg)
				}
				if i > 0 && segments[i-1].End != seg.Start {
					t.Fatalf("total=%v n=%d: gap at %d", total, n, i)
				}
				sum += seg.Duration()
			}
			if math.Abs(sum-total) > 1e-9*math.Max(1, total) {
				t.Fatalf("total=%v n=%d: durations sum to %v", total, n, sum)
			}
		}
	}
}

func TestUniformMapperInvalidDuration(t *testing.T) {
	for _, total := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := timeline.UniformMapper{}.Map(decisions(true), total)
		if !errors.Is(err, services.ErrInvalidDuration) {
			t.Fatalf("total=%v: expected ErrInvalidDuration, got %v", total, err)
		}
	}
	if _, err := (timeline.UniformMapper{}).Map(nil, 10); !errors.Is(err, services.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration for empty decisions, got %v", err)
	}
}

func TestUniformMapperRejectsUnsplittableDuration(t *testing.T) {
	total := math.SmallestNonzeroFloat64
	segments, err := timeline.UniformMapper{}.Map(decisions(true, false), total)
	if !errors.Is(err, services.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %+v / %v", segments, err)
	}

	segments, err = timeline.UniformMapper{}.Map(decisions(true), total)
	if err != nil {
		t.Fatalf("single sentence should map: %v", err)
	}
	if segments[0].Start != 0 || segments[0].End != total {
		t.Fatalf("unexpected segment %+v", segments[0])
	}
}
