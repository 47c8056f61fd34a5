package transcript_test

import (
	"reflect"
	"testing"

	"recut/internal/transcript"
)

func keeps(decisions []transcript.Decision) []bool {
	out := make([]bool, len(decisions))
	for i, d := range decisions {
		out[i] = d.Keep
	}
	return out
}

func TestSetAligner(t *testing.T) {
	tests := []struct {
		name     string
		original string
		edited   string
		want     []bool
	}{
		{"drop middle", "A. B. C.", "A. C.", []bool{true, false, true}},
		{"identical", "A. B. C.", "A. B. C.", []bool{true, true, true}},
		{"reordered", "A. B. C.", "C. A. B.", []bool{true, true, true}},
		{"duplicated kept", "A. B.", "A. A. A.", []bool{true, false}},
		{"whitespace differences", "Hello   world. Bye.", "  Hello world.\n", []bool{true, false}},
		{"reworded", "The cat sat.", "The cat sits.", []bool{false}},
		{"empty edited", "A. B.", "", []bool{false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transcript.SetAligner{}.Align(transcript.Segment(tt.original), transcript.Segment(tt.edited))
			if !reflect.DeepEqual(keeps(got), tt.want) {
				t.Fatalf("keeps = %v, want %v", keeps(got), tt.want)
			}
			for i, d := range got {
				if d.SourceIndex != i {
					t.Fatalf("decision %d has source index %d", i, d.SourceIndex)
				}
			}
		})
	}
}

func TestAlignersEmptyOriginal(t *testing.T) {
	for _, aligner := range []transcript.Aligner{transcript.SetAligner{}, transcript.LCSAligner{}} {
		got := aligner.Align(nil, transcript.Segment("A. B."))
		if len(got) != 0 {
			t.Fatalf("%T: expected no decisions, got %+v", aligner, got)
		}
	}
}

func TestSetAlignerMembershipProperty(t *testing.T) {
	original := transcript.Segment("One. Two. Three. Four. Five.")
	edited := transcript.Segment("Five. Two. Two. Nine.")
	present := map[string]bool{}
	for _, unit := range edited {
		present[unit.Text] = true
	}
	for _, d := range (transcript.SetAligner{}).Align(original, edited) {
		if d.Keep != present[d.Text] {
			t.Fatalf("sentence %q keep=%v, present=%v", d.Text, d.Keep, present[d.Text])
		}
	}
}

func TestLCSAligner(t *testing.T) {
	tests := []struct {
		name     string
		original string
		edited   string
		want     []bool
	}{
		{"drop middle", "A. B. C.", "A. C.", []bool{true, false, true}},
		{"identical", "A. B. C.", "A. B. C.", []bool{true, true, true}},
		{"swap keeps earliest", "A. B.", "B. A.", []bool{true, false}},
		{"moved to front", "A. B. C.", "C. A. B.", []bool{true, true, false}},
		{"duplicated kept", "A. B.", "A. A.", []bool{true, false}},
		{"repeated original", "A. B. A.", "A.", []bool{true, false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transcript.LCSAligner{}.Align(transcript.Segment(tt.original), transcript.Segment(tt.edited))
			if !reflect.DeepEqual(keeps(got), tt.want) {
				t.Fatalf("keeps = %v, want %v", keeps(got), tt.want)
			}
		})
	}
}

func TestNewAligner(t *testing.T) {
	if a, err := transcript.NewAligner(""); err != nil || a != (transcript.SetAligner{}) {
		t.Fatalf("expected set aligner default, got %T %v", a, err)
	}
	if a, err := transcript.NewAligner("LCS"); err != nil || a != (transcript.LCSAligner{}) {
		t.Fatalf("expected lcs aligner, got %T %v", a, err)
	}
	if _, err := transcript.NewAligner("fuzzy"); err == nil {
		t.Fatal("expected error for unknown aligner")
	}
}

func TestKeptCount(t *testing.T) {
	decisions := transcript.SetAligner{}.Align(transcript.Segment("A. B. C."), transcript.Segment("B."))
	if transcript.KeptCount(decisions) != 1 {
		t.Fatalf("expected 1 kept, got %d", transcript.KeptCount(decisions))
	}
}
