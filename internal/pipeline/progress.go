package pipeline

import "math"

// Stage names reported through Progress and StageError.
const (
	StageExtracting   = "extracting"
	StageTranscribing = "transcribing"
	StageSegmenting   = "segmenting"
	StageAligning     = "aligning"
	StageMapping      = "mapping"
	StagePlanning     = "planning"
	StageLoading      = "loading"
	StageTranscoding  = "transcoding"
	StageDone         = "done"
	StageFailed       = "failed"
)

// Progress milestones for a processing run. Engine progress is scaled into
// the range between engineStart and engineEnd.
const (
	percentSegmented = 5
	percentAligned   = 10
	percentMapped    = 15
	percentPlanned   = 20
	engineStart      = percentPlanned
	engineEnd        = 95
)

// Progress is one update of a processing run.
type Progress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message,omitempty"`
	Err     error   `json:"-"`
}

// Terminal reports whether p ends its run.
func (p Progress) Terminal() bool {
	return p.Stage == StageDone || p.Stage == StageFailed
}

// ProgressSink receives updates for a single run, in order.
type ProgressSink func(Progress)

// tracker forwards updates to a sink and keeps percentages non-decreasing.
type tracker struct {
	sink ProgressSink
	last float64
}

func newTracker(sink ProgressSink) *tracker {
	return &tracker{sink: sink}
}

func (t *tracker) report(stage string, percent float64, message string) {
	if math.IsNaN(percent) || percent < t.last {
		percent = t.last
	}
	if percent > 100 {
		percent = 100
	}
	t.last = percent
	if t.sink != nil {
		t.sink(Progress{Stage: stage, Percent: percent, Message: message})
	}
}

func (t *tracker) fail(err error) {
	if t.sink != nil {
		t.sink(Progress{Stage: StageFailed, Percent: t.last, Message: err.Error(), Err: err})
	}
}

// engineSink scales engine percentages into the transcoding band.
func (t *tracker) engineSink() func(float64) {
	return func(percent float64) {
		t.report(StageTranscoding, engineStart+(engineEnd-engineStart)*percent/100, "")
	}
}
