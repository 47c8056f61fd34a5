package editplan

import (
	"fmt"
	"strconv"
	"strings"

	"recut/internal/services"
	"recut/internal/timeline"
)

const (
	VideoLabel = "vout"
	AudioLabel = "aout"

	// IdentityFilter re-encodes both streams untouched.
	IdentityFilter = "[0:v]null[vout];[0:a]anull[aout]"

	defaultMarkerText = "Edited"
)

// Interval is a half-open [Start, End) range in seconds.
type Interval struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// Duration returns End - Start.
func (iv Interval) Duration() float64 { return iv.End - iv.Start }

// Plan is the compiled edit. It is not modified after Compile returns.
type Plan struct {
	KeepIntervals    []Interval `json:"keep_intervals" yaml:"keep_intervals"`
	FilterExpression string     `json:"filter_expression" yaml:"filter_expression"`
	SourceDuration   float64    `json:"source_duration" yaml:"source_duration"`
}

// Passthrough reports whether the plan re-encodes without cuts.
func (p Plan) Passthrough() bool { return len(p.KeepIntervals) == 0 }

// OutputDuration returns the expected length of the produced media.
func (p Plan) OutputDuration() float64 {
	if p.Passthrough() {
		return p.SourceDuration
	}
	total := 0.0
	for _, iv := range p.KeepIntervals {
		total += iv.Duration()
	}
	return total
}

// Validate checks that the filter expression defines each output label once.
func (p Plan) Validate() error {
	for _, label := range []string{VideoLabel, AudioLabel} {
		if n := strings.Count(p.FilterExpression, "["+label+"]"); n != 1 {
			return services.Wrap(services.ErrValidation, "planning", "validate", fmt.Sprintf("filter defines [%s] %d times", label, n), nil)
		}
	}
	return nil
}

// Options tunes the visible edit marker.
type Options struct {
	MarkerText string
	FontFile   string
}

// Compile turns segments into a Plan. Kept segments are merged when they
// touch. Input with no kept interval or no dropped segment (all kept,
// all dropped or empty) yields the pass-through plan. sourceDuration <= 0
// is replaced by the end of the last segment. Output is a pure function of
// the inputs.
func Compile(segments []timeline.EditSegment, sourceDuration float64, opts Options) (Plan, error) {
	if err := checkSegments(segments); err != nil {
		return Plan{}, err
	}
	if sourceDuration <= 0 && len(segments) > 0 {
		sourceDuration = segments[len(segments)-1].End
	}
	plan := Plan{SourceDuration: sourceDuration}

	var intervals []Interval
	dropped := false
	for _, seg := range segments {
		if !seg.Keep {
			dropped = true
			continue
		}
		if n := len(intervals); n > 0 && intervals[n-1].End == seg.Start {
			intervals[n-1].End = seg.End
			continue
		}
		intervals = append(intervals, Interval{Start: seg.Start, End: seg.End})
	}

	if !dropped || len(intervals) == 0 {
		plan.FilterExpression = IdentityFilter
		return plan, nil
	}

	plan.KeepIntervals = intervals
	plan.FilterExpression = buildFilter(intervals, opts)
	return plan, nil
}

func checkSegments(segments []timeline.EditSegment) error {
	prevEnd := 0.0
	for i, seg := range segments {
		if seg.Start < 0 || seg.End <= seg.Start {
			return services.Wrap(services.ErrValidation, "planning", "compile", fmt.Sprintf("segment %d has invalid range [%v, %v)", i, seg.Start, seg.End), nil)
		}
		if i > 0 && seg.Start < prevEnd {
			return services.Wrap(services.ErrValidation, "planning", "compile", fmt.Sprintf("segment %d overlaps its predecessor", i), nil)
		}
		prevEnd = seg.End
	}
	return nil
}

func buildFilter(intervals []Interval, opts Options) string {
	selectExpr := selectExpression(intervals)
	var b strings.Builder
	b.WriteString("[0:v]select='")
	b.WriteString(selectExpr)
	b.WriteString("',setpts=N/FRAME_RATE/TB,")
	b.WriteString(drawtext(opts))
	b.WriteString("[vout];[0:a]aselect='")
	b.WriteString(selectExpr)
	b.WriteString("',asetpts=N/SR/TB[aout]")
	return b.String()
}

func selectExpression(intervals []Interval) string {
	parts := make([]string, len(intervals))
	for i, iv := range intervals {
		parts[i] = "gte(t," + formatSeconds(iv.Start) + ")*lt(t," + formatSeconds(iv.End) + ")"
	}
	return strings.Join(parts, "+")
}

func drawtext(opts Options) string {
	text := strings.TrimSpace(opts.MarkerText)
	if text == "" {
		text = defaultMarkerText
	}
	var b strings.Builder
	b.WriteString("drawtext=")
	if font := strings.TrimSpace(opts.FontFile); font != "" {
		b.WriteString("fontfile=")
		b.WriteString(escapeFilterValue(font))
		b.WriteByte(':')
	}
	b.WriteString("text=")
	b.WriteString(escapeFilterValue(text))
	b.WriteString(":fontcolor=white:fontsize=24:box=1:boxcolor=black@0.5:boxborderw=5:x=(w-text_w)/2:y=10")
	return b.String()
}

// escapeFilterValue escapes an option value for the drawtext option parser
// and then for the filtergraph parser.
func escapeFilterValue(value string) string {
	var option strings.Builder
	for _, r := range value {
		switch r {
		case '\\', '\'', ':', '%':
			option.WriteByte('\\')
		}
		option.WriteRune(r)
	}
	var graph strings.Builder
	for _, r := range option.String() {
		switch r {
		case '\\', '\'', '[', ']', ',', ';':
			graph.WriteByte('\\')
		}
		graph.WriteRune(r)
	}
	return graph.String()
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
