package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"

	"recut/internal/pipeline"
)

// progressDisplay renders pipeline progress: a live bar on terminals and one
// line per stage change elsewhere.
type progressDisplay struct {
	out io.Writer

	mu        sync.Mutex
	lastStage string
	writer    progress.Writer
	tracker   *progress.Tracker
}

func newProgressDisplay(out io.Writer, title string) *progressDisplay {
	d := &progressDisplay{out: out}
	if !isTerminal(out) {
		return d
	}
	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetMessageLength(28)
	pw.SetStyle(progress.StyleDefault)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.Value = false

	tracker := &progress.Tracker{Message: title, Total: 100, Units: progress.UnitsDefault}
	pw.AppendTracker(tracker)
	go pw.Render()

	d.writer = pw
	d.tracker = tracker
	return d
}

// Sink returns the callback to hand to the pipeline.
func (d *progressDisplay) Sink() pipeline.ProgressSink {
	return d.update
}

func (d *progressDisplay) update(p pipeline.Progress) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.tracker != nil {
		d.tracker.UpdateMessage(p.Stage)
		switch {
		case p.Stage == pipeline.StageFailed:
			d.tracker.MarkAsErrored()
		case p.Stage == pipeline.StageDone:
			d.tracker.SetValue(100)
			d.tracker.MarkAsDone()
		default:
			d.tracker.SetValue(int64(p.Percent))
		}
		return
	}

	if p.Stage == d.lastStage && !p.Terminal() {
		return
	}
	d.lastStage = p.Stage
	line := fmt.Sprintf("[%5.1f%%] %s", p.Percent, p.Stage)
	if p.Message != "" {
		line += ": " + p.Message
	}
	fmt.Fprintln(d.out, line)
}

// Close stops the live renderer, if any, once it has flushed.
func (d *progressDisplay) Close() {
	if d.writer == nil {
		return
	}
	deadline := time.Now().Add(time.Second)
	for d.writer.LengthActive() > 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	d.writer.Stop()
	for d.writer.IsRenderInProgress() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
