package pipeline

import "sync"

const runBufferSize = 64

// Run is a processing request running in the background.
type Run struct {
	progress chan Progress
	done     chan struct{}

	mu     sync.Mutex
	result Result
	err    error
}

func newRun() *Run {
	return &Run{
		progress: make(chan Progress, runBufferSize),
		done:     make(chan struct{}),
	}
}

// Progress streams updates for this run and is closed when it ends. A slow
// reader may miss intermediate updates; the final done or failed update is
// always delivered.
func (r *Run) Progress() <-chan Progress {
	return r.progress
}

// Done is closed once the result is available.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run ends.
func (r *Run) Wait() (Result, error) {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.err
}

// deliver is only called from the run's goroutine.
func (r *Run) deliver(p Progress) {
	select {
	case r.progress <- p:
		return
	default:
	}
	if !p.Terminal() {
		return
	}
	// Make room for the final update.
	select {
	case <-r.progress:
	default:
	}
	select {
	case r.progress <- p:
	default:
	}
}

func (r *Run) finish(result Result, err error) {
	r.mu.Lock()
	r.result = result
	r.err = err
	r.mu.Unlock()
	close(r.progress)
	close(r.done)
}
