package engine

import "time"

// Handle describes a loaded engine. Handles are created by an Adapter and
// become stale after Reset.
type Handle struct {
	Binary   string    `json:"binary"`
	Version  string    `json:"version"`
	WorkDir  string    `json:"work_dir"`
	LoadedAt time.Time `json:"loaded_at"`

	generation uint64
}

// Generation identifies the load that produced the handle.
func (h *Handle) Generation() uint64 {
	if h == nil {
		return 0
	}
	return h.generation
}
