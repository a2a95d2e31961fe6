package conversation

import "sync/atomic"

// PauseSwitch is the global kill switch for automated replies. While paused
// the orchestrator still records inbound messages and state but sends
// nothing. Safe for concurrent use.
type PauseSwitch struct {
	paused atomic.Bool
}

// NewPauseSwitch returns a switch in the running (unpaused) position.
func NewPauseSwitch() *PauseSwitch {
	return &PauseSwitch{}
}

// Paused reports whether automated replies are currently suppressed.
func (p *PauseSwitch) Paused() bool {
	return p.paused.Load()
}

// Set moves the switch and returns the previous position.
func (p *PauseSwitch) Set(paused bool) bool {
	return p.paused.Swap(paused)
}
