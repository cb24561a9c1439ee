package progress

import (
	"fmt"
	"sync"
	"time"
)

// Step is one recorded pipeline event.
type Step struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Recorder accumulates step records for a single analysis run. Each run gets
// its own Recorder; nothing is shared across requests. Safe for concurrent
// use by pipeline workers.
type Recorder struct {
	mu    sync.Mutex
	steps []Step
}

// NewRecorder creates an empty step recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends a formatted step message.
func (r *Recorder) Record(format string, args ...any) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, Step{
		Time:    time.Now().UTC(),
		Message: fmt.Sprintf(format, args...),
	})
}

// Steps returns a copy of the recorded steps in order.
func (r *Recorder) Steps() []Step {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}
