package progress

import (
	"sync"
	"time"
)

// Entry is the latest progress of one step.
type Entry struct {
	Percentage int       `json:"percentage"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// Snapshot is the full progress state of one job at read time.
// Subscribers poll it; only the latest value per step is guaranteed to
// be observed. Once Complete is true no further polling is needed.
type Snapshot struct {
	Steps    map[string]Entry `json:"steps"`
	Complete bool             `json:"complete"`
	Error    string           `json:"error,omitempty"`
}

// Bus is an in-memory latest-snapshot-per-job publish/subscribe store.
// The job controller publishes; progress readers take snapshots. It is
// a pull-based read of shared state, not a message queue.
type Bus struct {
	mu   sync.RWMutex
	jobs map[string]*state
}

type state struct {
	steps    map[string]Entry
	complete bool
	err      string
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{jobs: make(map[string]*state)}
}

// Publish records the latest progress for a step, replacing any prior
// entry under the same name. Percentages are monotonic non-decreasing
// within a step; a lower value keeps the previous percentage.
func (b *Bus) Publish(jobID, step string, percentage int, message string) {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.jobs[jobID]
	if st == nil {
		st = &state{steps: make(map[string]Entry)}
		b.jobs[jobID] = st
	}
	if prev, ok := st.steps[step]; ok && prev.Percentage > percentage {
		percentage = prev.Percentage
	}
	st.steps[step] = Entry{
		Percentage: percentage,
		Message:    message,
		Timestamp:  time.Now(),
	}
}

// Complete marks the job's snapshot terminal.
func (b *Bus) Complete(jobID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if st := b.jobs[jobID]; st != nil {
		st.complete = true
	}
}

// Fail marks the job terminal with an error message.
func (b *Bus) Fail(jobID, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := b.jobs[jobID]
	if st == nil {
		st = &state{steps: make(map[string]Entry)}
		b.jobs[jobID] = st
	}
	st.complete = true
	st.err = message
}

// Snapshot returns a copy of the job's current progress. ok is false
// for unknown jobs.
func (b *Bus) Snapshot(jobID string) (Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	st := b.jobs[jobID]
	if st == nil {
		return Snapshot{}, false
	}
	steps := make(map[string]Entry, len(st.steps))
	for name, entry := range st.steps {
		steps[name] = entry
	}
	return Snapshot{Steps: steps, Complete: st.complete, Error: st.err}, true
}

// Forget drops all state for a job. Called when the controller evicts
// the job from its table.
func (b *Bus) Forget(jobID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.jobs, jobID)
}
