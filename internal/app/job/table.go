package job

import (
	"sync"
	"time"

	"podscribe/internal/app/model"
)

// Table is the in-memory job store. Each entry is mutated only by the
// goroutine running that job; readers and the eviction loop take the
// same lock, so no cross-job coordination is needed.
type Table struct {
	mu   sync.RWMutex
	jobs map[string]*model.Job
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{jobs: make(map[string]*model.Job)}
}

// Put inserts a job.
func (t *Table) Put(job *model.Job) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[job.ID] = job
}

// Get returns a copy of the job, so callers never observe concurrent
// mutation.
func (t *Table) Get(id string) (model.Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[id]
	if !ok {
		return model.Job{}, false
	}
	return *job, true
}

// SetState advances the job's lifecycle state. Terminal jobs are never
// mutated again.
func (t *Table) SetState(id string, state model.JobState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[id]
	if !ok || job.State.Terminal() {
		return
	}
	job.State = state
}

// Finish marks the job Complete with its immutable result.
func (t *Table) Finish(id string, result *model.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[id]
	if !ok || job.State.Terminal() {
		return
	}
	job.State = model.StateComplete
	job.Result = result
	job.FinishedAt = time.Now()
}

// Fail marks the job Failed with the terminal error message.
func (t *Table) Fail(id, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[id]
	if !ok || job.State.Terminal() {
		return
	}
	job.State = model.StateFailed
	job.Failure = message
	job.FinishedAt = time.Now()
}

// Delete evicts a job.
func (t *Table) Delete(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, id)
}

// Expired returns ids of terminal jobs whose retention window has
// passed.
func (t *Table) Expired(retention time.Duration) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cutoff := time.Now().Add(-retention)
	var out []string
	for id, job := range t.jobs {
		if job.State.Terminal() && job.FinishedAt.Before(cutoff) {
			out = append(out, id)
		}
	}
	return out
}
