package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podscribe/internal/app/model"
)

func put(t *Table, id string, state model.JobState) {
	t.Put(&model.Job{ID: id, State: state, CreatedAt: time.Now()})
}

func TestTable_PutGet(t *testing.T) {
	table := NewTable()
	put(table, "a", model.StateCreated)

	job, ok := table.Get("a")
	require.True(t, ok)
	assert.Equal(t, model.StateCreated, job.State)

	_, ok = table.Get("missing")
	assert.False(t, ok)
}

func TestTable_GetReturnsCopy(t *testing.T) {
	table := NewTable()
	put(table, "a", model.StateCreated)

	job, _ := table.Get("a")
	job.State = model.StateFailed

	fresh, _ := table.Get("a")
	assert.Equal(t, model.StateCreated, fresh.State)
}

func TestTable_TerminalStatesAreImmutable(t *testing.T) {
	table := NewTable()
	put(table, "a", model.StateTranscribing)
	table.Finish("a", &model.Result{Transcript: "done"})

	table.SetState("a", model.StateDownloading)
	table.Fail("a", "too late")
	table.Finish("a", &model.Result{Transcript: "overwritten"})

	job, _ := table.Get("a")
	assert.Equal(t, model.StateComplete, job.State)
	assert.Equal(t, "done", job.Result.Transcript)
	assert.Empty(t, job.Failure)
}

func TestTable_FailRecordsMessage(t *testing.T) {
	table := NewTable()
	put(table, "a", model.StateDownloading)
	table.Fail("a", "status 404")

	job, _ := table.Get("a")
	assert.Equal(t, model.StateFailed, job.State)
	assert.Equal(t, "status 404", job.Failure)
	assert.False(t, job.FinishedAt.IsZero())
}

func TestTable_ExpiredOnlyReturnsOldTerminalJobs(t *testing.T) {
	table := NewTable()
	put(table, "running", model.StateTranscribing)
	put(table, "fresh", model.StateTranscribing)
	table.Finish("fresh", &model.Result{})

	old := &model.Job{ID: "old", State: model.StateComplete,
		FinishedAt: time.Now().Add(-2 * time.Hour)}
	table.Put(old)

	expired := table.Expired(time.Hour)
	assert.Equal(t, []string{"old"}, expired)
}
