package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishAndSnapshot(t *testing.T) {
	bus := NewBus()
	bus.Publish("job-1", "download", 40, "downloading")
	bus.Publish("job-1", "transcribe", 10, "segment 1/4")

	snap, ok := bus.Snapshot("job-1")
	require.True(t, ok)
	assert.False(t, snap.Complete)
	assert.Equal(t, 40, snap.Steps["download"].Percentage)
	assert.Equal(t, "segment 1/4", snap.Steps["transcribe"].Message)
}

func TestBus_UnknownJob(t *testing.T) {
	bus := NewBus()
	_, ok := bus.Snapshot("nope")
	assert.False(t, ok)
}

func TestBus_PercentageMonotonicPerStep(t *testing.T) {
	bus := NewBus()
	bus.Publish("job-1", "download", 80, "almost")
	bus.Publish("job-1", "download", 30, "late straggler")

	snap, ok := bus.Snapshot("job-1")
	require.True(t, ok)
	entry := snap.Steps["download"]
	assert.Equal(t, 80, entry.Percentage, "a lower percentage must not regress the step")
	assert.Equal(t, "late straggler", entry.Message, "the message still updates")
}

func TestBus_PercentageClamped(t *testing.T) {
	bus := NewBus()
	bus.Publish("job-1", "split", -5, "")
	snap, _ := bus.Snapshot("job-1")
	assert.Equal(t, 0, snap.Steps["split"].Percentage)

	bus.Publish("job-1", "split", 150, "")
	snap, _ = bus.Snapshot("job-1")
	assert.Equal(t, 100, snap.Steps["split"].Percentage)
}

func TestBus_CompleteAndFail(t *testing.T) {
	bus := NewBus()
	bus.Publish("done", "merge", 100, "merged")
	bus.Complete("done")

	snap, ok := bus.Snapshot("done")
	require.True(t, ok)
	assert.True(t, snap.Complete)
	assert.Empty(t, snap.Error)

	bus.Fail("broken", "download failed: status 404")
	snap, ok = bus.Snapshot("broken")
	require.True(t, ok)
	assert.True(t, snap.Complete)
	assert.Equal(t, "download failed: status 404", snap.Error)
}

func TestBus_SnapshotIsACopy(t *testing.T) {
	bus := NewBus()
	bus.Publish("job-1", "download", 10, "")

	snap, _ := bus.Snapshot("job-1")
	snap.Steps["download"] = Entry{Percentage: 99}

	fresh, _ := bus.Snapshot("job-1")
	assert.Equal(t, 10, fresh.Steps["download"].Percentage)
}

func TestBus_Forget(t *testing.T) {
	bus := NewBus()
	bus.Publish("job-1", "download", 10, "")
	bus.Forget("job-1")

	_, ok := bus.Snapshot("job-1")
	assert.False(t, ok)
}
