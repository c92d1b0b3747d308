package job

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"podscribe/internal/app/merge"
	"podscribe/internal/app/model"
	"podscribe/internal/app/progress"
	"podscribe/internal/app/resolver"
	"podscribe/internal/app/segment"
	"podscribe/internal/app/testutil"
)

type fixture struct {
	acquirer    *testutil.FakeAcquirer
	transcoder  *testutil.FakeTranscoder
	transcriber *testutil.FakeTranscriber
	summarizer  *testutil.FakeSummarizer
	resolver    *testutil.FakeResolver
	archive     *testutil.FakeDAO
	scratch     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		acquirer:    &testutil.FakeAcquirer{Payload: []byte("tiny audio")},
		transcoder:  testutil.NewFakeTranscoder(300, 512),
		transcriber: testutil.NewFakeTranscriber(),
		summarizer:  &testutil.FakeSummarizer{Summary: "tl;dr"},
		resolver:    &testutil.FakeResolver{},
		archive:     &testutil.FakeDAO{},
		scratch:     t.TempDir(),
	}
}

// newTestController wires the fixture's fakes plus the production merge
// engine, so overlap removal is exercised for real.
func newTestController(f *fixture) *Controller {
	return NewController(
		progress.NewBus(),
		f.acquirer,
		segment.New(f.transcoder),
		merge.New(),
		f.transcriber,
		f.summarizer,
		f.resolver,
		f.archive,
		zap.NewNop(),
		Options{ScratchDir: f.scratch, Retention: time.Hour},
	)
}

func awaitTerminal(t *testing.T, c *Controller, id string) model.Job {
	t.Helper()
	var job model.Job
	require.Eventually(t, func() bool {
		j, ok := c.Get(id)
		if !ok {
			return false
		}
		job = j
		return j.State.Terminal()
	}, 5*time.Second, 5*time.Millisecond)
	return job
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  model.JobRequest
	}{
		{"empty_request", model.JobRequest{}},
		{"title_without_podcast_or_feed", model.JobRequest{EpisodeTitle: "Episode 42"}},
	}

	f := newFixture(t)
	c := newTestController(f)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Submit(tt.req)
			assert.Error(t, err)
		})
	}
}

func TestSubmit_WithoutResolver(t *testing.T) {
	f := newFixture(t)
	c := NewController(
		progress.NewBus(),
		f.acquirer,
		segment.New(f.transcoder),
		merge.New(),
		f.transcriber,
		f.summarizer,
		nil,
		f.archive,
		zap.NewNop(),
		Options{ScratchDir: f.scratch, Retention: time.Hour},
	)

	// A URL without an audio extension is an episode page and needs
	// the resolver; rejecting it at submission keeps the job goroutine
	// from ever reaching a nil collaborator.
	_, err := c.Submit(model.JobRequest{AudioURL: "https://example.com/episodes/42"})
	assert.Error(t, err)

	_, err = c.Submit(model.JobRequest{EpisodeTitle: "Episode 42", PodcastName: "Machine Minds"})
	assert.Error(t, err)

	id, err := c.Submit(model.JobRequest{AudioURL: "https://cdn.example.com/ep.mp3"})
	require.NoError(t, err, "direct audio file URLs never touch the resolver")
	job := awaitTerminal(t, c, id)
	assert.Equal(t, model.StateComplete, job.State)
}

func TestRun_DirectURLSingleSegment(t *testing.T) {
	f := newFixture(t)
	f.transcriber.Responses = []string{"  the full episode text  "}
	c := newTestController(f)

	id, err := c.Submit(model.JobRequest{
		AudioURL:     "https://cdn.example.com/ep42.mp3",
		EpisodeTitle: "Episode 42",
		PodcastName:  "Machine Minds",
	})
	require.NoError(t, err)

	job := awaitTerminal(t, c, id)
	require.Equal(t, model.StateComplete, job.State)
	require.NotNil(t, job.Result)
	assert.Equal(t, "the full episode text", job.Result.Transcript,
		"single-segment transcript passes through verbatim")
	assert.Equal(t, "Episode 42", job.Result.EpisodeTitle)
	assert.Equal(t, "0:05:00", job.Result.Duration)
	assert.Empty(t, job.Result.Summary, "no summary unless requested")

	snap, ok := c.Bus().Snapshot(id)
	require.True(t, ok)
	assert.True(t, snap.Complete)
	assert.Empty(t, snap.Error)
	assert.Equal(t, 100, snap.Steps[model.StepDownload].Percentage)
	assert.Equal(t, 100, snap.Steps[model.StepTranscribe].Percentage)

	assert.NoDirExists(t, filepath.Join(f.scratch, id), "scratch directory must be removed")

	rows := f.archive.Recorded()
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].JobID)
	assert.Equal(t, "the full episode text", rows[0].Transcript)
	assert.Empty(t, rows[0].ErrorMessage)
}

func TestRun_ArchiveRoundsAudioDuration(t *testing.T) {
	f := newFixture(t)
	f.transcoder.DurationSecs = 299.6
	c := newTestController(f)

	id, err := c.Submit(model.JobRequest{AudioURL: "https://cdn.example.com/ep.mp3"})
	require.NoError(t, err)

	job := awaitTerminal(t, c, id)
	require.Equal(t, model.StateComplete, job.State)
	assert.Equal(t, "0:05:00", job.Result.Duration)

	rows := f.archive.Recorded()
	require.Len(t, rows, 1)
	assert.Equal(t, 300, rows[0].AudioDuration, "archive rows carry whole seconds")
}

func TestRun_LargeFileSequentialSegments(t *testing.T) {
	f := newFixture(t)
	f.acquirer.Payload = make([]byte, segment.MaxUploadBytes+1)
	f.transcoder = testutil.NewFakeTranscoder(2100, 0)

	pad := strings.Repeat("pad ", 20)
	f.transcriber.Responses = []string{
		"opening words",
		pad + "uniq1",
		pad + "uniq2",
		pad + "uniq3",
	}
	c := newTestController(f)

	id, err := c.Submit(model.JobRequest{AudioURL: "https://cdn.example.com/long.mp3"})
	require.NoError(t, err)

	job := awaitTerminal(t, c, id)
	require.Equal(t, model.StateComplete, job.State)
	assert.Equal(t, "opening words uniq1 uniq2 uniq3", job.Result.Transcript,
		"each later segment loses its 20 overlap tokens")

	// Segments must be transcribed strictly in index order.
	paths := f.transcriber.CallPaths()
	require.Len(t, paths, 4)
	for i, p := range paths {
		assert.Equal(t, fmt.Sprintf("segment_%03d.mp3", i), filepath.Base(p))
	}
}

func TestRun_TranscriptionFailureHaltsPipeline(t *testing.T) {
	f := newFixture(t)
	f.acquirer.Payload = make([]byte, segment.MaxUploadBytes+1)
	f.transcoder = testutil.NewFakeTranscoder(2100, 0)
	f.transcriber.Err = errors.New("provider rejected the segment")
	f.transcriber.ErrAt = 1
	c := newTestController(f)

	id, err := c.Submit(model.JobRequest{AudioURL: "https://cdn.example.com/long.mp3"})
	require.NoError(t, err)

	job := awaitTerminal(t, c, id)
	assert.Equal(t, model.StateFailed, job.State)
	assert.Contains(t, job.Failure, "provider rejected the segment")
	assert.Nil(t, job.Result)

	assert.Len(t, f.transcriber.CallPaths(), 2, "no further segment is sent after a failure")

	snap, ok := c.Bus().Snapshot(id)
	require.True(t, ok)
	assert.True(t, snap.Complete, "failed jobs still turn the snapshot terminal")
	assert.Contains(t, snap.Error, "provider rejected the segment")
	assert.Equal(t, 100, snap.Steps[model.StepError].Percentage)

	assert.NoDirExists(t, filepath.Join(f.scratch, id))

	rows := f.archive.Recorded()
	require.Len(t, rows, 1)
	assert.NotEmpty(t, rows[0].ErrorMessage)
}

func TestRun_DownloadFailure(t *testing.T) {
	f := newFixture(t)
	f.acquirer.Err = errors.New("status 404")
	c := newTestController(f)

	id, err := c.Submit(model.JobRequest{AudioURL: "https://cdn.example.com/gone.mp3"})
	require.NoError(t, err)

	job := awaitTerminal(t, c, id)
	assert.Equal(t, model.StateFailed, job.State)
	assert.Contains(t, job.Failure, "status 404")
	assert.Empty(t, f.transcriber.CallPaths())
}

func TestRun_SummarizeRequested(t *testing.T) {
	f := newFixture(t)
	f.transcriber.Responses = []string{"long transcript"}
	c := newTestController(f)

	id, err := c.Submit(model.JobRequest{
		AudioURL:  "https://cdn.example.com/ep.mp3",
		Summarize: true,
	})
	require.NoError(t, err)

	job := awaitTerminal(t, c, id)
	require.Equal(t, model.StateComplete, job.State)
	assert.Equal(t, "tl;dr", job.Result.Summary)
	assert.True(t, f.summarizer.Called)
}

func TestRun_SummarizeFailureDoesNotFailJob(t *testing.T) {
	f := newFixture(t)
	f.summarizer.Err = errors.New("model overloaded")
	c := newTestController(f)

	id, err := c.Submit(model.JobRequest{
		AudioURL:  "https://cdn.example.com/ep.mp3",
		Summarize: true,
	})
	require.NoError(t, err)

	job := awaitTerminal(t, c, id)
	assert.Equal(t, model.StateComplete, job.State)
	assert.Empty(t, job.Result.Summary)
}

func TestRun_ResolvesEpisodeThroughFeed(t *testing.T) {
	f := newFixture(t)
	f.resolver.FeedURL = "https://example.com/feed.xml"
	f.resolver.Episode = &resolver.Episode{
		Title:       "Episode 42: The Future of Speech Recognition",
		PodcastName: "Machine Minds",
		AudioURL:    "https://cdn.example.com/ep42.mp3",
		PublishedAt: "Mon, 10 Aug 2026 09:00:00 GMT",
	}
	f.transcriber.Responses = []string{"resolved and transcribed"}
	c := newTestController(f)

	id, err := c.Submit(model.JobRequest{
		EpisodeTitle: "the future of speech recognition",
		PodcastName:  "machine minds",
	})
	require.NoError(t, err)

	job := awaitTerminal(t, c, id)
	require.Equal(t, model.StateComplete, job.State)
	assert.Equal(t, "Episode 42: The Future of Speech Recognition", job.Result.EpisodeTitle)
	assert.Equal(t, "Machine Minds", job.Result.PodcastName)
	assert.Equal(t, "Mon, 10 Aug 2026 09:00:00 GMT", job.Result.PublishedAt)

	snap, _ := c.Bus().Snapshot(id)
	assert.Equal(t, 100, snap.Steps[model.StepMetadata].Percentage)
	assert.Equal(t, 100, snap.Steps[model.StepFeed].Percentage)
	assert.Equal(t, 100, snap.Steps[model.StepParse].Percentage)
}

func TestRun_ResolutionFailure(t *testing.T) {
	f := newFixture(t)
	f.resolver.FeedErr = errors.New("no feed found")
	c := newTestController(f)

	id, err := c.Submit(model.JobRequest{
		EpisodeTitle: "Episode 42",
		PodcastName:  "Machine Minds",
	})
	require.NoError(t, err)

	job := awaitTerminal(t, c, id)
	assert.Equal(t, model.StateFailed, job.State)
	assert.Contains(t, job.Failure, "no feed found")
}

func TestCleanup(t *testing.T) {
	f := newFixture(t)
	c := newTestController(f)

	id, err := c.Submit(model.JobRequest{AudioURL: "https://cdn.example.com/ep.mp3"})
	require.NoError(t, err)
	awaitTerminal(t, c, id)

	require.NoError(t, c.Cleanup(id))
	_, ok := c.Get(id)
	assert.False(t, ok)
	_, ok = c.Bus().Snapshot(id)
	assert.False(t, ok, "progress state is forgotten with the job")

	assert.Error(t, c.Cleanup(id), "second cleanup reports not found")
}

func TestEviction(t *testing.T) {
	f := newFixture(t)
	c := newTestController(f)

	id, err := c.Submit(model.JobRequest{AudioURL: "https://cdn.example.com/ep.mp3"})
	require.NoError(t, err)
	awaitTerminal(t, c, id)

	// Backdate the finish so the retention window has passed.
	c.table.mu.Lock()
	c.table.jobs[id].FinishedAt = time.Now().Add(-2 * time.Hour)
	c.table.mu.Unlock()

	for _, expired := range c.table.Expired(c.retention) {
		c.table.Delete(expired)
		c.bus.Forget(expired)
	}

	_, ok := c.Get(id)
	assert.False(t, ok)
}

func TestAudioExtension(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://cdn.example.com/ep.mp3", ".mp3"},
		{"https://cdn.example.com/ep.MP3?token=abc", ".mp3"},
		{"https://cdn.example.com/ep.m4a", ".m4a"},
		{"https://example.com/episodes/42", ""},
		{"https://example.com/page.html", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, audioExtension(tt.url))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:05:00", formatDuration(300))
	assert.Equal(t, "1:02:10", formatDuration(3730.4))
	assert.Equal(t, "0:00:00", formatDuration(0))
}

var _ Acquirer = (*testutil.FakeAcquirer)(nil)
