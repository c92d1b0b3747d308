// Package testutil holds hand-rolled fakes for the pipeline's
// collaborator interfaces, so controller and segmenter tests run
// without ffmpeg, the network or an API key.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"

	"podscribe/internal/app/model"
	"podscribe/internal/app/resolver"
	"podscribe/internal/app/store"
)

// FakeTranscoder simulates ffmpeg. Compress and ExtractSegment write
// real files so size checks and deletion behave as in production.
type FakeTranscoder struct {
	mu sync.Mutex

	DurationSecs   float64
	DurationErr    error
	CompressErr    error
	ExtractErr     error
	ExtractErrAt   int // segment index that fails, -1 for none
	CompressedSize int // bytes written by Compress

	ExtractCalls []ExtractCall
}

// ExtractCall records one ExtractSegment invocation.
type ExtractCall struct {
	Start    float64
	Duration float64
	Dst      string
}

// NewFakeTranscoder returns a transcoder for a source of the given
// duration whose compressed output is size bytes.
func NewFakeTranscoder(durationSecs float64, compressedSize int) *FakeTranscoder {
	return &FakeTranscoder{
		DurationSecs:   durationSecs,
		CompressedSize: compressedSize,
		ExtractErrAt:   -1,
	}
}

func (f *FakeTranscoder) Duration(ctx context.Context, path string) (float64, error) {
	if f.DurationErr != nil {
		return 0, f.DurationErr
	}
	return f.DurationSecs, nil
}

func (f *FakeTranscoder) Compress(ctx context.Context, src, dst string) error {
	if f.CompressErr != nil {
		return f.CompressErr
	}
	return os.WriteFile(dst, make([]byte, f.CompressedSize), 0o644)
}

func (f *FakeTranscoder) ExtractSegment(ctx context.Context, src, dst string, start, duration float64) error {
	f.mu.Lock()
	index := len(f.ExtractCalls)
	f.ExtractCalls = append(f.ExtractCalls, ExtractCall{Start: start, Duration: duration, Dst: dst})
	f.mu.Unlock()

	if f.ExtractErr != nil && (f.ExtractErrAt < 0 || f.ExtractErrAt == index) {
		return f.ExtractErr
	}
	return os.WriteFile(dst, []byte("segment"), 0o644)
}

// FakeTranscriber returns canned text per call, in call order.
type FakeTranscriber struct {
	mu sync.Mutex

	Responses []string // cycled when fewer than calls
	Err       error
	ErrAt     int // call index that fails, -1 for none

	Calls []string // paths in call order
}

func NewFakeTranscriber(responses ...string) *FakeTranscriber {
	return &FakeTranscriber{Responses: responses, ErrAt: -1}
}

func (f *FakeTranscriber) Transcript(ctx context.Context, path string) (string, []model.TextUnit, error) {
	f.mu.Lock()
	index := len(f.Calls)
	f.Calls = append(f.Calls, path)
	f.mu.Unlock()

	if f.Err != nil && (f.ErrAt < 0 || f.ErrAt == index) {
		return "", nil, f.Err
	}
	if len(f.Responses) == 0 {
		return fmt.Sprintf("transcript %d", index), nil, nil
	}
	return f.Responses[index%len(f.Responses)], nil, nil
}

// CallPaths returns the paths passed so far, in order.
func (f *FakeTranscriber) CallPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	copy(out, f.Calls)
	return out
}

// FakeSummarizer returns a fixed summary.
type FakeSummarizer struct {
	Summary string
	Err     error
	Called  bool
}

func (f *FakeSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	f.Called = true
	if f.Err != nil {
		return "", f.Err
	}
	return f.Summary, nil
}

// FakeResolver returns canned resolution results.
type FakeResolver struct {
	FeedURL    string
	FeedErr    error
	Episode    *resolver.Episode
	EpisodeErr error
	PageErr    error
}

func (f *FakeResolver) ResolveFeed(ctx context.Context, podcastName string) (string, error) {
	if f.FeedErr != nil {
		return "", f.FeedErr
	}
	return f.FeedURL, nil
}

func (f *FakeResolver) ResolveEpisode(ctx context.Context, feedURL, episodeTitle string, durationHint int) (*resolver.Episode, error) {
	if f.EpisodeErr != nil {
		return nil, f.EpisodeErr
	}
	return f.Episode, nil
}

func (f *FakeResolver) ResolvePage(ctx context.Context, pageURL string) (*resolver.Episode, error) {
	if f.PageErr != nil {
		return nil, f.PageErr
	}
	return f.Episode, nil
}

// FakeAcquirer writes Payload to dst instead of downloading.
type FakeAcquirer struct {
	Payload []byte
	Err     error
}

func (f *FakeAcquirer) Fetch(ctx context.Context, url, dst string, progress store.ProgressFunc) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	if err := os.WriteFile(dst, f.Payload, 0o644); err != nil {
		return "", err
	}
	if progress != nil {
		progress(int64(len(f.Payload)), int64(len(f.Payload)))
	}
	return dst, nil
}

// FakeDAO records archive writes in memory.
type FakeDAO struct {
	mu       sync.Mutex
	Rows     []model.Transcription
	WriteErr error
}

func (f *FakeDAO) Close() error { return nil }

func (f *FakeDAO) Record(t model.Transcription) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Rows = append(f.Rows, t)
	return nil
}

func (f *FakeDAO) GetAll(limit int) ([]model.Transcription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Transcription, len(f.Rows))
	copy(out, f.Rows)
	return out, nil
}

func (f *FakeDAO) GetByJobID(jobID string) (*model.Transcription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Rows {
		if f.Rows[i].JobID == jobID {
			row := f.Rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

// Recorded returns a copy of the archived rows.
func (f *FakeDAO) Recorded() []model.Transcription {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Transcription, len(f.Rows))
	copy(out, f.Rows)
	return out
}
