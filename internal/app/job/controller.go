package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"podscribe/internal/app/api"
	"podscribe/internal/app/audio"
	"podscribe/internal/app/merge"
	"podscribe/internal/app/metrics"
	"podscribe/internal/app/model"
	"podscribe/internal/app/progress"
	"podscribe/internal/app/repository"
	"podscribe/internal/app/resolver"
	"podscribe/internal/app/segment"
	"podscribe/internal/app/store"
)

// Acquirer downloads remote audio into scratch storage.
type Acquirer interface {
	Fetch(ctx context.Context, url, dst string, progress store.ProgressFunc) (string, error)
}

// Timeouts for the external-call wrappers. They surface as ordinary
// step failures, not a separate cancellation path.
const (
	transcodeTimeout  = 30 * time.Minute
	transcribeTimeout = 15 * time.Minute
	resolveTimeout    = 2 * time.Minute
	summarizeTimeout  = 5 * time.Minute
	evictionInterval  = time.Minute
	defaultRetention  = time.Hour
	downloadMilestone = int64(5 * 1024 * 1024)
)

// Options configures a Controller.
type Options struct {
	ScratchDir string
	Retention  time.Duration
}

// Controller owns the in-memory job table and drives each job through
// the pipeline: resolve → download → compress/split → transcribe per
// segment in order → merge → optional summary. Jobs are mutated only
// by their own goroutine through the controller's lock; readers get
// copies. Terminal jobs are evicted after the retention window.
type Controller struct {
	bus         *progress.Bus
	acquirer    Acquirer
	segmenter   *segment.Segmenter
	merger      *merge.Engine
	transcriber api.Transcriber
	summarizer  api.Summarizer
	resolver    resolver.Resolver
	archive     repository.TranscriptionDAO
	logger      *zap.Logger

	scratchDir string
	retention  time.Duration

	table *Table
	stop  chan struct{}
}

// NewController assembles a controller. summarizer, resolver and
// archive may be nil; the corresponding features degrade gracefully.
func NewController(
	bus *progress.Bus,
	acquirer Acquirer,
	segmenter *segment.Segmenter,
	merger *merge.Engine,
	transcriber api.Transcriber,
	summarizer api.Summarizer,
	res resolver.Resolver,
	archive repository.TranscriptionDAO,
	logger *zap.Logger,
	opts Options,
) *Controller {
	if opts.ScratchDir == "" {
		opts.ScratchDir = filepath.Join(os.TempDir(), "podscribe")
	}
	if opts.Retention <= 0 {
		opts.Retention = defaultRetention
	}
	return &Controller{
		bus:         bus,
		acquirer:    acquirer,
		segmenter:   segmenter,
		merger:      merger,
		transcriber: transcriber,
		summarizer:  summarizer,
		resolver:    res,
		archive:     archive,
		logger:      logger,
		scratchDir:  opts.ScratchDir,
		retention:   opts.Retention,
		table:       NewTable(),
		stop:        make(chan struct{}),
	}
}

// Start launches the eviction loop.
func (c *Controller) Start() {
	go c.evictLoop()
}

// Stop halts the eviction loop. Running jobs finish on their own.
func (c *Controller) Stop() {
	close(c.stop)
}

// Bus exposes the progress bus for read paths.
func (c *Controller) Bus() *progress.Bus {
	return c.bus
}

// Submit validates the request, inserts a new job and starts its
// pipeline asynchronously. The job id is returned immediately.
func (c *Controller) Submit(req model.JobRequest) (string, error) {
	if req.AudioURL == "" {
		if req.EpisodeTitle == "" {
			return "", fmt.Errorf("either an audio URL or an episode title is required")
		}
		if req.PodcastName == "" && req.FeedURL == "" {
			return "", fmt.Errorf("episode resolution needs a podcast name or a feed URL")
		}
		if c.resolver == nil {
			return "", fmt.Errorf("episode resolution is not configured; submit a direct audio URL")
		}
	} else if !hasAudioExtension(req.AudioURL) && c.resolver == nil {
		// A URL without an audio extension is an episode page, which
		// needs the resolver to scrape.
		return "", fmt.Errorf("episode page resolution is not configured; submit a direct audio file URL")
	}

	job := &model.Job{
		ID:        uuid.New().String(),
		Request:   req,
		State:     model.StateCreated,
		CreatedAt: time.Now(),
	}
	c.table.Put(job)
	metrics.JobsSubmitted.Inc()

	go c.run(job.ID)
	return job.ID, nil
}

// Get returns a copy of the job, if present.
func (c *Controller) Get(id string) (model.Job, bool) {
	return c.table.Get(id)
}

// Cleanup evicts a terminal job explicitly, typically after the caller
// has fetched the result. Running jobs cannot be removed.
func (c *Controller) Cleanup(id string) error {
	job, ok := c.table.Get(id)
	if !ok {
		return fmt.Errorf("job not found: %s", id)
	}
	if !job.State.Terminal() {
		return fmt.Errorf("job %s is still running", id)
	}
	c.table.Delete(id)
	c.bus.Forget(id)
	return nil
}

func (c *Controller) evictLoop() {
	ticker := time.NewTicker(evictionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			for _, id := range c.table.Expired(c.retention) {
				c.table.Delete(id)
				c.bus.Forget(id)
				c.logger.Debug("evicted terminal job", zap.String("job_id", id))
			}
		case <-c.stop:
			return
		}
	}
}

// run drives one job to a terminal state. Every scratch file the job
// created is gone by the time this returns, success or failure.
func (c *Controller) run(id string) {
	metrics.ActiveJobs.Inc()
	defer metrics.ActiveJobs.Dec()

	job, ok := c.table.Get(id)
	if !ok {
		return
	}
	req := job.Request
	ctx := context.Background()

	workDir := filepath.Join(c.scratchDir, id)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		c.fail(id, model.StepDownload, fmt.Errorf("create scratch directory: %w", err))
		return
	}
	// Backstop for the per-file deletes below.
	defer os.RemoveAll(workDir)

	episode, ok := c.resolve(id, req)
	if !ok {
		return
	}

	srcPath, ok := c.download(ctx, id, episode.AudioURL, workDir)
	if !ok {
		return
	}

	segments, duration, ok := c.prepare(ctx, id, srcPath, workDir)
	if !ok {
		return
	}
	metrics.SegmentsPerJob.Observe(float64(len(segments)))

	transcripts, ok := c.transcribe(ctx, id, segments)
	if !ok {
		return
	}

	c.table.SetState(id, model.StateMerging)
	text, err := c.merger.Merge(transcripts)
	if err != nil {
		c.fail(id, model.StepMerge, err)
		return
	}
	c.bus.Publish(id, model.StepMerge, 100, fmt.Sprintf("merged %d segments", len(transcripts)))

	summary := c.summarize(ctx, id, req, text)

	result := &model.Result{
		EpisodeTitle: episode.Title,
		PodcastName:  episode.PodcastName,
		PublishedAt:  episode.PublishedAt,
		Duration:     formatDuration(duration),
		Transcript:   text,
		Summary:      summary,
	}
	c.table.Finish(id, result)
	c.bus.Complete(id)
	metrics.JobsCompleted.Inc()
	c.logger.Info("job complete",
		zap.String("job_id", id),
		zap.Int("segments", len(segments)),
		zap.Int("transcript_chars", len(text)))

	c.record(id, episode, duration, text, summary, "")
}

// resolve turns the request into an episode with a playable audio URL,
// walking the MetadataResolved/FeedResolved/FeedParsed states. Inputs
// that are already resolved pass the steps trivially.
func (c *Controller) resolve(id string, req model.JobRequest) (*resolver.Episode, bool) {
	if req.AudioURL != "" && hasAudioExtension(req.AudioURL) {
		c.table.SetState(id, model.StateMetadataResolved)
		c.bus.Publish(id, model.StepMetadata, 100, "audio URL provided")
		c.table.SetState(id, model.StateFeedResolved)
		c.bus.Publish(id, model.StepFeed, 100, "feed lookup not needed")
		c.table.SetState(id, model.StateFeedParsed)
		c.bus.Publish(id, model.StepParse, 100, "episode metadata provided")
		return &resolver.Episode{
			Title:       req.EpisodeTitle,
			PodcastName: req.PodcastName,
			AudioURL:    req.AudioURL,
			Duration:    req.DurationHint,
		}, true
	}

	rctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	if req.AudioURL != "" {
		// An episode page rather than a direct file; scrape it.
		c.bus.Publish(id, model.StepMetadata, 0, "reading episode page")
		episode, err := c.resolver.ResolvePage(rctx, req.AudioURL)
		if err != nil {
			c.fail(id, model.StepMetadata, err)
			return nil, false
		}
		if episode.Title == "" {
			episode.Title = req.EpisodeTitle
		}
		c.table.SetState(id, model.StateMetadataResolved)
		c.bus.Publish(id, model.StepMetadata, 100, "episode page resolved")
		c.table.SetState(id, model.StateFeedResolved)
		c.bus.Publish(id, model.StepFeed, 100, "feed lookup not needed")
		c.table.SetState(id, model.StateFeedParsed)
		c.bus.Publish(id, model.StepParse, 100, "audio URL extracted from page")
		return episode, true
	}

	c.bus.Publish(id, model.StepMetadata, 0, fmt.Sprintf("looking up podcast %q", req.PodcastName))
	feedURL := req.FeedURL
	if feedURL == "" {
		resolved, err := c.resolver.ResolveFeed(rctx, req.PodcastName)
		if err != nil {
			c.fail(id, model.StepMetadata, err)
			return nil, false
		}
		feedURL = resolved
	}
	c.table.SetState(id, model.StateMetadataResolved)
	c.bus.Publish(id, model.StepMetadata, 100, "podcast located")
	c.table.SetState(id, model.StateFeedResolved)
	c.bus.Publish(id, model.StepFeed, 100, "feed resolved")

	episode, err := c.resolver.ResolveEpisode(rctx, feedURL, req.EpisodeTitle, req.DurationHint)
	if err != nil {
		c.fail(id, model.StepParse, err)
		return nil, false
	}
	if episode.PodcastName == "" {
		episode.PodcastName = req.PodcastName
	}
	c.table.SetState(id, model.StateFeedParsed)
	c.bus.Publish(id, model.StepParse, 100, fmt.Sprintf("matched episode %q", episode.Title))
	return episode, true
}

func (c *Controller) download(ctx context.Context, id, audioURL, workDir string) (string, bool) {
	c.table.SetState(id, model.StateDownloading)
	c.bus.Publish(id, model.StepDownload, 0, "downloading audio")

	var lastMilestone int64
	ext := audioExtension(audioURL)
	if ext == "" {
		// The provider infers the codec from the file name.
		ext = ".mp3"
	}
	dst := filepath.Join(workDir, "source"+ext)
	path, err := c.acquirer.Fetch(ctx, audioURL, dst, func(downloaded, total int64) {
		if total > 0 {
			pct := int(downloaded * 100 / total)
			if pct > 99 {
				pct = 99
			}
			c.bus.Publish(id, model.StepDownload, pct,
				fmt.Sprintf("downloaded %.1f / %.1f MB", mb(downloaded), mb(total)))
			return
		}
		// Unknown length: coarse milestones only.
		if downloaded-lastMilestone >= downloadMilestone {
			lastMilestone = downloaded
			c.bus.Publish(id, model.StepDownload, 0, fmt.Sprintf("downloaded %.1f MB", mb(downloaded)))
		}
	})
	if err != nil {
		c.fail(id, model.StepDownload, err)
		return "", false
	}
	c.bus.Publish(id, model.StepDownload, 100, "download complete")
	return path, true
}

func (c *Controller) prepare(ctx context.Context, id, srcPath, workDir string) ([]model.AudioSegment, float64, bool) {
	tctx, cancel := context.WithTimeout(ctx, transcodeTimeout)
	defer cancel()

	c.table.SetState(id, model.StateCompressing)
	segments, duration, err := c.segmenter.Prepare(tctx, srcPath, workDir, func(step string, pct int, msg string) {
		if step == model.StepSplit {
			c.table.SetState(id, model.StateSplitting)
		}
		c.bus.Publish(id, step, pct, msg)
	})
	if err != nil {
		c.fail(id, model.StepSplit, err)
		return nil, 0, false
	}
	return segments, duration, true
}

// transcribe runs the provider calls sequentially in index order. The
// next segment is only requested once the previous result is known;
// this is deliberate pacing against the provider's rate ceiling. Each
// segment file is deleted as soon as its call returns, success or
// failure.
func (c *Controller) transcribe(ctx context.Context, id string, segments []model.AudioSegment) ([]model.SegmentTranscript, bool) {
	c.table.SetState(id, model.StateTranscribing)

	transcripts := make([]model.SegmentTranscript, 0, len(segments))
	for i, seg := range segments {
		c.bus.Publish(id, model.StepTranscribe, i*100/len(segments),
			fmt.Sprintf("transcribing segment %d/%d", i+1, len(segments)))

		tctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
		start := time.Now()
		text, units, err := c.transcriber.Transcript(tctx, seg.Path)
		cancel()
		metrics.ProviderCallSeconds.Observe(time.Since(start).Seconds())

		os.Remove(seg.Path)
		if err != nil {
			removeSegments(segments[i+1:])
			c.fail(id, model.StepTranscribe, err)
			return nil, false
		}
		transcripts = append(transcripts, model.SegmentTranscript{
			Index: seg.Index,
			Text:  text,
			Units: units,
		})
	}

	c.bus.Publish(id, model.StepTranscribe, 100,
		fmt.Sprintf("transcribed %d segments", len(segments)))
	return transcripts, true
}

// summarize is best-effort: failure leaves the summary empty with the
// cause recorded in the step message, never failing the job.
func (c *Controller) summarize(ctx context.Context, id string, req model.JobRequest, transcript string) string {
	if !req.Summarize || c.summarizer == nil {
		return ""
	}
	c.table.SetState(id, model.StateSummarizing)
	c.bus.Publish(id, model.StepSummarize, 0, "summarizing transcript")

	sctx, cancel := context.WithTimeout(ctx, summarizeTimeout)
	defer cancel()

	summary, err := c.summarizer.Summarize(sctx, transcript)
	if err != nil {
		c.logger.Warn("summarization failed", zap.String("job_id", id), zap.Error(err))
		c.bus.Publish(id, model.StepSummarize, 100, fmt.Sprintf("summarization failed: %v", err))
		return ""
	}
	c.bus.Publish(id, model.StepSummarize, 100, "summary ready")
	return summary
}

// fail records the terminal failure: the step's error message is the
// lowest-level one available, the snapshot turns complete, and no
// further step runs.
func (c *Controller) fail(id, step string, err error) {
	msg := err.Error()
	c.table.Fail(id, msg)
	c.bus.Publish(id, model.StepError, 100, msg)
	c.bus.Fail(id, msg)
	metrics.JobsFailed.WithLabelValues(step).Inc()
	c.logger.Warn("job failed",
		zap.String("job_id", id),
		zap.String("step", step),
		zap.String("error", msg))

	if job, ok := c.table.Get(id); ok {
		c.record(id, &resolver.Episode{
			Title:       job.Request.EpisodeTitle,
			PodcastName: job.Request.PodcastName,
		}, 0, "", "", msg)
	}
}

// record archives the outcome. Best-effort: a failed insert is logged,
// never propagated.
func (c *Controller) record(id string, episode *resolver.Episode, duration float64, transcript, summary, errMsg string) {
	if c.archive == nil {
		return
	}
	err := c.archive.Record(model.Transcription{
		JobID:         id,
		PodcastName:   episode.PodcastName,
		EpisodeTitle:  episode.Title,
		AudioDuration: audio.RoundSeconds(duration),
		Transcript:    transcript,
		Summary:       summary,
		ErrorMessage:  errMsg,
	})
	if err != nil {
		c.logger.Warn("archive write failed", zap.String("job_id", id), zap.Error(err))
	}
}

func removeSegments(segments []model.AudioSegment) {
	for _, seg := range segments {
		os.Remove(seg.Path)
	}
}

var audioExtensions = []string{".mp3", ".m4a", ".wav", ".ogg", ".flac", ".aac"}

func hasAudioExtension(rawURL string) bool {
	return audioExtension(rawURL) != ""
}

// audioExtension returns the audio file extension of a URL, ignoring
// any query string.
func audioExtension(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		rawURL = rawURL[:i]
	}
	lower := strings.ToLower(rawURL)
	for _, ext := range audioExtensions {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

func mb(n int64) float64 {
	return float64(n) / (1024 * 1024)
}

// formatDuration renders seconds as H:MM:SS for display.
func formatDuration(seconds float64) string {
	total := audio.RoundSeconds(seconds)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
