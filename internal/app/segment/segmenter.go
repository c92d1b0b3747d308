package segment

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"podscribe/internal/app/audio"
	"podscribe/internal/app/errors"
	"podscribe/internal/app/model"
)

// Provider size contract. A file above MaxUploadBytes cannot be sent in
// one request, so it is split into ChunkSeconds windows that each start
// OverlapSeconds before their nominal boundary. The overlap guarantees
// no word is cut at a boundary; the merge engine removes it again.
const (
	MaxUploadBytes = 25 * 1024 * 1024
	ChunkSeconds   = 600.0
	OverlapSeconds = 10.0
)

// ProgressFunc receives sub-step progress while audio is prepared.
// step is model.StepCompress or model.StepSplit.
type ProgressFunc func(step string, percentage int, message string)

// Segmenter normalizes source audio to the provider size ceiling with
// as few provider calls as possible.
type Segmenter struct {
	transcoder     audio.Transcoder
	maxBytes       int64
	chunkSeconds   float64
	overlapSeconds float64
}

// New returns a Segmenter with the provider contract constants.
func New(transcoder audio.Transcoder) *Segmenter {
	return &Segmenter{
		transcoder:     transcoder,
		maxBytes:       MaxUploadBytes,
		chunkSeconds:   ChunkSeconds,
		overlapSeconds: OverlapSeconds,
	}
}

// Window is one planned slice of the source audio.
type Window struct {
	Index    int
	Start    float64
	Duration float64
	Overlap  float64
}

// Windows plans ceil(duration/chunkSeconds) slices. Window i>0 starts
// overlapSeconds before i*chunkSeconds (clamped to 0) and ends at
// min((i+1)*chunkSeconds, duration), so consecutive windows share
// exactly overlapSeconds of source audio.
func Windows(duration, chunkSeconds, overlapSeconds float64) []Window {
	if duration <= 0 {
		return nil
	}
	n := int(math.Ceil(duration / chunkSeconds))
	windows := make([]Window, 0, n)
	for i := 0; i < n; i++ {
		nominal := float64(i) * chunkSeconds
		start := math.Max(0, nominal-overlapSeconds)
		end := math.Min(nominal+chunkSeconds, duration)
		windows = append(windows, Window{
			Index:    i,
			Start:    start,
			Duration: end - start,
			Overlap:  nominal - start,
		})
	}
	return windows
}

// Prepare turns the downloaded file at src into provider-ready
// segments under workDir and returns them with the source duration in
// seconds.
//
// Policy: a file already under the ceiling gets one normalization pass;
// if compression fails the original is used as-is (never fatal). A file
// still over the ceiling afterwards — or over it to begin with — is
// split, and each window is transcoded independently; any window
// failure is fatal. The caller owns deletion of every returned path.
func (s *Segmenter) Prepare(ctx context.Context, src, workDir string, progress ProgressFunc) ([]model.AudioSegment, float64, error) {
	if progress == nil {
		progress = func(string, int, string) {}
	}

	info, err := os.Stat(src)
	if err != nil {
		return nil, 0, errors.Wrapf(err, errors.KindTranscode, "stat source audio %s", src)
	}
	size := info.Size()

	duration, err := s.transcoder.Duration(ctx, src)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.KindTranscode, "probe source duration")
	}

	workPath := src
	if size <= s.maxBytes {
		progress(model.StepCompress, 0, "compressing audio")
		compressed := filepath.Join(workDir, "normalized.mp3")
		if err := s.transcoder.Compress(ctx, src, compressed); err != nil {
			// Compression is an optimization; fall back to the original.
			os.Remove(compressed)
			progress(model.StepCompress, 100, fmt.Sprintf("compression failed, using original audio: %v", err))
		} else if ci, err := os.Stat(compressed); err == nil {
			workPath = compressed
			size = ci.Size()
			progress(model.StepCompress, 100, fmt.Sprintf("compressed to %.1f MB", float64(size)/(1024*1024)))
		}
	}

	if size <= s.maxBytes {
		return []model.AudioSegment{{
			Index:    0,
			Start:    0,
			Duration: duration,
			Overlap:  0,
			Path:     workPath,
		}}, duration, nil
	}

	windows := Windows(duration, s.chunkSeconds, s.overlapSeconds)
	progress(model.StepSplit, 0, fmt.Sprintf("splitting into %d segments", len(windows)))

	segments := make([]model.AudioSegment, 0, len(windows))
	for _, w := range windows {
		dst := filepath.Join(workDir, fmt.Sprintf("segment_%03d.mp3", w.Index))
		if err := s.transcoder.ExtractSegment(ctx, src, dst, w.Start, w.Duration); err != nil {
			removeAll(segments)
			os.Remove(dst)
			if workPath != src {
				os.Remove(workPath)
			}
			return nil, 0, errors.Wrapf(err, errors.KindTranscode, "transcode segment %d", w.Index)
		}
		segments = append(segments, model.AudioSegment{
			Index:    w.Index,
			Start:    w.Start,
			Duration: w.Duration,
			Overlap:  w.Overlap,
			Path:     dst,
		})
		progress(model.StepSplit, (w.Index+1)*100/len(windows),
			fmt.Sprintf("segment %d/%d ready", w.Index+1, len(windows)))
	}

	// The compressed intermediate is not a segment; it is not needed
	// once the source has been split.
	if workPath != src {
		os.Remove(workPath)
	}

	return segments, duration, nil
}

func removeAll(segments []model.AudioSegment) {
	for _, seg := range segments {
		os.Remove(seg.Path)
	}
}
