package audio

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Normalized audio profile every file sent to the provider is encoded
// with. These values are part of the provider contract; changing them
// changes the size math in the segmenter.
const (
	SampleRate = 16000
	Channels   = 1
	Bitrate    = "32k"
)

// Transcoder abstracts the local audio tool so the segmenter and the
// controller can be exercised without ffmpeg installed.
type Transcoder interface {
	Duration(ctx context.Context, path string) (float64, error)
	Compress(ctx context.Context, src, dst string) error
	ExtractSegment(ctx context.Context, src, dst string, start, duration float64) error
}

// FFmpeg shells out to ffmpeg/ffprobe on PATH.
type FFmpeg struct{}

// NewFFmpeg returns a Transcoder backed by the ffmpeg and ffprobe
// binaries.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{}
}

// Available reports whether ffmpeg can be found on PATH.
func (f *FFmpeg) Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// Duration returns the audio duration in seconds via ffprobe.
func (f *FFmpeg) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration: %w", err)
	}
	return duration, nil
}

// Compress re-encodes src to the normalized profile at dst.
func (f *FFmpeg) Compress(ctx context.Context, src, dst string) error {
	return f.run(ctx, compressArgs(src, dst))
}

// ExtractSegment cuts [start, start+duration) out of src and encodes it
// to the normalized profile at dst.
func (f *FFmpeg) ExtractSegment(ctx context.Context, src, dst string, start, duration float64) error {
	return f.run(ctx, segmentArgs(src, dst, start, duration))
}

func (f *FFmpeg) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg error: %v, stderr: %s", err, lastLine(stderr.String()))
	}
	return nil
}

// compressArgs builds the single-pass normalization command.
func compressArgs(src, dst string) []string {
	return []string{
		"-y",
		"-i", src,
		"-vn",
		"-ac", strconv.Itoa(Channels),
		"-ar", strconv.Itoa(SampleRate),
		"-b:a", Bitrate,
		dst,
	}
}

// segmentArgs builds the cut-and-normalize command for one segment.
// -ss before -i seeks on the demuxer, which is fast and accurate enough
// for 10s overlap windows.
func segmentArgs(src, dst string, start, duration float64) []string {
	return []string{
		"-y",
		"-ss", formatSeconds(start),
		"-i", src,
		"-t", formatSeconds(duration),
		"-vn",
		"-ac", strconv.Itoa(Channels),
		"-ar", strconv.Itoa(SampleRate),
		"-b:a", Bitrate,
		dst,
	}
}

// formatSeconds renders seconds as HH:MM:SS.mmm for ffmpeg.
func formatSeconds(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// RoundSeconds converts a fractional duration to whole seconds the way
// display labels expect.
func RoundSeconds(seconds float64) int {
	return int(math.Round(seconds))
}
