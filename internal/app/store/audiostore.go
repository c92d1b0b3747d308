package store

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"podscribe/internal/app/errors"
)

// ProgressFunc receives byte-level download progress. total is -1 when
// the server does not declare a content length.
type ProgressFunc func(downloaded, total int64)

// AudioStore streams remote audio into local scratch storage. The
// caller owns deletion of the file it creates.
type AudioStore struct {
	client *http.Client
}

// New returns an AudioStore with a bounded request timeout. Podcast
// episodes run to a few hundred MB, so the timeout is generous.
func New() *AudioStore {
	return &AudioStore{
		client: &http.Client{Timeout: 30 * time.Minute},
	}
}

// NewWithClient is used by tests to inject a client.
func NewWithClient(client *http.Client) *AudioStore {
	return &AudioStore{client: client}
}

// Fetch downloads url into dst, reporting progress proportional to the
// declared content length. Fails on network errors, non-2xx responses
// and zero-length bodies.
func (s *AudioStore) Fetch(ctx context.Context, url, dst string, progress ProgressFunc) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrapf(err, errors.KindAcquisition, "build request for %s", url)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, errors.KindAcquisition, "download %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Acquisition("download %s: unexpected status %s", url, resp.Status)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", errors.Wrapf(err, errors.KindAcquisition, "create scratch file %s", dst)
	}
	defer out.Close()

	total := resp.ContentLength // -1 when unknown
	written, err := io.Copy(out, &progressReader{
		reader:   resp.Body,
		total:    total,
		progress: progress,
	})
	if err != nil {
		os.Remove(dst)
		return "", errors.Wrapf(err, errors.KindAcquisition, "stream %s", url)
	}
	if written == 0 {
		os.Remove(dst)
		return "", errors.Acquisition("download %s: empty response body", url)
	}

	if progress != nil {
		progress(written, written)
	}
	return dst, nil
}

// progressReader invokes the callback as bytes flow through. With an
// unknown total the callback still fires so callers can show coarse
// milestones.
type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	progress   ProgressFunc
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.downloaded += int64(n)
		if r.progress != nil {
			r.progress(r.downloaded, r.total)
		}
	}
	return n, err
}
