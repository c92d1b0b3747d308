package api

import (
	"context"

	"podscribe/internal/app/model"
)

// Transcriber converts one audio file to text. One call per segment;
// retry policy lives with the caller.
type Transcriber interface {
	Transcript(ctx context.Context, inputFilePath string) (string, []model.TextUnit, error)
}

// Summarizer produces a short summary of a transcript. Failures are
// non-fatal to the job that requested the summary.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}
