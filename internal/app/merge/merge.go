package merge

import (
	"math"
	"strings"

	"podscribe/internal/app/errors"
	"podscribe/internal/app/model"
	"podscribe/internal/app/segment"
)

// WordsPerSecondEstimate sizes the overlap removal heuristic: the
// first ceil(overlap * estimate) whitespace tokens of every segment
// after the first are assumed to repeat the previous segment's tail.
// This is an approximation, not a text alignment; exact boundary cuts
// would require acoustic or semantic matching.
const WordsPerSecondEstimate = 2.0

// Engine combines ordered per-segment transcripts into one text.
type Engine struct {
	overlapSeconds float64
	wordsPerSecond float64
}

// New returns an Engine using the segmenter's overlap window.
func New() *Engine {
	return NewWithEstimate(segment.OverlapSeconds, WordsPerSecondEstimate)
}

// NewWithEstimate returns an Engine with explicit heuristic inputs.
func NewWithEstimate(overlapSeconds, wordsPerSecond float64) *Engine {
	return &Engine{overlapSeconds: overlapSeconds, wordsPerSecond: wordsPerSecond}
}

// OverlapTokens is the number of leading tokens dropped from each
// segment after the first.
func (e *Engine) OverlapTokens() int {
	return int(math.Ceil(e.overlapSeconds * e.wordsPerSecond))
}

// Merge returns the combined transcript. The input must be the
// contiguous index range 0..N-1 in order; a gap or duplicate is a
// MergeError, never a silent skip.
func (e *Engine) Merge(transcripts []model.SegmentTranscript) (string, error) {
	if len(transcripts) == 0 {
		return "", errors.Merge("no segment transcripts to merge")
	}
	for i, t := range transcripts {
		if t.Index != i {
			return "", errors.Merge("segment index %d missing: got index %d at position %d", i, t.Index, i)
		}
	}

	if len(transcripts) == 1 {
		return strings.TrimSpace(transcripts[0].Text), nil
	}

	drop := e.OverlapTokens()
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(transcripts[0].Text))

	for _, t := range transcripts[1:] {
		tokens := strings.Fields(t.Text)
		if len(tokens) <= drop {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.Join(tokens[drop:], " "))
	}

	return strings.TrimSpace(sb.String()), nil
}
