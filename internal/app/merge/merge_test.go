package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "podscribe/internal/app/errors"
	"podscribe/internal/app/model"
)

func TestOverlapTokens(t *testing.T) {
	tests := []struct {
		name           string
		overlapSeconds float64
		wordsPerSecond float64
		expected       int
	}{
		{"default_contract", 10, 2, 20},
		{"fractional_product_rounds_up", 0.5, 1, 1},
		{"noninteger_product_rounds_up", 1, 1.5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewWithEstimate(tt.overlapSeconds, tt.wordsPerSecond)
			assert.Equal(t, tt.expected, e.OverlapTokens())
		})
	}
}

func TestMerge_SingleSegmentPassesThrough(t *testing.T) {
	e := New()
	text, err := e.Merge([]model.SegmentTranscript{
		{Index: 0, Text: "  the whole episode in one piece  "},
	})
	require.NoError(t, err)
	assert.Equal(t, "the whole episode in one piece", text)
}

func TestMerge_DropsOverlapTokens(t *testing.T) {
	// k = ceil(0.5 * 2) = 1: one leading token dropped per later segment.
	e := NewWithEstimate(0.5, 2)
	require.Equal(t, 1, e.OverlapTokens())

	text, err := e.Merge([]model.SegmentTranscript{
		{Index: 0, Text: "alpha beta gamma"},
		{Index: 1, Text: "gamma delta epsilon"},
	})
	require.NoError(t, err)
	assert.Equal(t, "alpha beta gamma delta epsilon", text)
}

func TestMerge_ShortSegmentFullyConsumedByOverlap(t *testing.T) {
	e := NewWithEstimate(10, 2) // drops 20 tokens

	text, err := e.Merge([]model.SegmentTranscript{
		{Index: 0, Text: "first segment text"},
		{Index: 1, Text: "only three tokens"},
	})
	require.NoError(t, err)
	assert.Equal(t, "first segment text", text,
		"a segment shorter than the overlap estimate contributes nothing")
}

func TestMerge_IndexGapIsError(t *testing.T) {
	e := New()
	tests := []struct {
		name  string
		input []model.SegmentTranscript
	}{
		{"gap", []model.SegmentTranscript{{Index: 0, Text: "a"}, {Index: 2, Text: "b"}}},
		{"out_of_order", []model.SegmentTranscript{{Index: 1, Text: "a"}, {Index: 0, Text: "b"}}},
		{"duplicate", []model.SegmentTranscript{{Index: 0, Text: "a"}, {Index: 0, Text: "b"}}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Merge(tt.input)
			require.Error(t, err)
			assert.True(t, perrors.IsKind(err, perrors.KindMerge))
		})
	}
}

func TestMerge_WhitespaceNormalized(t *testing.T) {
	e := NewWithEstimate(0.5, 2)
	text, err := e.Merge([]model.SegmentTranscript{
		{Index: 0, Text: "one  two\n three"},
		{Index: 1, Text: "three   four"},
	})
	require.NoError(t, err)
	assert.Equal(t, "one  two\n three four", text,
		"the first segment keeps its spacing; later segments are retokenized")
}
