package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryKind(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"acquisition", Acquisition("status %d", 404), KindAcquisition},
		{"transcode", Transcode("ffmpeg exit 1"), KindTranscode},
		{"transcription", Transcription("rate limited"), KindTranscription},
		{"merge", Merge("segment %d missing", 2), KindMerge},
		{"resolution", Resolution("no match"), KindResolution},
		{"summarize", Summarize("model unavailable"), KindSummarize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind())
			assert.True(t, IsKind(tt.err, tt.kind))
		})
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := Wrap(cause, KindAcquisition, "download episode")

	require.Error(t, err)
	assert.Equal(t, "download episode: connection reset", err.Error())
	assert.True(t, IsKind(err, KindAcquisition))
	assert.ErrorIs(t, err, cause, "the lowest-level cause must stay reachable")
}

func TestWrapNilIsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, KindTranscode, "anything"))
	assert.NoError(t, Wrapf(nil, KindTranscode, "anything %d", 1))
}

func TestIsKindThroughWrapping(t *testing.T) {
	inner := Transcription("segment 3 rejected")
	outer := fmt.Errorf("pipeline: %w", inner)

	assert.True(t, IsKind(outer, KindTranscription))
	assert.False(t, IsKind(outer, KindMerge))
	assert.False(t, IsKind(stderrors.New("plain"), KindMerge))
	assert.False(t, IsKind(nil, KindMerge))
}
