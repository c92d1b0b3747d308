package whisper

import (
	"context"

	"github.com/sashabaranov/go-openai"

	perrors "podscribe/internal/app/errors"
	"podscribe/internal/app/model"
)

// RemoteTranscriber sends one audio segment per call to the OpenAI
// transcription API.
type RemoteTranscriber struct {
	client *openai.Client
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(client *openai.Client) *RemoteTranscriber {
	return &RemoteTranscriber{client: client}
}

// Transcript transcribes inputFilePath and returns the text plus the
// provider's time-aligned segments when available. No internal retry;
// rate-limit responses surface as TranscriptionError like any other
// provider failure.
func (rt *RemoteTranscriber) Transcript(ctx context.Context, inputFilePath string) (string, []model.TextUnit, error) {
	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: inputFilePath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", nil, perrors.Wrap(err, perrors.KindTranscription, "createTranscription failed")
	}

	units := make([]model.TextUnit, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		units = append(units, model.TextUnit{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}

	return resp.Text, units, nil
}
