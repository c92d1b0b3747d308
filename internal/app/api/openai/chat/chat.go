package chat

import (
	"context"

	"github.com/sashabaranov/go-openai"

	perrors "podscribe/internal/app/errors"
)

const summaryPrompt = "Summarize the following podcast transcript in a few short paragraphs. " +
	"Keep the speaker's key claims and any concrete numbers or names. Transcript:\n\n"

// Transcripts beyond this length are truncated before summarization to
// stay inside the model context window.
const maxPromptChars = 100000

// Summarizer produces transcript summaries through the chat
// completion API.
type Summarizer struct {
	client *openai.Client
	model  string
}

// NewSummarizer creates a Summarizer using the shared client.
func NewSummarizer(client *openai.Client) *Summarizer {
	return &Summarizer{client: client, model: openai.GPT4oMini}
}

// Summarize returns a short summary of transcript.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	if len(transcript) > maxPromptChars {
		transcript = transcript[:maxPromptChars]
	}

	request := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: summaryPrompt + transcript,
			},
		},
		Temperature: 0.3,
	}
	resp, err := s.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", perrors.Wrap(err, perrors.KindSummarize, "createChatCompletion failed")
	}
	if len(resp.Choices) == 0 {
		return "", perrors.Summarize("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
