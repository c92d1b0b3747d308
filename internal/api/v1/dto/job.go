package dto

import (
	"time"
)

// SubmitJobRequest creates a new transcription job. Either audioUrl is
// a direct audio file / episode page, or episodeTitle plus podcastName
// (or a pre-resolved feedUrl) is resolved upstream.
type SubmitJobRequest struct {
	AudioURL     string `json:"audioUrl" binding:"omitempty,url"`
	EpisodeTitle string `json:"episodeTitle"`
	PodcastName  string `json:"podcastName"`
	FeedURL      string `json:"feedUrl" binding:"omitempty,url"`
	DurationHint int    `json:"durationHint" binding:"omitempty,gte=0"`
	Summarize    bool   `json:"summarize"`
}

// SubmitJobResponse carries the identifier for follow-up reads.
type SubmitJobResponse struct {
	JobID string `json:"jobId"`
}

// JobResponse describes a job's lifecycle state.
type JobResponse struct {
	ID         string     `json:"id"`
	State      string     `json:"state"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// StepProgress is the latest progress of one pipeline step.
type StepProgress struct {
	Percentage int       `json:"percentage"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// ProgressResponse is the poll/stream payload: the latest snapshot per
// step plus the terminal marker. Clients stop polling once complete is
// true.
type ProgressResponse struct {
	Steps    map[string]StepProgress `json:"steps"`
	Complete bool                    `json:"complete"`
	Error    string                  `json:"error,omitempty"`
}

// ResultResponse is the terminal output of a completed job.
type ResultResponse struct {
	EpisodeTitle string `json:"episodeTitle"`
	PodcastName  string `json:"podcastName,omitempty"`
	PublishedAt  string `json:"publishedAt,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Transcript   string `json:"transcript"`
	Summary      string `json:"summary,omitempty"`
}

// SuccessResponse represents a successful API response
type SuccessResponse struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
