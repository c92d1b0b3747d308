package model

import (
	"time"
)

// JobState is a phase of the transcription pipeline. Transitions are
// strictly forward; Complete and Failed are terminal.
type JobState string

const (
	StateCreated          JobState = "created"
	StateMetadataResolved JobState = "metadata_resolved"
	StateFeedResolved     JobState = "feed_resolved"
	StateFeedParsed       JobState = "feed_parsed"
	StateDownloading      JobState = "downloading"
	StateCompressing      JobState = "compressing"
	StateSplitting        JobState = "splitting"
	StateTranscribing     JobState = "transcribing"
	StateMerging          JobState = "merging"
	StateSummarizing      JobState = "summarizing"
	StateComplete         JobState = "complete"
	StateFailed           JobState = "failed"
)

// Terminal reports whether no further transitions may leave the state.
func (s JobState) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// Step names used in the progress snapshot. Every pipeline phase
// reports under exactly one of these; failures report under StepError.
const (
	StepMetadata   = "metadata"
	StepFeed       = "feed"
	StepParse      = "parse"
	StepDownload   = "download"
	StepCompress   = "compress"
	StepSplit      = "split"
	StepTranscribe = "transcribe"
	StepMerge      = "merge"
	StepSummarize  = "summarize"
	StepError      = "error"
)

// JobRequest is the input a job is created from. Either AudioURL is set
// directly, or EpisodeTitle (+ PodcastName or FeedURL) is resolved to
// one by the resolver collaborator.
type JobRequest struct {
	AudioURL     string
	EpisodeTitle string
	PodcastName  string
	FeedURL      string
	DurationHint int // seconds, 0 when unknown
	Summarize    bool
}

// Job is one transcription job. Owned and mutated exclusively by the
// controller goroutine that runs it; readers get copies.
type Job struct {
	ID         string
	Request    JobRequest
	State      JobState
	Result     *Result
	Failure    string
	CreatedAt  time.Time
	FinishedAt time.Time
}

// Result is the terminal output of a successful job. Immutable once
// constructed.
type Result struct {
	EpisodeTitle string `json:"episode_title"`
	PodcastName  string `json:"podcast_name,omitempty"`
	PublishedAt  string `json:"published_at,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Transcript   string `json:"transcript"`
	Summary      string `json:"summary,omitempty"`
}
