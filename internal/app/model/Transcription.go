package model

import "time"

// Transcription is one archived transcript row.
type Transcription struct {
	ID            int
	JobID         string
	PodcastName   string
	EpisodeTitle  string
	AudioDuration int // seconds
	Transcript    string
	Summary       string
	ErrorMessage  string
	CreatedAt     time.Time
}
