package services

import (
	"fmt"

	"github.com/samber/lo"

	"podscribe/internal/api/v1/dto"
	"podscribe/internal/app/job"
	"podscribe/internal/app/model"
	"podscribe/internal/app/progress"
)

// JobService defines the interface for transcription job operations
type JobService interface {
	Submit(req *dto.SubmitJobRequest) (*dto.SubmitJobResponse, error)
	Get(jobID string) (*dto.JobResponse, error)
	Progress(jobID string) (*dto.ProgressResponse, error)
	Result(jobID string) (*dto.ResultResponse, model.JobState, error)
	Cleanup(jobID string) error
}

// JobServiceImpl bridges the HTTP layer and the job controller.
type JobServiceImpl struct {
	controller *job.Controller
}

// NewJobService creates a new job service
func NewJobService(controller *job.Controller) *JobServiceImpl {
	return &JobServiceImpl{controller: controller}
}

// Submit starts a new job and returns its id synchronously.
func (s *JobServiceImpl) Submit(req *dto.SubmitJobRequest) (*dto.SubmitJobResponse, error) {
	id, err := s.controller.Submit(model.JobRequest{
		AudioURL:     req.AudioURL,
		EpisodeTitle: req.EpisodeTitle,
		PodcastName:  req.PodcastName,
		FeedURL:      req.FeedURL,
		DurationHint: req.DurationHint,
		Summarize:    req.Summarize,
	})
	if err != nil {
		return nil, err
	}
	return &dto.SubmitJobResponse{JobID: id}, nil
}

// Get returns the job's lifecycle view.
func (s *JobServiceImpl) Get(jobID string) (*dto.JobResponse, error) {
	j, ok := s.controller.Get(jobID)
	if !ok {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	resp := &dto.JobResponse{
		ID:        j.ID,
		State:     string(j.State),
		Error:     j.Failure,
		CreatedAt: j.CreatedAt,
	}
	if !j.FinishedAt.IsZero() {
		finished := j.FinishedAt
		resp.FinishedAt = &finished
	}
	return resp, nil
}

// Progress returns the latest per-step snapshot.
func (s *JobServiceImpl) Progress(jobID string) (*dto.ProgressResponse, error) {
	snap, ok := s.controller.Bus().Snapshot(jobID)
	if !ok {
		// The job may exist but not have published yet.
		if _, exists := s.controller.Get(jobID); !exists {
			return nil, fmt.Errorf("job not found: %s", jobID)
		}
		snap = progress.Snapshot{Steps: map[string]progress.Entry{}}
	}
	return &dto.ProgressResponse{
		Steps: lo.MapValues(snap.Steps, func(e progress.Entry, _ string) dto.StepProgress {
			return dto.StepProgress{
				Percentage: e.Percentage,
				Message:    e.Message,
				Timestamp:  e.Timestamp,
			}
		}),
		Complete: snap.Complete,
		Error:    snap.Error,
	}, nil
}

// Result returns the terminal result. The returned state lets the
// handler distinguish "still processing" from "failed".
func (s *JobServiceImpl) Result(jobID string) (*dto.ResultResponse, model.JobState, error) {
	j, ok := s.controller.Get(jobID)
	if !ok {
		return nil, "", fmt.Errorf("job not found: %s", jobID)
	}
	if j.State != model.StateComplete || j.Result == nil {
		return nil, j.State, nil
	}
	r := j.Result
	return &dto.ResultResponse{
		EpisodeTitle: r.EpisodeTitle,
		PodcastName:  r.PodcastName,
		PublishedAt:  r.PublishedAt,
		Duration:     r.Duration,
		Transcript:   r.Transcript,
		Summary:      r.Summary,
	}, j.State, nil
}

// Cleanup evicts a terminal job.
func (s *JobServiceImpl) Cleanup(jobID string) error {
	return s.controller.Cleanup(jobID)
}
