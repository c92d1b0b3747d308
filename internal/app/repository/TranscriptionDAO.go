package repository

import (
	"podscribe/internal/app/model"
)

// TranscriptionDAO archives finished jobs. Writes are best-effort from
// the pipeline's point of view: an insert failure is logged by the
// caller, never propagated as a job failure.
type TranscriptionDAO interface {
	Close() error

	Record(t model.Transcription) error

	GetAll(limit int) ([]model.Transcription, error)

	GetByJobID(jobID string) (*model.Transcription, error)
}
