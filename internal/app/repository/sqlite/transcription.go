package sqlite

import (
	"database/sql"
	"fmt"

	"podscribe/internal/app/model"
)

// SQLiteDAO is the SQLite-backed transcript archive.
type SQLiteDAO struct {
	db *sql.DB
}

// New opens the archive at dbPath.
func New(dbPath string) (*SQLiteDAO, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &SQLiteDAO{db: db}, nil
}

// NewFromDB wraps an existing connection; used by tests.
func NewFromDB(db *sql.DB) *SQLiteDAO {
	return &SQLiteDAO{db: db}
}

func (d *SQLiteDAO) Close() error {
	return d.db.Close()
}

// Record inserts one archived transcription.
func (d *SQLiteDAO) Record(t model.Transcription) error {
	_, err := d.db.Exec(
		`INSERT INTO transcriptions
		 (job_id, podcast_name, episode_title, audio_duration, transcript, summary, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.JobID, t.PodcastName, t.EpisodeTitle, t.AudioDuration, t.Transcript, t.Summary, t.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("insert transcription for job %s: %w", t.JobID, err)
	}
	return nil
}

// GetAll returns the most recent transcriptions, newest first.
func (d *SQLiteDAO) GetAll(limit int) ([]model.Transcription, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.db.Query(
		`SELECT id, job_id, podcast_name, episode_title, audio_duration, transcript, summary, error_message, created_at
		 FROM transcriptions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcriptions: %w", err)
	}
	defer rows.Close()

	var out []model.Transcription
	for rows.Next() {
		var t model.Transcription
		if err := rows.Scan(&t.ID, &t.JobID, &t.PodcastName, &t.EpisodeTitle,
			&t.AudioDuration, &t.Transcript, &t.Summary, &t.ErrorMessage, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transcription row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByJobID returns the archived transcription for one job, or nil
// when none exists.
func (d *SQLiteDAO) GetByJobID(jobID string) (*model.Transcription, error) {
	var t model.Transcription
	err := d.db.QueryRow(
		`SELECT id, job_id, podcast_name, episode_title, audio_duration, transcript, summary, error_message, created_at
		 FROM transcriptions WHERE job_id = ?`, jobID).
		Scan(&t.ID, &t.JobID, &t.PodcastName, &t.EpisodeTitle,
			&t.AudioDuration, &t.Transcript, &t.Summary, &t.ErrorMessage, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query transcription for job %s: %w", jobID, err)
	}
	return &t, nil
}
