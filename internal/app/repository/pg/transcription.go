package pg

import (
	"database/sql"
	"fmt"

	"podscribe/internal/app/model"
)

// PostgresDAO is the Postgres-backed transcript archive.
type PostgresDAO struct {
	db *sql.DB
}

// New connects to the archive with a lib/pq DSN.
func New(dsn string) (*PostgresDAO, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresDAO{db: db}, nil
}

// NewFromDB wraps an existing connection; used by tests.
func NewFromDB(db *sql.DB) *PostgresDAO {
	return &PostgresDAO{db: db}
}

func (d *PostgresDAO) Close() error {
	return d.db.Close()
}

// Record inserts one archived transcription.
func (d *PostgresDAO) Record(t model.Transcription) error {
	_, err := d.db.Exec(
		`INSERT INTO transcriptions
		 (job_id, podcast_name, episode_title, audio_duration, transcript, summary, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.JobID, t.PodcastName, t.EpisodeTitle, t.AudioDuration, t.Transcript, t.Summary, t.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("insert transcription for job %s: %w", t.JobID, err)
	}
	return nil
}

// GetAll returns the most recent transcriptions, newest first.
func (d *PostgresDAO) GetAll(limit int) ([]model.Transcription, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.db.Query(
		`SELECT id, job_id, podcast_name, episode_title, audio_duration, transcript, summary, error_message, created_at
		 FROM transcriptions ORDER BY id DESC LIMIT $1`, limit)
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
func (d *PostgresDAO) GetByJobID(jobID string) (*model.Transcription, error) {
	var t model.Transcription
	err := d.db.QueryRow(
		`SELECT id, job_id, podcast_name, episode_title, audio_duration, transcript, summary, error_message, created_at
		 FROM transcriptions WHERE job_id = $1`, jobID).
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
