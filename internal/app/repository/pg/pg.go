package pg

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS transcriptions (
    id             SERIAL PRIMARY KEY,
    job_id         TEXT NOT NULL UNIQUE,
    podcast_name   TEXT NOT NULL DEFAULT '',
    episode_title  TEXT NOT NULL DEFAULT '',
    audio_duration INTEGER NOT NULL DEFAULT 0,
    transcript     TEXT NOT NULL DEFAULT '',
    summary        TEXT NOT NULL DEFAULT '',
    error_message  TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Open connects with a lib/pq DSN and ensures the schema exists.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres database: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create transcriptions table: %w", err)
	}
	return db, nil
}
