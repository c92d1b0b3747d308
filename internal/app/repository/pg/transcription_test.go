package pg

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podscribe/internal/app/model"
)

var columns = []string{
	"id", "job_id", "podcast_name", "episode_title",
	"audio_duration", "transcript", "summary", "error_message", "created_at",
}

func TestRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	dao := NewFromDB(db)
	defer dao.Close()

	mock.ExpectExec("INSERT INTO transcriptions").
		WithArgs("job-1", "Machine Minds", "Episode 42", 3730, "full text", "", "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = dao.Record(model.Transcription{
		JobID:         "job-1",
		PodcastName:   "Machine Minds",
		EpisodeTitle:  "Episode 42",
		AudioDuration: 3730,
		Transcript:    "full text",
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByJobID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	dao := NewFromDB(db)
	defer dao.Close()

	mock.ExpectQuery("SELECT (.+) FROM transcriptions WHERE job_id").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, "job-1", "Machine Minds", "Episode 41", 3501, "text", "", "", time.Now()))

	row, err := dao.GetByJobID("job-1")

	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "job-1", row.JobID)
}

func TestGetByJobID_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	dao := NewFromDB(db)
	defer dao.Close()

	mock.ExpectQuery("SELECT (.+) FROM transcriptions WHERE job_id").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(columns))

	row, err := dao.GetByJobID("nope")

	require.NoError(t, err)
	assert.Nil(t, row)
}
