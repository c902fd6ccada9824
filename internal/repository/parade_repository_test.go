package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
)

func newParadeMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func paradeRows(date time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "type", "date", "time_of_day", "location", "instructor", "description", "max_participants", "requirements", "status", "created_by", "created_at", "updated_at"}).
		AddRow("parade-1", "Morning Drill", "Morning Parade", date, "06:00", "Main Ground", "Sgt. Kumar", "", nil, "{}", "Completed", "user-1", now, now)
}

func TestParadeRepositoryListBetweenExcludesEnd(t *testing.T) {
	db, mock, cleanup := newParadeMock(t)
	defer cleanup()
	repo := NewParadeRepository(db)

	from := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	to := from.Add(7 * 24 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE date >= $1 AND date < $2")).
		WithArgs(from, to).
		WillReturnRows(paradeRows(from))

	parades, err := repo.ListBetween(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, parades, 1)
	assert.Equal(t, models.ParadeCompleted, parades[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParadeRepositoryListOnDayCoversWholeDay(t *testing.T) {
	db, mock, cleanup := newParadeMock(t)
	defer cleanup()
	repo := NewParadeRepository(db)

	day := time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC)
	start := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE date >= $1 AND date < $2")).
		WithArgs(start, start.Add(24*time.Hour)).
		WillReturnRows(paradeRows(start.Add(6 * time.Hour)))

	parades, err := repo.ListOnDay(context.Background(), day)
	require.NoError(t, err)
	assert.Len(t, parades, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
