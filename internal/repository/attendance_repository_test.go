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

func newAttendanceMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAttendanceRepositoryUpsertInsert(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("INSERT INTO attendance").
		WithArgs(sqlmock.AnyArg(), "parade-1", "student-1", models.StatusPresent, "user-1", sqlmock.AnyArg(), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow("rec-1", true))

	record := &models.Attendance{ParadeID: "parade-1", StudentID: "student-1", Status: models.StatusPresent, MarkedBy: "user-1"}
	inserted, err := repo.Upsert(context.Background(), record)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, "rec-1", record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsertConflictUpdates(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("INSERT INTO attendance").
		WithArgs(sqlmock.AnyArg(), "parade-1", "student-1", models.StatusLate, "user-2", sqlmock.AnyArg(), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow("rec-1", false))

	record := &models.Attendance{ParadeID: "parade-1", StudentID: "student-1", Status: models.StatusLate, MarkedBy: "user-2"}
	inserted, err := repo.Upsert(context.Background(), record)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, "rec-1", record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryTallyByStudent(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("FROM attendance WHERE student_id").
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"present", "absent", "late", "excused"}).AddRow(2, 1, 1, 0))

	tally, err := repo.TallyByStudent(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, 4, tally.Total())
	assert.Equal(t, 75.0, tally.Rate())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryDeleteReturnsStudent(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM attendance WHERE id = $1 RETURNING student_id")).
		WithArgs("rec-1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow("student-1"))

	studentID, err := repo.Delete(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "student-1", studentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListByParade(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "parade_id", "student_id", "status", "marked_by", "marked_at", "remarks", "created_at", "updated_at", "student_name", "regimental_number", "marker_name"}).
		AddRow("rec-1", "parade-1", "student-1", "Present", "user-1", now, nil, now, now, "Cadet One", "TN23SDA700001", "Admin")
	mock.ExpectQuery("FROM attendance a").
		WithArgs("parade-1").
		WillReturnRows(rows)

	records, err := repo.ListByParade(context.Background(), "parade-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.StatusPresent, records[0].Status)
	require.NotNil(t, records[0].StudentName)
	assert.Equal(t, "Cadet One", *records[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
