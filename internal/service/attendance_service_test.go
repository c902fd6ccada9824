package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
	appErrors "github.com/noah-isme/ncc-attendance-api/pkg/errors"
)

type fakeAttendanceRepo struct {
	records map[string]*models.Attendance
	failFor map[string]error
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]*models.Attendance), failFor: make(map[string]error)}
}

func (f *fakeAttendanceRepo) key(paradeID, studentID string) string {
	return paradeID + "/" + studentID
}

func (f *fakeAttendanceRepo) FindByID(_ context.Context, id string) (*models.Attendance, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAttendanceRepo) Upsert(_ context.Context, record *models.Attendance) (bool, error) {
	if err, ok := f.failFor[record.StudentID]; ok {
		return false, err
	}
	key := f.key(record.ParadeID, record.StudentID)
	if existing, ok := f.records[key]; ok {
		existing.Status = record.Status
		existing.MarkedBy = record.MarkedBy
		existing.Remarks = record.Remarks
		record.ID = existing.ID
		return false, nil
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	clone := *record
	f.records[key] = &clone
	return true, nil
}

func (f *fakeAttendanceRepo) Update(_ context.Context, record *models.Attendance) error {
	f.records[f.key(record.ParadeID, record.StudentID)] = record
	return nil
}

func (f *fakeAttendanceRepo) Delete(_ context.Context, id string) (string, error) {
	for key, rec := range f.records {
		if rec.ID == id {
			delete(f.records, key)
			return rec.StudentID, nil
		}
	}
	return "", sql.ErrNoRows
}

func (f *fakeAttendanceRepo) ListByParade(_ context.Context, paradeID string) ([]models.AttendanceDetail, error) {
	var out []models.AttendanceDetail
	for _, rec := range f.records {
		if rec.ParadeID == paradeID {
			out = append(out, models.AttendanceDetail{Attendance: *rec})
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) ListByStudent(_ context.Context, studentID string, _ int) ([]models.AttendanceDetail, error) {
	var out []models.AttendanceDetail
	for _, rec := range f.records {
		if rec.StudentID == studentID {
			out = append(out, models.AttendanceDetail{Attendance: *rec})
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) TallyByStudent(_ context.Context, studentID string) (models.AttendanceTally, error) {
	var tally models.AttendanceTally
	for _, rec := range f.records {
		if rec.StudentID == studentID {
			tally.Add(rec.Status)
		}
	}
	return tally, nil
}

type fakeRateStore struct {
	students map[string]*models.Student
	rates    map[string]float64
}

func newFakeRateStore(ids ...string) *fakeRateStore {
	store := &fakeRateStore{students: make(map[string]*models.Student), rates: make(map[string]float64)}
	for _, id := range ids {
		store.students[id] = &models.Student{ID: id, Active: true}
	}
	return store
}

func (f *fakeRateStore) FindByID(_ context.Context, id string) (*models.Student, error) {
	if st, ok := f.students[id]; ok {
		return st, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRateStore) UpdateAttendanceRate(_ context.Context, id string, rate float64) error {
	f.rates[id] = rate
	return nil
}

type fakeParadeFinder struct {
	parades map[string]*models.ParadeDetail
}

func newFakeParadeFinder(ids ...string) *fakeParadeFinder {
	finder := &fakeParadeFinder{parades: make(map[string]*models.ParadeDetail)}
	for _, id := range ids {
		finder.parades[id] = &models.ParadeDetail{Parade: models.Parade{ID: id, Date: time.Now()}}
	}
	return finder
}

func (f *fakeParadeFinder) FindByID(_ context.Context, id string) (*models.ParadeDetail, error) {
	if p, ok := f.parades[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func newAttendanceFixture(paradeIDs []string, studentIDs []string) (*AttendanceService, *fakeAttendanceRepo, *fakeRateStore) {
	repo := newFakeAttendanceRepo()
	students := newFakeRateStore(studentIDs...)
	parades := newFakeParadeFinder(paradeIDs...)
	return NewAttendanceService(repo, students, parades, nil, nil), repo, students
}

func TestAttendanceServiceMarkTwiceKeepsOneRecord(t *testing.T) {
	svc, repo, _ := newAttendanceFixture([]string{"p1"}, []string{"s1"})

	first, created, err := svc.Mark(context.Background(), MarkRequest{ParadeID: "p1", StudentID: "s1", Status: "Present"}, "u1")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Mark(context.Background(), MarkRequest{ParadeID: "p1", StudentID: "s1", Status: "Late"}, "u2")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.records, 1)
	assert.Equal(t, models.StatusLate, repo.records["p1/s1"].Status)
}

func TestAttendanceServiceMarkRecomputesRate(t *testing.T) {
	svc, _, students := newAttendanceFixture([]string{"p1", "p2", "p3", "p4"}, []string{"s1"})

	for i, status := range []string{"Present", "Present", "Absent", "Late"} {
		paradeID := fmt.Sprintf("p%d", i+1)
		_, _, err := svc.Mark(context.Background(), MarkRequest{ParadeID: paradeID, StudentID: "s1", Status: status}, "u1")
		require.NoError(t, err)
	}
	assert.Equal(t, 75.0, students.rates["s1"])
}

func TestAttendanceServiceMarkUnknownParade(t *testing.T) {
	svc, _, _ := newAttendanceFixture(nil, []string{"s1"})

	_, _, err := svc.Mark(context.Background(), MarkRequest{ParadeID: "ghost", StudentID: "s1", Status: "Present"}, "u1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAttendanceServiceBatchIsolatesFailures(t *testing.T) {
	svc, repo, students := newAttendanceFixture([]string{"p1"}, []string{"s1", "s2", "s3"})
	repo.failFor["s2"] = errors.New("disk on fire")

	result, err := svc.MarkBatch(context.Background(), BatchMarkRequest{
		ParadeID: "p1",
		Entries: []models.BatchMarkEntry{
			{StudentID: "s1", Status: models.StatusPresent},
			{StudentID: "s2", Status: models.StatusPresent},
			{StudentID: "s3", Status: models.StatusAbsent},
			{StudentID: "ghost", Status: models.StatusPresent},
		},
	}, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "entry 2")
	assert.Contains(t, result.Errors[1], "entry 4")
	assert.Equal(t, 100.0, students.rates["s1"])
	assert.Equal(t, 0.0, students.rates["s3"])
}

func TestAttendanceServiceBatchCountsUpdates(t *testing.T) {
	svc, _, _ := newAttendanceFixture([]string{"p1"}, []string{"s1"})

	_, _, err := svc.Mark(context.Background(), MarkRequest{ParadeID: "p1", StudentID: "s1", Status: "Absent"}, "u1")
	require.NoError(t, err)

	result, err := svc.MarkBatch(context.Background(), BatchMarkRequest{
		ParadeID: "p1",
		Entries:  []models.BatchMarkEntry{{StudentID: "s1", Status: models.StatusPresent}},
	}, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Empty(t, result.Errors)
}

func TestAttendanceServiceDeleteRecomputesRate(t *testing.T) {
	svc, _, students := newAttendanceFixture([]string{"p1", "p2"}, []string{"s1"})

	rec, _, err := svc.Mark(context.Background(), MarkRequest{ParadeID: "p1", StudentID: "s1", Status: "Absent"}, "u1")
	require.NoError(t, err)
	_, _, err = svc.Mark(context.Background(), MarkRequest{ParadeID: "p2", StudentID: "s1", Status: "Present"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, students.rates["s1"])

	require.NoError(t, svc.Delete(context.Background(), rec.ID))
	assert.Equal(t, 100.0, students.rates["s1"])
}

func TestAttendanceServiceUpdateRefreshesMarkedAt(t *testing.T) {
	svc, repo, students := newAttendanceFixture([]string{"p1"}, []string{"s1"})

	rec, _, err := svc.Mark(context.Background(), MarkRequest{ParadeID: "p1", StudentID: "s1", Status: "Absent"}, "u1")
	require.NoError(t, err)

	stale := time.Now().UTC().Add(-48 * time.Hour)
	repo.records["p1/s1"].MarkedAt = stale

	updated, err := svc.Update(context.Background(), rec.ID, UpdateAttendanceRequest{Status: "Present"}, "u2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPresent, updated.Status)
	assert.Equal(t, "u2", updated.MarkedBy)
	// A correction is a fresh marking, so the timestamp moves forward.
	assert.True(t, updated.MarkedAt.After(stale))
	assert.True(t, repo.records["p1/s1"].MarkedAt.After(stale))
	assert.Equal(t, 100.0, students.rates["s1"])
}

func TestAttendanceServiceUpdateUnknownStatus(t *testing.T) {
	svc, _, _ := newAttendanceFixture([]string{"p1"}, []string{"s1"})

	rec, _, err := svc.Mark(context.Background(), MarkRequest{ParadeID: "p1", StudentID: "s1", Status: "Present"}, "u1")
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), rec.ID, UpdateAttendanceRequest{Status: "Sleeping"}, "u1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
