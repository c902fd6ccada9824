package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
	appErrors "github.com/noah-isme/ncc-attendance-api/pkg/errors"
)

type attendanceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	Upsert(ctx context.Context, record *models.Attendance) (bool, error)
	Update(ctx context.Context, record *models.Attendance) error
	Delete(ctx context.Context, id string) (string, error)
	ListByParade(ctx context.Context, paradeID string) ([]models.AttendanceDetail, error)
	ListByStudent(ctx context.Context, studentID string, limit int) ([]models.AttendanceDetail, error)
	TallyByStudent(ctx context.Context, studentID string) (models.AttendanceTally, error)
}

type attendanceStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateAttendanceRate(ctx context.Context, id string, rate float64) error
}

type attendanceParadeRepository interface {
	FindByID(ctx context.Context, id string) (*models.ParadeDetail, error)
}

// MarkRequest holds payload for marking a single student.
type MarkRequest struct {
	ParadeID  string  `json:"parade_id" validate:"required"`
	StudentID string  `json:"student_id" validate:"required"`
	Status    string  `json:"status" validate:"required"`
	Remarks   *string `json:"remarks"`
}

// BatchMarkRequest holds payload for marking many students of one parade.
type BatchMarkRequest struct {
	ParadeID string                  `json:"parade_id" validate:"required"`
	Entries  []models.BatchMarkEntry `json:"entries" validate:"required,min=1"`
}

// UpdateAttendanceRequest holds payload for correcting a record.
type UpdateAttendanceRequest struct {
	Status  string  `json:"status" validate:"required"`
	Remarks *string `json:"remarks"`
}

// AttendanceService handles attendance marking and rate aggregation.
type AttendanceService struct {
	repo      attendanceRepository
	students  attendanceStudentRepository
	parades   attendanceParadeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, students attendanceStudentRepository, parades attendanceParadeRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, students: students, parades: parades, validator: validate, logger: logger}
}

// Mark records a status for one (parade, student) pair. Re-marking the same
// pair overwrites the earlier record instead of creating a second one. The
// student's stored rate is recomputed after the write.
func (s *AttendanceService) Mark(ctx context.Context, req MarkRequest, markedBy string) (*models.Attendance, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	status := models.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown attendance status %q", req.Status))
	}
	if _, err := s.parades.FindByID(ctx, req.ParadeID); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "parade not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parade")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	record := &models.Attendance{
		ParadeID:  req.ParadeID,
		StudentID: req.StudentID,
		Status:    status,
		MarkedBy:  markedBy,
		Remarks:   req.Remarks,
	}
	created, err := s.repo.Upsert(ctx, record)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}
	if err := s.RecomputeRate(ctx, req.StudentID); err != nil {
		s.logger.Warn("rate recompute failed after mark", zap.String("student_id", req.StudentID), zap.Error(err))
	}
	return record, created, nil
}

// MarkBatch records statuses for many students of one parade. Each entry is
// written independently; a failed entry is reported in the result and never
// rolls back its siblings.
func (s *AttendanceService) MarkBatch(ctx context.Context, req BatchMarkRequest, markedBy string) (*models.BatchMarkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	if _, err := s.parades.FindByID(ctx, req.ParadeID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parade")
	}

	result := &models.BatchMarkResult{}
	touched := make(map[string]struct{}, len(req.Entries))
	for i, entry := range req.Entries {
		if !entry.Status.Valid() {
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d: unknown status %q", i+1, entry.Status))
			continue
		}
		if _, err := s.students.FindByID(ctx, entry.StudentID); err != nil {
			if err == sql.ErrNoRows {
				result.Errors = append(result.Errors, fmt.Sprintf("entry %d: student %s not found", i+1, entry.StudentID))
			} else {
				result.Errors = append(result.Errors, fmt.Sprintf("entry %d: %v", i+1, err))
			}
			continue
		}
		record := &models.Attendance{
			ParadeID:  req.ParadeID,
			StudentID: entry.StudentID,
			Status:    entry.Status,
			MarkedBy:  markedBy,
			Remarks:   entry.Remarks,
		}
		created, err := s.repo.Upsert(ctx, record)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d: %v", i+1, err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
		touched[entry.StudentID] = struct{}{}
	}
	for studentID := range touched {
		if err := s.RecomputeRate(ctx, studentID); err != nil {
			s.logger.Warn("rate recompute failed after batch", zap.String("student_id", studentID), zap.Error(err))
		}
	}
	s.logger.Info("attendance batch processed",
		zap.String("parade_id", req.ParadeID),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// Get returns a record by ID.
func (s *AttendanceService) Get(ctx context.Context, id string) (*models.Attendance, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return record, nil
}

// Update corrects an existing record and recomputes the student's rate.
func (s *AttendanceService) Update(ctx context.Context, id string, req UpdateAttendanceRequest, markedBy string) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	status := models.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown attendance status %q", req.Status))
	}
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Status = status
	record.MarkedBy = markedBy
	record.MarkedAt = time.Now().UTC()
	if req.Remarks != nil {
		record.Remarks = req.Remarks
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
	}
	if err := s.RecomputeRate(ctx, record.StudentID); err != nil {
		s.logger.Warn("rate recompute failed after update", zap.String("student_id", record.StudentID), zap.Error(err))
	}
	return record, nil
}

// Delete removes a record and recomputes the affected student's rate.
func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	studentID, err := s.repo.Delete(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance")
	}
	if err := s.RecomputeRate(ctx, studentID); err != nil {
		s.logger.Warn("rate recompute failed after delete", zap.String("student_id", studentID), zap.Error(err))
	}
	return nil
}

// ListByParade returns all records of a parade.
func (s *AttendanceService) ListByParade(ctx context.Context, paradeID string) ([]models.AttendanceDetail, error) {
	records, err := s.repo.ListByParade(ctx, paradeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// ListByStudent returns a student's records, newest parade first.
func (s *AttendanceService) ListByStudent(ctx context.Context, studentID string, limit int) ([]models.AttendanceDetail, error) {
	records, err := s.repo.ListByStudent(ctx, studentID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// RecomputeRate recalculates a student's attendance rate from scratch and
// stores it on the student row.
func (s *AttendanceService) RecomputeRate(ctx context.Context, studentID string) error {
	tally, err := s.repo.TallyByStudent(ctx, studentID)
	if err != nil {
		return err
	}
	return s.students.UpdateAttendanceRate(ctx, studentID, tally.Rate())
}
