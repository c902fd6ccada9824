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

type paradeRepository interface {
	List(ctx context.Context, filter models.ParadeFilter) ([]models.ParadeDetail, error)
	FindByID(ctx context.Context, id string) (*models.ParadeDetail, error)
	Create(ctx context.Context, parade *models.Parade) error
	Update(ctx context.Context, parade *models.Parade) error
	UpdateStatus(ctx context.Context, id string, status models.ParadeStatus) error
	Delete(ctx context.Context, id string) error
}

// CreateParadeRequest holds payload for creating parades.
type CreateParadeRequest struct {
	Name            string    `json:"name" validate:"required"`
	Type            string    `json:"type" validate:"required"`
	Date            time.Time `json:"date" validate:"required"`
	TimeOfDay       string    `json:"time_of_day"`
	Location        string    `json:"location"`
	Instructor      string    `json:"instructor"`
	Description     string    `json:"description"`
	MaxParticipants *int      `json:"max_participants"`
	Requirements    []string  `json:"requirements"`
	Status          string    `json:"status"`
}

// UpdateParadeRequest holds payload for updating parades.
type UpdateParadeRequest struct {
	Name            string    `json:"name" validate:"required"`
	Type            string    `json:"type" validate:"required"`
	Date            time.Time `json:"date" validate:"required"`
	TimeOfDay       string    `json:"time_of_day"`
	Location        string    `json:"location"`
	Instructor      string    `json:"instructor"`
	Description     string    `json:"description"`
	MaxParticipants *int      `json:"max_participants"`
	Requirements    []string  `json:"requirements"`
	Status          string    `json:"status"`
}

// ParadeService handles parade use-cases.
type ParadeService struct {
	repo      paradeRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewParadeService constructs the parade service.
func NewParadeService(repo paradeRepository, validate *validator.Validate, logger *zap.Logger) *ParadeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParadeService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// List returns parades matching the filter.
func (s *ParadeService) List(ctx context.Context, filter models.ParadeFilter) ([]models.ParadeDetail, error) {
	parades, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list parades")
	}
	return parades, nil
}

// Get returns a parade by ID.
func (s *ParadeService) Get(ctx context.Context, id string) (*models.ParadeDetail, error) {
	parade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parade")
	}
	return parade, nil
}

// Create schedules a new parade. When no status is given it is derived from
// the date relative to now.
func (s *ParadeService) Create(ctx context.Context, req CreateParadeRequest, createdBy string) (*models.Parade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid parade payload")
	}
	paradeType := models.ParadeType(req.Type)
	if !paradeType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown parade type %q", req.Type))
	}
	status := models.ParadeStatus(req.Status)
	if req.Status == "" {
		status = models.DefaultParadeStatus(req.Date, s.now())
	} else if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown parade status %q", req.Status))
	}

	parade := &models.Parade{
		Name:            req.Name,
		Type:            paradeType,
		Date:            req.Date,
		TimeOfDay:       req.TimeOfDay,
		Location:        req.Location,
		Instructor:      req.Instructor,
		Description:     req.Description,
		MaxParticipants: req.MaxParticipants,
		Requirements:    req.Requirements,
		Status:          status,
		CreatedBy:       createdBy,
	}
	if err := s.repo.Create(ctx, parade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create parade")
	}
	return parade, nil
}

// Update modifies an existing parade.
func (s *ParadeService) Update(ctx context.Context, id string, req UpdateParadeRequest) (*models.Parade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid parade payload")
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	paradeType := models.ParadeType(req.Type)
	if !paradeType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown parade type %q", req.Type))
	}
	parade := detail.Parade
	parade.Name = req.Name
	parade.Type = paradeType
	parade.Date = req.Date
	parade.TimeOfDay = req.TimeOfDay
	parade.Location = req.Location
	parade.Instructor = req.Instructor
	parade.Description = req.Description
	parade.MaxParticipants = req.MaxParticipants
	parade.Requirements = req.Requirements
	if req.Status != "" {
		status := models.ParadeStatus(req.Status)
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown parade status %q", req.Status))
		}
		parade.Status = status
	}
	if err := s.repo.Update(ctx, &parade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update parade")
	}
	return &parade, nil
}

// UpdateStatus changes only the lifecycle status.
func (s *ParadeService) UpdateStatus(ctx context.Context, id string, status models.ParadeStatus) (*models.ParadeDetail, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown parade status %q", status))
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update parade status")
	}
	return s.Get(ctx, id)
}

// Delete removes a parade and, via the database cascade, its attendance.
func (s *ParadeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "parade not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete parade")
	}
	s.logger.Info("parade deleted", zap.String("parade_id", id))
	return nil
}
