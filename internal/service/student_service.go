package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
	appErrors "github.com/noah-isme/ncc-attendance-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByRegimentalNumber(ctx context.Context, regimentalNumber, excludeID string) (bool, error)
	ExistsByRollNumber(ctx context.Context, rollNumber, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Deactivate(ctx context.Context, id string) error
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	Name             string     `json:"name" validate:"required"`
	RegimentalNumber string     `json:"regimental_number" validate:"required"`
	RollNumber       string     `json:"roll_number" validate:"required"`
	Category         string     `json:"category" validate:"required"`
	Branch           string     `json:"branch" validate:"required"`
	Rank             string     `json:"rank"`
	Email            string     `json:"email" validate:"omitempty,email"`
	Phone            string     `json:"phone"`
	Address          string     `json:"address" validate:"required"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
	EnrollmentDate   *time.Time `json:"enrollment_date"`
}

// UpdateStudentRequest holds payload for updating students.
type UpdateStudentRequest struct {
	Name             string     `json:"name" validate:"required"`
	RegimentalNumber string     `json:"regimental_number" validate:"required"`
	RollNumber       string     `json:"roll_number" validate:"required"`
	Category         string     `json:"category" validate:"required"`
	Branch           string     `json:"branch" validate:"required"`
	Rank             string     `json:"rank"`
	Email            string     `json:"email" validate:"omitempty,email"`
	Phone            string     `json:"phone"`
	Address          string     `json:"address" validate:"required"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
	EnrollmentDate   *time.Time `json:"enrollment_date"`
	Active           *bool      `json:"active"`
}

// StudentService handles cadet use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns a student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student. Regimental and roll numbers are normalised
// to upper case before the uniqueness checks so casing variants collide.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	category := models.Category(strings.ToUpper(strings.TrimSpace(req.Category)))
	if !category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category %q", req.Category))
	}
	branch := models.Branch(strings.ToUpper(strings.TrimSpace(req.Branch)))
	if !branch.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown branch %q", req.Branch))
	}
	regimental := strings.ToUpper(strings.TrimSpace(req.RegimentalNumber))
	roll := strings.ToUpper(strings.TrimSpace(req.RollNumber))

	if err := s.checkUnique(ctx, regimental, roll, ""); err != nil {
		return nil, err
	}

	enrollment := time.Now().UTC()
	if req.EnrollmentDate != nil {
		enrollment = *req.EnrollmentDate
	}
	student := &models.Student{
		Name:             strings.TrimSpace(req.Name),
		RegimentalNumber: regimental,
		RollNumber:       roll,
		Category:         category,
		Branch:           branch,
		Rank:             req.Rank,
		Email:            req.Email,
		Phone:            req.Phone,
		Address:          req.Address,
		DateOfBirth:      req.DateOfBirth,
		EnrollmentDate:   enrollment,
		Active:           true,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update modifies an existing student. The attendance rate cannot be set
// through this path.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	category := models.Category(strings.ToUpper(strings.TrimSpace(req.Category)))
	if !category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category %q", req.Category))
	}
	branch := models.Branch(strings.ToUpper(strings.TrimSpace(req.Branch)))
	if !branch.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown branch %q", req.Branch))
	}
	regimental := strings.ToUpper(strings.TrimSpace(req.RegimentalNumber))
	roll := strings.ToUpper(strings.TrimSpace(req.RollNumber))
	if err := s.checkUnique(ctx, regimental, roll, id); err != nil {
		return nil, err
	}

	student.Name = strings.TrimSpace(req.Name)
	student.RegimentalNumber = regimental
	student.RollNumber = roll
	student.Category = category
	student.Branch = branch
	student.Rank = req.Rank
	student.Email = req.Email
	student.Phone = req.Phone
	student.Address = req.Address
	student.DateOfBirth = req.DateOfBirth
	if req.EnrollmentDate != nil {
		student.EnrollmentDate = *req.EnrollmentDate
	}
	if req.Active != nil {
		student.Active = *req.Active
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Deactivate soft-deletes a student; attendance history remains queryable.
func (s *StudentService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate student")
	}
	return nil
}

// Import reads a CSV stream and registers one student per row. A failed row
// records an error and never aborts its siblings; duplicates are counted
// separately from malformed rows.
func (s *StudentService) Import(ctx context.Context, reader io.Reader) (*models.StudentImportResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing or unreadable CSV header")
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[normalizeHeader(name)] = i
	}
	for _, required := range []string{"name", "regimental_number", "roll_number", "category", "branch", "rank", "address"} {
		if _, ok := columns[required]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("CSV is missing column %q", required))
		}
	}

	result := &models.StudentImportResult{}
	line := 1
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		row := make(models.StudentImportRow, len(columns))
		for name, idx := range columns {
			if idx < len(record) {
				row[name] = strings.TrimSpace(record[idx])
			}
		}
		if row["rank"] == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing rank", line))
			continue
		}
		req := CreateStudentRequest{
			Name:             row["name"],
			RegimentalNumber: row["regimental_number"],
			RollNumber:       row["roll_number"],
			Category:         row["category"],
			Branch:           row["branch"],
			Rank:             row["rank"],
			Email:            row["email"],
			Phone:            row["phone"],
			Address:          row["address"],
		}
		if _, err := s.Create(ctx, req); err != nil {
			if appErrors.Is(err, appErrors.ErrDuplicateKey) {
				result.Duplicates++
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		result.Added++
	}
	s.logger.Info("student import finished",
		zap.Int("added", result.Added),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func (s *StudentService) checkUnique(ctx context.Context, regimental, roll, excludeID string) error {
	exists, err := s.repo.ExistsByRegimentalNumber(ctx, regimental, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate regimental number")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrDuplicateKey, "regimental number already registered")
	}
	exists, err = s.repo.ExistsByRollNumber(ctx, roll, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate roll number")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrDuplicateKey, "roll number already registered")
	}
	return nil
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	switch name {
	case "regimental_no", "regiment_number":
		return "regimental_number"
	case "roll_no":
		return "roll_number"
	case "student_name", "full_name":
		return "name"
	}
	return name
}
