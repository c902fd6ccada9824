package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
)

// StudentRepository manages persistence for cadet records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, name, regimental_number, roll_number, category, branch, rank, email, phone, address, date_of_birth, enrollment_date, active, attendance_rate, created_at, updated_at`

// List returns students matching the provided filters with a total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students WHERE 1=1"
	var args []interface{}

	if !filter.IncludeInactive {
		base += " AND active = TRUE"
	}
	if filter.Category != nil {
		base += fmt.Sprintf(" AND category = $%d", len(args)+1)
		args = append(args, *filter.Category)
	}
	if filter.Branch != nil {
		base += fmt.Sprintf(" AND branch = $%d", len(args)+1)
		args = append(args, *filter.Branch)
	}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR LOWER(regimental_number) LIKE $%d OR LOWER(roll_number) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY name ASC LIMIT %d OFFSET %d", studentColumns, base, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1 LIMIT 1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &student, nil
}

// ExistsByRegimentalNumber checks for a student with the given regimental
// number, optionally excluding an ID.
func (r *StudentRepository) ExistsByRegimentalNumber(ctx context.Context, regimentalNumber, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE regimental_number = $1"
	args := []interface{}{regimentalNumber}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check regimental number: %w", err)
	}
	return true, nil
}

// ExistsByRollNumber checks for a student with the given roll number,
// optionally excluding an ID.
func (r *StudentRepository) ExistsByRollNumber(ctx context.Context, rollNumber, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE roll_number = $1"
	args := []interface{}{rollNumber}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check roll number: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, name, regimental_number, roll_number, category, branch, rank, email, phone, address, date_of_birth, enrollment_date, active, attendance_rate, created_at, updated_at)
        VALUES (:id, :name, :regimental_number, :roll_number, :category, :branch, :rank, :email, :phone, :address, :date_of_birth, :enrollment_date, :active, :attendance_rate, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student. The attendance rate is excluded; it is
// only written through UpdateAttendanceRate.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, regimental_number = :regimental_number, roll_number = :roll_number, category = :category, branch = :branch, rank = :rank, email = :email, phone = :phone, address = :address, date_of_birth = :date_of_birth, enrollment_date = :enrollment_date, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Deactivate marks a student inactive. Attendance history stays intact.
func (r *StudentRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE students SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate student: %w", err)
	}
	return nil
}

// UpdateAttendanceRate writes the derived attendance rate.
func (r *StudentRepository) UpdateAttendanceRate(ctx context.Context, id string, rate float64) error {
	const query = `UPDATE students SET attendance_rate = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, rate, time.Now().UTC()); err != nil {
		return fmt.Errorf("update attendance rate: %w", err)
	}
	return nil
}

// ListActiveByBranch returns every active student of a branch ordered by name.
func (r *StudentRepository) ListActiveByBranch(ctx context.Context, branch models.Branch) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE branch = $1 AND active = TRUE ORDER BY name ASC", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, branch); err != nil {
		return nil, fmt.Errorf("list students by branch: %w", err)
	}
	return students, nil
}

// CountByBranch returns the number of active students per branch.
func (r *StudentRepository) CountByBranch(ctx context.Context) (map[models.Branch]int, error) {
	const query = `SELECT branch, COUNT(*) AS total FROM students WHERE active = TRUE GROUP BY branch`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count students by branch: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Branch]int)
	for rows.Next() {
		var branch models.Branch
		var total int
		if err := rows.Scan(&branch, &total); err != nil {
			return nil, fmt.Errorf("scan branch count: %w", err)
		}
		counts[branch] = total
	}
	return counts, rows.Err()
}

// CountByCategory returns the number of active students per category.
func (r *StudentRepository) CountByCategory(ctx context.Context) (map[models.Category]int, error) {
	const query = `SELECT category, COUNT(*) AS total FROM students WHERE category <> '' AND active = TRUE GROUP BY category`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count students by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Category]int)
	for rows.Next() {
		var category models.Category
		var total int
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts[category] = total
	}
	return counts, rows.Err()
}

// AverageAttendanceRate returns the mean stored attendance rate across active
// students. Zero when there are none.
func (r *StudentRepository) AverageAttendanceRate(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(AVG(attendance_rate), 0) FROM students WHERE active = TRUE`
	var avg float64
	if err := r.db.GetContext(ctx, &avg, query); err != nil {
		return 0, fmt.Errorf("average attendance rate: %w", err)
	}
	return avg, nil
}
