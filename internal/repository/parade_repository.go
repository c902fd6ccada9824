package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
)

// ParadeRepository manages persistence for parades.
type ParadeRepository struct {
	db *sqlx.DB
}

// NewParadeRepository constructs a ParadeRepository.
func NewParadeRepository(db *sqlx.DB) *ParadeRepository {
	return &ParadeRepository{db: db}
}

const paradeColumns = `p.id, p.name, p.type, p.date, p.time_of_day, p.location, p.instructor, p.description, p.max_participants, p.requirements, p.status, p.created_by, p.created_at, p.updated_at`

// List returns parades matching the filter, newest first.
func (r *ParadeRepository) List(ctx context.Context, filter models.ParadeFilter) ([]models.ParadeDetail, error) {
	base := fmt.Sprintf(`SELECT %s, u.full_name AS creator_name, u.username AS creator_username
        FROM parades p LEFT JOIN users u ON u.id = p.created_by WHERE 1=1`, paradeColumns)
	var args []interface{}

	if filter.Status != nil {
		base += fmt.Sprintf(" AND p.status = $%d", len(args)+1)
		args = append(args, *filter.Status)
	}
	if filter.Type != nil {
		base += fmt.Sprintf(" AND p.type = $%d", len(args)+1)
		args = append(args, *filter.Type)
	}
	if filter.DateFrom != nil {
		base += fmt.Sprintf(" AND p.date >= $%d", len(args)+1)
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		base += fmt.Sprintf(" AND p.date <= $%d", len(args)+1)
		args = append(args, *filter.DateTo)
	}
	base += " ORDER BY p.date DESC, p.created_at DESC"

	var parades []models.ParadeDetail
	if err := r.db.SelectContext(ctx, &parades, base, args...); err != nil {
		return nil, fmt.Errorf("list parades: %w", err)
	}
	return parades, nil
}

// FindByID fetches a parade detail by ID.
func (r *ParadeRepository) FindByID(ctx context.Context, id string) (*models.ParadeDetail, error) {
	query := fmt.Sprintf(`SELECT %s, u.full_name AS creator_name, u.username AS creator_username
        FROM parades p LEFT JOIN users u ON u.id = p.created_by WHERE p.id = $1 LIMIT 1`, paradeColumns)
	var parade models.ParadeDetail
	if err := r.db.GetContext(ctx, &parade, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find parade by id: %w", err)
	}
	return &parade, nil
}

// ListBetween returns parades with a date inside the half-open interval
// [from, to), oldest first. The exclusive end means a parade dated exactly on
// the boundary of two adjacent report windows is counted by only one of them.
func (r *ParadeRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Parade, error) {
	const query = `SELECT id, name, type, date, time_of_day, location, instructor, description, max_participants, requirements, status, created_by, created_at, updated_at
        FROM parades WHERE date >= $1 AND date < $2 ORDER BY date ASC`
	var parades []models.Parade
	if err := r.db.SelectContext(ctx, &parades, query, from, to); err != nil {
		return nil, fmt.Errorf("list parades between: %w", err)
	}
	return parades, nil
}

// ListOnDay returns parades held on the given calendar day.
func (r *ParadeRepository) ListOnDay(ctx context.Context, day time.Time) ([]models.Parade, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return r.ListBetween(ctx, start, start.Add(24*time.Hour))
}

// Create inserts a new parade.
func (r *ParadeRepository) Create(ctx context.Context, parade *models.Parade) error {
	if parade.ID == "" {
		parade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if parade.CreatedAt.IsZero() {
		parade.CreatedAt = now
	}
	parade.UpdatedAt = now
	const query = `INSERT INTO parades (id, name, type, date, time_of_day, location, instructor, description, max_participants, requirements, status, created_by, created_at, updated_at)
        VALUES (:id, :name, :type, :date, :time_of_day, :location, :instructor, :description, :max_participants, :requirements, :status, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, parade); err != nil {
		return fmt.Errorf("create parade: %w", err)
	}
	return nil
}

// Update modifies an existing parade.
func (r *ParadeRepository) Update(ctx context.Context, parade *models.Parade) error {
	parade.UpdatedAt = time.Now().UTC()
	const query = `UPDATE parades SET name = :name, type = :type, date = :date, time_of_day = :time_of_day, location = :location, instructor = :instructor, description = :description, max_participants = :max_participants, requirements = :requirements, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, parade); err != nil {
		return fmt.Errorf("update parade: %w", err)
	}
	return nil
}

// UpdateStatus sets only the lifecycle status.
func (r *ParadeRepository) UpdateStatus(ctx context.Context, id string, status models.ParadeStatus) error {
	const query = `UPDATE parades SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update parade status: %w", err)
	}
	return nil
}

// Delete removes a parade. Attendance rows cascade at the database level.
func (r *ParadeRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM parades WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete parade: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the total number of parades, plus how many are upcoming.
func (r *ParadeRepository) Count(ctx context.Context) (total int, upcoming int, err error) {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE status = $1) AS upcoming FROM parades`
	row := r.db.QueryRowxContext(ctx, query, models.ParadeUpcoming)
	if err := row.Scan(&total, &upcoming); err != nil {
		return 0, 0, fmt.Errorf("count parades: %w", err)
	}
	return total, upcoming, nil
}

// ListRecent returns the most recently held parades.
func (r *ParadeRepository) ListRecent(ctx context.Context, limit int) ([]models.Parade, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT id, name, type, date, time_of_day, location, instructor, description, max_participants, requirements, status, created_by, created_at, updated_at
        FROM parades WHERE date <= NOW() ORDER BY date DESC LIMIT %d`, limit)
	var parades []models.Parade
	if err := r.db.SelectContext(ctx, &parades, query); err != nil {
		return nil, fmt.Errorf("list recent parades: %w", err)
	}
	return parades, nil
}
