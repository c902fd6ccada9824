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

// AttendanceRepository manages persistence for attendance records. The table
// carries a unique constraint on (parade_id, student_id); Upsert relies on it.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `a.id, a.parade_id, a.student_id, a.status, a.marked_by, a.marked_at, a.remarks, a.created_at, a.updated_at`

// FindByID fetches an attendance record by ID.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	const query = `SELECT id, parade_id, student_id, status, marked_by, marked_at, remarks, created_at, updated_at FROM attendance WHERE id = $1 LIMIT 1`
	var record models.Attendance
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find attendance by id: %w", err)
	}
	return &record, nil
}

// Upsert writes a record for a (parade, student) pair, updating the existing
// row on conflict. Returns true when a new row was inserted.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.Attendance) (bool, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.MarkedAt.IsZero() {
		record.MarkedAt = now
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	const query = `INSERT INTO attendance (id, parade_id, student_id, status, marked_by, marked_at, remarks, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (parade_id, student_id) DO UPDATE
        SET status = EXCLUDED.status, marked_by = EXCLUDED.marked_by, marked_at = EXCLUDED.marked_at, remarks = EXCLUDED.remarks, updated_at = EXCLUDED.updated_at
        RETURNING id, (xmax = 0) AS inserted`
	var id string
	var inserted bool
	row := r.db.QueryRowxContext(ctx, query, record.ID, record.ParadeID, record.StudentID, record.Status, record.MarkedBy, record.MarkedAt, record.Remarks, record.CreatedAt, record.UpdatedAt)
	if err := row.Scan(&id, &inserted); err != nil {
		return false, fmt.Errorf("upsert attendance: %w", err)
	}
	record.ID = id
	return inserted, nil
}

// Update modifies the mutable fields of an existing record.
func (r *AttendanceRepository) Update(ctx context.Context, record *models.Attendance) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE attendance SET status = :status, marked_by = :marked_by, marked_at = :marked_at, remarks = :remarks, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	return nil
}

// Delete removes a record and returns the student it belonged to so the
// caller can recompute that student's rate.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) (string, error) {
	const query = `DELETE FROM attendance WHERE id = $1 RETURNING student_id`
	var studentID string
	if err := r.db.GetContext(ctx, &studentID, query, id); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("delete attendance: %w", err)
	}
	return studentID, nil
}

// ListByParade returns all records of a parade with student fields resolved.
func (r *AttendanceRepository) ListByParade(ctx context.Context, paradeID string) ([]models.AttendanceDetail, error) {
	query := fmt.Sprintf(`SELECT %s, s.name AS student_name, s.regimental_number, u.full_name AS marker_name
        FROM attendance a
        JOIN students s ON s.id = a.student_id
        LEFT JOIN users u ON u.id = a.marked_by
        WHERE a.parade_id = $1 ORDER BY s.name ASC`, attendanceColumns)
	var records []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &records, query, paradeID); err != nil {
		return nil, fmt.Errorf("list attendance by parade: %w", err)
	}
	return records, nil
}

// ListByStudent returns a student's records with parade fields resolved,
// newest parade first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID string, limit int) ([]models.AttendanceDetail, error) {
	query := fmt.Sprintf(`SELECT %s, p.name AS parade_name, p.type AS parade_type, p.date AS parade_date, u.full_name AS marker_name
        FROM attendance a
        JOIN parades p ON p.id = a.parade_id
        LEFT JOIN users u ON u.id = a.marked_by
        WHERE a.student_id = $1 ORDER BY p.date DESC`, attendanceColumns)
	args := []interface{}{studentID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	var records []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance by student: %w", err)
	}
	return records, nil
}

// TallyByStudent aggregates a student's records into status counts.
func (r *AttendanceRepository) TallyByStudent(ctx context.Context, studentID string) (models.AttendanceTally, error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE status = 'Present') AS present,
        COUNT(*) FILTER (WHERE status = 'Absent') AS absent,
        COUNT(*) FILTER (WHERE status = 'Late') AS late,
        COUNT(*) FILTER (WHERE status = 'Excused') AS excused
        FROM attendance WHERE student_id = $1`
	var tally models.AttendanceTally
	row := r.db.QueryRowxContext(ctx, query, studentID)
	if err := row.Scan(&tally.Present, &tally.Absent, &tally.Late, &tally.Excused); err != nil {
		return models.AttendanceTally{}, fmt.Errorf("tally attendance by student: %w", err)
	}
	return tally, nil
}

// TallyByParade aggregates a parade's records into status counts.
func (r *AttendanceRepository) TallyByParade(ctx context.Context, paradeID string) (models.AttendanceTally, error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE status = 'Present') AS present,
        COUNT(*) FILTER (WHERE status = 'Absent') AS absent,
        COUNT(*) FILTER (WHERE status = 'Late') AS late,
        COUNT(*) FILTER (WHERE status = 'Excused') AS excused
        FROM attendance WHERE parade_id = $1`
	var tally models.AttendanceTally
	row := r.db.QueryRowxContext(ctx, query, paradeID)
	if err := row.Scan(&tally.Present, &tally.Absent, &tally.Late, &tally.Excused); err != nil {
		return models.AttendanceTally{}, fmt.Errorf("tally attendance by parade: %w", err)
	}
	return tally, nil
}

// statusRow is an internal scan target for MapForParades.
type statusRow struct {
	StudentID string                  `db:"student_id"`
	ParadeID  string                  `db:"parade_id"`
	Status    models.AttendanceStatus `db:"status"`
}

// MapForParades returns status keyed by student then parade for the given
// parades. Pairs without a record are simply absent from the map.
func (r *AttendanceRepository) MapForParades(ctx context.Context, paradeIDs []string) (map[string]map[string]models.AttendanceStatus, error) {
	result := make(map[string]map[string]models.AttendanceStatus)
	if len(paradeIDs) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(`SELECT student_id, parade_id, status FROM attendance WHERE parade_id IN (?)`, paradeIDs)
	if err != nil {
		return nil, fmt.Errorf("build attendance map query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []statusRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("map attendance for parades: %w", err)
	}
	for _, row := range rows {
		byParade, ok := result[row.StudentID]
		if !ok {
			byParade = make(map[string]models.AttendanceStatus)
			result[row.StudentID] = byParade
		}
		byParade[row.ParadeID] = row.Status
	}
	return result, nil
}
