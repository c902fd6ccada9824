package models

import (
	"math"
	"time"
)

// AttendanceStatus represents the status recorded for a (parade, student)
// pair. StatusNotMarked never hits the database; it only appears in reports
// for pairs without a record.
type AttendanceStatus string

const (
	StatusPresent   AttendanceStatus = "Present"
	StatusAbsent    AttendanceStatus = "Absent"
	StatusLate      AttendanceStatus = "Late"
	StatusExcused   AttendanceStatus = "Excused"
	StatusNotMarked AttendanceStatus = "Not Marked"
)

// Valid returns true when the status may be written to a record.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	default:
		return false
	}
}

// Attendance is the unique association of one status to one
// (parade, student) pair.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	ParadeID  string           `db:"parade_id" json:"parade_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	MarkedBy  string           `db:"marked_by" json:"marked_by"`
	MarkedAt  time.Time        `db:"marked_at" json:"marked_at"`
	Remarks   *string          `db:"remarks" json:"remarks,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceDetail resolves the referenced student, parade and marker.
type AttendanceDetail struct {
	Attendance
	StudentName      *string     `db:"student_name" json:"student_name,omitempty"`
	RegimentalNumber *string     `db:"regimental_number" json:"regimental_number,omitempty"`
	ParadeName       *string     `db:"parade_name" json:"parade_name,omitempty"`
	ParadeType       *ParadeType `db:"parade_type" json:"parade_type,omitempty"`
	ParadeDate       *time.Time  `db:"parade_date" json:"parade_date,omitempty"`
	MarkerName       *string     `db:"marker_name" json:"marker_name,omitempty"`
}

// AttendanceTally aggregates status counts for one student.
type AttendanceTally struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Excused int `json:"excused"`
}

// Total returns the number of marked records in the tally.
func (t AttendanceTally) Total() int {
	return t.Present + t.Absent + t.Late + t.Excused
}

// Rate computes the attendance rate for the tally: Present and Late both
// count as attended, divided by all marked records, as a percentage rounded
// to one decimal. Zero when nothing is marked.
func (t AttendanceTally) Rate() float64 {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return Round1(float64(t.Present+t.Late) / float64(total) * 100)
}

// Add increments the counter matching the status. Unknown statuses
// (including Not Marked) are ignored.
func (t *AttendanceTally) Add(status AttendanceStatus) {
	switch status {
	case StatusPresent:
		t.Present++
	case StatusAbsent:
		t.Absent++
	case StatusLate:
		t.Late++
	case StatusExcused:
		t.Excused++
	}
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// BatchMarkEntry is one entry of a bulk attendance write.
type BatchMarkEntry struct {
	StudentID string           `json:"student_id"`
	Status    AttendanceStatus `json:"status"`
	Remarks   *string          `json:"remarks,omitempty"`
}

// BatchMarkResult summarises a bulk attendance write. Per-entry failures are
// accumulated; they never abort sibling entries.
type BatchMarkResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
}
