package models

import "time"

// ReportPeriod bounds the date range a report was computed over.
type ReportPeriod struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// StudentBreakdown is one student's row in a branch report.
type StudentBreakdown struct {
	StudentID        string                      `json:"student_id"`
	Name             string                      `json:"name"`
	RegimentalNumber string                      `json:"regimental_number"`
	RollNumber       string                      `json:"roll_number"`
	Category         Category                    `json:"category"`
	Rank             string                      `json:"rank"`
	Tally            AttendanceTally             `json:"tally"`
	Rate             float64                     `json:"rate"`
	Parades          map[string]AttendanceStatus `json:"parades,omitempty"`
}

// BranchReportSummary aggregates a branch report.
type BranchReportSummary struct {
	TotalStudents     int     `json:"total_students"`
	TotalParades      int     `json:"total_parades"`
	AverageAttendance float64 `json:"average_attendance"`
}

// BranchReport is the weekly (or arbitrary-period) report for one branch.
// AverageAttendance is the mean of per-student rates, not a pooled ratio.
type BranchReport struct {
	Branch      Branch              `json:"branch"`
	BranchLabel string              `json:"branch_label"`
	Period      ReportPeriod        `json:"period"`
	Students    []StudentBreakdown  `json:"students"`
	Summary     BranchReportSummary `json:"summary"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// ParadeBranchReport is the per-branch slice of a daily parade report. The
// rate denominator is every active student of the branch, so unmarked
// students drag the rate down.
type ParadeBranchReport struct {
	Branch      Branch          `json:"branch"`
	BranchLabel string          `json:"branch_label"`
	Strength    int             `json:"strength"`
	Tally       AttendanceTally `json:"tally"`
	NotMarked   int             `json:"not_marked"`
	Rate        float64         `json:"rate"`
}

// DailyParadeReport covers one parade held on the report day.
type DailyParadeReport struct {
	Parade      Parade               `json:"parade"`
	Branches    []ParadeBranchReport `json:"branches"`
	Overall     AttendanceTally      `json:"overall"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// MatrixCell is one (student, parade) cell of an attendance matrix.
type MatrixCell struct {
	ParadeID string           `json:"parade_id"`
	Status   AttendanceStatus `json:"status"`
}

// MatrixRow is one student's row in an attendance matrix.
type MatrixRow struct {
	StudentID        string       `json:"student_id"`
	Name             string       `json:"name"`
	RegimentalNumber string       `json:"regimental_number"`
	Branch           Branch       `json:"branch"`
	Cells            []MatrixCell `json:"cells"`
	Rate             float64      `json:"rate"`
}

// AttendanceMatrix crosses students against parades over a period.
type AttendanceMatrix struct {
	Period      ReportPeriod `json:"period"`
	Parades     []Parade     `json:"parades"`
	Rows        []MatrixRow  `json:"rows"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// ParadeStats aggregates attendance for a single parade.
type ParadeStats struct {
	ParadeID    string          `json:"parade_id"`
	ParadeName  string          `json:"parade_name"`
	ParadeDate  time.Time       `json:"parade_date"`
	Tally       AttendanceTally `json:"tally"`
	TotalMarked int             `json:"total_marked"`
	Rate        float64         `json:"rate"`
}

// StudentStats aggregates attendance history for a single student.
type StudentStats struct {
	StudentID     string             `json:"student_id"`
	Name          string             `json:"name"`
	Branch        Branch             `json:"branch"`
	Tally         AttendanceTally    `json:"tally"`
	Rate          float64            `json:"rate"`
	RecentRecords []AttendanceDetail `json:"recent_records,omitempty"`
}

// DashboardStats is the cached overview served to the landing page.
type DashboardStats struct {
	TotalStudents     int              `json:"total_students"`
	TotalParades      int              `json:"total_parades"`
	UpcomingParades   int              `json:"upcoming_parades"`
	AverageAttendance float64          `json:"average_attendance"`
	ByBranch          map[Branch]int   `json:"by_branch"`
	ByCategory        map[Category]int `json:"by_category"`
	RecentParades     []Parade         `json:"recent_parades,omitempty"`
	GeneratedAt       time.Time        `json:"generated_at"`
}
