package models

import "time"

// Category is the cadet certificate category.
type Category string

const (
	CategoryC  Category = "C"
	CategoryB2 Category = "B2"
	CategoryB1 Category = "B1"
)

// Valid returns true when the category is a supported value.
func (c Category) Valid() bool {
	switch c {
	case CategoryC, CategoryB2, CategoryB1:
		return true
	default:
		return false
	}
}

// Branch is the engineering discipline a student belongs to. The short code
// is the canonical stored value; Label carries the display name used in
// reports and email subjects.
type Branch string

const (
	BranchCSE  Branch = "CSE"
	BranchAIML Branch = "AIML"
	BranchCSDS Branch = "CSDS"
	BranchECE  Branch = "ECE"
	BranchIT   Branch = "IT"
	BranchEEE  Branch = "EEE"
	BranchME   Branch = "ME"
	BranchCE   Branch = "CE"
)

// AllBranches lists every branch in report order.
func AllBranches() []Branch {
	return []Branch{BranchCSE, BranchAIML, BranchCSDS, BranchECE, BranchIT, BranchEEE, BranchME, BranchCE}
}

// Valid returns true when the branch is a supported value.
func (b Branch) Valid() bool {
	for _, known := range AllBranches() {
		if b == known {
			return true
		}
	}
	return false
}

// Label returns the display name for the branch.
func (b Branch) Label() string {
	switch b {
	case BranchCSE:
		return "Computer Science & Engineering (CSE)"
	case BranchAIML:
		return "CSE – Artificial Intelligence & Machine Learning (AIML)"
	case BranchCSDS:
		return "CSE – Data Science (CS DS)"
	case BranchECE:
		return "Electronics & Communication Engineering (ECE)"
	case BranchIT:
		return "Information Technology (IT)"
	case BranchEEE:
		return "Electrical & Electronics Engineering (EEE)"
	case BranchME:
		return "Mechanical Engineering (ME)"
	case BranchCE:
		return "Civil Engineering (CE)"
	default:
		return string(b)
	}
}

// Student represents a cadet. AttendanceRate is derived: it is overwritten by
// the aggregation engine after every attendance write and never accepted from
// a client payload.
type Student struct {
	ID               string     `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	RegimentalNumber string     `db:"regimental_number" json:"regimental_number"`
	RollNumber       string     `db:"roll_number" json:"roll_number"`
	Category         Category   `db:"category" json:"category"`
	Branch           Branch     `db:"branch" json:"branch"`
	Rank             string     `db:"rank" json:"rank"`
	Email            string     `db:"email" json:"email,omitempty"`
	Phone            string     `db:"phone" json:"phone,omitempty"`
	Address          string     `db:"address" json:"address"`
	DateOfBirth      *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	EnrollmentDate   time.Time  `db:"enrollment_date" json:"enrollment_date"`
	Active           bool       `db:"active" json:"active"`
	AttendanceRate   float64    `db:"attendance_rate" json:"attendance_rate"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	Category        *Category
	Branch          *Branch
	Search          string
	IncludeInactive bool
	Page            int
	PageSize        int
}

// StudentImportRow is one loosely-typed row handed over by the bulk-import
// path. Keys are already normalised to canonical field names.
type StudentImportRow map[string]string

// StudentImportResult summarises a bulk import run.
type StudentImportResult struct {
	Added      int      `json:"added"`
	Duplicates int      `json:"duplicates"`
	Errors     []string `json:"errors,omitempty"`
}
