package models

import (
	"time"

	"github.com/lib/pq"
)

// ParadeType enumerates the kinds of scheduled events.
type ParadeType string

const (
	ParadeMorning    ParadeType = "Morning Parade"
	ParadeEvening    ParadeType = "Evening Parade"
	ParadeDrill      ParadeType = "Special Drill"
	ParadePT         ParadeType = "Physical Training"
	ParadeWeapons    ParadeType = "Weapon Training"
	ParadeCeremonial ParadeType = "Ceremonial Parade"
	ParadeCamp       ParadeType = "Camp Activity"
	ParadeOther      ParadeType = "Other"
)

// Valid returns true when the type is a supported value.
func (t ParadeType) Valid() bool {
	switch t {
	case ParadeMorning, ParadeEvening, ParadeDrill, ParadePT,
		ParadeWeapons, ParadeCeremonial, ParadeCamp, ParadeOther:
		return true
	default:
		return false
	}
}

// ParadeStatus tracks the lifecycle of a parade.
type ParadeStatus string

const (
	ParadeUpcoming  ParadeStatus = "Upcoming"
	ParadeOngoing   ParadeStatus = "Ongoing"
	ParadeCompleted ParadeStatus = "Completed"
	ParadeCancelled ParadeStatus = "Cancelled"
)

// Valid returns true when the status is a supported value.
func (s ParadeStatus) Valid() bool {
	switch s {
	case ParadeUpcoming, ParadeOngoing, ParadeCompleted, ParadeCancelled:
		return true
	default:
		return false
	}
}

// DefaultParadeStatus derives the initial status from the parade date:
// future dates start Upcoming, past ones Completed.
func DefaultParadeStatus(date, now time.Time) ParadeStatus {
	if date.After(now) {
		return ParadeUpcoming
	}
	return ParadeCompleted
}

// Parade represents a scheduled event attendance is recorded against.
type Parade struct {
	ID              string         `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	Type            ParadeType     `db:"type" json:"type"`
	Date            time.Time      `db:"date" json:"date"`
	TimeOfDay       string         `db:"time_of_day" json:"time_of_day"`
	Location        string         `db:"location" json:"location,omitempty"`
	Instructor      string         `db:"instructor" json:"instructor,omitempty"`
	Description     string         `db:"description" json:"description,omitempty"`
	MaxParticipants *int           `db:"max_participants" json:"max_participants,omitempty"`
	Requirements    pq.StringArray `db:"requirements" json:"requirements,omitempty"`
	Status          ParadeStatus   `db:"status" json:"status"`
	CreatedBy       string         `db:"created_by" json:"created_by"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// ParadeDetail extends a parade with the creator's display fields.
type ParadeDetail struct {
	Parade
	CreatorName     *string `db:"creator_name" json:"creator_name,omitempty"`
	CreatorUsername *string `db:"creator_username" json:"creator_username,omitempty"`
}

// ParadeFilter captures filtering criteria for listing parades.
type ParadeFilter struct {
	Status   *ParadeStatus
	Type     *ParadeType
	DateFrom *time.Time
	DateTo   *time.Time
}
