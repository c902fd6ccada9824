package models

import "time"

// AccessLevel is the privilege tier of a user. Tiers form a total order:
// viewer < admin < super_admin.
type AccessLevel string

const (
	AccessViewer     AccessLevel = "viewer"
	AccessAdmin      AccessLevel = "admin"
	AccessSuperAdmin AccessLevel = "super_admin"
)

// Valid returns true when the level is a supported value.
func (l AccessLevel) Valid() bool {
	switch l {
	case AccessViewer, AccessAdmin, AccessSuperAdmin:
		return true
	default:
		return false
	}
}

// Rank maps the level onto its position in the privilege order.
func (l AccessLevel) Rank() int {
	switch l {
	case AccessSuperAdmin:
		return 2
	case AccessAdmin:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether the level grants everything `other` grants.
func (l AccessLevel) AtLeast(other AccessLevel) bool {
	return l.Rank() >= other.Rank()
}

// User represents an application user stored in the users table.
type User struct {
	ID           string      `db:"id" json:"id"`
	Username     string      `db:"username" json:"username"`
	PasswordHash string      `db:"password_hash" json:"-"`
	FullName     string      `db:"full_name" json:"full_name"`
	Role         string      `db:"role" json:"role"`
	AccessLevel  AccessLevel `db:"access_level" json:"access_level"`
	IsAuthorized bool        `db:"is_authorized" json:"is_authorized"`
	Email        string      `db:"email" json:"email"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// Principal is an authorized actor with its access tier resolved against the
// allow-list. It is attached to the request context after authorization.
type Principal struct {
	UserID      string      `json:"user_id"`
	Username    string      `json:"username"`
	FullName    string      `json:"full_name"`
	AccessLevel AccessLevel `json:"access_level"`
	Allowlisted bool        `json:"-"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
