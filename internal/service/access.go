package service

import (
	"strings"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
	appErrors "github.com/noah-isme/ncc-attendance-api/pkg/errors"
)

// Allowlist resolves access tiers from the configured admin allow-list. The
// first handle on the list is the super admin; the rest are admins. A user
// absent from the list is only admitted when its is_authorized flag is set,
// and then only as a viewer unless its stored level says otherwise.
type Allowlist struct {
	handles []string
}

// NewAllowlist builds an Allowlist from configured handles. Handles are
// compared case-insensitively.
func NewAllowlist(handles []string) *Allowlist {
	normalized := make([]string, 0, len(handles))
	for _, h := range handles {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			normalized = append(normalized, h)
		}
	}
	return &Allowlist{handles: normalized}
}

// Contains reports whether the username is on the list.
func (a *Allowlist) Contains(username string) bool {
	username = strings.ToLower(strings.TrimSpace(username))
	for _, h := range a.handles {
		if h == username {
			return true
		}
	}
	return false
}

// ResolveTier returns the tier the list grants a username, and whether the
// username is on the list at all.
func (a *Allowlist) ResolveTier(username string) (models.AccessLevel, bool) {
	username = strings.ToLower(strings.TrimSpace(username))
	for i, h := range a.handles {
		if h != username {
			continue
		}
		if i == 0 {
			return models.AccessSuperAdmin, true
		}
		return models.AccessAdmin, true
	}
	return models.AccessViewer, false
}

// Authorize admits a user into the system and returns its principal. Access
// is granted when the user is allow-listed or carries the is_authorized flag;
// everyone else is rejected regardless of credentials.
func (a *Allowlist) Authorize(user *models.User) (*models.Principal, error) {
	tier, listed := a.ResolveTier(user.Username)
	if !listed && !user.IsAuthorized {
		return nil, appErrors.ErrNotAuthorized
	}
	if !listed {
		tier = user.AccessLevel
		if !tier.Valid() {
			tier = models.AccessViewer
		}
	}
	return &models.Principal{
		UserID:      user.ID,
		Username:    user.Username,
		FullName:    user.FullName,
		AccessLevel: tier,
		Allowlisted: listed,
	}, nil
}

// CanModify reports whether the principal may create or update records.
func CanModify(p *models.Principal) bool {
	return p != nil && p.AccessLevel.AtLeast(models.AccessAdmin)
}

// IsSuperAdmin reports whether the principal holds the top tier.
func IsSuperAdmin(p *models.Principal) bool {
	return p != nil && p.AccessLevel == models.AccessSuperAdmin
}
