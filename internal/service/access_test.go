package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
	appErrors "github.com/noah-isme/ncc-attendance-api/pkg/errors"
)

func TestAllowlistResolveTier(t *testing.T) {
	list := NewAllowlist([]string{"alice", "bob", "carol"})

	tier, listed := list.ResolveTier("alice")
	assert.True(t, listed)
	assert.Equal(t, models.AccessSuperAdmin, tier)

	tier, listed = list.ResolveTier("BOB")
	assert.True(t, listed)
	assert.Equal(t, models.AccessAdmin, tier)

	tier, listed = list.ResolveTier("mallory")
	assert.False(t, listed)
	assert.Equal(t, models.AccessViewer, tier)
}

func TestAllowlistAuthorizeListed(t *testing.T) {
	list := NewAllowlist([]string{"alice", "bob"})

	principal, err := list.Authorize(&models.User{ID: "u1", Username: "bob", FullName: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, models.AccessAdmin, principal.AccessLevel)
	assert.True(t, principal.Allowlisted)
}

func TestAllowlistAuthorizeFlaggedViewer(t *testing.T) {
	list := NewAllowlist([]string{"alice"})

	principal, err := list.Authorize(&models.User{ID: "u2", Username: "dave", IsAuthorized: true})
	require.NoError(t, err)
	assert.Equal(t, models.AccessViewer, principal.AccessLevel)
	assert.False(t, principal.Allowlisted)
}

func TestAllowlistAuthorizeRejected(t *testing.T) {
	list := NewAllowlist([]string{"alice"})

	_, err := list.Authorize(&models.User{ID: "u3", Username: "mallory"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotAuthorized))
}

func TestTierChecks(t *testing.T) {
	super := &models.Principal{AccessLevel: models.AccessSuperAdmin}
	admin := &models.Principal{AccessLevel: models.AccessAdmin}
	viewer := &models.Principal{AccessLevel: models.AccessViewer}

	assert.True(t, CanModify(super))
	assert.True(t, CanModify(admin))
	assert.False(t, CanModify(viewer))
	assert.False(t, CanModify(nil))

	assert.True(t, IsSuperAdmin(super))
	assert.False(t, IsSuperAdmin(admin))
}
