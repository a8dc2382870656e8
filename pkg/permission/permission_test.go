package permission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/permission"
)

var (
	anon  = auth.Anonymous
	alice = auth.Identity{UserID: 1}
	bob   = auth.Identity{UserID: 2}
	staff = auth.Identity{UserID: 9, IsStaff: true}
)

func TestAdminOrReadOnly(t *testing.T) {
	rule := permission.AdminOrReadOnly

	assert.NoError(t, rule(anon, permission.List, 0))
	assert.NoError(t, rule(anon, permission.Retrieve, 0))
	assert.ErrorIs(t, rule(anon, permission.Create, 0), permission.ErrUnauthenticated)
	assert.ErrorIs(t, rule(alice, permission.Update, 0), permission.ErrForbidden)
	assert.NoError(t, rule(staff, permission.Destroy, 0))
}

func TestOwnerOrReadOnly(t *testing.T) {
	rule := permission.OwnerOrReadOnly

	assert.NoError(t, rule(anon, permission.Retrieve, 1))
	assert.ErrorIs(t, rule(anon, permission.Create, 0), permission.ErrUnauthenticated)
	assert.NoError(t, rule(bob, permission.Create, 0))
	assert.NoError(t, rule(alice, permission.Update, 1))
	assert.ErrorIs(t, rule(bob, permission.Update, 1), permission.ErrForbidden)
	assert.ErrorIs(t, rule(bob, permission.Destroy, 1), permission.ErrForbidden)
	assert.NoError(t, rule(staff, permission.Destroy, 1))
}

func TestOwnerOnly(t *testing.T) {
	rule := permission.OwnerOnly

	assert.ErrorIs(t, rule(anon, permission.List, 0), permission.ErrUnauthenticated)
	assert.NoError(t, rule(alice, permission.List, 0))
	assert.NoError(t, rule(alice, permission.Create, 0))
	assert.NoError(t, rule(alice, permission.Retrieve, 1))
	assert.ErrorIs(t, rule(bob, permission.Retrieve, 1), permission.ErrForbidden)
	assert.NoError(t, rule(staff, permission.Destroy, 1))
}

func TestOwnerlessRowIsNotOwnedByAnyone(t *testing.T) {
	assert.ErrorIs(t, permission.OwnerOnly(alice, permission.Retrieve, 0), permission.ErrForbidden)
}

func TestAdminOnly(t *testing.T) {
	assert.ErrorIs(t, permission.AdminOnly(anon, permission.Create, 0), permission.ErrUnauthenticated)
	assert.ErrorIs(t, permission.AdminOnly(alice, permission.Create, 0), permission.ErrForbidden)
	assert.NoError(t, permission.AdminOnly(staff, permission.Create, 0))
}

func TestEither(t *testing.T) {
	rule := permission.Either(permission.AdminOnly, permission.OwnerOnly)
	assert.NoError(t, rule(alice, permission.Update, 1))
	assert.ErrorIs(t, rule(bob, permission.Update, 1), permission.ErrForbidden)
}

func TestScopeToOwner(t *testing.T) {
	assert.True(t, permission.ScopeToOwner(alice))
	assert.False(t, permission.ScopeToOwner(staff))
}
