package auth

import "context"

// Identity is the caller of a request. The zero value is anonymous.
type Identity struct {
	UserID  uint
	IsStaff bool
}

// Anonymous is the identity of an unauthenticated caller.
var Anonymous = Identity{}

// Authenticated reports whether the identity belongs to a user.
func (i Identity) Authenticated() bool { return i.UserID != 0 }

// Owns reports whether the identity is the given owner.
func (i Identity) Owns(ownerID uint) bool {
	return i.Authenticated() && ownerID != 0 && i.UserID == ownerID
}

type identityKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored in ctx, or Anonymous.
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Anonymous
}
