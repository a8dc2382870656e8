// Package permission holds the access rules of the REST surface as pure
// predicates over (identity, action, owner). Controllers evaluate a Rule
// before touching storage; nothing here reads the database.
package permission

import (
	"errors"

	"github.com/shashiranjanraj/storefront/pkg/auth"
)

var (
	// ErrUnauthenticated means the action needs a logged-in caller (401).
	ErrUnauthenticated = errors.New("permission: authentication required")
	// ErrForbidden means the caller is known but not allowed (403).
	ErrForbidden = errors.New("permission: forbidden")
)

// Action is what a request is trying to do with a resource.
type Action int

const (
	List Action = iota
	Retrieve
	Create
	Update
	Destroy
)

func (a Action) String() string {
	switch a {
	case List:
		return "list"
	case Retrieve:
		return "retrieve"
	case Create:
		return "create"
	case Update:
		return "update"
	case Destroy:
		return "destroy"
	}
	return "unknown"
}

// Safe reports whether the action only reads.
func (a Action) Safe() bool { return a == List || a == Retrieve }

// ObjectLevel reports whether the action targets one existing row.
func (a Action) ObjectLevel() bool { return a == Retrieve || a == Update || a == Destroy }

// Rule decides whether id may perform action on a row owned by ownerID.
// ownerID is 0 for collection-level actions (list, create).
type Rule func(id auth.Identity, action Action, ownerID uint) error

func deny(id auth.Identity) error {
	if !id.Authenticated() {
		return ErrUnauthenticated
	}
	return ErrForbidden
}

// AdminOrReadOnly lets anyone read and only staff write.
func AdminOrReadOnly(id auth.Identity, action Action, _ uint) error {
	if action.Safe() || id.IsStaff {
		return nil
	}
	return deny(id)
}

// AdminOnly restricts every action to staff.
func AdminOnly(id auth.Identity, _ Action, _ uint) error {
	if id.IsStaff {
		return nil
	}
	return deny(id)
}

// OwnerOrReadOnly lets anyone read, any authenticated caller create, and
// only the owner or staff change or delete.
func OwnerOrReadOnly(id auth.Identity, action Action, ownerID uint) error {
	switch {
	case action.Safe():
		return nil
	case !id.Authenticated():
		return ErrUnauthenticated
	case action == Create, id.IsStaff, id.Owns(ownerID):
		return nil
	}
	return ErrForbidden
}

// OwnerOnly requires authentication for everything and ownership (or
// staff) for object-level actions. Lists must be filtered by the caller.
func OwnerOnly(id auth.Identity, action Action, ownerID uint) error {
	switch {
	case !id.Authenticated():
		return ErrUnauthenticated
	case !action.ObjectLevel(), id.IsStaff, id.Owns(ownerID):
		return nil
	}
	return ErrForbidden
}

// ScopeToOwner reports whether list results must be limited to id's rows.
func ScopeToOwner(id auth.Identity) bool { return !id.IsStaff }

// Check evaluates rule and returns its error.
func Check(rule Rule, id auth.Identity, action Action, ownerID uint) error {
	return rule(id, action, ownerID)
}

// Either allows the action when any of the rules allows it. The error of the
// last rule is returned otherwise.
func Either(rules ...Rule) Rule {
	return func(id auth.Identity, action Action, ownerID uint) error {
		var err error
		for _, r := range rules {
			if err = r(id, action, ownerID); err == nil {
				return nil
			}
		}
		return err
	}
}
