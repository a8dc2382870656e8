// Package services holds the business operations behind the REST surface.
// Services validate what tags cannot express (presence on full updates,
// references, uniqueness), assign server-owned fields from the caller's
// identity and delegate storage to the repositories.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/resource"
)

var (
	// ErrCartChanged means a cart row disappeared while its order was being
	// placed. Nothing was written.
	ErrCartChanged = errors.New("cart changed during order placement")
	// ErrInvalidCredentials means the username or password did not match
	// an active user.
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
)

// NonFieldErrors is the key for errors that span several fields.
const NonFieldErrors = "non_field_errors"

const (
	msgRequired     = "This field is required."
	msgBlank        = "This field may not be blank."
	msgMissingRef   = "Invalid hyperlink - Object does not exist."
	msgNull         = "This field may not be null."
	msgUniqueFormat = "The fields %s must make a unique set."
)

// ValidationError carries field → message pairs. It maps to a 400.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Invalid builds a single-field ValidationError.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// checks collects field errors; the first message per field wins.
type checks map[string]string

func (c checks) add(field, msg string) {
	if _, ok := c[field]; !ok {
		c[field] = msg
	}
}

// required flags a missing field on create or full update.
func (c checks) required(field string, present, partial bool) {
	if !present && !partial {
		c.add(field, msgRequired)
	}
}

// text flags a missing or blank string.
func (c checks) text(field string, v *string, partial bool) {
	c.required(field, v != nil, partial)
	if v != nil && strings.TrimSpace(*v) == "" {
		c.add(field, msgBlank)
	}
}

func (c checks) err() error {
	if len(c) == 0 {
		return nil
	}
	return &ValidationError{Fields: map[string]string(c)}
}

func unique(fields ...string) error {
	return Invalid(NonFieldErrors, fmt.Sprintf(msgUniqueFormat, strings.Join(fields, ", ")))
}

// resolve turns a hyperlink into the id of an existing row. Parse failures
// and missing rows are recorded on c and reported as ok=false.
func resolve[T any](ctx context.Context, c checks, field, collection string, ref resource.Ref, find func(context.Context, uint) (*T, error)) (uint, bool, error) {
	id, err := ref.ID(collection)
	if err != nil {
		c.add(field, resource.ErrInvalidHyperlink.Error())
		return 0, false, nil
	}
	if _, err := find(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.add(field, msgMissingRef)
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

// duplicate converts a unique-index rejection that slipped past a
// pre-check into the same field error the pre-check would give.
func duplicate(err error, fields ...string) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return unique(fields...)
	}
	return err
}
