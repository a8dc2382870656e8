// Package controllers holds the HTTP handlers. Each handler checks the
// caller against its resource's permission rule, binds the request, calls
// one service and renders the result; errors are mapped onto the response
// envelope in one place.
package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"github.com/shashiranjanraj/storefront/pkg/permission"
	"github.com/shashiranjanraj/storefront/pkg/resource"
)

// fail answers with the status that err maps to.
func fail(c *ctx.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		c.ValidationError(ve.Fields)
	case errors.Is(err, repositories.ErrNotFound):
		c.NotFound()
	case errors.Is(err, repositories.ErrDuplicate):
		c.ValidationError(map[string]string{services.NonFieldErrors: "This object already exists."})
	case errors.Is(err, repositories.ErrReference):
		c.ValidationError(map[string]string{services.NonFieldErrors: "Invalid hyperlink - Object does not exist."})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.ValidationError(map[string]string{services.NonFieldErrors: "Unable to log in with provided credentials."})
	case errors.Is(err, services.ErrCartChanged):
		c.Conflict("The cart changed while the order was being placed. Please try again.")
	case errors.Is(err, permission.ErrUnauthenticated):
		c.Unauthorized()
	case errors.Is(err, permission.ErrForbidden):
		c.Forbidden()
	case errors.Is(err, context.Canceled):
		// Client went away; nobody is listening for the answer.
		c.Status(499)
	default:
		logger.WithCtx(c.Context()).Error("request failed",
			"method", c.Method(), "path", c.Path(), "error", err)
		c.Error(http.StatusInternalServerError, "A server error occurred.")
	}
}

// allow evaluates rule for the caller. On denial it answers 401/403 and
// returns false.
func allow(c *ctx.Context, rule permission.Rule, action permission.Action, ownerID uint) bool {
	if err := permission.Check(rule, c.Identity(), action, ownerID); err != nil {
		fail(c, err)
		return false
	}
	return true
}

func linker(c *ctx.Context) resource.Linker {
	return resource.NewLinker(c.BaseURL())
}

// pageParams reads ?page= and ?page_size=, capping the size.
func pageParams(c *ctx.Context) (page, size int) {
	page = c.QueryInt("page", 1)
	size = c.QueryInt("page_size", config.PageSize())
	if limit := config.MaxPageSize(); size > limit {
		size = limit
	}
	return page, size
}

// optionalID reads a numeric filter; a missing or malformed value does not
// filter.
func optionalID(c *ctx.Context, key string) *uint {
	if id, ok := c.QueryUint(key); ok {
		return &id
	}
	return nil
}

func selfURL(c *ctx.Context) *url.URL {
	u, err := url.Parse(c.BaseURL() + c.R.URL.RequestURI())
	if err != nil {
		return c.R.URL
	}
	return u
}

// page renders p as the paginated list envelope.
func page[T any](c *ctx.Context, p orm.Page[T], fn resource.Transformer[T]) {
	results := resource.Collection(linker(c), p.Items, fn)
	c.Success(resource.NewPage(selfURL(c), p.Page, p.PageSize, p.Total, results))
}

// render renders one item with fn.
func render[T any](c *ctx.Context, v *T, fn resource.Transformer[T]) resource.Map {
	return fn(linker(c), v)
}

// signedIn answers 401 for anonymous callers. Object routes of owner-only
// resources check it before loading so ids do not leak.
func signedIn(c *ctx.Context) bool {
	return allow(c, permission.OwnerOnly, permission.List, 0)
}
