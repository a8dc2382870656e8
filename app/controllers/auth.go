package controllers

import (
	"time"

	"github.com/shashiranjanraj/storefront/app/resources"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// AuthController issues bearer tokens.
type AuthController struct {
	users *services.UserService
}

func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{users: users}
}

type tokenRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
}

// Token exchanges a username and password for a token.
func (ac *AuthController) Token(c *ctx.Context) {
	var in tokenRequest
	if !c.BindJSON(&in) {
		return
	}
	token, exp, u, err := ac.users.IssueToken(c.Context(), in.Username, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.Map{
		"token":      token,
		"token_type": "Bearer",
		"expires_at": exp.UTC().Format(time.RFC3339),
		"user":       render(c, u, resources.Users(u.IsStaff)),
	})
}

// Me returns the authenticated user.
func (ac *AuthController) Me(c *ctx.Context) {
	id := c.Identity()
	if !id.Authenticated() {
		c.Unauthorized()
		return
	}
	u, err := ac.users.Active(c.Context(), id.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(render(c, u, resources.Users(u.IsStaff)))
}

// Root lists the collections.
func Root(c *ctx.Context) {
	c.Success(resources.Root(linker(c)))
}
