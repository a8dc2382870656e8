package controllers

import (
	"github.com/shashiranjanraj/storefront/app/resources"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/permission"
)

// UserController serves /users. Anyone may read; staff create; staff or
// the user themself change or delete.
type UserController struct {
	svc *services.UserService
}

func NewUserController(svc *services.UserService) *UserController {
	return &UserController{svc: svc}
}

func (uc *UserController) Index(c *ctx.Context) {
	if !allow(c, permission.OwnerOrReadOnly, permission.List, 0) {
		return
	}
	n, size := pageParams(c)
	p, err := uc.svc.List(c.Context(), n, size)
	if err != nil {
		fail(c, err)
		return
	}
	page(c, p, resources.Users(c.Identity().IsStaff))
}

func (uc *UserController) Show(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	u, err := uc.svc.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(render(c, u, resources.Users(c.Identity().IsStaff)))
}

func (uc *UserController) Store(c *ctx.Context) {
	if !allow(c, permission.AdminOnly, permission.Create, 0) {
		return
	}
	var in services.UserInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := uc.svc.Create(c.Context(), c.Identity(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(render(c, u, resources.Users(true)))
}

// Update handles PUT; Patch handles PATCH.
func (uc *UserController) Update(c *ctx.Context) { uc.update(c, false) }
func (uc *UserController) Patch(c *ctx.Context)  { uc.update(c, true) }

func (uc *UserController) update(c *ctx.Context, partial bool) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	if _, err := uc.svc.Get(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	if !allow(c, permission.OwnerOrReadOnly, permission.Update, id) {
		return
	}
	var in services.UserInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := uc.svc.Update(c.Context(), c.Identity(), id, in, partial)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(render(c, u, resources.Users(c.Identity().IsStaff)))
}

func (uc *UserController) Destroy(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	if _, err := uc.svc.Get(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	if !allow(c, permission.OwnerOrReadOnly, permission.Destroy, id) {
		return
	}
	if err := uc.svc.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}
