package controllers

import (
	"github.com/shashiranjanraj/storefront/app/resources"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/permission"
)

// CartController serves /carts. Every caller sees and edits only their
// own rows; staff see everything.
type CartController struct {
	svc *services.CartService
}

func NewCartController(svc *services.CartService) *CartController {
	return &CartController{svc: svc}
}

func (cc *CartController) Index(c *ctx.Context) {
	if !allow(c, permission.OwnerOnly, permission.List, 0) {
		return
	}
	id := c.Identity()
	n, size := pageParams(c)
	p, err := cc.svc.List(c.Context(), id.UserID, !permission.ScopeToOwner(id), n, size)
	if err != nil {
		fail(c, err)
		return
	}
	page(c, p, resources.Cart)
}

func (cc *CartController) Show(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok || !signedIn(c) {
		return
	}
	v, err := cc.svc.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !allow(c, permission.OwnerOnly, permission.Retrieve, v.CustomerID) {
		return
	}
	c.Success(render(c, v, resources.Cart))
}

func (cc *CartController) Store(c *ctx.Context) {
	if !allow(c, permission.OwnerOnly, permission.Create, 0) {
		return
	}
	var in services.CartInput
	if !c.BindJSON(&in) {
		return
	}
	v, err := cc.svc.Create(c.Context(), c.Identity(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(render(c, v, resources.Cart))
}

func (cc *CartController) Update(c *ctx.Context) { cc.update(c, false) }
func (cc *CartController) Patch(c *ctx.Context)  { cc.update(c, true) }

func (cc *CartController) update(c *ctx.Context, partial bool) {
	id, ok := c.ParamID("id")
	if !ok || !signedIn(c) {
		return
	}
	current, err := cc.svc.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !allow(c, permission.OwnerOnly, permission.Update, current.CustomerID) {
		return
	}
	var in services.CartInput
	if !c.BindJSON(&in) {
		return
	}
	v, err := cc.svc.Update(c.Context(), id, in, partial)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(render(c, v, resources.Cart))
}

func (cc *CartController) Destroy(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok || !signedIn(c) {
		return
	}
	current, err := cc.svc.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !allow(c, permission.OwnerOnly, permission.Destroy, current.CustomerID) {
		return
	}
	if err := cc.svc.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

// OrderController serves /orders and the read-only /order2products.
type OrderController struct {
	svc *services.OrderService
}

func NewOrderController(svc *services.OrderService) *OrderController {
	return &OrderController{svc: svc}
}

func (oc *OrderController) Index(c *ctx.Context) {
	if !allow(c, permission.OwnerOnly, permission.List, 0) {
		return
	}
	id := c.Identity()
	n, size := pageParams(c)
	p, err := oc.svc.List(c.Context(), id.UserID, !permission.ScopeToOwner(id), n, size)
	if err != nil {
		fail(c, err)
		return
	}
	page(c, p, resources.Order)
}

func (oc *OrderController) Show(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok || !signedIn(c) {
		return
	}
	v, err := oc.svc.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !allow(c, permission.OwnerOnly, permission.Retrieve, v.OwnerID()) {
		return
	}
	c.Success(render(c, v, resources.Order))
}

// Store places an order from the caller's cart. No body is read.
func (oc *OrderController) Store(c *ctx.Context) {
	if !allow(c, permission.OwnerOnly, permission.Create, 0) {
		return
	}
	v, err := oc.svc.PlaceOrder(c.Context(), c.Identity().UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(render(c, v, resources.Order))
}

func (oc *OrderController) Destroy(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok || !signedIn(c) {
		return
	}
	v, err := oc.svc.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !allow(c, permission.OwnerOnly, permission.Destroy, v.OwnerID()) {
		return
	}
	if err := oc.svc.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

// Lines lists order lines of the caller's orders. ?order= narrows to one.
func (oc *OrderController) Lines(c *ctx.Context) {
	if !allow(c, permission.OwnerOnly, permission.List, 0) {
		return
	}
	id := c.Identity()
	n, size := pageParams(c)
	p, err := oc.svc.ListLines(c.Context(), id.UserID, !permission.ScopeToOwner(id), optionalID(c, "order"), n, size)
	if err != nil {
		fail(c, err)
		return
	}
	page(c, p, resources.OrderLine)
}

func (oc *OrderController) Line(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok || !signedIn(c) {
		return
	}
	v, err := oc.svc.GetLine(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	var owner uint
	if v.Order != nil {
		owner = v.Order.OwnerID()
	}
	if !allow(c, permission.OwnerOnly, permission.Retrieve, owner) {
		return
	}
	c.Success(render(c, v, resources.OrderLine))
}
