package controllers

import (
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/resources"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/permission"
)

// CategoryController serves /categories. Staff write, anyone reads.
type CategoryController struct {
	svc *services.CategoryService
}

func NewCategoryController(svc *services.CategoryService) *CategoryController {
	return &CategoryController{svc: svc}
}

func (cc *CategoryController) Index(c *ctx.Context) {
	n, size := pageParams(c)
	p, err := cc.svc.List(c.Context(), n, size)
	if err != nil {
		fail(c, err)
		return
	}
	page(c, p, resources.Category)
}

func (cc *CategoryController) Show(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	v, err := cc.svc.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(render(c, v, resources.Category))
}

func (cc *CategoryController) Store(c *ctx.Context) {
	if !allow(c, permission.AdminOrReadOnly, permission.Create, 0) {
		return
	}
	var in services.TitleInput
	if !c.BindJSON(&in) {
		return
	}
	v, err := cc.svc.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(render(c, v, resources.Category))
}

func (cc *CategoryController) Update(c *ctx.Context) { cc.update(c, false) }
func (cc *CategoryController) Patch(c *ctx.Context)  { cc.update(c, true) }

func (cc *CategoryController) update(c *ctx.Context, partial bool) {
	id, ok := c.ParamID("id")
	if !ok || !allow(c, permission.AdminOrReadOnly, permission.Update, 0) {
		return
	}
	var in services.TitleInput
	if !c.BindJSON(&in) {
		return
	}
	v, err := cc.svc.Update(c.Context(), id, in, partial)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(render(c, v, resources.Category))
}

func (cc *CategoryController) Destroy(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok || !allow(c, permission.AdminOrReadOnly, permission.Destroy, 0) {
		return
	}
	if err := cc.svc.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

// TagController serves /tags. Staff write, anyone reads.
type TagController struct {
	svc *services.TagService
}

func NewTagController(svc *services.TagService) *TagController {
	return &TagController{svc: svc}
}

func (tc *TagController) Index(c *ctx.Context) {
	n, size := pageParams(c)
	p, err := tc.svc.List(c.Context(), n, size)
	if err != nil {
		fail(c, err)
		return
	}
	page(c, p, resources.Tag)
}

func (tc *TagController) Show(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	v, err := tc.svc.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(render(c, v, resources.Tag))
}

func (tc *TagController) Store(c *ctx.Context) {
	if !allow(c, permission.AdminOrReadOnly, permission.Create, 0) {
		return
	}
	var in services.TitleInput
	if !c.BindJSON(&in) {
		return
	}
	v, err := tc.svc.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(render(c, v, resources.Tag))
}

func (tc *TagController) Update(c *ctx.Context) { tc.update(c, false) }
func (tc *TagController) Patch(c *ctx.Context)  { tc.update(c, true) }

func (tc *TagController) update(c *ctx.Context, partial bool) {
	id, ok := c.ParamID("id")
	if !ok || !allow(c, permission.AdminOrReadOnly, permission.Update, 0) {
		return
	}
	var in services.TitleInput
	if !c.BindJSON(&in) {
		return
	}
	v, err := tc.svc.Update(c.Context(), id, in, partial)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(render(c, v, resources.Tag))
}

func (tc *TagController) Destroy(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok || !allow(c, permission.AdminOrReadOnly, permission.Destroy, 0) {
		return
	}
	if err := tc.svc.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

// ProductController serves /products. Anyone reads; any user sells;
// the vendor or staff change and delete.
type ProductController struct {
	svc *services.ProductService
}

func NewProductController(svc *services.ProductService) *ProductController {
	return &ProductController{svc: svc}
}

// Index supports ?category=, ?tag=, ?vendor= and ?search=.
func (pc *ProductController) Index(c *ctx.Context) {
	n, size := pageParams(c)
	f := repositories.ProductFilter{
		CategoryID: optionalID(c, "category"),
		TagID:      optionalID(c, "tag"),
		VendorID:   optionalID(c, "vendor"),
		Search:     c.Query("search"),
	}
	p, err := pc.svc.List(c.Context(), f, n, size)
	if err != nil {
		fail(c, err)
		return
	}
	ids := make([]uint, len(p.Items))
	for i, item := range p.Items {
		ids[i] = item.ID
	}
	stats, err := pc.svc.Stats(c.Context(), ids...)
	if err != nil {
		fail(c, err)
		return
	}
	page(c, p, resources.Products(stats))
}

func (pc *ProductController) Show(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	v, err := pc.svc.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	pc.respond(c, v, false)
}

func (pc *ProductController) Store(c *ctx.Context) {
	if !allow(c, permission.OwnerOrReadOnly, permission.Create, 0) {
		return
	}
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	v, err := pc.svc.Create(c.Context(), c.Identity(), in)
	if err != nil {
		fail(c, err)
		return
	}
	pc.respond(c, v, true)
}

func (pc *ProductController) Update(c *ctx.Context) { pc.update(c, false) }
func (pc *ProductController) Patch(c *ctx.Context)  { pc.update(c, true) }

func (pc *ProductController) update(c *ctx.Context, partial bool) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	current, err := pc.svc.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !allow(c, permission.OwnerOrReadOnly, permission.Update, current.VendorID) {
		return
	}
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	v, err := pc.svc.Update(c.Context(), id, in, partial)
	if err != nil {
		fail(c, err)
		return
	}
	pc.respond(c, v, false)
}

func (pc *ProductController) Destroy(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	current, err := pc.svc.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !allow(c, permission.OwnerOrReadOnly, permission.Destroy, current.VendorID) {
		return
	}
	if err := pc.svc.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

func (pc *ProductController) respond(c *ctx.Context, p *models.Product, created bool) {
	stats, err := pc.svc.Stats(c.Context(), p.ID)
	if err != nil {
		fail(c, err)
		return
	}
	body := render(c, p, resources.Products(stats))
	if created {
		c.Created(body)
		return
	}
	c.Success(body)
}
