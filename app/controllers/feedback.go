package controllers

import (
	"github.com/shashiranjanraj/storefront/app/resources"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/permission"
)

// ReviewController serves /reviews. Anyone reads; the reviewer or staff
// change and delete.
type ReviewController struct {
	svc *services.ReviewService
}

func NewReviewController(svc *services.ReviewService) *ReviewController {
	return &ReviewController{svc: svc}
}

// Index supports ?product=.
func (rc *ReviewController) Index(c *ctx.Context) {
	n, size := pageParams(c)
	p, err := rc.svc.List(c.Context(), optionalID(c, "product"), n, size)
	if err != nil {
		fail(c, err)
		return
	}
	page(c, p, resources.Review)
}

func (rc *ReviewController) Show(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	v, err := rc.svc.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(render(c, v, resources.Review))
}

func (rc *ReviewController) Store(c *ctx.Context) {
	if !allow(c, permission.OwnerOrReadOnly, permission.Create, 0) {
		return
	}
	var in services.ReviewInput
	if !c.BindJSON(&in) {
		return
	}
	v, err := rc.svc.Create(c.Context(), c.Identity(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(render(c, v, resources.Review))
}

func (rc *ReviewController) Update(c *ctx.Context) { rc.update(c, false) }
func (rc *ReviewController) Patch(c *ctx.Context)  { rc.update(c, true) }

func (rc *ReviewController) update(c *ctx.Context, partial bool) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	current, err := rc.svc.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !allow(c, permission.OwnerOrReadOnly, permission.Update, current.ReviewerID) {
		return
	}
	var in services.ReviewInput
	if !c.BindJSON(&in) {
		return
	}
	v, err := rc.svc.Update(c.Context(), id, in, partial)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(render(c, v, resources.Review))
}

func (rc *ReviewController) Destroy(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	current, err := rc.svc.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !allow(c, permission.OwnerOrReadOnly, permission.Destroy, current.ReviewerID) {
		return
	}
	if err := rc.svc.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

// LikeController serves /product_likes and /review_likes: create, read
// and delete only.
type LikeController struct {
	svc *services.LikeService
}

func NewLikeController(svc *services.LikeService) *LikeController {
	return &LikeController{svc: svc}
}

func (lc *LikeController) ProductIndex(c *ctx.Context) {
	n, size := pageParams(c)
	p, err := lc.svc.ListProductLikes(c.Context(), n, size)
	if err != nil {
		fail(c, err)
		return
	}
	page(c, p, resources.ProductLike)
}

func (lc *LikeController) ProductShow(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	v, err := lc.svc.GetProductLike(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(render(c, v, resources.ProductLike))
}

func (lc *LikeController) ProductStore(c *ctx.Context) {
	if !allow(c, permission.OwnerOrReadOnly, permission.Create, 0) {
		return
	}
	var in services.ProductLikeInput
	if !c.BindJSON(&in) {
		return
	}
	v, err := lc.svc.LikeProduct(c.Context(), c.Identity(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(render(c, v, resources.ProductLike))
}

func (lc *LikeController) ProductDestroy(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	v, err := lc.svc.GetProductLike(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !allow(c, permission.OwnerOrReadOnly, permission.Destroy, v.LikerID) {
		return
	}
	if err := lc.svc.DeleteProductLike(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

func (lc *LikeController) ReviewIndex(c *ctx.Context) {
	n, size := pageParams(c)
	p, err := lc.svc.ListReviewLikes(c.Context(), n, size)
	if err != nil {
		fail(c, err)
		return
	}
	page(c, p, resources.ReviewLike)
}

func (lc *LikeController) ReviewShow(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	v, err := lc.svc.GetReviewLike(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(render(c, v, resources.ReviewLike))
}

func (lc *LikeController) ReviewStore(c *ctx.Context) {
	if !allow(c, permission.OwnerOrReadOnly, permission.Create, 0) {
		return
	}
	var in services.ReviewLikeInput
	if !c.BindJSON(&in) {
		return
	}
	v, err := lc.svc.LikeReview(c.Context(), c.Identity(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(render(c, v, resources.ReviewLike))
}

func (lc *LikeController) ReviewDestroy(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	v, err := lc.svc.GetReviewLike(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !allow(c, permission.OwnerOrReadOnly, permission.Destroy, v.LikerID) {
		return
	}
	if err := lc.svc.DeleteReviewLike(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}
