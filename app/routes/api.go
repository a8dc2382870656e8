// Package routes registers the REST endpoints. Paths are registered without
// a trailing slash; the kernel strips one from incoming requests.
package routes

import (
	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// crud is a controller serving a full collection.
type crud interface {
	Index(c *ctx.Context)
	Show(c *ctx.Context)
	Store(c *ctx.Context)
	Update(c *ctx.Context)
	Patch(c *ctx.Context)
	Destroy(c *ctx.Context)
}

// collection registers list/create on /name and retrieve/update/delete on
// /name/{id}, named "name.index", "name.show" and so on.
func collection(r *router.Router, name string, h crud) {
	base := "/" + name
	item := base + "/{id}"
	r.Get(base, name+".index", ctx.Wrap(h.Index))
	r.Post(base, name+".store", ctx.Wrap(h.Store))
	r.Get(item, name+".show", ctx.Wrap(h.Show))
	r.Put(item, name+".update", ctx.Wrap(h.Update))
	r.Patch(item, name+".patch", ctx.Wrap(h.Patch))
	r.Delete(item, name+".destroy", ctx.Wrap(h.Destroy))
}

// RegisterAPI mounts every REST endpoint on r.
func RegisterAPI(r *router.Router, svc *services.Set) {
	r.Get("/", "api.root", ctx.Wrap(controllers.Root))

	authController := controllers.NewAuthController(svc.Users)
	r.Post("/auth/token", "auth.token", ctx.Wrap(authController.Token))
	r.Get("/auth/me", "auth.me", ctx.Wrap(authController.Me), middleware.RequireAuth)

	collection(r, "users", controllers.NewUserController(svc.Users))
	collection(r, "categories", controllers.NewCategoryController(svc.Categories))
	collection(r, "tags", controllers.NewTagController(svc.Tags))
	collection(r, "products", controllers.NewProductController(svc.Products))
	collection(r, "carts", controllers.NewCartController(svc.Carts))
	collection(r, "reviews", controllers.NewReviewController(svc.Reviews))

	orders := controllers.NewOrderController(svc.Orders)
	r.Get("/orders", "orders.index", ctx.Wrap(orders.Index))
	r.Post("/orders", "orders.store", ctx.Wrap(orders.Store))
	r.Get("/orders/{id}", "orders.show", ctx.Wrap(orders.Show))
	r.Delete("/orders/{id}", "orders.destroy", ctx.Wrap(orders.Destroy))
	r.Get("/order2products", "order2products.index", ctx.Wrap(orders.Lines))
	r.Get("/order2products/{id}", "order2products.show", ctx.Wrap(orders.Line))

	likes := controllers.NewLikeController(svc.Likes)
	r.Get("/product_likes", "product_likes.index", ctx.Wrap(likes.ProductIndex))
	r.Post("/product_likes", "product_likes.store", ctx.Wrap(likes.ProductStore))
	r.Get("/product_likes/{id}", "product_likes.show", ctx.Wrap(likes.ProductShow))
	r.Delete("/product_likes/{id}", "product_likes.destroy", ctx.Wrap(likes.ProductDestroy))
	r.Get("/review_likes", "review_likes.index", ctx.Wrap(likes.ReviewIndex))
	r.Post("/review_likes", "review_likes.store", ctx.Wrap(likes.ReviewStore))
	r.Get("/review_likes/{id}", "review_likes.show", ctx.Wrap(likes.ReviewShow))
	r.Delete("/review_likes/{id}", "review_likes.destroy", ctx.Wrap(likes.ReviewDestroy))
}
