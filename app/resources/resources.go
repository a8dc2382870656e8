// Package resources renders storefront models as hyperlinked JSON.
package resources

import (
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/resource"
)

type Map = resource.Map

// User renders the public view of an account. Staff callers also see the
// account flags.
func User(l resource.Linker, u *models.User, admin bool) Map {
	m := Map{
		"url":         l.URL("users", u.ID),
		"id":          u.ID,
		"username":    u.Username,
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"email":       u.Email,
		"last_login":  u.LastLogin,
		"date_joined": u.DateJoined,
		"products":    l.Filter("products", "vendor", u.ID),
		"carts":       l.Collection("carts"),
		"orders":      l.Collection("orders"),
	}
	if admin {
		m["is_staff"] = u.IsStaff
		m["is_active"] = u.IsActive
		m["is_superuser"] = u.IsSuperuser
	}
	return m
}

// Users renders a transformer bound to the caller's staff flag.
func Users(admin bool) resource.Transformer[models.User] {
	return func(l resource.Linker, u *models.User) Map { return User(l, u, admin) }
}

func Category(l resource.Linker, c *models.Category) Map {
	return Map{
		"url":      l.URL("categories", c.ID),
		"id":       c.ID,
		"title":    c.Title,
		"products": l.Filter("products", "category", c.ID),
	}
}

func Tag(l resource.Linker, t *models.Tag) Map {
	return Map{
		"url":      l.URL("tags", t.ID),
		"id":       t.ID,
		"title":    t.Title,
		"products": l.Filter("products", "tag", t.ID),
	}
}

// Product renders a product with its aggregates from stats.
func Product(l resource.Linker, p *models.Product, stats repositories.ProductStats) Map {
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, l.URL("tags", t.ID))
	}
	return Map{
		"url":         l.URL("products", p.ID),
		"id":          p.ID,
		"vendor":      l.URL("users", p.VendorID),
		"category":    l.Ref("categories", p.CategoryID),
		"tags":        tags,
		"title":       p.Title,
		"price":       p.Price,
		"description": p.Description,
		"rating":      stats.Rating,
		"likes":       stats.Likes,
		"reviews":     l.Filter("reviews", "product", p.ID),
		"created":     p.CreatedAt,
	}
}

// Products renders a transformer that looks aggregates up in stats.
func Products(stats map[uint]repositories.ProductStats) resource.Transformer[models.Product] {
	return func(l resource.Linker, p *models.Product) Map { return Product(l, p, stats[p.ID]) }
}

func Cart(l resource.Linker, c *models.Cart) Map {
	return Map{
		"url":      l.URL("carts", c.ID),
		"id":       c.ID,
		"customer": l.URL("users", c.CustomerID),
		"product":  l.URL("products", c.ProductID),
		"quantity": c.Quantity,
		"created":  c.CreatedAt,
	}
}

func Order(l resource.Linker, o *models.Order) Map {
	return Map{
		"url":            l.URL("orders", o.ID),
		"id":             o.ID,
		"customer":       l.Ref("users", o.CustomerID),
		"created":        o.CreatedAt,
		"order2products": resource.Collection(l, o.Lines, OrderLine),
	}
}

func OrderLine(l resource.Linker, line *models.Order2Product) Map {
	return Map{
		"url":      l.URL("order2products", line.ID),
		"id":       line.ID,
		"order":    l.URL("orders", line.OrderID),
		"product":  l.Ref("products", line.ProductID),
		"quantity": line.Quantity,
	}
}

func Review(l resource.Linker, r *models.Review) Map {
	return Map{
		"url":         l.URL("reviews", r.ID),
		"id":          r.ID,
		"reviewer":    l.URL("users", r.ReviewerID),
		"product":     l.URL("products", r.ProductID),
		"rating":      r.Rating,
		"description": r.Description,
		"created":     r.CreatedAt,
	}
}

func ProductLike(l resource.Linker, like *models.ProductLike) Map {
	return Map{
		"url":     l.URL("product_likes", like.ID),
		"id":      like.ID,
		"liker":   l.URL("users", like.LikerID),
		"product": l.URL("products", like.ProductID),
		"created": like.CreatedAt,
	}
}

func ReviewLike(l resource.Linker, like *models.ReviewLike) Map {
	return Map{
		"url":     l.URL("review_likes", like.ID),
		"id":      like.ID,
		"liker":   l.URL("users", like.LikerID),
		"review":  l.URL("reviews", like.ReviewID),
		"created": like.CreatedAt,
	}
}

// Root lists the collections of the API root.
func Root(l resource.Linker) Map {
	m := Map{}
	for _, name := range []string{
		"users", "carts", "categories", "tags", "products", "orders",
		"order2products", "reviews", "product_likes", "review_likes",
	} {
		m[name] = l.Collection(name)
	}
	return m
}
