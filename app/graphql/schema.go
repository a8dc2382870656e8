// Package graphql exposes the read-only catalog as a GraphQL schema:
//
//	{ products(category: 2, limit: 5) { id title price rating tags { title } } }
package graphql

import (
	"errors"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	gqlhttp "github.com/shashiranjanraj/storefront/pkg/graphql"
)

func titledObject(name string) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"title":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
		},
	})
}

var (
	categoryType = titledObject("Category")
	tagType      = titledObject("Tag")

	productType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"title":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"price":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"description": &graphql.Field{Type: graphql.String},
			"vendorId":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"categoryId":  &graphql.Field{Type: graphql.Int},
			"tags":        &graphql.Field{Type: graphql.NewList(tagType)},
			"rating":      &graphql.Field{Type: graphql.Float},
			"likes":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"createdAt":   &graphql.Field{Type: graphql.DateTime},
		},
	})
)

// New builds the catalog schema over svc.
func New(svc *services.Set) (graphql.Schema, error) {
	r := resolver{svc: svc}
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"categories": &graphql.Field{
				Type:    graphql.NewList(categoryType),
				Args:    graphql.FieldConfigArgument{"limit": limitArg()},
				Resolve: r.categories,
			},
			"tags": &graphql.Field{
				Type:    graphql.NewList(tagType),
				Args:    graphql.FieldConfigArgument{"limit": limitArg()},
				Resolve: r.tags,
			},
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.Int},
					"tag":      &graphql.ArgumentConfig{Type: graphql.Int},
					"vendor":   &graphql.ArgumentConfig{Type: graphql.Int},
					"search":   &graphql.ArgumentConfig{Type: graphql.String},
					"limit":    limitArg(),
				},
				Resolve: r.products,
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.product,
			},
		},
	})
	return gqlhttp.NewSchema(query)
}

func limitArg() *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: config.PageSize()}
}

type resolver struct {
	svc *services.Set
}

func limit(p graphql.ResolveParams) int {
	n, _ := p.Args["limit"].(int)
	if n <= 0 {
		return config.PageSize()
	}
	if n > config.MaxPageSize() {
		return config.MaxPageSize()
	}
	return n
}

func optionalID(p graphql.ResolveParams, key string) *uint {
	n, ok := p.Args[key].(int)
	if !ok || n <= 0 {
		return nil
	}
	id := uint(n)
	return &id
}

type titled struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r resolver) categories(p graphql.ResolveParams) (interface{}, error) {
	page, err := r.svc.Categories.List(p.Context, 1, limit(p))
	if err != nil {
		return nil, err
	}
	out := make([]titled, 0, len(page.Items))
	for _, c := range page.Items {
		out = append(out, titled{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt})
	}
	return out, nil
}

func (r resolver) tags(p graphql.ResolveParams) (interface{}, error) {
	page, err := r.svc.Tags.List(p.Context, 1, limit(p))
	if err != nil {
		return nil, err
	}
	return tagViews(page.Items), nil
}

func tagViews(tags []models.Tag) []titled {
	out := make([]titled, 0, len(tags))
	for _, t := range tags {
		out = append(out, titled{ID: t.ID, Title: t.Title, CreatedAt: t.CreatedAt})
	}
	return out
}

func (r resolver) products(p graphql.ResolveParams) (interface{}, error) {
	search, _ := p.Args["search"].(string)
	f := repositories.ProductFilter{
		CategoryID: optionalID(p, "category"),
		TagID:      optionalID(p, "tag"),
		VendorID:   optionalID(p, "vendor"),
		Search:     search,
	}
	page, err := r.svc.Products.List(p.Context, f, 1, limit(p))
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(page.Items))
	for _, item := range page.Items {
		ids = append(ids, item.ID)
	}
	stats, err := r.svc.Products.Stats(p.Context, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]productView, 0, len(page.Items))
	for i := range page.Items {
		out = append(out, newProductView(&page.Items[i], stats[page.Items[i].ID]))
	}
	return out, nil
}

func (r resolver) product(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(int)
	if id <= 0 {
		return nil, nil
	}
	item, err := r.svc.Products.Get(p.Context, uint(id))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	stats, err := r.svc.Products.Stats(p.Context, item.ID)
	if err != nil {
		return nil, err
	}
	return newProductView(item, stats[item.ID]), nil
}

type productView struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Price       int64     `json:"price"`
	Description string    `json:"description"`
	VendorID    uint      `json:"vendorId"`
	CategoryID  *uint     `json:"categoryId"`
	Tags        []titled  `json:"tags"`
	Rating      *float64  `json:"rating"`
	Likes       int64     `json:"likes"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newProductView(p *models.Product, s repositories.ProductStats) productView {
	return productView{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		VendorID:    p.VendorID,
		CategoryID:  p.CategoryID,
		Tags:        tagViews(p.Tags),
		Rating:      s.Rating,
		Likes:       s.Likes,
		CreatedAt:   p.CreatedAt,
	}
}
