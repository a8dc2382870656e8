package services

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"github.com/shashiranjanraj/storefront/pkg/resource"
)

// CartInput is the writable shape of a cart row. The customer is always
// the caller.
type CartInput struct {
	Product  *resource.Ref `json:"product"`
	Quantity *int          `json:"quantity" validate:"min=1"`
}

// CartService manages cart rows.
type CartService struct {
	repo     *repositories.CartRepository
	products *repositories.ProductRepository
}

func NewCartService(repos *repositories.Set) *CartService {
	return &CartService{repo: repos.Carts, products: repos.Products}
}

func (s *CartService) Get(ctx context.Context, id uint) (*models.Cart, error) {
	return s.repo.Find(ctx, id)
}

func (s *CartService) List(ctx context.Context, customerID uint, all bool, page, size int) (orm.Page[models.Cart], error) {
	return s.repo.ListFor(ctx, customerID, all, page, size)
}

func (s *CartService) Create(ctx context.Context, actor auth.Identity, in CartInput) (*models.Cart, error) {
	cart := &models.Cart{CustomerID: actor.UserID, Quantity: 1}
	if err := s.apply(ctx, cart, in, false); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, cart); err != nil {
		return nil, duplicate(err, "customer", "product")
	}
	return cart, nil
}

func (s *CartService) Update(ctx context.Context, id uint, in CartInput, partial bool) (*models.Cart, error) {
	cart, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, cart, in, partial); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, duplicate(err, "customer", "product")
	}
	return cart, nil
}

func (s *CartService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *CartService) apply(ctx context.Context, cart *models.Cart, in CartInput, partial bool) error {
	c := checks{}
	c.required("product", in.Product != nil, partial)
	if in.Product != nil {
		if id, ok, err := resolve(ctx, c, "product", "products", *in.Product, s.products.Find); err != nil {
			return err
		} else if ok {
			cart.ProductID = id
		}
	}
	if err := c.err(); err != nil {
		return err
	}

	switch {
	case in.Quantity != nil:
		cart.Quantity = *in.Quantity
	case !partial:
		cart.Quantity = 1
	}

	taken, err := s.repo.Taken(ctx, cart.CustomerID, cart.ProductID, cart.ID)
	if err != nil {
		return err
	}
	if taken {
		return unique("customer", "product")
	}
	return nil
}
