package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/lock"
)

// Set bundles the services the controllers depend on.
type Set struct {
	Users      *UserService
	Categories *CategoryService
	Tags       *TagService
	Products   *ProductService
	Carts      *CartService
	Orders     *OrderService
	Reviews    *ReviewService
	Likes      *LikeService
}

// New builds every service over db. locker and bus may be nil.
func New(db *gorm.DB, locker lock.Locker, bus *event.Bus, lockTTL time.Duration) *Set {
	repos := repositories.NewSet(db)
	return &Set{
		Users:      NewUserService(repos),
		Categories: NewCategoryService(repos),
		Tags:       NewTagService(repos),
		Products:   NewProductService(repos),
		Carts:      NewCartService(repos),
		Orders:     NewOrderService(db, repos, locker, bus, lockTTL),
		Reviews:    NewReviewService(repos),
		Likes:      NewLikeService(repos),
	}
}
