package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// ReviewRepository handles Review rows.
type ReviewRepository struct {
	Base[models.Review]
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{newBase[models.Review](db, "id")}
}

// ListByProduct returns reviews, limited to one product when productID is set.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID *uint, page, size int) (orm.Page[models.Review], error) {
	return r.List(ctx, page, size, Eq("product_id", productID))
}

// Taken reports whether reviewer already reviewed product in another row.
func (r *ReviewRepository) Taken(ctx context.Context, reviewerID, productID, except uint) (bool, error) {
	return r.Exists(ctx, Where("reviewer_id = ? AND product_id = ?", reviewerID, productID), Not(except))
}

// ProductLikeRepository handles ProductLike rows.
type ProductLikeRepository struct {
	Base[models.ProductLike]
}

func NewProductLikeRepository(db *gorm.DB) *ProductLikeRepository {
	return &ProductLikeRepository{newBase[models.ProductLike](db, "id")}
}

// Taken reports whether liker already likes product.
func (r *ProductLikeRepository) Taken(ctx context.Context, likerID, productID uint) (bool, error) {
	return r.Exists(ctx, Where("liker_id = ? AND product_id = ?", likerID, productID))
}

// ReviewLikeRepository handles ReviewLike rows.
type ReviewLikeRepository struct {
	Base[models.ReviewLike]
}

func NewReviewLikeRepository(db *gorm.DB) *ReviewLikeRepository {
	return &ReviewLikeRepository{newBase[models.ReviewLike](db, "id")}
}

// Taken reports whether liker already likes review.
func (r *ReviewLikeRepository) Taken(ctx context.Context, likerID, reviewID uint) (bool, error) {
	return r.Exists(ctx, Where("liker_id = ? AND review_id = ?", likerID, reviewID))
}
