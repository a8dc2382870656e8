package services

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"github.com/shashiranjanraj/storefront/pkg/resource"
)

// ReviewInput is the writable shape of a review. The reviewer is always
// the caller.
type ReviewInput struct {
	Product     *resource.Ref `json:"product"`
	Rating      *float64      `json:"rating"      validate:"between=0.5,5,step=0.5"`
	Description *string       `json:"description"`
}

// ReviewService manages reviews.
type ReviewService struct {
	repo     *repositories.ReviewRepository
	products *repositories.ProductRepository
}

func NewReviewService(repos *repositories.Set) *ReviewService {
	return &ReviewService{repo: repos.Reviews, products: repos.Products}
}

func (s *ReviewService) Get(ctx context.Context, id uint) (*models.Review, error) {
	return s.repo.Find(ctx, id)
}

func (s *ReviewService) List(ctx context.Context, productID *uint, page, size int) (orm.Page[models.Review], error) {
	return s.repo.ListByProduct(ctx, productID, page, size)
}

func (s *ReviewService) Create(ctx context.Context, actor auth.Identity, in ReviewInput) (*models.Review, error) {
	r := &models.Review{ReviewerID: actor.UserID}
	if err := s.apply(ctx, r, in, false); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, duplicate(err, "reviewer", "product")
	}
	return r, nil
}

func (s *ReviewService) Update(ctx context.Context, id uint, in ReviewInput, partial bool) (*models.Review, error) {
	r, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, r, in, partial); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, duplicate(err, "reviewer", "product")
	}
	return r, nil
}

func (s *ReviewService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *ReviewService) apply(ctx context.Context, r *models.Review, in ReviewInput, partial bool) error {
	c := checks{}
	c.required("product", in.Product != nil, partial)
	c.required("rating", in.Rating != nil, partial)
	if in.Product != nil {
		if id, ok, err := resolve(ctx, c, "product", "products", *in.Product, s.products.Find); err != nil {
			return err
		} else if ok {
			r.ProductID = id
		}
	}
	if err := c.err(); err != nil {
		return err
	}

	if in.Rating != nil {
		r.Rating = *in.Rating
	}
	switch {
	case in.Description != nil:
		r.Description = *in.Description
	case !partial:
		r.Description = ""
	}

	taken, err := s.repo.Taken(ctx, r.ReviewerID, r.ProductID, r.ID)
	if err != nil {
		return err
	}
	if taken {
		return unique("reviewer", "product")
	}
	return nil
}

// ProductLikeInput names the liked product. The liker is always the caller.
type ProductLikeInput struct {
	Product *resource.Ref `json:"product"`
}

// ReviewLikeInput names the liked review. The liker is always the caller.
type ReviewLikeInput struct {
	Review *resource.Ref `json:"review"`
}

// LikeService manages product and review likes.
type LikeService struct {
	products     *repositories.ProductRepository
	reviews      *repositories.ReviewRepository
	productLikes *repositories.ProductLikeRepository
	reviewLikes  *repositories.ReviewLikeRepository
}

func NewLikeService(repos *repositories.Set) *LikeService {
	return &LikeService{
		products:     repos.Products,
		reviews:      repos.Reviews,
		productLikes: repos.ProductLikes,
		reviewLikes:  repos.ReviewLikes,
	}
}

func (s *LikeService) GetProductLike(ctx context.Context, id uint) (*models.ProductLike, error) {
	return s.productLikes.Find(ctx, id)
}

func (s *LikeService) ListProductLikes(ctx context.Context, page, size int) (orm.Page[models.ProductLike], error) {
	return s.productLikes.List(ctx, page, size)
}

func (s *LikeService) LikeProduct(ctx context.Context, actor auth.Identity, in ProductLikeInput) (*models.ProductLike, error) {
	c := checks{}
	c.required("product", in.Product != nil, false)
	like := &models.ProductLike{LikerID: actor.UserID}
	if in.Product != nil {
		id, _, err := resolve(ctx, c, "product", "products", *in.Product, s.products.Find)
		if err != nil {
			return nil, err
		}
		like.ProductID = id
	}
	if err := c.err(); err != nil {
		return nil, err
	}

	taken, err := s.productLikes.Taken(ctx, like.LikerID, like.ProductID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, unique("liker", "product")
	}
	if err := s.productLikes.Create(ctx, like); err != nil {
		return nil, duplicate(err, "liker", "product")
	}
	return like, nil
}

func (s *LikeService) DeleteProductLike(ctx context.Context, id uint) error {
	return s.productLikes.Delete(ctx, id)
}

func (s *LikeService) GetReviewLike(ctx context.Context, id uint) (*models.ReviewLike, error) {
	return s.reviewLikes.Find(ctx, id)
}

func (s *LikeService) ListReviewLikes(ctx context.Context, page, size int) (orm.Page[models.ReviewLike], error) {
	return s.reviewLikes.List(ctx, page, size)
}

func (s *LikeService) LikeReview(ctx context.Context, actor auth.Identity, in ReviewLikeInput) (*models.ReviewLike, error) {
	c := checks{}
	c.required("review", in.Review != nil, false)
	like := &models.ReviewLike{LikerID: actor.UserID}
	if in.Review != nil {
		id, _, err := resolve(ctx, c, "review", "reviews", *in.Review, s.reviews.Find)
		if err != nil {
			return nil, err
		}
		like.ReviewID = id
	}
	if err := c.err(); err != nil {
		return nil, err
	}

	taken, err := s.reviewLikes.Taken(ctx, like.LikerID, like.ReviewID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, unique("liker", "review")
	}
	if err := s.reviewLikes.Create(ctx, like); err != nil {
		return nil, duplicate(err, "liker", "review")
	}
	return like, nil
}

func (s *LikeService) DeleteReviewLike(ctx context.Context, id uint) error {
	return s.reviewLikes.Delete(ctx, id)
}
