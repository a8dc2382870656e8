package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"github.com/shashiranjanraj/storefront/pkg/resource"
)

// TitleInput is the writable shape of categories and tags.
type TitleInput struct {
	Title *string `json:"title" validate:"max=20"`
}

// CategoryService manages categories.
type CategoryService struct {
	repo *repositories.CategoryRepository
}

func NewCategoryService(repos *repositories.Set) *CategoryService {
	return &CategoryService{repo: repos.Categories}
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	return s.repo.Find(ctx, id)
}

func (s *CategoryService) List(ctx context.Context, page, size int) (orm.Page[models.Category], error) {
	return s.repo.List(ctx, page, size)
}

func (s *CategoryService) Create(ctx context.Context, in TitleInput) (*models.Category, error) {
	c := &models.Category{}
	if err := s.apply(ctx, c, in, false); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, duplicateTitle("category", err)
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, in TitleInput, partial bool) (*models.Category, error) {
	c, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, c, in, partial); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, duplicateTitle("category", err)
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *CategoryService) apply(ctx context.Context, c *models.Category, in TitleInput, partial bool) error {
	title, err := checkTitle(ctx, "category", in, partial, c.ID, s.repo.TitleTaken)
	if err != nil {
		return err
	}
	if title != nil {
		c.Title = *title
	}
	return nil
}

// TagService manages tags.
type TagService struct {
	repo *repositories.TagRepository
}

func NewTagService(repos *repositories.Set) *TagService {
	return &TagService{repo: repos.Tags}
}

func (s *TagService) Get(ctx context.Context, id uint) (*models.Tag, error) {
	return s.repo.Find(ctx, id)
}

func (s *TagService) List(ctx context.Context, page, size int) (orm.Page[models.Tag], error) {
	return s.repo.List(ctx, page, size)
}

func (s *TagService) Create(ctx context.Context, in TitleInput) (*models.Tag, error) {
	t := &models.Tag{}
	if err := s.apply(ctx, t, in, false); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, duplicateTitle("tag", err)
	}
	return t, nil
}

func (s *TagService) Update(ctx context.Context, id uint, in TitleInput, partial bool) (*models.Tag, error) {
	t, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, t, in, partial); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, duplicateTitle("tag", err)
	}
	return t, nil
}

func (s *TagService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *TagService) apply(ctx context.Context, t *models.Tag, in TitleInput, partial bool) error {
	title, err := checkTitle(ctx, "tag", in, partial, t.ID, s.repo.TitleTaken)
	if err != nil {
		return err
	}
	if title != nil {
		t.Title = *title
	}
	return nil
}

func checkTitle(ctx context.Context, entity string, in TitleInput, partial bool, self uint, taken func(context.Context, string, uint) (bool, error)) (*string, error) {
	c := checks{}
	c.text("title", in.Title, partial)
	if err := c.err(); err != nil {
		return nil, err
	}
	if in.Title == nil {
		return nil, nil
	}
	title := strings.TrimSpace(*in.Title)
	dup, err := taken(ctx, title, self)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, Invalid("title", entity+" with this title already exists.")
	}
	return &title, nil
}

func duplicateTitle(entity string, err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return Invalid("title", entity+" with this title already exists.")
	}
	return err
}

// ProductInput is the writable shape of a product. The vendor is always
// the caller.
type ProductInput struct {
	Title       *string         `json:"title"       validate:"max=100"`
	Price       *int64          `json:"price"       validate:"gte=0"`
	Description *string         `json:"description"`
	Category    *resource.Ref   `json:"category"`
	Tags        *[]resource.Ref `json:"tags"`
}

// ProductService manages products.
type ProductService struct {
	repo       *repositories.ProductRepository
	categories *repositories.CategoryRepository
	tags       *repositories.TagRepository
}

func NewProductService(repos *repositories.Set) *ProductService {
	return &ProductService{repo: repos.Products, categories: repos.Categories, tags: repos.Tags}
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.Find(ctx, id)
}

func (s *ProductService) List(ctx context.Context, f repositories.ProductFilter, page, size int) (orm.Page[models.Product], error) {
	return s.repo.Search(ctx, f, page, size)
}

// Stats returns rating and like aggregates for the given products.
func (s *ProductService) Stats(ctx context.Context, ids ...uint) (map[uint]repositories.ProductStats, error) {
	return s.repo.Stats(ctx, ids)
}

func (s *ProductService) Create(ctx context.Context, actor auth.Identity, in ProductInput) (*models.Product, error) {
	p := &models.Product{}
	tagIDs, err := s.apply(ctx, p, in, false)
	if err != nil {
		return nil, err
	}
	p.VendorID = actor.UserID
	if tagIDs == nil {
		tagIDs = []uint{}
	}
	if err := s.repo.Create(ctx, p, tagIDs); err != nil {
		return nil, s.tagError(err)
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput, partial bool) (*models.Product, error) {
	p, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	tagIDs, err := s.apply(ctx, p, in, partial)
	if err != nil {
		return nil, err
	}
	if tagIDs == nil && !partial {
		tagIDs = []uint{}
	}
	if err := s.repo.Update(ctx, p, tagIDs); err != nil {
		return nil, s.tagError(err)
	}
	return s.repo.Find(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// apply validates in and copies it onto p. The returned tag ids are nil
// when the input does not mention tags.
func (s *ProductService) apply(ctx context.Context, p *models.Product, in ProductInput, partial bool) ([]uint, error) {
	c := checks{}
	c.text("title", in.Title, partial)
	c.required("price", in.Price != nil, partial)

	var categoryID *uint
	if in.Category != nil && *in.Category != "" {
		id, ok, err := resolve(ctx, c, "category", "categories", *in.Category, s.categories.Find)
		if err != nil {
			return nil, err
		}
		if ok {
			categoryID = &id
		}
	}

	var tagIDs []uint
	if in.Tags != nil {
		tagIDs = make([]uint, 0, len(*in.Tags))
		for _, ref := range *in.Tags {
			id, err := ref.ID("tags")
			if err != nil {
				c.add("tags", resource.ErrInvalidHyperlink.Error())
				break
			}
			tagIDs = append(tagIDs, id)
		}
	}

	if err := c.err(); err != nil {
		return nil, err
	}

	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Description != nil {
		p.Description = *in.Description
	} else if !partial {
		p.Description = ""
	}
	if in.Category != nil || !partial {
		p.CategoryID = categoryID
		p.Category = nil
	}
	return tagIDs, nil
}

func (s *ProductService) tagError(err error) error {
	if errors.Is(err, repositories.ErrReference) {
		return Invalid("tags", msgMissingRef)
	}
	return err
}
