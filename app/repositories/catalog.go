package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

const catalogTTL = 5 * time.Minute

// CategoryRepository handles Category rows. Single lookups go through the
// cache.
type CategoryRepository struct {
	Base[models.Category]
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{newBase[models.Category](db, "title")}
}

func categoryKey(id uint) string { return fmt.Sprintf("category:%d", id) }

func (r *CategoryRepository) Find(ctx context.Context, id uint) (*models.Category, error) {
	return cache.Remember(ctx, categoryKey(id), catalogTTL, func() (*models.Category, error) {
		return r.Base.Find(ctx, id)
	})
}

func (r *CategoryRepository) Save(ctx context.Context, c *models.Category) error {
	if err := r.Base.Save(ctx, c); err != nil {
		return err
	}
	_ = cache.Forget(ctx, categoryKey(c.ID))
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	if err := r.Base.Delete(ctx, id); err != nil {
		return err
	}
	_ = cache.Forget(ctx, categoryKey(id))
	return nil
}

// TitleTaken reports whether another category already has title.
func (r *CategoryRepository) TitleTaken(ctx context.Context, title string, except uint) (bool, error) {
	return r.Exists(ctx, Where("title = ?", title), Not(except))
}

// TagRepository handles Tag rows.
type TagRepository struct {
	Base[models.Tag]
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{newBase[models.Tag](db, "title")}
}

func tagKey(id uint) string { return fmt.Sprintf("tag:%d", id) }

func (r *TagRepository) Find(ctx context.Context, id uint) (*models.Tag, error) {
	return cache.Remember(ctx, tagKey(id), catalogTTL, func() (*models.Tag, error) {
		return r.Base.Find(ctx, id)
	})
}

func (r *TagRepository) Save(ctx context.Context, t *models.Tag) error {
	if err := r.Base.Save(ctx, t); err != nil {
		return err
	}
	_ = cache.Forget(ctx, tagKey(t.ID))
	return nil
}

// Delete removes the tag and its product links.
func (r *TagRepository) Delete(ctx context.Context, id uint) error {
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		return r.withTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return translate(err)
	}
	_ = cache.Forget(ctx, tagKey(id))
	return nil
}

// TitleTaken reports whether another tag already has title.
func (r *TagRepository) TitleTaken(ctx context.Context, title string, except uint) (bool, error) {
	return r.Exists(ctx, Where("title = ?", title), Not(except))
}

// FindMany loads tags by id. Missing ids are reported as ErrReference.
func (r *TagRepository) FindMany(ctx context.Context, ids []uint) ([]models.Tag, error) {
	return findTags(r.DB(ctx), ids)
}

func findTags(db *gorm.DB, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	uniq := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		uniq[id] = struct{}{}
	}
	var tags []models.Tag
	if err := db.Where("id IN ?", ids).Order("id").Find(&tags).Error; err != nil {
		return nil, translate(err)
	}
	if len(tags) != len(uniq) {
		return nil, ErrReference
	}
	return tags, nil
}

// ProductFilter narrows product lists. Nil fields do not filter.
type ProductFilter struct {
	CategoryID *uint
	TagID      *uint
	VendorID   *uint
	Search     string
}

func (f ProductFilter) scopes() []Scope {
	scopes := []Scope{
		Eq("category_id", f.CategoryID),
		Eq("vendor_id", f.VendorID),
		orm.Search("title", f.Search),
	}
	if f.TagID != nil {
		scopes = append(scopes, Where("id IN (SELECT product_id FROM product_tags WHERE tag_id = ?)", *f.TagID))
	}
	return scopes
}

// ProductStats are the review and like aggregates of one product.
type ProductStats struct {
	Rating *float64
	Likes  int64
}

// ProductRepository handles Product rows and their tag links.
type ProductRepository struct {
	Base[models.Product]
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{newBase[models.Product](db, "created_at DESC, id DESC", "Tags")}
}

// Search returns one page of products matching f.
func (r *ProductRepository) Search(ctx context.Context, f ProductFilter, page, size int) (orm.Page[models.Product], error) {
	return r.List(ctx, page, size, f.scopes()...)
}

// Create inserts p and links tagIDs in one transaction.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product, tagIDs []uint) error {
	return translate(r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.withTx(tx).Create(ctx, p); err != nil {
			return err
		}
		return replaceTags(tx, p, tagIDs)
	}))
}

// Update saves p. Tag links are replaced only when tagIDs is non-nil.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product, tagIDs []uint) error {
	return translate(r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.withTx(tx).Save(ctx, p); err != nil {
			return err
		}
		if tagIDs == nil {
			return nil
		}
		return replaceTags(tx, p, tagIDs)
	}))
}

// Delete removes the product and its tag links.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	return translate(r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_tags WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		return r.withTx(tx).Delete(ctx, id)
	}))
}

func replaceTags(tx *gorm.DB, p *models.Product, ids []uint) error {
	tags, err := findTags(tx, ids)
	if err != nil {
		return err
	}
	assoc := tx.Model(p).Omit("Tags.*").Association("Tags")
	if len(tags) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(tags)
	}
	if err != nil {
		return err
	}
	p.Tags = tags
	return nil
}

// Stats returns the average rating and like count of each product in ids.
// Products without reviews have a nil Rating.
func (r *ProductRepository) Stats(ctx context.Context, ids []uint) (map[uint]ProductStats, error) {
	out := make(map[uint]ProductStats, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var ratings []struct {
		ProductID uint
		Rating    float64
	}
	if err := r.DB(ctx).Model(&models.Review{}).
		Select("product_id, AVG(rating) AS rating").
		Where("product_id IN ?", ids).
		Group("product_id").
		Scan(&ratings).Error; err != nil {
		return nil, translate(err)
	}

	var likes []struct {
		ProductID uint
		Likes     int64
	}
	if err := r.DB(ctx).Model(&models.ProductLike{}).
		Select("product_id, COUNT(*) AS likes").
		Where("product_id IN ?", ids).
		Group("product_id").
		Scan(&likes).Error; err != nil {
		return nil, translate(err)
	}

	for _, row := range ratings {
		avg := row.Rating
		s := out[row.ProductID]
		s.Rating = &avg
		out[row.ProductID] = s
	}
	for _, row := range likes {
		s := out[row.ProductID]
		s.Likes = row.Likes
		out[row.ProductID] = s
	}
	return out, nil
}
