// Package repositories is the data-access layer. Each entity has a
// repository over GORM; services never build queries themselves.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/storefront/pkg/orm"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrReference is returned when a foreign key points at nothing.
	ErrReference = errors.New("referenced record does not exist")
)

// Scope narrows a query.
type Scope = func(*gorm.DB) *gorm.DB

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"), strings.Contains(msg, "duplicate"):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case strings.Contains(msg, "foreign key constraint"):
		return fmt.Errorf("%w: %v", ErrReference, err)
	}
	return err
}

// Base implements the operations every repository shares.
type Base[T any] struct {
	db       *gorm.DB
	order    string
	preloads []string
}

func newBase[T any](db *gorm.DB, order string, preloads ...string) Base[T] {
	return Base[T]{db: db, order: order, preloads: preloads}
}

// DB returns the handle bound to ctx.
func (b Base[T]) DB(ctx context.Context) *gorm.DB {
	return b.db.WithContext(ctx)
}

func (b Base[T]) withTx(tx *gorm.DB) Base[T] {
	b.db = tx
	return b
}

// Find loads one row by primary key.
func (b Base[T]) Find(ctx context.Context, id uint) (*T, error) {
	q := b.DB(ctx)
	for _, p := range b.preloads {
		q = q.Preload(p)
	}
	var v T
	if err := q.First(&v, id).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// FindWhere loads the first row matching the scopes.
func (b Base[T]) FindWhere(ctx context.Context, scopes ...Scope) (*T, error) {
	q := b.DB(ctx).Scopes(scopes...)
	for _, p := range b.preloads {
		q = q.Preload(p)
	}
	var v T
	if err := q.Order(b.order).Take(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// List returns one page of rows matching the scopes.
func (b Base[T]) List(ctx context.Context, page, size int, scopes ...Scope) (orm.Page[T], error) {
	p, err := orm.FindPage[T](b.DB(ctx).Model(new(T)).Scopes(scopes...), b.order, page, size, b.preloads...)
	return p, translate(err)
}

// All returns every row matching the scopes.
func (b Base[T]) All(ctx context.Context, scopes ...Scope) ([]T, error) {
	var out []T
	err := b.DB(ctx).Scopes(scopes...).Order(b.order).Find(&out).Error
	return out, translate(err)
}

// Exists reports whether any row matches the scopes.
func (b Base[T]) Exists(ctx context.Context, scopes ...Scope) (bool, error) {
	var n int64
	err := b.DB(ctx).Model(new(T)).Scopes(scopes...).Limit(1).Count(&n).Error
	return n > 0, translate(err)
}

// Create inserts v. Associations are written by the owning repository.
func (b Base[T]) Create(ctx context.Context, v *T) error {
	return translate(b.DB(ctx).Omit(clause.Associations).Create(v).Error)
}

// Save writes every column of v.
func (b Base[T]) Save(ctx context.Context, v *T) error {
	return translate(b.DB(ctx).Omit(clause.Associations).Save(v).Error)
}

// Delete removes the row with the given id.
func (b Base[T]) Delete(ctx context.Context, id uint) error {
	res := b.DB(ctx).Delete(new(T), id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ─── Scopes ──────────────────────────────────────────────────────────────────

// Where is a scope for an arbitrary condition.
func Where(query string, args ...interface{}) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) }
}

// Not excludes the row with id; 0 excludes nothing.
func Not(id uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if id == 0 {
			return db
		}
		return db.Where("id <> ?", id)
	}
}

// OwnedBy limits rows to column = ownerID unless all is set.
func OwnedBy(column string, ownerID uint, all bool) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if all {
			return db
		}
		return db.Where(column+" = ?", ownerID)
	}
}

// Eq adds column = *v when v is set.
func Eq(column string, v *uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if v == nil {
			return db
		}
		return db.Where(column+" = ?", *v)
	}
}

// Set bundles every repository over one database handle.
type Set struct {
	Users        *UserRepository
	Categories   *CategoryRepository
	Tags         *TagRepository
	Products     *ProductRepository
	Carts        *CartRepository
	Orders       *OrderRepository
	OrderLines   *OrderLineRepository
	Reviews      *ReviewRepository
	ProductLikes *ProductLikeRepository
	ReviewLikes  *ReviewLikeRepository
}

// NewSet builds every repository over db.
func NewSet(db *gorm.DB) *Set {
	return &Set{
		Users:        NewUserRepository(db),
		Categories:   NewCategoryRepository(db),
		Tags:         NewTagRepository(db),
		Products:     NewProductRepository(db),
		Carts:        NewCartRepository(db),
		Orders:       NewOrderRepository(db),
		OrderLines:   NewOrderLineRepository(db),
		Reviews:      NewReviewRepository(db),
		ProductLikes: NewProductLikeRepository(db),
		ReviewLikes:  NewReviewLikeRepository(db),
	}
}
