// Package orm holds reusable GORM scopes and the paginated finder shared by
// every repository.
package orm

import (
	"strings"

	"gorm.io/gorm"
)

// Page is one page of a list query.
type Page[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool { return int64(p.Page*p.PageSize) < p.Total }

// HasPrev reports whether an earlier page exists.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// Paginate applies LIMIT/OFFSET for a 1-based page.
func Paginate(page, size int) func(*gorm.DB) *gorm.DB {
	if page < 1 {
		page = 1
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * size).Limit(size)
	}
}

// Search matches column against a case-insensitive substring. An empty term
// leaves the query untouched.
func Search(column, term string) func(*gorm.DB) *gorm.DB {
	term = strings.TrimSpace(term)
	return func(db *gorm.DB) *gorm.DB {
		if term == "" {
			return db
		}
		return db.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(term)+"%")
	}
}

// FindPage counts the rows matched by db and loads the requested page in
// the given order. Preloads apply to the page query only.
func FindPage[T any](db *gorm.DB, order string, page, size int, preloads ...string) (Page[T], error) {
	if page < 1 {
		page = 1
	}
	out := Page[T]{Page: page, PageSize: size}

	q := db.Session(&gorm.Session{})
	if err := q.Model(new(T)).Count(&out.Total).Error; err != nil {
		return out, err
	}
	find := q.Order(order).Scopes(Paginate(page, size))
	for _, p := range preloads {
		find = find.Preload(p)
	}
	if err := find.Find(&out.Items).Error; err != nil {
		return out, err
	}
	return out, nil
}
