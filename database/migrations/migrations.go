// Package migrations registers the storefront schema with the migration
// runner. Importing it (as cmd/storefront and testkit do) is enough.
package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

func init() {
	migration.Register("20260101000100_create_users_table", tables(drop("users"), &models.User{}))
	migration.Register("20260101000200_create_categories_table", tables(drop("categories"), &models.Category{}))
	migration.Register("20260101000300_create_tags_table", tables(drop("tags"), &models.Tag{}))
	migration.Register("20260101000400_create_products_table", tables(drop("product_tags", "products"), &models.Product{}))
	migration.Register("20260101000500_create_carts_table", tables(drop("carts"), &models.Cart{}))
	migration.Register("20260101000600_create_orders_table", tables(drop("orders"), &models.Order{}))
	migration.Register("20260101000700_create_order2products_table", tables(drop("order2products"), &models.Order2Product{}))
	migration.Register("20260101000800_create_reviews_table", tables(drop("reviews"), &models.Review{}))
	migration.Register("20260101000900_create_likes_tables", tables(drop("review_likes", "product_likes"), &models.ProductLike{}, &models.ReviewLike{}))
}

// createTable migrates models up and drops the named tables, in order, on
// the way down.
type createTable struct {
	models []interface{}
	drop   []string
}

func tables(drop []string, models ...interface{}) *createTable {
	return &createTable{models: models, drop: drop}
}

func drop(names ...string) []string { return names }

func (m *createTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(m.models...)
}

func (m *createTable) Down(db *gorm.DB) error {
	for _, t := range m.drop {
		if err := db.Migrator().DropTable(t); err != nil {
			return err
		}
	}
	return nil
}
