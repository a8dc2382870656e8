package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	Base[models.User]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{newBase[models.User](db, "id")}
}

// FindByUsername looks up a user by their username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.FindWhere(ctx, Where("username = ?", username))
}

// UsernameTaken reports whether another user already has username.
func (r *UserRepository) UsernameTaken(ctx context.Context, username string, except uint) (bool, error) {
	return r.Exists(ctx, Where("username = ?", username), Not(except))
}

// TouchLogin stamps last_login without bumping updated_at.
func (r *UserRepository) TouchLogin(ctx context.Context, id uint, at time.Time) error {
	return translate(r.DB(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumn("last_login", at).Error)
}

// Delete removes the user. Their products, carts, reviews and likes go with
// them; their orders stay with no customer.
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return translate(r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_tags WHERE product_id IN (SELECT id FROM products WHERE vendor_id = ?)", id).Error; err != nil {
			return err
		}
		return r.withTx(tx).Delete(ctx, id)
	}))
}
