package seeders

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

func init() {
	Register("users", seedUsers)
	Register("catalog", seedCatalog)
	Register("carts", seedCarts)
}

type demoUser struct {
	username string
	staff    bool
}

var demoUsers = []demoUser{
	{"admin", true},
	{"vendor", false},
	{"customer", false},
}

func seedUsers(db *gorm.DB) error {
	hash, err := auth.HashPassword(config.Get("SEED_PASSWORD", "password"))
	if err != nil {
		return err
	}
	for _, d := range demoUsers {
		u := models.User{}
		err := db.Where(models.User{Username: d.username}).
			Attrs(models.User{
				Password:    hash,
				Email:       d.username + "@example.com",
				IsStaff:     d.staff,
				IsSuperuser: d.staff,
				IsActive:    true,
				DateJoined:  time.Now().UTC(),
			}).
			FirstOrCreate(&u).Error
		if err != nil {
			return fmt.Errorf("user %s: %w", d.username, err)
		}
	}
	return nil
}

var demoProducts = []struct {
	title    string
	price    int64
	category string
	tags     []string
}{
	{"Stovetop kettle", 2500, "kitchen", []string{"gift", "steel"}},
	{"Chef knife", 4900, "kitchen", []string{"steel"}},
	{"Desk lamp", 3200, "home", []string{"gift"}},
	{"Linen throw", 5400, "home", nil},
}

func seedCatalog(db *gorm.DB) error {
	var vendor models.User
	if err := db.Where("username = ?", "vendor").First(&vendor).Error; err != nil {
		return fmt.Errorf("vendor: %w", err)
	}

	categories := map[string]*models.Category{}
	tags := map[string]*models.Tag{}
	for _, p := range demoProducts {
		if categories[p.category] == nil {
			c := &models.Category{}
			if err := db.Where(models.Category{Title: p.category}).FirstOrCreate(c).Error; err != nil {
				return err
			}
			categories[p.category] = c
		}
		for _, title := range p.tags {
			if tags[title] == nil {
				t := &models.Tag{}
				if err := db.Where(models.Tag{Title: title}).FirstOrCreate(t).Error; err != nil {
					return err
				}
				tags[title] = t
			}
		}
	}

	for _, p := range demoProducts {
		product := models.Product{}
		err := db.Omit("Tags").
			Where(models.Product{VendorID: vendor.ID, Title: p.title}).
			Attrs(models.Product{Price: p.price, CategoryID: &categories[p.category].ID}).
			FirstOrCreate(&product).Error
		if err != nil {
			return fmt.Errorf("product %s: %w", p.title, err)
		}
		if len(p.tags) == 0 {
			continue
		}
		linked := make([]models.Tag, 0, len(p.tags))
		for _, title := range p.tags {
			linked = append(linked, *tags[title])
		}
		if err := db.Model(&product).Omit("Tags.*").Association("Tags").Replace(linked); err != nil {
			return fmt.Errorf("product %s tags: %w", p.title, err)
		}
	}
	return nil
}

func seedCarts(db *gorm.DB) error {
	var customer models.User
	if err := db.Where("username = ?", "customer").First(&customer).Error; err != nil {
		return fmt.Errorf("customer: %w", err)
	}
	var products []models.Product
	if err := db.Order("id").Limit(2).Find(&products).Error; err != nil {
		return err
	}
	for i, p := range products {
		row := models.Cart{}
		err := db.Where(models.Cart{CustomerID: customer.ID, ProductID: p.ID}).
			Attrs(models.Cart{Quantity: i + 1}).
			FirstOrCreate(&row).Error
		if err != nil {
			return err
		}
	}
	return nil
}
