package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

type fixture struct {
	db    *gorm.DB
	repos *repositories.Set
	ctx   context.Context
}

func setup(t *testing.T) fixture {
	db := testkit.NewDB(t)
	return fixture{db: db, repos: repositories.NewSet(db), ctx: context.Background()}
}

func (f fixture) user(t *testing.T, name string) *models.User {
	u := &models.User{Username: name, Password: "x", IsActive: true, DateJoined: time.Now()}
	require.NoError(t, f.repos.Users.Create(f.ctx, u))
	return u
}

func (f fixture) product(t *testing.T, vendor *models.User, title string, price int64, tags ...uint) *models.Product {
	p := &models.Product{VendorID: vendor.ID, Title: title, Price: price}
	require.NoError(t, f.repos.Products.Create(f.ctx, p, tags))
	return p
}

func TestFindMissingIsNotFound(t *testing.T) {
	f := setup(t)
	_, err := f.repos.Users.Find(f.ctx, 99)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, f.repos.Categories.Delete(f.ctx, 99), repositories.ErrNotFound)
}

func TestUniqueIndexesAreDuplicates(t *testing.T) {
	f := setup(t)
	alice := f.user(t, "alice")

	err := f.repos.Users.Create(f.ctx, &models.User{Username: "alice", Password: "x", DateJoined: time.Now()})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	p := f.product(t, alice, "Mug", 500)
	require.NoError(t, f.repos.Carts.Create(f.ctx, &models.Cart{CustomerID: alice.ID, ProductID: p.ID, Quantity: 1}))
	err = f.repos.Carts.Create(f.ctx, &models.Cart{CustomerID: alice.ID, ProductID: p.ID, Quantity: 2})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	require.NoError(t, f.repos.Reviews.Create(f.ctx, &models.Review{ReviewerID: alice.ID, ProductID: p.ID, Rating: 4}))
	err = f.repos.Reviews.Create(f.ctx, &models.Review{ReviewerID: alice.ID, ProductID: p.ID, Rating: 5})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	order := &models.Order{CustomerID: &alice.ID}
	require.NoError(t, f.repos.Orders.Create(f.ctx, order))
	require.NoError(t, f.repos.Orders.AddLine(f.ctx, &models.Order2Product{OrderID: order.ID, ProductID: &p.ID, Quantity: 1}))
	err = f.repos.Orders.AddLine(f.ctx, &models.Order2Product{OrderID: order.ID, ProductID: &p.ID, Quantity: 3})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestTakenPrechecks(t *testing.T) {
	f := setup(t)
	alice := f.user(t, "alice")
	p := f.product(t, alice, "Mug", 500)
	cart := &models.Cart{CustomerID: alice.ID, ProductID: p.ID, Quantity: 1}
	require.NoError(t, f.repos.Carts.Create(f.ctx, cart))

	taken, err := f.repos.Carts.Taken(f.ctx, alice.ID, p.ID, 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = f.repos.Carts.Taken(f.ctx, alice.ID, p.ID, cart.ID)
	require.NoError(t, err)
	assert.False(t, taken, "a row never conflicts with itself")

	taken, err = f.repos.Users.UsernameTaken(f.ctx, "bob", 0)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestProductTagsAndFilters(t *testing.T) {
	f := setup(t)
	vendor := f.user(t, "vendor")
	other := f.user(t, "other")

	home := &models.Tag{Title: "home"}
	gift := &models.Tag{Title: "gift"}
	require.NoError(t, f.repos.Tags.Create(f.ctx, home))
	require.NoError(t, f.repos.Tags.Create(f.ctx, gift))
	kitchen := &models.Category{Title: "kitchen"}
	require.NoError(t, f.repos.Categories.Create(f.ctx, kitchen))

	mug := f.product(t, vendor, "Coffee Mug", 500, home.ID, gift.ID)
	mug.CategoryID = &kitchen.ID
	require.NoError(t, f.repos.Products.Update(f.ctx, mug, nil))
	f.product(t, other, "Desk Lamp", 2500, home.ID)

	loaded, err := f.repos.Products.Find(f.ctx, mug.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{home.ID, gift.ID}, loaded.TagIDs())
	require.NotNil(t, loaded.CategoryID)

	page, err := f.repos.Products.Search(f.ctx, repositories.ProductFilter{TagID: &gift.ID}, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Coffee Mug", page.Items[0].Title)

	page, err = f.repos.Products.Search(f.ctx, repositories.ProductFilter{TagID: &home.ID}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = f.repos.Products.Search(f.ctx, repositories.ProductFilter{Search: "LAMP"}, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, other.ID, page.Items[0].VendorID)

	page, err = f.repos.Products.Search(f.ctx, repositories.ProductFilter{CategoryID: &kitchen.ID, VendorID: &vendor.ID}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	require.NoError(t, f.repos.Products.Update(f.ctx, mug, []uint{}))
	loaded, err = f.repos.Products.Find(f.ctx, mug.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Tags)
}

func TestUnknownTagIsReferenceError(t *testing.T) {
	f := setup(t)
	vendor := f.user(t, "vendor")
	err := f.repos.Products.Create(f.ctx, &models.Product{VendorID: vendor.ID, Title: "Mug"}, []uint{42})
	assert.ErrorIs(t, err, repositories.ErrReference)

	var n int64
	f.db.Model(&models.Product{}).Count(&n)
	assert.Zero(t, n, "product insert rolled back")
}

func TestForeignKeyViolationIsReferenceError(t *testing.T) {
	f := setup(t)
	alice := f.user(t, "alice")

	err := f.repos.Carts.Create(f.ctx, &models.Cart{CustomerID: alice.ID, ProductID: 4242, Quantity: 1})
	assert.ErrorIs(t, err, repositories.ErrReference)
	err = f.repos.Reviews.Create(f.ctx, &models.Review{ReviewerID: 999, ProductID: 4242, Rating: 3})
	assert.ErrorIs(t, err, repositories.ErrReference)
}

func TestDeletesCascade(t *testing.T) {
	f := setup(t)
	vendor := f.user(t, "vendor")
	buyer := f.user(t, "buyer")
	tag := &models.Tag{Title: "home"}
	require.NoError(t, f.repos.Tags.Create(f.ctx, tag))
	p := f.product(t, vendor, "Mug", 500, tag.ID)

	require.NoError(t, f.repos.Carts.Create(f.ctx, &models.Cart{CustomerID: buyer.ID, ProductID: p.ID, Quantity: 1}))
	order := &models.Order{CustomerID: &buyer.ID}
	require.NoError(t, f.repos.Orders.Create(f.ctx, order))
	require.NoError(t, f.repos.Orders.AddLine(f.ctx, &models.Order2Product{OrderID: order.ID, ProductID: &p.ID, Quantity: 1}))

	require.NoError(t, f.repos.Users.Delete(f.ctx, vendor.ID))

	var carts, products int64
	f.db.Model(&models.Cart{}).Count(&carts)
	f.db.Model(&models.Product{}).Count(&products)
	assert.Zero(t, carts)
	assert.Zero(t, products)

	kept, err := f.repos.Orders.Find(f.ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, kept.Lines, 1)
	assert.Nil(t, kept.Lines[0].ProductID, "order line survives without its product")

	require.NoError(t, f.repos.Users.Delete(f.ctx, buyer.ID))
	kept, err = f.repos.Orders.Find(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.CustomerID)
}

func TestConsumeRequiresExactlyOneRow(t *testing.T) {
	f := setup(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	p := f.product(t, bob, "Mug", 500)
	cart := &models.Cart{CustomerID: alice.ID, ProductID: p.ID, Quantity: 2}
	require.NoError(t, f.repos.Carts.Create(f.ctx, cart))

	assert.ErrorIs(t, f.repos.Carts.Consume(f.ctx, cart.ID, bob.ID), repositories.ErrNotFound)
	require.NoError(t, f.repos.Carts.Consume(f.ctx, cart.ID, alice.ID))
	assert.ErrorIs(t, f.repos.Carts.Consume(f.ctx, cart.ID, alice.ID), repositories.ErrNotFound)
}

func TestProductStats(t *testing.T) {
	f := setup(t)
	vendor := f.user(t, "vendor")
	a := f.user(t, "a")
	b := f.user(t, "b")
	mug := f.product(t, vendor, "Mug", 500)
	lamp := f.product(t, vendor, "Lamp", 900)

	require.NoError(t, f.repos.Reviews.Create(f.ctx, &models.Review{ReviewerID: a.ID, ProductID: mug.ID, Rating: 4}))
	require.NoError(t, f.repos.Reviews.Create(f.ctx, &models.Review{ReviewerID: b.ID, ProductID: mug.ID, Rating: 5}))
	require.NoError(t, f.repos.ProductLikes.Create(f.ctx, &models.ProductLike{LikerID: a.ID, ProductID: mug.ID}))

	stats, err := f.repos.Products.Stats(f.ctx, []uint{mug.ID, lamp.ID})
	require.NoError(t, err)
	require.NotNil(t, stats[mug.ID].Rating)
	assert.InDelta(t, 4.5, *stats[mug.ID].Rating, 1e-9)
	assert.EqualValues(t, 1, stats[mug.ID].Likes)
	assert.Nil(t, stats[lamp.ID].Rating)
	assert.Zero(t, stats[lamp.ID].Likes)
}

func TestOwnerScopedLists(t *testing.T) {
	f := setup(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	p := f.product(t, bob, "Mug", 500)

	for _, u := range []*models.User{alice, bob} {
		o := &models.Order{CustomerID: &u.ID}
		require.NoError(t, f.repos.Orders.Create(f.ctx, o))
		require.NoError(t, f.repos.Orders.AddLine(f.ctx, &models.Order2Product{OrderID: o.ID, ProductID: &p.ID, Quantity: 1}))
	}

	orders, err := f.repos.Orders.ListFor(f.ctx, alice.ID, false, 1, 20)
	require.NoError(t, err)
	require.Len(t, orders.Items, 1)
	assert.Len(t, orders.Items[0].Lines, 1)

	orders, err = f.repos.Orders.ListFor(f.ctx, alice.ID, true, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, orders.Total)

	lines, err := f.repos.OrderLines.ListFor(f.ctx, bob.ID, false, nil, 1, 20)
	require.NoError(t, err)
	require.Len(t, lines.Items, 1)
	require.NotNil(t, lines.Items[0].Order)
	assert.Equal(t, bob.ID, lines.Items[0].Order.OwnerID())
}
