package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// CartRepository handles Cart rows.
type CartRepository struct {
	Base[models.Cart]
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{newBase[models.Cart](db, "created_at, id")}
}

// WithTx returns a repository bound to tx.
func (r *CartRepository) WithTx(tx *gorm.DB) *CartRepository {
	return &CartRepository{r.withTx(tx)}
}

// ListFor returns the customer's rows, or every row when all is set.
func (r *CartRepository) ListFor(ctx context.Context, customerID uint, all bool, page, size int) (orm.Page[models.Cart], error) {
	return r.List(ctx, page, size, OwnedBy("customer_id", customerID, all))
}

// Taken reports whether the customer already holds another row for product.
func (r *CartRepository) Taken(ctx context.Context, customerID, productID, except uint) (bool, error) {
	return r.Exists(ctx, Where("customer_id = ? AND product_id = ?", customerID, productID), Not(except))
}

// ForCustomer returns every row of the customer in id order.
func (r *CartRepository) ForCustomer(ctx context.Context, customerID uint) ([]models.Cart, error) {
	var rows []models.Cart
	err := r.DB(ctx).Where("customer_id = ?", customerID).Order("id").Find(&rows).Error
	return rows, translate(err)
}

// Consume deletes one row of the customer. ErrNotFound means the row was
// already gone, i.e. someone else consumed it.
func (r *CartRepository) Consume(ctx context.Context, id, customerID uint) error {
	res := r.DB(ctx).Where("id = ? AND customer_id = ?", id, customerID).Delete(&models.Cart{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected != 1 {
		return ErrNotFound
	}
	return nil
}

// OrderRepository handles Order rows. Returned orders carry their lines.
type OrderRepository struct {
	Base[models.Order]
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{newBase[models.Order](db, "created_at DESC, id DESC")}
}

// WithTx returns a repository bound to tx.
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{r.withTx(tx)}
}

func (r *OrderRepository) Find(ctx context.Context, id uint) (*models.Order, error) {
	o, err := r.Base.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	orders := []models.Order{*o}
	if err := r.loadLines(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListFor returns the customer's orders, or every order when all is set.
func (r *OrderRepository) ListFor(ctx context.Context, customerID uint, all bool, page, size int) (orm.Page[models.Order], error) {
	p, err := r.List(ctx, page, size, OwnedBy("customer_id", customerID, all))
	if err != nil {
		return p, err
	}
	return p, r.loadLines(ctx, p.Items)
}

// AddLine inserts one order line.
func (r *OrderRepository) AddLine(ctx context.Context, line *models.Order2Product) error {
	return translate(r.DB(ctx).Omit("Order", "Product").Create(line).Error)
}

// CountFor returns the number of orders of the customer.
func (r *OrderRepository) CountFor(ctx context.Context, customerID uint) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.Order{}).Where("customer_id = ?", customerID).Count(&n).Error
	return n, translate(err)
}

func (r *OrderRepository) loadLines(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uint, len(orders))
	index := make(map[uint]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Lines = []models.Order2Product{}
	}

	var lines []models.Order2Product
	if err := r.DB(ctx).Where("order_id IN ?", ids).Order("id").Find(&lines).Error; err != nil {
		return translate(err)
	}
	for _, l := range lines {
		i := index[l.OrderID]
		orders[i].Lines = append(orders[i].Lines, l)
	}
	return nil
}

// OrderLineRepository handles Order2Product rows. Lines are owned through
// their order's customer.
type OrderLineRepository struct {
	Base[models.Order2Product]
}

func NewOrderLineRepository(db *gorm.DB) *OrderLineRepository {
	return &OrderLineRepository{newBase[models.Order2Product](db, "id", "Order")}
}

// ListFor returns lines of the customer's orders, or every line when all is
// set, optionally limited to one order.
func (r *OrderLineRepository) ListFor(ctx context.Context, customerID uint, all bool, orderID *uint, page, size int) (orm.Page[models.Order2Product], error) {
	scopes := []Scope{Eq("order_id", orderID)}
	if !all {
		scopes = append(scopes, Where("order_id IN (SELECT id FROM orders WHERE customer_id = ?)", customerID))
	}
	return r.List(ctx, page, size, scopes...)
}
