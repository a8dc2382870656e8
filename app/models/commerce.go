package models

// Cart is one product line in a customer's cart. A customer holds at most
// one row per product.
type Cart struct {
	ID         uint     `gorm:"primaryKey"`
	CustomerID uint     `gorm:"not null;uniqueIndex:idx_carts_customer_product"`
	Customer   *User    `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	ProductID  uint     `gorm:"not null;uniqueIndex:idx_carts_customer_product;index"`
	Product    *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Quantity   int      `gorm:"not null;default:1;check:quantity >= 1"`
	Timestamps
}

// Order is a placed checkout. The customer reference survives as NULL when
// the user is deleted so order history is kept.
type Order struct {
	ID         uint  `gorm:"primaryKey"`
	CustomerID *uint `gorm:"index"`
	Customer   *User `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL"`
	Timestamps

	// Lines is filled by the repository, not by GORM associations.
	Lines []Order2Product `gorm:"-"`
}

// OwnerID returns the customer id, or 0 for an orphaned order.
func (o *Order) OwnerID() uint {
	if o.CustomerID == nil {
		return 0
	}
	return *o.CustomerID
}

// Order2Product is one line of an order, copied from a cart row at
// placement time. A product appears at most once per order.
type Order2Product struct {
	ID        uint     `gorm:"primaryKey"`
	OrderID   uint     `gorm:"not null;uniqueIndex:idx_order2products_order_product"`
	Order     *Order   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ProductID *uint    `gorm:"uniqueIndex:idx_order2products_order_product;index"`
	Product   *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL"`
	Quantity  int      `gorm:"not null;default:1;check:quantity >= 1"`
	Timestamps
}

func (Order2Product) TableName() string { return "order2products" }
