package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/lock"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// EventOrderPlaced is fired after a placement commits.
const EventOrderPlaced = "order.placed"

// OrderPlaced is the payload of EventOrderPlaced.
type OrderPlaced struct {
	OrderID    uint         `json:"order_id"`
	CustomerID uint         `json:"customer_id"`
	Lines      []PlacedLine `json:"lines"`
	PlacedAt   time.Time    `json:"placed_at"`
}

// PlacedLine is one line of a placed order.
type PlacedLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// OrderService places and reads orders.
type OrderService struct {
	db      *gorm.DB
	carts   *repositories.CartRepository
	orders  *repositories.OrderRepository
	lines   *repositories.OrderLineRepository
	locker  lock.Locker
	bus     *event.Bus
	lockTTL time.Duration
}

// NewOrderService wires the placement workflow. bus may be nil.
func NewOrderService(db *gorm.DB, repos *repositories.Set, locker lock.Locker, bus *event.Bus, lockTTL time.Duration) *OrderService {
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &OrderService{
		db:      db,
		carts:   repos.Carts,
		orders:  repos.Orders,
		lines:   repos.OrderLines,
		locker:  locker,
		bus:     bus,
		lockTTL: lockTTL,
	}
}

func placementKey(customerID uint) string { return fmt.Sprintf("order:place:%d", customerID) }

// PlaceOrder turns every cart row of the customer into a line of one new
// order and empties the cart, all in one transaction. An empty cart yields
// an order without lines.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID uint) (*models.Order, error) {
	start := time.Now()
	log := logger.WithCtx(ctx)

	unlock, err := s.locker.Lock(ctx, placementKey(customerID), s.lockTTL)
	if err != nil {
		metrics.RecordPlacement("error", 0, start)
		return nil, fmt.Errorf("order: acquire placement lock: %w", err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			log.Warn("order: release placement lock", "customer_id", customerID, "error", err)
		}
	}()

	var order *models.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		orders := s.orders.WithTx(tx)

		o := &models.Order{CustomerID: &customerID}
		if err := orders.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		rows, err := carts.ForCustomer(ctx, customerID)
		if err != nil {
			return fmt.Errorf("read cart: %w", err)
		}

		o.Lines = make([]models.Order2Product, 0, len(rows))
		for _, row := range rows {
			productID := row.ProductID
			line := models.Order2Product{OrderID: o.ID, ProductID: &productID, Quantity: row.Quantity}
			if err := orders.AddLine(ctx, &line); err != nil {
				return fmt.Errorf("add line for cart %d: %w", row.ID, err)
			}
			if err := carts.Consume(ctx, row.ID, customerID); err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return ErrCartChanged
				}
				return fmt.Errorf("consume cart %d: %w", row.ID, err)
			}
			o.Lines = append(o.Lines, line)
		}

		order = o
		return nil
	})
	if err != nil {
		result := "error"
		if errors.Is(err, ErrCartChanged) {
			result = "conflict"
		}
		metrics.RecordPlacement(result, 0, start)
		log.Warn("order: placement rolled back", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("order: place: %w", err)
	}

	metrics.RecordPlacement("success", len(order.Lines), start)
	log.Info("order placed", "order_id", order.ID, "customer_id", customerID, "lines", len(order.Lines))
	s.announce(ctx, order)
	return order, nil
}

func (s *OrderService) announce(ctx context.Context, o *models.Order) {
	if s.bus == nil {
		return
	}
	payload := OrderPlaced{OrderID: o.ID, CustomerID: o.OwnerID(), PlacedAt: o.CreatedAt.UTC()}
	payload.Lines = make([]PlacedLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		if l.ProductID != nil {
			payload.Lines = append(payload.Lines, PlacedLine{ProductID: *l.ProductID, Quantity: l.Quantity})
		}
	}
	s.bus.FireAsync(ctx, EventOrderPlaced, payload)
}

// Get returns one order with its lines.
func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	return s.orders.Find(ctx, id)
}

// List returns the customer's orders, or all orders when all is set.
func (s *OrderService) List(ctx context.Context, customerID uint, all bool, page, size int) (orm.Page[models.Order], error) {
	return s.orders.ListFor(ctx, customerID, all, page, size)
}

// Delete removes an order and its lines.
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	return s.orders.Delete(ctx, id)
}

// GetLine returns one order line with its order loaded.
func (s *OrderService) GetLine(ctx context.Context, id uint) (*models.Order2Product, error) {
	return s.lines.Find(ctx, id)
}

// ListLines returns lines of the customer's orders, or all lines when all
// is set, optionally limited to one order.
func (s *OrderService) ListLines(ctx context.Context, customerID uint, all bool, orderID *uint, page, size int) (orm.Page[models.Order2Product], error) {
	return s.lines.ListFor(ctx, customerID, all, orderID, page, size)
}
