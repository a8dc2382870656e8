// Package listeners reacts to domain events after they commit.
package listeners

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/broker"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Notifier delivers a message to the open connections of one user.
type Notifier interface {
	SendTo(userID uint, data []byte) bool
}

// Publisher sends a message to the event stream.
type Publisher interface {
	Publish(ctx context.Context, m broker.Message) error
}

// Notification is the frame pushed to a customer's order feed.
type Notification struct {
	Type       string               `json:"type"`
	EventID    string               `json:"event_id"`
	OccurredAt time.Time            `json:"occurred_at"`
	Data       services.OrderPlaced `json:"data"`
}

// Register attaches the order.placed listeners. Either notifier or pub may
// be nil when that channel is not configured.
func Register(bus *event.Bus, notifier Notifier, pub Publisher, topic string) {
	if notifier != nil {
		bus.Listen(services.EventOrderPlaced, PushToCustomer(notifier))
	}
	if pub != nil {
		bus.Listen(services.EventOrderPlaced, PublishOrder(pub, topic))
	}
}

// PushToCustomer sends the placed order to the customer's websocket feed.
// A customer without open connections is not an error.
func PushToCustomer(n Notifier) event.Handler {
	return func(ctx context.Context, e event.Event) error {
		placed, err := orderPlaced(e)
		if err != nil {
			return err
		}
		frame, err := json.Marshal(Notification{
			Type:       e.Name,
			EventID:    e.ID,
			OccurredAt: e.OccurredAt,
			Data:       placed,
		})
		if err != nil {
			return fmt.Errorf("listeners: encode notification: %w", err)
		}
		if !n.SendTo(placed.CustomerID, frame) {
			logger.WithCtx(ctx).Debug("order feed: no open connection", "customer_id", placed.CustomerID)
		}
		return nil
	}
}

// PublishOrder forwards the placed order to topic, keyed by customer so a
// customer's orders stay in one partition.
func PublishOrder(p Publisher, topic string) event.Handler {
	return func(ctx context.Context, e event.Event) error {
		placed, err := orderPlaced(e)
		if err != nil {
			return err
		}
		return p.Publish(ctx, broker.Message{
			Topic:   topic,
			Key:     strconv.FormatUint(uint64(placed.CustomerID), 10),
			ID:      e.ID,
			Type:    e.Name,
			Payload: placed,
		})
	}
}

func orderPlaced(e event.Event) (services.OrderPlaced, error) {
	switch p := e.Payload.(type) {
	case services.OrderPlaced:
		return p, nil
	case *services.OrderPlaced:
		if p != nil {
			return *p, nil
		}
	}
	return services.OrderPlaced{}, fmt.Errorf("listeners: unexpected %s payload %T", e.Name, e.Payload)
}
