package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSendsJSONWithHeaders(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "orders.placed" {
			return errors.New("wrong topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "customer_7" {
			return errors.New("wrong key " + string(key))
		}
		body, _ := msg.Value.Encode()
		var payload map[string]interface{}
		if err := json.Unmarshal(body, &payload); err != nil {
			return err
		}
		if payload["order_id"] != float64(3) {
			return errors.New("wrong payload")
		}
		seen := map[string]string{}
		for _, h := range msg.Headers {
			seen[string(h.Key)] = string(h.Value)
		}
		if seen["event_type"] != "order.placed" || seen["event_id"] != "evt-1" {
			return errors.New("missing event headers")
		}
		return nil
	})

	p := NewPublisherWith(producer)
	err := p.Publish(context.Background(), Message{
		Topic:   "orders.placed",
		Key:     "customer_7",
		ID:      "evt-1",
		Type:    "order.placed",
		Payload: map[string]int{"order_id": 3},
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestPublishReportsSendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisherWith(producer)
	err := p.Publish(context.Background(), Message{Topic: "orders.placed", Type: "order.placed", Payload: 1})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}
