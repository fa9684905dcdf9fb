package event

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/vending-machine/internal/storage/mq"
)

type fakeConsumer struct {
	handlers map[string]mq.HandlerFunc
	running  bool
}

func (c *fakeConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if c.handlers == nil {
		c.handlers = map[string]mq.HandlerFunc{}
	}
	if _, ok := c.handlers[topic]; ok {
		return errors.New("duplicate")
	}
	c.handlers[topic] = handler
	return nil
}

func (c *fakeConsumer) Run(context.Context) (mq.CleanupFunc, error) {
	c.running = true
	return func() { c.running = false }, nil
}

func TestServiceRun(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	consumer := &fakeConsumer{}

	cleanup, err := New(logger, consumer).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, consumer.running)

	assert.Len(t, consumer.handlers, 3)

	t.Run("Should decode and handle order placed events", func(t *testing.T) {
		err := consumer.handlers[TopicOrderPlaced](context.Background(), TopicOrderPlaced,
			[]byte(`{"slot_id":"s-1","product_name":"Snickers Bar","quantity":3,"total":"31.20","slot_emptied":true}`))
		require.NoError(t, err)

		assert.Contains(t, buf.String(), `"product":"Snickers Bar"`)
		assert.Contains(t, buf.String(), "slot sold out and was removed")
	})

	t.Run("Should reject malformed payloads", func(t *testing.T) {
		err := consumer.handlers[TopicCreditRefunded](context.Background(), TopicCreditRefunded, []byte(`{`))
		assert.ErrorContains(t, err, "unmarshal credit.refunded event")
	})

	cleanup()
	assert.False(t, consumer.running)
}
