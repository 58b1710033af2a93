package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromDriver(t *testing.T) {
	ctx := context.Background()

	t.Run("NoopByName", func(t *testing.T) {
		m, err := NewFromDriver(ctx, "noop", FactoryOptions{})
		require.NoError(t, err)
		assert.IsType(t, &Noop{}, m)
	})

	t.Run("EmptyDefaultsToNoop", func(t *testing.T) {
		m, err := NewFromDriver(ctx, "", FactoryOptions{})
		require.NoError(t, err)
		assert.IsType(t, &Noop{}, m)
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		_, err := NewFromDriver(ctx, "rabbitmq", FactoryOptions{})
		require.ErrorIs(t, err, ErrUnknownDriver)
	})
}

func TestNoop(t *testing.T) {
	t.Run("PublishDropsMessage", func(t *testing.T) {
		m := NewNoop()

		res, err := m.Publish(context.Background(), "user.registered", OutgoingMessage{Body: []byte(`{}`)})
		require.NoError(t, err)
		assert.Empty(t, res.MessageID)
		require.NoError(t, m.Close())
	})

	t.Run("ConsumeStopsOnContextCancel", func(t *testing.T) {
		m := NewNoop()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- m.Consume(ctx, "user.registered", func(context.Context, Message) error {
				t.Error("noop consumer must never deliver a message")
				return nil
			})
		}()

		cancel()
		select {
		case err := <-done:
			require.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("consume did not stop after cancellation")
		}
	})
}
