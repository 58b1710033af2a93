package messaging

import "context"

// Noop is a messaging implementation that drops every publish and never
// delivers messages. It keeps local development working without a broker.
type Noop struct{}

// NewNoop constructs a no-op messaging client.
func NewNoop() *Noop {
	return &Noop{}
}

// Publish drops the message.
func (n *Noop) Publish(_ context.Context, _ string, _ OutgoingMessage) (PublishResult, error) {
	return PublishResult{}, nil
}

// Consume blocks until the context is done; no messages are ever delivered.
func (n *Noop) Consume(ctx context.Context, _ string, _ Handler, _ ...ConsumeOption) error {
	<-ctx.Done()
	return ctx.Err()
}

// Close is a no-op.
func (n *Noop) Close() error {
	return nil
}
