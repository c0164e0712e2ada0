// Package publisher abstracts outbound notification of sync results.
package publisher

import "context"

// Publisher delivers a serialized message with attributes to an
// external topic and returns the broker-assigned message id.
type Publisher interface {
	Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Noop discards every message. It stands in when no topic is
// configured.
type Noop struct{}

// Publish discards the message and returns a placeholder id.
func (Noop) Publish(context.Context, []byte, map[string]string) (string, error) {
	return "noop", nil
}

// Close does nothing.
func (Noop) Close() error { return nil }
