// Package memory provides an in-memory publisher.Publisher for tests.
package memory

import (
	"context"
	"fmt"
	"sync"
)

// Message is a captured publish call.
type Message struct {
	Data  []byte
	Attrs map[string]string
}

// Publisher records published messages in order.
type Publisher struct {
	mu       sync.Mutex
	messages []Message
}

// New creates an empty Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish records the message and returns a sequential id.
func (p *Publisher) Publish(_ context.Context, data []byte, attrs map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, Message{Data: append([]byte(nil), data...), Attrs: attrs})
	return fmt.Sprintf("mem-%d", len(p.messages)), nil
}

// Messages returns a copy of everything published so far.
func (p *Publisher) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Message(nil), p.messages...)
}

// Close does nothing.
func (p *Publisher) Close() error { return nil }
