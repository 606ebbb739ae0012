// Package events publishes domain events after state changes commit.
package events

import (
	"context"
	"errors"
	"sync"
)

const (
	PaymentPaid   = "payment.paid"
	PaymentFailed = "payment.failed"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, v any) error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// Fanout delivers every event to each publisher in order. One failing
// subscriber does not stop the others.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, key string, v any) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, key, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Recorded
}

type Recorded struct {
	Key     string
	Payload any
}

func (r *Recorder) Publish(_ context.Context, key string, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Recorded{Key: key, Payload: v})
	return nil
}

func (r *Recorder) Count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.Events {
		if e.Key == key {
			n++
		}
	}
	return n
}
