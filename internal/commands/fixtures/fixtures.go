// Package fixtures records command wiring performed by the DI container.
package fixtures

import (
	"sync"

	"github.com/goliatone/go-cms-variants/internal/di"
)

// RecordingRegistry implements di.CommandRegistry. A non-nil Err fails
// every registration.
type RecordingRegistry struct {
	mu       sync.Mutex
	Handlers []any
	Err      error
}

func NewRecordingRegistry() *RecordingRegistry {
	return &RecordingRegistry{}
}

func (r *RecordingRegistry) RegisterCommand(handler any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Handlers = append(r.Handlers, handler)
	return nil
}

// RecordingDispatcher implements di.CommandDispatcher and hands out
// subscriptions that remember whether the container released them.
type RecordingDispatcher struct {
	mu            sync.Mutex
	Subscriptions []*RecordingSubscription
	Err           error
}

func NewRecordingDispatcher() *RecordingDispatcher {
	return &RecordingDispatcher{}
}

func (d *RecordingDispatcher) RegisterCommand(handler any) (di.CommandSubscription, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	sub := &RecordingSubscription{Handler: handler}
	d.Subscriptions = append(d.Subscriptions, sub)
	return sub, nil
}

// Released reports whether every subscription has been unsubscribed.
func (d *RecordingDispatcher) Released() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, sub := range d.Subscriptions {
		if !sub.Unsubscribed {
			return false
		}
	}
	return true
}

type RecordingSubscription struct {
	Handler      any
	Unsubscribed bool
}

func (s *RecordingSubscription) Unsubscribe() {
	s.Unsubscribed = true
}
