// Package memory is an in-process implementation of the store contract, used
// by tests and as a fallback when no database is configured.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"go-hirestream-backend/internal/store"
)

const subscriberBuffer = 64

// Store keeps every collection in a map guarded by a single mutex. Change
// events are fanned out to subscribers under the same lock, so subscribers
// observe changes in commit order.
type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]json.RawMessage
	subs        map[string][]*subscription
}

func New() *Store {
	return &Store{
		collections: make(map[string]map[string]json.RawMessage),
		subs:        make(map[string][]*subscription),
	}
}

func (s *Store) collection(name string) map[string]json.RawMessage {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]json.RawMessage)
		s.collections[name] = c
	}
	return c
}

func (s *Store) Create(ctx context.Context, collection string, rec store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(collection)[rec.ID] = append(json.RawMessage(nil), rec.Data...)
	s.publish(collection, store.Event{Op: store.OpInsert, Record: rec})
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.collection(collection)[id]
	if !ok {
		return store.Record{}, store.ErrNotFound
	}
	return store.Record{ID: id, Data: append(json.RawMessage(nil), data...)}, nil
}

func (s *Store) Update(ctx context.Context, collection string, rec store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(collection)
	if _, ok := c[rec.ID]; !ok {
		return store.ErrNotFound
	}
	c[rec.ID] = append(json.RawMessage(nil), rec.Data...)
	s.publish(collection, store.Event{Op: store.OpUpdate, Record: rec})
	return nil
}

func (s *Store) UpdateIf(ctx context.Context, collection string, rec store.Record, guard store.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(collection)
	current, ok := c[rec.ID]
	if !ok {
		return store.ErrNotFound
	}
	if !matches(current, guard) {
		return store.ErrConflict
	}
	c[rec.ID] = append(json.RawMessage(nil), rec.Data...)
	s.publish(collection, store.Event{Op: store.OpUpdate, Record: rec})
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(collection)
	if _, ok := c[id]; !ok {
		return store.ErrNotFound
	}
	delete(c, id)
	s.publish(collection, store.Event{Op: store.OpDelete, Record: store.Record{ID: id}})
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, filter store.Filter) ([]store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.Record
	for id, data := range s.collection(collection) {
		if matches(data, filter) {
			out = append(out, store.Record{ID: id, Data: append(json.RawMessage(nil), data...)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func matches(data json.RawMessage, filter store.Filter) bool {
	if len(filter) == 0 {
		return true
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !equalJSON(got, want) {
			return false
		}
	}
	return true
}

// equalJSON compares through a JSON round trip so that typed filter values
// (ints, strings) compare equal to their decoded counterparts.
func equalJSON(a, b any) bool {
	ab, err1 := json.Marshal(a)
	bb, err2 := json.Marshal(b)
	return err1 == nil && err2 == nil && string(ab) == string(bb)
}

func (s *Store) Subscribe(ctx context.Context, collection string) (store.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &subscription{
		store:      s,
		collection: collection,
		events:     make(chan store.Event, subscriberBuffer),
		errs:       make(chan error, 1),
	}
	s.subs[collection] = append(s.subs[collection], sub)
	return sub, nil
}

// publish delivers ev to every subscriber of the collection. A subscriber
// whose buffer is full is failed and removed rather than blocking writers;
// the consumer is expected to resubscribe and refetch.
func (s *Store) publish(collection string, ev store.Event) {
	subs := s.subs[collection]
	kept := subs[:0]
	for _, sub := range subs {
		if sub.closed {
			continue
		}
		select {
		case sub.events <- ev:
			kept = append(kept, sub)
		default:
			sub.fail(errSlowSubscriber)
		}
	}
	s.subs[collection] = kept
}

var errSlowSubscriber = &slowSubscriberError{}

type slowSubscriberError struct{}

func (*slowSubscriberError) Error() string { return "store: subscriber too slow, events dropped" }

type subscription struct {
	store      *Store
	collection string
	events     chan store.Event
	errs       chan error
	closed     bool
}

func (sub *subscription) Events() <-chan store.Event { return sub.events }
func (sub *subscription) Err() <-chan error          { return sub.errs }

// fail is called with the store mutex held.
func (sub *subscription) fail(err error) {
	if sub.closed {
		return
	}
	sub.closed = true
	sub.errs <- err
	close(sub.events)
}

func (sub *subscription) Close() {
	sub.store.mu.Lock()
	defer sub.store.mu.Unlock()
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.events)
	subs := sub.store.subs[sub.collection]
	for i, other := range subs {
		if other == sub {
			sub.store.subs[sub.collection] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}
