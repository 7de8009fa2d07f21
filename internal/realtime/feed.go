// Package realtime keeps an in-memory, enriched view of the applications
// collection in sync with the document store's change feed, and fans updates
// out to connected clients.
package realtime

import (
	"context"
	"time"

	"go-hirestream-backend/internal/store"
	"go-hirestream-backend/pkg/logger"
)

const (
	defaultBaseBackoff = 500 * time.Millisecond
	defaultMaxBackoff  = 30 * time.Second
)

// Handler consumes the change feed. Resync is called after every successful
// (re)subscription, before any event from that subscription is applied, so
// changes that slipped through a subscription gap are recovered by refetch.
type Handler interface {
	Resync(ctx context.Context) error
	Apply(ctx context.Context, ev store.Event)
}

// FeedClient owns a subscription to one collection and survives subscription
// failures with exponential backoff.
type FeedClient struct {
	store       store.Store
	collection  string
	handler     Handler
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

func NewFeedClient(s store.Store, collection string, h Handler) *FeedClient {
	return &FeedClient{
		store:       s,
		collection:  collection,
		handler:     h,
		baseBackoff: defaultBaseBackoff,
		maxBackoff:  defaultMaxBackoff,
	}
}

// Run blocks until ctx is done, maintaining the subscribe / resync / consume
// cycle. Backoff doubles per consecutive failure and resets after a healthy
// subscription.
func (c *FeedClient) Run(ctx context.Context) error {
	backoff := c.baseBackoff
	for {
		if err := c.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Log.Warn("change feed interrupted, resubscribing",
				"collection", c.collection, "backoff", backoff.String(), "error", err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
			if backoff > c.maxBackoff {
				backoff = c.maxBackoff
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		backoff = c.baseBackoff
	}
}

func (c *FeedClient) runOnce(ctx context.Context) error {
	sub, err := c.store.Subscribe(ctx, c.collection)
	if err != nil {
		return err
	}
	defer sub.Close()

	if err := c.handler.Resync(ctx); err != nil {
		return err
	}

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				select {
				case err := <-sub.Err():
					return err
				default:
					return nil
				}
			}
			c.handler.Apply(ctx, ev)
		case err := <-sub.Err():
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
