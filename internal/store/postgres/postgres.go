// Package postgres implements the document store on a single jsonb table,
// with change-feed delivery over LISTEN/NOTIFY. Notification payloads carry
// only the operation and record id; subscribers re-fetch the record body,
// which keeps payloads well under the notify size limit.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-hirestream-backend/internal/store"
	"go-hirestream-backend/pkg/logger"
)

const subscriberBuffer = 64

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the documents table. Safe to run on every startup.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, id)
		);
		CREATE INDEX IF NOT EXISTS idx_documents_data ON documents USING GIN (data);
	`)
	if err != nil {
		return fmt.Errorf("migrate documents table: %w", err)
	}
	return nil
}

// notifyPayload is what travels over pg_notify. The record body stays in the
// table; consumers fetch it by id.
type notifyPayload struct {
	Op string `json:"op"`
	ID string `json:"id"`
}

func channelFor(collection string) string {
	return "doc_" + collection
}

func (s *Store) notify(ctx context.Context, tx pgx.Tx, collection string, op store.Op, id string) error {
	payload, err := json.Marshal(notifyPayload{Op: string(op), ID: id})
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `SELECT pg_notify($1, $2)`, channelFor(collection), string(payload))
	return err
}

func (s *Store) Create(ctx context.Context, collection string, rec store.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`,
		collection, rec.ID, rec.Data)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	if err := s.notify(ctx, tx, collection, store.OpInsert, rec.ID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Record, error) {
	var data json.RawMessage
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&data)
	if err == pgx.ErrNoRows {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, err
	}
	return store.Record{ID: id, Data: data}, nil
}

func (s *Store) Update(ctx context.Context, collection string, rec store.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE documents SET data = $3, updated_at = now() WHERE collection = $1 AND id = $2`,
		collection, rec.ID, rec.Data)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	if err := s.notify(ctx, tx, collection, store.OpUpdate, rec.ID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateIf relies on the guard being evaluated inside the UPDATE itself, so
// concurrent conditional writes serialize on the row and exactly one wins.
func (s *Store) UpdateIf(ctx context.Context, collection string, rec store.Record, guard store.Filter) error {
	match, err := json.Marshal(guard)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE documents SET data = $3, updated_at = now()
		 WHERE collection = $1 AND id = $2 AND data @> $4`,
		collection, rec.ID, rec.Data, string(match))
	if err != nil {
		return fmt.Errorf("conditional update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM documents WHERE collection = $1 AND id = $2)`,
			collection, rec.ID).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}
	if err := s.notify(ctx, tx, collection, store.OpUpdate, rec.ID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	if err := s.notify(ctx, tx, collection, store.OpDelete, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Query(ctx context.Context, collection string, filter store.Filter) ([]store.Record, error) {
	query := `SELECT id, data FROM documents WHERE collection = $1`
	args := []any{collection}
	if len(filter) > 0 {
		match, err := json.Marshal(filter)
		if err != nil {
			return nil, err
		}
		query += ` AND data @> $2`
		args = append(args, string(match))
	}
	query += ` ORDER BY data->>'created_at', id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		var rec store.Record
		if err := rows.Scan(&rec.ID, &rec.Data); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Subscribe holds a dedicated connection on LISTEN and translates
// notifications into events, fetching the record body out of band for
// inserts and updates.
func (s *Store) Subscribe(ctx context.Context, collection string) (store.Subscription, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}
	_, err = conn.Exec(ctx, `LISTEN `+pgx.Identifier{channelFor(collection)}.Sanitize())
	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", channelFor(collection), err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		events: make(chan store.Event, subscriberBuffer),
		errs:   make(chan error, 1),
		cancel: cancel,
	}
	go sub.run(subCtx, s, conn, collection)
	return sub, nil
}

type subscription struct {
	events chan store.Event
	errs   chan error
	cancel context.CancelFunc
}

func (sub *subscription) Events() <-chan store.Event { return sub.events }
func (sub *subscription) Err() <-chan error          { return sub.errs }
func (sub *subscription) Close()                     { sub.cancel() }

func (sub *subscription) run(ctx context.Context, s *Store, conn *pgxpool.Conn, collection string) {
	defer close(sub.events)
	defer conn.Release()

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				sub.errs <- fmt.Errorf("wait for notification: %w", err)
			}
			return
		}

		var payload notifyPayload
		if err := json.Unmarshal([]byte(notification.Payload), &payload); err != nil {
			logger.Log.Warn("malformed change notification", "channel", notification.Channel, "error", err)
			continue
		}

		ev := store.Event{Op: store.Op(payload.Op), Record: store.Record{ID: payload.ID}}
		if ev.Op != store.OpDelete {
			rec, err := s.Get(ctx, collection, payload.ID)
			if err == store.ErrNotFound {
				// Deleted between notify and fetch; the delete event follows.
				continue
			}
			if err != nil {
				sub.errs <- fmt.Errorf("fetch notified record: %w", err)
				return
			}
			ev.Record = rec
		}

		select {
		case sub.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}
