package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-hirestream-backend/internal/store"
)

func record(id string, doc map[string]any) store.Record {
	data, _ := json.Marshal(doc)
	return store.Record{ID: id, Data: data}
}

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Create(ctx, store.CollectionJobs, record("j1", map[string]any{"title": "Backend Engineer"})))

	rec, err := s.Get(ctx, store.CollectionJobs, "j1")
	require.NoError(t, err)
	assert.Equal(t, "j1", rec.ID)

	require.NoError(t, s.Update(ctx, store.CollectionJobs, record("j1", map[string]any{"title": "Senior Backend Engineer"})))

	rec, err = s.Get(ctx, store.CollectionJobs, "j1")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Data, &doc))
	assert.Equal(t, "Senior Backend Engineer", doc["title"])

	require.NoError(t, s.Delete(ctx, store.CollectionJobs, "j1"))
	_, err = s.Get(ctx, store.CollectionJobs, "j1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateMissingRecord(t *testing.T) {
	s := New()
	err := s.Update(context.Background(), store.CollectionJobs, record("nope", map[string]any{}))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateIf(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Create(ctx, store.CollectionApplications, record("a1", map[string]any{"status": "applied"})))

	// Guard matches: the write lands and an update event is published.
	sub, err := s.Subscribe(ctx, store.CollectionApplications)
	require.NoError(t, err)
	defer sub.Close()

	err = s.UpdateIf(ctx, store.CollectionApplications,
		record("a1", map[string]any{"status": "rejected"}), store.Filter{"status": "applied"})
	require.NoError(t, err)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, store.OpUpdate, ev.Op)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update event")
	}

	// Guard stale: the record keeps its current body.
	err = s.UpdateIf(ctx, store.CollectionApplications,
		record("a1", map[string]any{"status": "under_review"}), store.Filter{"status": "applied"})
	assert.ErrorIs(t, err, store.ErrConflict)

	rec, err := s.Get(ctx, store.CollectionApplications, "a1")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Data, &doc))
	assert.Equal(t, "rejected", doc["status"])

	err = s.UpdateIf(ctx, store.CollectionApplications,
		record("nope", map[string]any{}), store.Filter{"status": "applied"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestQueryFilter(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Create(ctx, store.CollectionApplications, record("a1", map[string]any{"job_id": "j1", "status": "applied"})))
	require.NoError(t, s.Create(ctx, store.CollectionApplications, record("a2", map[string]any{"job_id": "j1", "status": "rejected"})))
	require.NoError(t, s.Create(ctx, store.CollectionApplications, record("a3", map[string]any{"job_id": "j2", "status": "applied"})))

	recs, err := s.Query(ctx, store.CollectionApplications, store.Filter{"job_id": "j1"})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = s.Query(ctx, store.CollectionApplications, store.Filter{"job_id": "j1", "status": "applied"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "a1", recs[0].ID)

	recs, err = s.Query(ctx, store.CollectionApplications, nil)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestSubscribeDeliversInOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	sub, err := s.Subscribe(ctx, store.CollectionApplications)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, s.Create(ctx, store.CollectionApplications, record("a1", map[string]any{"status": "applied"})))
	require.NoError(t, s.Update(ctx, store.CollectionApplications, record("a1", map[string]any{"status": "under_review"})))
	require.NoError(t, s.Delete(ctx, store.CollectionApplications, "a1"))

	var got []store.Op
	for i := 0; i < 3; i++ {
		select {
		case ev := <-sub.Events():
			got = append(got, ev.Op)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
	assert.Equal(t, []store.Op{store.OpInsert, store.OpUpdate, store.OpDelete}, got)
}

func TestSubscribeDoesNotCrossCollections(t *testing.T) {
	ctx := context.Background()
	s := New()

	sub, err := s.Subscribe(ctx, store.CollectionApplications)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, s.Create(ctx, store.CollectionJobs, record("j1", map[string]any{"title": "x"})))

	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event from another collection: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowSubscriberFails(t *testing.T) {
	ctx := context.Background()
	s := New()

	sub, err := s.Subscribe(ctx, store.CollectionApplications)
	require.NoError(t, err)

	// Overflow the subscriber buffer without draining it.
	for i := 0; i <= subscriberBuffer; i++ {
		require.NoError(t, s.Create(ctx, store.CollectionApplications, record(
			fmt.Sprintf("a%d", i), map[string]any{"n": i})))
	}

	select {
	case err := <-sub.Err():
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("expected slow subscriber to be failed")
	}
}
