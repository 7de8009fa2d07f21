// Package store defines the document store contract the rest of the backend
// is written against. Records are opaque JSON documents grouped into named
// collections; implementations provide CRUD, filtered queries and a change
// feed per collection.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection names used across the backend.
const (
	CollectionJobs              = "jobs"
	CollectionCandidateProfiles = "candidate_profiles"
	CollectionApplications      = "applications"
	CollectionQuestions         = "interview_questions"
	CollectionResponses         = "interview_responses"
	CollectionEvaluations       = "interview_evaluations"
)

// ErrNotFound is returned by Get, Update and Delete when no record with the
// given id exists in the collection.
var ErrNotFound = errors.New("store: record not found")

// ErrConflict is returned by UpdateIf when the record exists but no longer
// matches the guard filter.
var ErrConflict = errors.New("store: record changed, guard no longer matches")

// Op identifies the kind of change carried by an Event.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Record is a stored document. Data holds the full JSON body; for delete
// events it may be nil.
type Record struct {
	ID   string
	Data json.RawMessage
}

// Event is one change-feed entry for a collection.
type Event struct {
	Op     Op
	Record Record
}

// Filter matches records whose JSON body contains every listed field with an
// equal value. A nil or empty filter matches everything.
type Filter map[string]any

// Subscription is a live change feed over one collection. Events is closed
// after a terminal error is sent on Err or after Close is called.
type Subscription interface {
	Events() <-chan Event
	Err() <-chan error
	Close()
}

// Store is the persistence boundary. Implementations must make Subscribe
// deliver every committed change exactly once per subscription, in commit
// order, for as long as the subscription stays healthy.
type Store interface {
	Create(ctx context.Context, collection string, rec Record) error
	Get(ctx context.Context, collection, id string) (Record, error)
	Update(ctx context.Context, collection string, rec Record) error
	// UpdateIf writes rec only while the stored document still matches guard,
	// atomically with respect to every other write on the collection. It
	// returns ErrConflict when the guard no longer matches, which lets
	// read-validate-write callers detect that they lost a race.
	UpdateIf(ctx context.Context, collection string, rec Record, guard Filter) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, filter Filter) ([]Record, error)
	Subscribe(ctx context.Context, collection string) (Subscription, error)
}
