package docstore

import (
	"context"
	"errors"
	"time"

	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/internal/store"
)

type applicationRepository struct {
	store store.Store
}

func NewApplicationRepository(s store.Store) domain.ApplicationRepository {
	return &applicationRepository{store: s}
}

// persist strips the denormalized join fields before writing; they belong to
// read-side views, not the stored document.
func (r *applicationRepository) persist(ctx context.Context, app *domain.Application, create bool) error {
	stored := *app
	stored.Job = nil
	stored.Candidate = nil
	data, err := encode(&stored)
	if err != nil {
		return err
	}
	rec := store.Record{ID: app.ID, Data: data}
	if create {
		return r.store.Create(ctx, store.CollectionApplications, rec)
	}
	err = r.store.Update(ctx, store.CollectionApplications, rec)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	return r.persist(ctx, app, true)
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	rec, err := r.store.Get(ctx, store.CollectionApplications, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode[domain.Application](rec)
}

func (r *applicationRepository) GetByJobID(ctx context.Context, jobID string) ([]domain.Application, error) {
	recs, err := r.store.Query(ctx, store.CollectionApplications, store.Filter{"job_id": jobID})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Application](recs)
}

func (r *applicationRepository) GetByCandidateID(ctx context.Context, candidateID string) ([]domain.Application, error) {
	recs, err := r.store.Query(ctx, store.CollectionApplications, store.Filter{"candidate_id": candidateID})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Application](recs)
}

func (r *applicationRepository) FetchAll(ctx context.Context) ([]domain.Application, error) {
	recs, err := r.store.Query(ctx, store.CollectionApplications, nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Application](recs)
}

func (r *applicationRepository) Exists(ctx context.Context, jobID, candidateID string) (bool, error) {
	recs, err := r.store.Query(ctx, store.CollectionApplications,
		store.Filter{"job_id": jobID, "candidate_id": candidateID})
	if err != nil {
		return false, err
	}
	return len(recs) > 0, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id, from, to string, reviewedAt *time.Time) (*domain.Application, error) {
	app, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != from {
		return nil, domain.ErrStatusConflict
	}
	app.Status = to
	app.UpdatedAt = time.Now().UTC()
	if reviewedAt != nil {
		app.ReviewedAt = reviewedAt
	}

	stored := *app
	stored.Job = nil
	stored.Candidate = nil
	data, err := encode(&stored)
	if err != nil {
		return nil, err
	}

	// The write is guarded on the status the caller validated against, so of
	// two racing transitions exactly one lands; the loser sees the conflict.
	err = r.store.UpdateIf(ctx, store.CollectionApplications,
		store.Record{ID: app.ID, Data: data}, store.Filter{"status": from})
	if errors.Is(err, store.ErrConflict) {
		return nil, domain.ErrStatusConflict
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (r *applicationRepository) SetInterviewDetails(ctx context.Context, id string, details domain.InterviewDetails) (*domain.Application, error) {
	app, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	app.Interview = &details
	app.UpdatedAt = time.Now().UTC()
	if err := r.persist(ctx, app, false); err != nil {
		return nil, err
	}
	return app, nil
}
