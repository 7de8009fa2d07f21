package docstore

import (
	"context"
	"errors"

	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/internal/store"
)

type jobRepository struct {
	store store.Store
}

func NewJobRepository(s store.Store) domain.JobRepository {
	return &jobRepository{store: s}
}

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	data, err := encode(job)
	if err != nil {
		return err
	}
	return r.store.Create(ctx, store.CollectionJobs, store.Record{ID: job.ID, Data: data})
}

func (r *jobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	rec, err := r.store.Get(ctx, store.CollectionJobs, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode[domain.Job](rec)
}

func (r *jobRepository) Fetch(ctx context.Context) ([]domain.Job, error) {
	recs, err := r.store.Query(ctx, store.CollectionJobs, nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Job](recs)
}

func (r *jobRepository) FetchByCreator(ctx context.Context, userID string) ([]domain.Job, error) {
	recs, err := r.store.Query(ctx, store.CollectionJobs, store.Filter{"created_by": userID})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Job](recs)
}

func (r *jobRepository) Update(ctx context.Context, job *domain.Job) error {
	data, err := encode(job)
	if err != nil {
		return err
	}
	err = r.store.Update(ctx, store.CollectionJobs, store.Record{ID: job.ID, Data: data})
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func (r *jobRepository) Delete(ctx context.Context, id string) error {
	err := r.store.Delete(ctx, store.CollectionJobs, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}
