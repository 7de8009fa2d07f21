package docstore

import (
	"context"
	"errors"

	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/internal/store"
)

type evaluationRepository struct {
	store store.Store
}

func NewEvaluationRepository(s store.Store) domain.EvaluationRepository {
	return &evaluationRepository{store: s}
}

func (r *evaluationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*domain.Evaluation, error) {
	recs, err := r.store.Query(ctx, store.CollectionEvaluations, store.Filter{"application_id": applicationID})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, domain.ErrNotFound
	}
	return decode[domain.Evaluation](recs[0])
}

// Replace enforces the single-current-evaluation rule: any prior evaluation
// for the application is removed before the new one is stored.
func (r *evaluationRepository) Replace(ctx context.Context, ev *domain.Evaluation) error {
	prior, err := r.store.Query(ctx, store.CollectionEvaluations, store.Filter{"application_id": ev.ApplicationID})
	if err != nil {
		return err
	}
	for _, rec := range prior {
		if err := r.store.Delete(ctx, store.CollectionEvaluations, rec.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	data, err := encode(ev)
	if err != nil {
		return err
	}
	return r.store.Create(ctx, store.CollectionEvaluations, store.Record{ID: ev.ID, Data: data})
}
