package docstore

import (
	"context"
	"errors"

	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/internal/store"
)

type candidateRepository struct {
	store store.Store
}

func NewCandidateRepository(s store.Store) domain.CandidateRepository {
	return &candidateRepository{store: s}
}

func (r *candidateRepository) GetByUserID(ctx context.Context, userID string) (*domain.CandidateProfile, error) {
	rec, err := r.store.Get(ctx, store.CollectionCandidateProfiles, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode[domain.CandidateProfile](rec)
}

func (r *candidateRepository) Create(ctx context.Context, profile *domain.CandidateProfile) error {
	data, err := encode(profile)
	if err != nil {
		return err
	}
	return r.store.Create(ctx, store.CollectionCandidateProfiles, store.Record{ID: profile.UserID, Data: data})
}

func (r *candidateRepository) Update(ctx context.Context, profile *domain.CandidateProfile) error {
	data, err := encode(profile)
	if err != nil {
		return err
	}
	err = r.store.Update(ctx, store.CollectionCandidateProfiles, store.Record{ID: profile.UserID, Data: data})
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}
