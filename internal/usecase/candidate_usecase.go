package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/pkg/apperror"
)

type candidateUsecase struct {
	candidateRepo domain.CandidateRepository
	validate      *validator.Validate
}

// NewCandidateUsecase creates a new candidate usecase
func NewCandidateUsecase(candidateRepo domain.CandidateRepository, validate *validator.Validate) domain.CandidateUsecase {
	return &candidateUsecase{candidateRepo: candidateRepo, validate: validate}
}

func (uc *candidateUsecase) GetProfile(ctx context.Context, actor domain.Actor) (*domain.CandidateProfile, error) {
	profile, err := uc.candidateRepo.GetByUserID(ctx, actor.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("Profile not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return profile, nil
}

func (uc *candidateUsecase) UpsertProfile(ctx context.Context, actor domain.Actor, profile *domain.CandidateProfile) error {
	profile.UserID = actor.UserID
	if profile.Email == "" {
		profile.Email = actor.Email
	}
	if err := uc.validate.Struct(profile); err != nil {
		return apperror.Validation(err.Error())
	}
	now := time.Now().UTC()
	profile.UpdatedAt = now

	existing, err := uc.candidateRepo.GetByUserID(ctx, actor.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		profile.CreatedAt = now
		if err := uc.candidateRepo.Create(ctx, profile); err != nil {
			return apperror.Internal(err)
		}
		return nil
	}
	if err != nil {
		return apperror.Internal(err)
	}

	profile.CreatedAt = existing.CreatedAt
	if err := uc.candidateRepo.Update(ctx, profile); err != nil {
		return apperror.Internal(err)
	}
	return nil
}
