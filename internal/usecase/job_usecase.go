package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/pkg/apperror"
)

type jobUsecase struct {
	jobRepo domain.JobRepository
}

// NewJobUsecase creates a new job usecase
func NewJobUsecase(jobRepo domain.JobRepository) domain.JobUsecase {
	return &jobUsecase{jobRepo: jobRepo}
}

func (uc *jobUsecase) CreateJob(ctx context.Context, actor domain.Actor, job *domain.Job) error {
	if actor.Role != domain.RoleHiring {
		return apperror.Forbidden("Only hiring accounts can post jobs")
	}

	now := time.Now().UTC()
	job.ID = uuid.New().String()
	job.CreatedBy = actor.UserID
	job.CreatedAt = now
	job.UpdatedAt = now

	if err := uc.jobRepo.Create(ctx, job); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (uc *jobUsecase) GetJobDetails(ctx context.Context, id string) (*domain.Job, error) {
	job, err := uc.jobRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("Job not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return job, nil
}

func (uc *jobUsecase) ListJobs(ctx context.Context) ([]domain.Job, error) {
	jobs, err := uc.jobRepo.Fetch(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return jobs, nil
}

func (uc *jobUsecase) ListJobsByOwner(ctx context.Context, actor domain.Actor) ([]domain.Job, error) {
	jobs, err := uc.jobRepo.FetchByCreator(ctx, actor.UserID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return jobs, nil
}

func (uc *jobUsecase) UpdateJob(ctx context.Context, actor domain.Actor, job *domain.Job) error {
	existing, err := uc.jobRepo.GetByID(ctx, job.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound("Job not found")
	}
	if err != nil {
		return apperror.Internal(err)
	}
	if existing.CreatedBy != actor.UserID {
		return apperror.Forbidden("You can only update your own job postings")
	}

	job.CreatedBy = existing.CreatedBy
	job.CreatedAt = existing.CreatedAt
	job.UpdatedAt = time.Now().UTC()

	if err := uc.jobRepo.Update(ctx, job); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (uc *jobUsecase) DeleteJob(ctx context.Context, actor domain.Actor, id string) error {
	existing, err := uc.jobRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound("Job not found")
	}
	if err != nil {
		return apperror.Internal(err)
	}
	if existing.CreatedBy != actor.UserID {
		return apperror.Forbidden("You can only delete your own job postings")
	}

	if err := uc.jobRepo.Delete(ctx, id); err != nil {
		return apperror.Internal(err)
	}
	return nil
}
