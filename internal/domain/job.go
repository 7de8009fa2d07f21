package domain

import (
	"context"
	"errors"
	"time"
)

// Common domain errors
var ErrNotFound = errors.New("resource not found")

type Job struct {
	ID           string    `json:"id"`
	Title        string    `json:"title" validate:"required"`
	Company      string    `json:"company" validate:"required"`
	Location     string    `json:"location" validate:"required"`
	Type         string    `json:"type" validate:"required"`
	Description  string    `json:"description" validate:"required"`
	Requirements string    `json:"requirements"`
	SalaryRange  string    `json:"salary_range"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id string) (*Job, error)
	Fetch(ctx context.Context) ([]Job, error)
	FetchByCreator(ctx context.Context, userID string) ([]Job, error)
	Update(ctx context.Context, job *Job) error
	Delete(ctx context.Context, id string) error
}

type JobUsecase interface {
	CreateJob(ctx context.Context, actor Actor, job *Job) error
	GetJobDetails(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context) ([]Job, error)
	ListJobsByOwner(ctx context.Context, actor Actor) ([]Job, error)
	UpdateJob(ctx context.Context, actor Actor, job *Job) error
	DeleteJob(ctx context.Context, actor Actor, id string) error
}
