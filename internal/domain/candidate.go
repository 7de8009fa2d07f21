package domain

import (
	"context"
	"time"
)

// CandidateProfile is the candidate-owned profile joined into application
// views for the hiring side.
type CandidateProfile struct {
	UserID       string    `json:"user_id"`
	FullName     string    `json:"full_name" validate:"required"`
	Email        string    `json:"email" validate:"required,email"`
	Phone        *string   `json:"phone,omitempty"`
	Location     *string   `json:"location,omitempty"`
	Headline     *string   `json:"headline,omitempty"`
	Skills       []string  `json:"skills,omitempty"`
	Experience   *string   `json:"experience,omitempty"`
	Education    *string   `json:"education,omitempty"`
	ResumeURL    *string   `json:"resume_url,omitempty"`
	LinkedinURL  *string   `json:"linkedin_url,omitempty"`
	GithubURL    *string   `json:"github_url,omitempty"`
	PortfolioURL *string   `json:"portfolio_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CandidateRepository interface {
	GetByUserID(ctx context.Context, userID string) (*CandidateProfile, error)
	Create(ctx context.Context, profile *CandidateProfile) error
	Update(ctx context.Context, profile *CandidateProfile) error
}

type CandidateUsecase interface {
	GetProfile(ctx context.Context, actor Actor) (*CandidateProfile, error)
	UpsertProfile(ctx context.Context, actor Actor, profile *CandidateProfile) error
}
