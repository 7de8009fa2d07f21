package domain

import (
	"context"
	"errors"
	"time"
)

// InterviewDetails carries the schedule metadata attached to an application
// when the hiring team books an interview.
type InterviewDetails struct {
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Duration    int       `json:"duration" validate:"required,gt=0"` // minutes
	Type        string    `json:"type" validate:"required"`
	Location    *string   `json:"location,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
}

// Application tracks a candidate's application through the lifecycle state
// machine. Exactly one application exists per (job, candidate) pair.
type Application struct {
	ID          string            `json:"id"`
	JobID       string            `json:"job_id"`
	CandidateID string            `json:"candidate_id"`
	Status      string            `json:"status"`
	CoverLetter *string           `json:"cover_letter,omitempty"`
	ResumeURL   *string           `json:"resume_url,omitempty"`
	Interview   *InterviewDetails `json:"interview_details,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	ReviewedAt  *time.Time        `json:"reviewed_at,omitempty"`

	// Denormalized joins populated by the reconciliation cache and detail
	// queries; never persisted.
	Job       *Job              `json:"job,omitempty"`
	Candidate *CandidateProfile `json:"candidate,omitempty"`
}

// ErrStatusConflict reports that an application's status changed between the
// caller's read and its conditional write. The caller validated a transition
// against a status that is no longer current.
var ErrStatusConflict = errors.New("application status changed concurrently")

type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id string) (*Application, error)
	GetByJobID(ctx context.Context, jobID string) ([]Application, error)
	GetByCandidateID(ctx context.Context, candidateID string) ([]Application, error)
	FetchAll(ctx context.Context) ([]Application, error)
	Exists(ctx context.Context, jobID, candidateID string) (bool, error)
	// UpdateStatus moves the application from one status to another. The write
	// only lands while the stored status is still from; otherwise it fails
	// with ErrStatusConflict and changes nothing.
	UpdateStatus(ctx context.Context, id, from, to string, reviewedAt *time.Time) (*Application, error)
	SetInterviewDetails(ctx context.Context, id string, details InterviewDetails) (*Application, error)
}

type ApplicationUsecase interface {
	// Candidate operations
	ApplyToJob(ctx context.Context, actor Actor, jobID, coverLetter, resumeURL string) (*Application, error)
	GetMyApplications(ctx context.Context, actor Actor) ([]Application, error)

	// Hiring operations
	ListByJobID(ctx context.Context, actor Actor, jobID string) ([]Application, error)
	GetApplicationDetail(ctx context.Context, actor Actor, id string) (*Application, error)
	ScheduleInterview(ctx context.Context, actor Actor, id string, details InterviewDetails) (*Application, error)

	// Transition applies one edge of the status graph on behalf of actor.
	// Fails with InvalidTransition when the edge does not exist and with
	// Unauthorized when the actor's role may not take that edge.
	Transition(ctx context.Context, actor Actor, id, target string) (*Application, error)
}
