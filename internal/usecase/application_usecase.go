package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/pkg/apperror"
	"go-hirestream-backend/pkg/email"
	"go-hirestream-backend/pkg/logger"
)

// StatusNotifier sends candidate-facing notifications on status changes.
type StatusNotifier interface {
	IsConfigured() bool
	SendStatusUpdate(to string, data email.StatusEmailData) error
}

type applicationUsecase struct {
	applicationRepo domain.ApplicationRepository
	jobRepo         domain.JobRepository
	candidateRepo   domain.CandidateRepository
	notifier        StatusNotifier
}

// NewApplicationUsecase creates a new application usecase
func NewApplicationUsecase(
	appRepo domain.ApplicationRepository,
	jobRepo domain.JobRepository,
	candidateRepo domain.CandidateRepository,
	notifier StatusNotifier,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		applicationRepo: appRepo,
		jobRepo:         jobRepo,
		candidateRepo:   candidateRepo,
		notifier:        notifier,
	}
}

func (uc *applicationUsecase) ApplyToJob(ctx context.Context, actor domain.Actor, jobID, coverLetter, resumeURL string) (*domain.Application, error) {
	if actor.Role != domain.RoleCandidate {
		return nil, apperror.Forbidden("Only candidates can apply to jobs")
	}

	_, err := uc.jobRepo.GetByID(ctx, jobID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("Job not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	exists, err := uc.applicationRepo.Exists(ctx, jobID, actor.UserID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, apperror.DuplicateApplication("You have already applied to this job")
	}

	var coverLetterPtr, resumeURLPtr *string
	if coverLetter != "" {
		coverLetterPtr = &coverLetter
	}
	if resumeURL != "" {
		resumeURLPtr = &resumeURL
	}

	now := time.Now().UTC()
	app := &domain.Application{
		ID:          uuid.New().String(),
		JobID:       jobID,
		CandidateID: actor.UserID,
		Status:      domain.StatusApplied,
		CoverLetter: coverLetterPtr,
		ResumeURL:   resumeURLPtr,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.applicationRepo.Create(ctx, app); err != nil {
		return nil, apperror.Internal(err)
	}
	return app, nil
}

func (uc *applicationUsecase) GetMyApplications(ctx context.Context, actor domain.Actor) ([]domain.Application, error) {
	apps, err := uc.applicationRepo.GetByCandidateID(ctx, actor.UserID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	for i := range apps {
		job, err := uc.jobRepo.GetByID(ctx, apps[i].JobID)
		if err == nil {
			apps[i].Job = job
		}
	}
	return apps, nil
}

func (uc *applicationUsecase) ListByJobID(ctx context.Context, actor domain.Actor, jobID string) ([]domain.Application, error) {
	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("Job not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if job.CreatedBy != actor.UserID {
		return nil, apperror.Forbidden("You can only view applications for your own job postings")
	}

	apps, err := uc.applicationRepo.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	for i := range apps {
		apps[i].Job = job
		candidate, err := uc.candidateRepo.GetByUserID(ctx, apps[i].CandidateID)
		if err == nil {
			apps[i].Candidate = candidate
		}
	}
	return apps, nil
}

func (uc *applicationUsecase) GetApplicationDetail(ctx context.Context, actor domain.Actor, id string) (*domain.Application, error) {
	app, err := uc.applicationRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("Application not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	job, err := uc.jobRepo.GetByID(ctx, app.JobID)
	if err == nil {
		app.Job = job
	}

	isCandidate := app.CandidateID == actor.UserID
	isOwner := job != nil && job.CreatedBy == actor.UserID
	if !isCandidate && !isOwner && actor.Role != domain.RoleOrchestrator {
		return nil, apperror.Forbidden("You do not have access to this application")
	}

	if candidate, err := uc.candidateRepo.GetByUserID(ctx, app.CandidateID); err == nil {
		app.Candidate = candidate
	}
	return app, nil
}

func (uc *applicationUsecase) ScheduleInterview(ctx context.Context, actor domain.Actor, id string, details domain.InterviewDetails) (*domain.Application, error) {
	app, err := uc.applicationRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("Application not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	job, err := uc.jobRepo.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if job.CreatedBy != actor.UserID {
		return nil, apperror.Forbidden("You can only schedule interviews for your own job postings")
	}

	if _, err := uc.applicationRepo.SetInterviewDetails(ctx, id, details); err != nil {
		return nil, apperror.Internal(err)
	}

	// The interview states belong to the orchestrator, so the scheduling
	// transition is taken on its behalf.
	return uc.Transition(ctx, domain.OrchestratorActor(), id, domain.StatusInterviewScheduled)
}

func (uc *applicationUsecase) Transition(ctx context.Context, actor domain.Actor, id, target string) (*domain.Application, error) {
	if !domain.ValidStatus(target) {
		return nil, apperror.Validation("Unknown application status: " + target)
	}

	app, err := uc.applicationRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("Application not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	// Edge validity is checked before actor authorization: a transition
	// that does not exist is invalid for everyone.
	if !domain.CanTransition(app.Status, target) {
		return nil, apperror.InvalidTransition("Cannot move application from " + app.Status + " to " + target)
	}
	if !domain.TransitionAuthorized(target, actor.Role) {
		return nil, apperror.Unauthorized("Your role may not perform this transition")
	}

	if actor.Role == domain.RoleHiring {
		job, err := uc.jobRepo.GetByID(ctx, app.JobID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if job.CreatedBy != actor.UserID {
			return nil, apperror.Forbidden("You can only manage applications for your own job postings")
		}
	}

	var reviewedAt *time.Time
	if domain.IsHiringDecision(target) {
		now := time.Now().UTC()
		reviewedAt = &now
	}

	updated, err := uc.applicationRepo.UpdateStatus(ctx, id, app.Status, target, reviewedAt)
	if errors.Is(err, domain.ErrStatusConflict) {
		// A concurrent transition landed first; the already-accepted one
		// stands and this one loses.
		return nil, apperror.InvalidTransition("Application status changed; the transition no longer applies")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	uc.notifyStatusChange(ctx, updated)
	return updated, nil
}

// notifyStatusChange emails the candidate in the background. Delivery
// failures are logged, never surfaced to the caller.
func (uc *applicationUsecase) notifyStatusChange(ctx context.Context, app *domain.Application) {
	if uc.notifier == nil || !uc.notifier.IsConfigured() {
		return
	}

	candidate, err := uc.candidateRepo.GetByUserID(ctx, app.CandidateID)
	if err != nil || candidate.Email == "" {
		return
	}
	job, err := uc.jobRepo.GetByID(ctx, app.JobID)
	if err != nil {
		return
	}

	data := email.StatusEmailData{
		CandidateName: candidate.FullName,
		JobTitle:      job.Title,
		Company:       job.Company,
		Status:        app.Status,
	}
	go func() {
		if err := uc.notifier.SendStatusUpdate(candidate.Email, data); err != nil {
			logger.Log.Warn("status email failed",
				"application_id", app.ID, "status", app.Status, "error", err)
		}
	}()
}
