package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"go-hirestream-backend/internal/aitext"
	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/pkg/ai"
	"go-hirestream-backend/pkg/apperror"
	"go-hirestream-backend/pkg/logger"
)

type evaluationUsecase struct {
	evaluationRepo  domain.EvaluationRepository
	interviewRepo   domain.InterviewRepository
	applicationRepo domain.ApplicationRepository
	jobRepo         domain.JobRepository
	candidateRepo   domain.CandidateRepository
	completer       ai.Completer
}

// NewEvaluationUsecase creates a new evaluation usecase
func NewEvaluationUsecase(
	evaluationRepo domain.EvaluationRepository,
	interviewRepo domain.InterviewRepository,
	applicationRepo domain.ApplicationRepository,
	jobRepo domain.JobRepository,
	candidateRepo domain.CandidateRepository,
	completer ai.Completer,
) domain.EvaluationUsecase {
	return &evaluationUsecase{
		evaluationRepo:  evaluationRepo,
		interviewRepo:   interviewRepo,
		applicationRepo: applicationRepo,
		jobRepo:         jobRepo,
		candidateRepo:   candidateRepo,
		completer:       completer,
	}
}

// candidateProfile is best-effort context for the prompts; a missing profile
// is not an error.
func (uc *evaluationUsecase) candidateProfile(ctx context.Context, userID string) *domain.CandidateProfile {
	profile, err := uc.candidateRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil
	}
	return profile
}

func (uc *evaluationUsecase) Evaluate(ctx context.Context, applicationID string) (*domain.Evaluation, error) {
	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
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

	responses, err := uc.interviewRepo.GetResponsesByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if len(responses) == 0 {
		return nil, apperror.BadRequest("No interview responses to evaluate")
	}

	questions, err := uc.interviewRepo.GetQuestionsByJobID(ctx, app.JobID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	questionText := make(map[string]string, len(questions))
	for _, q := range questions {
		questionText[q.ID] = q.Question
	}

	// Responses arrive oldest first, so later recordings of the same
	// question win.
	current := make(map[string]domain.InterviewResponse)
	var order []string
	for _, r := range responses {
		if _, seen := current[r.QuestionID]; !seen {
			order = append(order, r.QuestionID)
		}
		current[r.QuestionID] = r
	}

	// Every question must carry at least one response before the interview
	// can be scored.
	if len(current) < len(questions) {
		return nil, apperror.Validation("Interview still has unanswered questions")
	}

	candidate := uc.candidateProfile(ctx, app.CandidateID)

	analyses := make([]aitext.ResponseAnalysis, 0, len(order))
	for _, qid := range order {
		r := current[qid]
		analysis, err := uc.completer.Complete(ctx,
			aitext.ResponseSystemPrompt,
			aitext.ResponseUserPrompt(job, candidate, questionText[qid], r.RecordingURL),
			ai.Options{Temperature: 0.7, MaxTokens: 500})
		if err != nil {
			return nil, apperror.ServiceError("Response analysis failed", err)
		}
		analyses = append(analyses, aitext.ResponseAnalysis{
			QuestionID: qid,
			Question:   questionText[qid],
			Analysis:   analysis,
		})
	}

	return uc.aggregate(ctx, applicationID, job, candidate, analyses)
}

func (uc *evaluationUsecase) EvaluateSubmission(ctx context.Context, req *domain.EvaluationRequest) (*domain.Evaluation, error) {
	if len(req.Questions) != len(req.Answers) {
		return nil, apperror.Validation("Questions and answers must pair up")
	}

	app, err := uc.applicationRepo.GetByID(ctx, req.ApplicationID)
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

	candidate := uc.candidateProfile(ctx, app.CandidateID)

	analyses := make([]aitext.ResponseAnalysis, 0, len(req.Questions))
	for i, question := range req.Questions {
		analysis, err := uc.completer.Complete(ctx,
			aitext.ResponseSystemPrompt,
			aitext.ResponseUserPrompt(job, candidate, question, req.Answers[i]),
			ai.Options{Temperature: 0.7, MaxTokens: 500})
		if err != nil {
			return nil, apperror.ServiceError("Response analysis failed", err)
		}
		analyses = append(analyses, aitext.ResponseAnalysis{
			Question: question,
			Analysis: analysis,
		})
	}

	return uc.aggregate(ctx, req.ApplicationID, job, candidate, analyses)
}

// aggregate runs the final evaluation pass and stores the result as the
// application's single current evaluation.
func (uc *evaluationUsecase) aggregate(ctx context.Context, applicationID string, job *domain.Job, candidate *domain.CandidateProfile, analyses []aitext.ResponseAnalysis) (*domain.Evaluation, error) {
	reply, err := uc.completer.Complete(ctx,
		aitext.EvaluationSystemPrompt,
		aitext.EvaluationUserPrompt(job, candidate, analyses),
		ai.Options{Temperature: 0.7, MaxTokens: 1000})
	if err != nil {
		return nil, apperror.ServiceError("Evaluation failed", err)
	}

	result := aitext.ParseEvaluation(reply)
	quality := domain.QualityOK
	if !result.Parsed {
		quality = domain.QualityDegraded
		logger.Log.Warn("evaluation reply did not fully match the expected format",
			"application_id", applicationID)
	}

	evaluation := &domain.Evaluation{
		ID:                  uuid.New().String(),
		ApplicationID:       applicationID,
		OverallScore:        result.OverallScore,
		TechnicalScore:      result.TechnicalScore,
		CommunicationScore:  result.CommunicationScore,
		ProblemSolvingScore: result.ProblemSolvingScore,
		Feedback:            result.Feedback,
		Strengths:           result.Strengths,
		AreasForImprovement: result.AreasForImprovement,
		Quality:             quality,
		CreatedAt:           time.Now().UTC(),
	}

	if err := uc.evaluationRepo.Replace(ctx, evaluation); err != nil {
		return nil, apperror.Internal(err)
	}
	return evaluation, nil
}

func (uc *evaluationUsecase) GetByApplicationID(ctx context.Context, actor domain.Actor, applicationID string) (*domain.Evaluation, error) {
	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("Application not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if actor.Role != domain.RoleOrchestrator && app.CandidateID != actor.UserID {
		job, err := uc.jobRepo.GetByID(ctx, app.JobID)
		if err != nil || job.CreatedBy != actor.UserID {
			return nil, apperror.Forbidden("You do not have access to this evaluation")
		}
	}

	evaluation, err := uc.evaluationRepo.GetByApplicationID(ctx, applicationID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("No evaluation exists for this application")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return evaluation, nil
}
