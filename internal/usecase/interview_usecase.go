package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-hirestream-backend/internal/aitext"
	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/pkg/ai"
	"go-hirestream-backend/pkg/apperror"
	"go-hirestream-backend/pkg/blob"
	"go-hirestream-backend/pkg/logger"
)

const recordingContentType = "video/webm"

// maxQuestionsPerJob bounds a question set even when the model ignores the
// count asked for in the prompt.
const maxQuestionsPerJob = 10

type interviewUsecase struct {
	interviewRepo   domain.InterviewRepository
	applicationRepo domain.ApplicationRepository
	jobRepo         domain.JobRepository
	candidateRepo   domain.CandidateRepository
	applicationUC   domain.ApplicationUsecase
	evaluationUC    domain.EvaluationUsecase
	completer       ai.Completer
	blobs           blob.Store

	mu       sync.Mutex
	sessions map[string]*domain.InterviewSession
}

// NewInterviewUsecase creates a new interview usecase
func NewInterviewUsecase(
	interviewRepo domain.InterviewRepository,
	applicationRepo domain.ApplicationRepository,
	jobRepo domain.JobRepository,
	candidateRepo domain.CandidateRepository,
	applicationUC domain.ApplicationUsecase,
	evaluationUC domain.EvaluationUsecase,
	completer ai.Completer,
	blobs blob.Store,
) domain.InterviewUsecase {
	return &interviewUsecase{
		interviewRepo:   interviewRepo,
		applicationRepo: applicationRepo,
		jobRepo:         jobRepo,
		candidateRepo:   candidateRepo,
		applicationUC:   applicationUC,
		evaluationUC:    evaluationUC,
		completer:       completer,
		blobs:           blobs,
		sessions:        make(map[string]*domain.InterviewSession),
	}
}

func (uc *interviewUsecase) StartSession(ctx context.Context, actor domain.Actor, applicationID string) (*domain.InterviewSession, error) {
	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("Application not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if app.CandidateID != actor.UserID {
		return nil, apperror.Forbidden("Only the applicant can take this interview")
	}
	if app.Status != domain.StatusInterviewScheduled {
		return nil, apperror.InvalidTransition("Interview can only start once it has been scheduled")
	}

	uc.mu.Lock()
	if existing, ok := uc.sessions[applicationID]; ok {
		session := cloneSession(existing)
		uc.mu.Unlock()
		return session, nil
	}
	uc.mu.Unlock()

	questions, err := uc.GenerateQuestions(ctx, app.JobID, applicationID)
	if err != nil {
		return nil, err
	}

	session := &domain.InterviewSession{
		ApplicationID: applicationID,
		JobID:         app.JobID,
		CandidateID:   app.CandidateID,
		Questions:     questions,
		QuestionIndex: 0,
		Captured:      make(map[string]bool),
		StartedAt:     time.Now().UTC(),
	}

	uc.mu.Lock()
	// A concurrent StartSession may have won the race; keep the first.
	if existing, ok := uc.sessions[applicationID]; ok {
		session = existing
	} else {
		uc.sessions[applicationID] = session
	}
	out := cloneSession(session)
	uc.mu.Unlock()
	return out, nil
}

func (uc *interviewUsecase) CaptureResponse(ctx context.Context, actor domain.Actor, applicationID, questionID string, artifact []byte) (*domain.InterviewResponse, error) {
	uc.mu.Lock()
	session, ok := uc.sessions[applicationID]
	if !ok {
		uc.mu.Unlock()
		return nil, apperror.NotFound("No active interview session for this application")
	}
	if session.CandidateID != actor.UserID {
		uc.mu.Unlock()
		return nil, apperror.Forbidden("Only the applicant can submit responses")
	}
	if !sessionHasQuestion(session, questionID) {
		uc.mu.Unlock()
		return nil, apperror.BadRequest("Question does not belong to this interview")
	}
	if session.Captured[questionID] {
		uc.mu.Unlock()
		return nil, apperror.DuplicateResponse("This question has already been answered")
	}
	// Claim the question before the upload so a concurrent duplicate fails
	// fast; rolled back if the capture does not go through.
	session.Captured[questionID] = true
	uc.mu.Unlock()

	rollback := func() {
		uc.mu.Lock()
		delete(session.Captured, questionID)
		uc.mu.Unlock()
	}

	version, err := uc.nextVersion(ctx, applicationID, questionID)
	if err != nil {
		rollback()
		return nil, apperror.Internal(err)
	}

	key := fmt.Sprintf("%s/%s/%s/v%d.webm", session.CandidateID, session.JobID, questionID, version)
	url, err := uc.blobs.Upload(ctx, key, artifact, recordingContentType)
	if err != nil {
		rollback()
		return nil, apperror.CaptureFailed(err)
	}

	response := &domain.InterviewResponse{
		ID:            uuid.New().String(),
		ApplicationID: applicationID,
		QuestionID:    questionID,
		RecordingURL:  url,
		CreatedAt:     time.Now().UTC(),
	}
	if err := uc.interviewRepo.CreateResponse(ctx, response); err != nil {
		rollback()
		return nil, apperror.Internal(err)
	}

	uc.mu.Lock()
	if session.QuestionIndex < len(session.Questions) {
		session.QuestionIndex++
	}
	uc.mu.Unlock()
	return response, nil
}

// nextVersion counts prior recordings of the question so a re-record never
// overwrites an earlier artifact.
func (uc *interviewUsecase) nextVersion(ctx context.Context, applicationID, questionID string) (int, error) {
	responses, err := uc.interviewRepo.GetResponsesByApplicationID(ctx, applicationID)
	if err != nil {
		return 0, err
	}
	n := 1
	for _, r := range responses {
		if r.QuestionID == questionID {
			n++
		}
	}
	return n, nil
}

func (uc *interviewUsecase) CompleteSession(ctx context.Context, actor domain.Actor, applicationID string) (*domain.Application, error) {
	uc.mu.Lock()
	session, ok := uc.sessions[applicationID]
	if !ok {
		uc.mu.Unlock()
		return nil, apperror.NotFound("No active interview session for this application")
	}
	if session.CandidateID != actor.UserID {
		uc.mu.Unlock()
		return nil, apperror.Forbidden("Only the applicant can complete this interview")
	}
	for _, q := range session.Questions {
		if !session.Captured[q.ID] {
			uc.mu.Unlock()
			return nil, apperror.Validation("All questions must be answered before completing the interview")
		}
	}
	uc.mu.Unlock()

	app, err := uc.applicationUC.Transition(ctx, domain.OrchestratorActor(), applicationID, domain.StatusInterviewCompleted)
	if err != nil {
		return nil, err
	}

	uc.AbandonSession(applicationID)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := uc.evaluationUC.Evaluate(ctx, applicationID); err != nil {
			logger.Log.Error("interview evaluation failed",
				"application_id", applicationID, "error", err)
		}
	}()
	return app, nil
}

func (uc *interviewUsecase) AbandonSession(applicationID string) {
	uc.mu.Lock()
	delete(uc.sessions, applicationID)
	uc.mu.Unlock()
}

func (uc *interviewUsecase) GenerateQuestions(ctx context.Context, jobID, applicationID string) ([]domain.InterviewQuestion, error) {
	existing, err := uc.interviewRepo.GetQuestionsByJobID(ctx, jobID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("Job not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	var candidate *domain.CandidateProfile
	if app, err := uc.applicationRepo.GetByID(ctx, applicationID); err == nil {
		if profile, err := uc.candidateRepo.GetByUserID(ctx, app.CandidateID); err == nil {
			candidate = profile
		}
	}

	reply, err := uc.completer.Complete(ctx,
		aitext.QuestionSystemPrompt,
		aitext.QuestionUserPrompt(job, candidate),
		ai.Options{Temperature: 0.7, MaxTokens: 1000})
	if err != nil {
		return nil, apperror.ServiceError("Question generation failed", err)
	}

	parsed := aitext.ParseQuestions(reply)
	if len(parsed) == 0 {
		return nil, apperror.ServiceError("Question generation produced no usable questions", nil)
	}
	if len(parsed) > maxQuestionsPerJob {
		parsed = parsed[:maxQuestionsPerJob]
	}

	now := time.Now().UTC()
	questions := make([]domain.InterviewQuestion, 0, len(parsed))
	for i, p := range parsed {
		questions = append(questions, domain.InterviewQuestion{
			ID:        uuid.New().String(),
			JobID:     jobID,
			Question:  p.Question,
			Category:  p.Category,
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
		})
	}

	saved, err := uc.interviewRepo.CreateQuestions(ctx, questions)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return saved, nil
}

func sessionHasQuestion(session *domain.InterviewSession, questionID string) bool {
	for _, q := range session.Questions {
		if q.ID == questionID {
			return true
		}
	}
	return false
}

func cloneSession(s *domain.InterviewSession) *domain.InterviewSession {
	cp := *s
	cp.Questions = append([]domain.InterviewQuestion(nil), s.Questions...)
	cp.Captured = make(map[string]bool, len(s.Captured))
	for k, v := range s.Captured {
		cp.Captured[k] = v
	}
	return &cp
}
