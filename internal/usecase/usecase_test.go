package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/internal/repository/docstore"
	"go-hirestream-backend/internal/store/memory"
	"go-hirestream-backend/internal/usecase"
	"go-hirestream-backend/pkg/ai"
	"go-hirestream-backend/pkg/apperror"
	"go-hirestream-backend/pkg/logger"
)

func init() {
	logger.Init()
}

// scriptedCompleter returns canned replies keyed by system prompt.
type scriptedCompleter struct {
	mu      sync.Mutex
	replies map[string]string
	fail    bool
	calls   []string
	prompts []string
}

func (c *scriptedCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, opts ai.Options) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, systemPrompt)
	c.prompts = append(c.prompts, userPrompt)
	if c.fail {
		return "", errors.New("model unavailable")
	}
	for key, reply := range c.replies {
		if strings.Contains(systemPrompt, key) {
			return reply, nil
		}
	}
	return "OK", nil
}

func (c *scriptedCompleter) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *scriptedCompleter) userPrompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// fakeBlobStore records uploads and can be told to fail.
type fakeBlobStore struct {
	mu      sync.Mutex
	uploads []string
	fail    bool
}

func (s *fakeBlobStore) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return "", errors.New("bucket unreachable")
	}
	s.uploads = append(s.uploads, key)
	return "https://blobs.example.com/" + key, nil
}

func (s *fakeBlobStore) PublicURL(ref string) string { return ref }

const questionReply = `technical: Explain how you would design a rate limiter.
behavioral: Tell me about a challenge you faced on a team project.
situational: Your deploy just failed in production. What do you do?`

const evaluationReply = `Overall score: 80
Technical score: 75
Communication score: 85
Problem-solving score: 78
Detailed feedback: Solid performance with clear reasoning.
Key strengths: communication, composure
Areas for improvement: system design depth`

type env struct {
	jobs         domain.JobUsecase
	candidates   domain.CandidateUsecase
	applications domain.ApplicationUsecase
	interviews   domain.InterviewUsecase
	evaluations  domain.EvaluationUsecase

	evalRepo  domain.EvaluationRepository
	completer *scriptedCompleter
	blobs     *fakeBlobStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := memory.New()
	jobRepo := docstore.NewJobRepository(s)
	candidateRepo := docstore.NewCandidateRepository(s)
	appRepo := docstore.NewApplicationRepository(s)
	interviewRepo := docstore.NewInterviewRepository(s)
	evalRepo := docstore.NewEvaluationRepository(s)

	completer := &scriptedCompleter{replies: map[string]string{
		"creating questions":       questionReply,
		"comprehensive evaluation": evaluationReply,
	}}
	blobs := &fakeBlobStore{}

	applicationUC := usecase.NewApplicationUsecase(appRepo, jobRepo, candidateRepo, nil)
	evaluationUC := usecase.NewEvaluationUsecase(evalRepo, interviewRepo, appRepo, jobRepo, candidateRepo, completer)
	interviewUC := usecase.NewInterviewUsecase(
		interviewRepo, appRepo, jobRepo, candidateRepo,
		applicationUC, evaluationUC, completer, blobs)

	return &env{
		jobs:         usecase.NewJobUsecase(jobRepo),
		candidates:   usecase.NewCandidateUsecase(candidateRepo, validator.New()),
		applications: applicationUC,
		interviews:   interviewUC,
		evaluations:  evaluationUC,
		evalRepo:     evalRepo,
		completer:    completer,
		blobs:        blobs,
	}
}

var (
	hirer     = domain.Actor{UserID: "hirer-1", Email: "hr@acme.com", Role: domain.RoleHiring}
	candidate = domain.Actor{UserID: "cand-1", Email: "dana@example.com", Role: domain.RoleCandidate}
)

func seedJob(t *testing.T, e *env) *domain.Job {
	t.Helper()
	job := &domain.Job{
		Title: "Backend Engineer", Company: "Acme", Location: "Remote",
		Type: "full_time", Description: "Build and run Go services.",
		Requirements: "Go, SQL, distributed systems",
	}
	require.NoError(t, e.jobs.CreateJob(context.Background(), hirer, job))
	return job
}

func seedApplication(t *testing.T, e *env) *domain.Application {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.candidates.UpsertProfile(ctx, candidate, &domain.CandidateProfile{
		FullName: "Dana Smith", Email: candidate.Email,
	}))
	job := seedJob(t, e)
	app, err := e.applications.ApplyToJob(ctx, candidate, job.ID, "I would love this role.", "https://cv.example.com/dana.pdf")
	require.NoError(t, err)
	return app
}

func TestApplyToJob(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("Should create application in applied state", func(t *testing.T) {
		app := seedApplication(t, e)
		assert.Equal(t, domain.StatusApplied, app.Status)
		assert.Equal(t, candidate.UserID, app.CandidateID)
	})

	t.Run("Should reject a second application to the same job", func(t *testing.T) {
		apps, err := e.applications.GetMyApplications(ctx, candidate)
		require.NoError(t, err)
		require.Len(t, apps, 1)

		_, err = e.applications.ApplyToJob(ctx, candidate, apps[0].JobID, "", "")
		assert.True(t, apperror.IsKind(err, apperror.KindDuplicateApplication), "got %v", err)
	})

	t.Run("Should reject applications from non-candidates", func(t *testing.T) {
		job := seedJob(t, e)
		_, err := e.applications.ApplyToJob(ctx, hirer, job.ID, "", "")
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})

	t.Run("Should reject applications to missing jobs", func(t *testing.T) {
		_, err := e.applications.ApplyToJob(ctx, candidate, "nope", "", "")
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})
}

func TestTransitionStateMachine(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path applied to accepted via interview", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)

		updated, err := e.applications.Transition(ctx, hirer, app.ID, domain.StatusUnderReview)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusUnderReview, updated.Status)
		require.NotNil(t, updated.ReviewedAt)

		updated, err = e.applications.ScheduleInterview(ctx, hirer, app.ID, domain.InterviewDetails{
			ScheduledAt: time.Now().Add(48 * time.Hour), Duration: 45, Type: "video",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInterviewScheduled, updated.Status)
		require.NotNil(t, updated.Interview)
		assert.Equal(t, 45, updated.Interview.Duration)

		updated, err = e.applications.Transition(ctx, domain.OrchestratorActor(), app.ID, domain.StatusInterviewCompleted)
		require.NoError(t, err)

		updated, err = e.applications.Transition(ctx, hirer, app.ID, domain.StatusAccepted)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAccepted, updated.Status)
	})

	t.Run("Should reject edges that do not exist", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)

		_, err := e.applications.Transition(ctx, hirer, app.ID, domain.StatusAccepted)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition), "got %v", err)

		_, err = e.applications.Transition(ctx, domain.OrchestratorActor(), app.ID, domain.StatusInterviewCompleted)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
	})

	t.Run("Should reject wrong role on an existing edge", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)

		// applied -> under_review exists but belongs to the hiring role.
		_, err := e.applications.Transition(ctx, domain.OrchestratorActor(), app.ID, domain.StatusUnderReview)
		assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized), "got %v", err)
	})

	t.Run("Terminal states accept no transitions", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)

		_, err := e.applications.Transition(ctx, hirer, app.ID, domain.StatusRejected)
		require.NoError(t, err)

		_, err = e.applications.Transition(ctx, hirer, app.ID, domain.StatusUnderReview)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
	})

	t.Run("Rejection is reachable from every non-terminal state", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)

		_, err := e.applications.Transition(ctx, hirer, app.ID, domain.StatusUnderReview)
		require.NoError(t, err)
		updated, err := e.applications.Transition(ctx, hirer, app.ID, domain.StatusRejected)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRejected, updated.Status)
	})

	t.Run("Should reject hiring actors who do not own the job", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)

		other := domain.Actor{UserID: "hirer-2", Role: domain.RoleHiring}
		_, err := e.applications.Transition(ctx, other, app.ID, domain.StatusUnderReview)
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})

	t.Run("Unknown status fails validation", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)

		_, err := e.applications.Transition(ctx, hirer, app.ID, "archived")
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("A stale transition loses to the one already applied", func(t *testing.T) {
		s := memory.New()
		jobRepo := docstore.NewJobRepository(s)
		candidateRepo := docstore.NewCandidateRepository(s)
		appRepo := &staleReadRepo{ApplicationRepository: docstore.NewApplicationRepository(s)}
		jobs := usecase.NewJobUsecase(jobRepo)
		applications := usecase.NewApplicationUsecase(appRepo, jobRepo, candidateRepo, nil)

		job := &domain.Job{
			Title: "Backend Engineer", Company: "Acme", Location: "Remote",
			Type: "full_time", Description: "Build and run Go services.",
		}
		require.NoError(t, jobs.CreateJob(ctx, hirer, job))
		app, err := applications.ApplyToJob(ctx, candidate, job.ID, "", "")
		require.NoError(t, err)

		// Both transitions now validate against the same applied snapshot,
		// as if they had read the status before either wrote.
		appRepo.pinReads()

		_, err = applications.Transition(ctx, hirer, app.ID, domain.StatusRejected)
		require.NoError(t, err)

		_, err = applications.Transition(ctx, hirer, app.ID, domain.StatusUnderReview)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition), "got %v", err)

		// The accepted rejection stands; the application never left the
		// terminal state.
		current, err := appRepo.ApplicationRepository.GetByID(ctx, app.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRejected, current.Status)
	})
}

// staleReadRepo replays the first read taken after pinReads on every later
// GetByID, so two transitions can both validate against the same prior
// status while the store moves on underneath them.
type staleReadRepo struct {
	domain.ApplicationRepository
	mu     sync.Mutex
	pin    bool
	pinned *domain.Application
}

func (r *staleReadRepo) pinReads() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pin = true
}

func (r *staleReadRepo) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pin && r.pinned != nil {
		cp := *r.pinned
		return &cp, nil
	}
	app, err := r.ApplicationRepository.GetByID(ctx, id)
	if err == nil && r.pin {
		cp := *app
		r.pinned = &cp
	}
	return app, err
}

func scheduleInterview(t *testing.T, e *env, appID string) {
	t.Helper()
	ctx := context.Background()
	_, err := e.applications.Transition(ctx, hirer, appID, domain.StatusUnderReview)
	require.NoError(t, err)
	_, err = e.applications.ScheduleInterview(ctx, hirer, appID, domain.InterviewDetails{
		ScheduledAt: time.Now().Add(24 * time.Hour), Duration: 30, Type: "video",
	})
	require.NoError(t, err)
}

func TestInterviewSessionLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("StartSession requires a scheduled interview", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)

		_, err := e.interviews.StartSession(ctx, candidate, app.ID)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition), "got %v", err)
	})

	t.Run("Full capture and complete round trip", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)
		scheduleInterview(t, e, app.ID)

		session, err := e.interviews.StartSession(ctx, candidate, app.ID)
		require.NoError(t, err)
		require.Len(t, session.Questions, 3)
		assert.Equal(t, 0, session.QuestionIndex)

		for _, q := range session.Questions {
			_, err := e.interviews.CaptureResponse(ctx, candidate, app.ID, q.ID, []byte("webm-bytes"))
			require.NoError(t, err)
		}

		// Versioned artifact keys: candidate/job/question/v1.webm
		require.Len(t, e.blobs.uploads, 3)
		expected := fmt.Sprintf("%s/%s/%s/v1.webm", candidate.UserID, app.JobID, session.Questions[0].ID)
		assert.Equal(t, expected, e.blobs.uploads[0])

		updated, err := e.interviews.CompleteSession(ctx, candidate, app.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInterviewCompleted, updated.Status)

		// Evaluation runs in the background after completion.
		require.Eventually(t, func() bool {
			_, err := e.evalRepo.GetByApplicationID(context.Background(), app.ID)
			return err == nil
		}, 2*time.Second, 10*time.Millisecond)

		evaluation, err := e.evaluations.GetByApplicationID(ctx, hirer, app.ID)
		require.NoError(t, err)
		assert.Equal(t, 80, evaluation.OverallScore)
		assert.Equal(t, domain.QualityOK, evaluation.Quality)
	})

	t.Run("Duplicate capture is rejected", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)
		scheduleInterview(t, e, app.ID)

		session, err := e.interviews.StartSession(ctx, candidate, app.ID)
		require.NoError(t, err)

		qid := session.Questions[0].ID
		_, err = e.interviews.CaptureResponse(ctx, candidate, app.ID, qid, []byte("take-1"))
		require.NoError(t, err)
		_, err = e.interviews.CaptureResponse(ctx, candidate, app.ID, qid, []byte("take-2"))
		assert.True(t, apperror.IsKind(err, apperror.KindDuplicateResponse), "got %v", err)
	})

	t.Run("Failed upload leaves the session unchanged", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)
		scheduleInterview(t, e, app.ID)

		session, err := e.interviews.StartSession(ctx, candidate, app.ID)
		require.NoError(t, err)
		qid := session.Questions[0].ID

		e.blobs.fail = true
		_, err = e.interviews.CaptureResponse(ctx, candidate, app.ID, qid, []byte("take-1"))
		assert.True(t, apperror.IsKind(err, apperror.KindCaptureFailed), "got %v", err)

		// The question is not marked answered; a retry succeeds.
		e.blobs.fail = false
		_, err = e.interviews.CaptureResponse(ctx, candidate, app.ID, qid, []byte("take-1"))
		require.NoError(t, err)
	})

	t.Run("CompleteSession requires every question answered", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)
		scheduleInterview(t, e, app.ID)

		session, err := e.interviews.StartSession(ctx, candidate, app.ID)
		require.NoError(t, err)
		_, err = e.interviews.CaptureResponse(ctx, candidate, app.ID, session.Questions[0].ID, []byte("x"))
		require.NoError(t, err)

		_, err = e.interviews.CompleteSession(ctx, candidate, app.ID)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation), "got %v", err)
	})

	t.Run("Only the applicant can drive the session", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)
		scheduleInterview(t, e, app.ID)

		_, err := e.interviews.StartSession(ctx, hirer, app.ID)
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})
}

func TestGenerateQuestionsOncePerJob(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	app := seedApplication(t, e)

	first, err := e.interviews.GenerateQuestions(ctx, app.JobID, app.ID)
	require.NoError(t, err)
	require.Len(t, first, 3)
	callsAfterFirst := e.completer.callCount()

	second, err := e.interviews.GenerateQuestions(ctx, app.JobID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, e.completer.callCount(), "second call must not hit the model")
}

func TestEvaluation(t *testing.T) {
	ctx := context.Background()

	t.Run("Degraded quality when the reply ignores the format", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)
		e.completer.replies["comprehensive evaluation"] = "The candidate seemed fine overall."

		evaluation, err := e.evaluations.EvaluateSubmission(ctx, &domain.EvaluationRequest{
			ApplicationID: app.ID,
			Questions:     []string{"Why this role?"},
			Answers:       []string{"Because I enjoy backend work."},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.QualityDegraded, evaluation.Quality)
		assert.Equal(t, 0, evaluation.OverallScore)
	})

	t.Run("Re-evaluation replaces the previous result", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)

		req := &domain.EvaluationRequest{
			ApplicationID: app.ID,
			Questions:     []string{"Why this role?"},
			Answers:       []string{"Because I enjoy backend work."},
		}
		first, err := e.evaluations.EvaluateSubmission(ctx, req)
		require.NoError(t, err)

		second, err := e.evaluations.EvaluateSubmission(ctx, req)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		current, err := e.evalRepo.GetByApplicationID(ctx, app.ID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, current.ID)
	})

	t.Run("Model failure surfaces as a service error", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)
		e.completer.fail = true

		_, err := e.evaluations.EvaluateSubmission(ctx, &domain.EvaluationRequest{
			ApplicationID: app.ID,
			Questions:     []string{"Q"},
			Answers:       []string{"A"},
		})
		assert.True(t, apperror.IsKind(err, apperror.KindServiceError), "got %v", err)
	})

	t.Run("Mismatched transcript fails validation", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)

		_, err := e.evaluations.EvaluateSubmission(ctx, &domain.EvaluationRequest{
			ApplicationID: app.ID,
			Questions:     []string{"Q1", "Q2"},
			Answers:       []string{"A1"},
		})
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("Prompts carry the candidate profile", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)

		_, err := e.evaluations.EvaluateSubmission(ctx, &domain.EvaluationRequest{
			ApplicationID: app.ID,
			Questions:     []string{"Why this role?"},
			Answers:       []string{"Because I enjoy backend work."},
		})
		require.NoError(t, err)

		prompts := e.completer.userPrompts()
		require.NotEmpty(t, prompts)
		for _, p := range prompts {
			assert.Contains(t, p, "Candidate Profile:")
			assert.Contains(t, p, "Dana Smith")
		}
	})

	t.Run("Evaluate requires every question answered", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)
		scheduleInterview(t, e, app.ID)

		session, err := e.interviews.StartSession(ctx, candidate, app.ID)
		require.NoError(t, err)
		_, err = e.interviews.CaptureResponse(ctx, candidate, app.ID, session.Questions[0].ID, []byte("x"))
		require.NoError(t, err)

		_, err = e.evaluations.Evaluate(ctx, app.ID)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation), "got %v", err)
	})

	t.Run("Candidates and job owners can read the evaluation", func(t *testing.T) {
		e := newEnv(t)
		app := seedApplication(t, e)

		_, err := e.evaluations.EvaluateSubmission(ctx, &domain.EvaluationRequest{
			ApplicationID: app.ID,
			Questions:     []string{"Q"},
			Answers:       []string{"A"},
		})
		require.NoError(t, err)

		_, err = e.evaluations.GetByApplicationID(ctx, candidate, app.ID)
		assert.NoError(t, err)
		_, err = e.evaluations.GetByApplicationID(ctx, hirer, app.ID)
		assert.NoError(t, err)

		stranger := domain.Actor{UserID: "someone-else", Role: domain.RoleCandidate}
		_, err = e.evaluations.GetByApplicationID(ctx, stranger, app.ID)
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})
}

func TestJobOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	job := seedJob(t, e)

	other := domain.Actor{UserID: "hirer-2", Role: domain.RoleHiring}
	job.Title = "Staff Engineer"
	err := e.jobs.UpdateJob(ctx, other, job)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	err = e.jobs.DeleteJob(ctx, other, job.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	err = e.jobs.CreateJob(ctx, candidate, &domain.Job{
		Title: "X", Company: "Y", Location: "Z", Type: "full_time", Description: "D",
	})
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
}
