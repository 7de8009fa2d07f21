package domain

import (
	"context"
	"time"
)

// Interview question categories
const (
	CategoryTechnical   = "technical"
	CategoryBehavioral  = "behavioral"
	CategorySituational = "situational"
)

// InterviewQuestion is generated once per job and then immutable.
type InterviewQuestion struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	Question  string    `json:"question"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// InterviewResponse records one captured answer. Re-recording creates a new
// record with a new versioned artifact key; history is retained and the
// newest response per question is the current one.
type InterviewResponse struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	QuestionID    string    `json:"question_id"`
	RecordingURL  string    `json:"recording_url"`
	CreatedAt     time.Time `json:"created_at"`
}

// InterviewSession is the orchestrator's per-application state: a fixed
// question sequence, a monotonically advancing index, and the set of
// questions already answered in this session.
type InterviewSession struct {
	ApplicationID string              `json:"application_id"`
	JobID         string              `json:"job_id"`
	CandidateID   string              `json:"candidate_id"`
	Questions     []InterviewQuestion `json:"questions"`
	QuestionIndex int                 `json:"question_index"`
	Captured      map[string]bool     `json:"captured"`
	StartedAt     time.Time           `json:"started_at"`
}

type InterviewRepository interface {
	CreateQuestions(ctx context.Context, questions []InterviewQuestion) ([]InterviewQuestion, error)
	GetQuestionsByJobID(ctx context.Context, jobID string) ([]InterviewQuestion, error)
	CreateResponse(ctx context.Context, resp *InterviewResponse) error
	GetResponsesByApplicationID(ctx context.Context, applicationID string) ([]InterviewResponse, error)
}

type InterviewUsecase interface {
	// StartSession requires the application to be interview_scheduled. When
	// the job has no question set yet, one is generated and persisted first.
	StartSession(ctx context.Context, actor Actor, applicationID string) (*InterviewSession, error)

	// CaptureResponse stores the artifact under a versioned key, records the
	// response and advances the session. A second capture for the same
	// question fails with DuplicateResponse; a storage failure leaves the
	// session unchanged and fails with CaptureFailed.
	CaptureResponse(ctx context.Context, actor Actor, applicationID, questionID string, artifact []byte) (*InterviewResponse, error)

	// CompleteSession requires every question answered, transitions the
	// application to interview_completed and triggers evaluation
	// asynchronously.
	CompleteSession(ctx context.Context, actor Actor, applicationID string) (*Application, error)

	// AbandonSession drops session state without touching the application.
	AbandonSession(applicationID string)

	// GenerateQuestions returns the job's question set, generating and
	// persisting it when absent.
	GenerateQuestions(ctx context.Context, jobID, applicationID string) ([]InterviewQuestion, error)
}
