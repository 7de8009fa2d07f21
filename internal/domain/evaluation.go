package domain

import (
	"context"
	"time"
)

// Evaluation quality flags. A degraded evaluation was produced from model
// output that did not fully match the expected labeled-line format.
const (
	QualityOK       = "ok"
	QualityDegraded = "degraded"
)

// Evaluation is the aggregate AI assessment of a completed interview. At most
// one current evaluation exists per application; re-evaluation replaces it.
type Evaluation struct {
	ID                  string    `json:"id"`
	ApplicationID       string    `json:"application_id"`
	OverallScore        int       `json:"overall_score"`
	TechnicalScore      int       `json:"technical_score"`
	CommunicationScore  int       `json:"communication_score"`
	ProblemSolvingScore int       `json:"problem_solving_score"`
	Feedback            string    `json:"feedback"`
	Strengths           []string  `json:"strengths"`
	AreasForImprovement []string  `json:"areas_for_improvement"`
	Quality             string    `json:"quality"`
	CreatedAt           time.Time `json:"created_at"`
}

// EvaluationRequest is a direct evaluation submission: question/answer
// transcript pairs evaluated without a stored interview session.
type EvaluationRequest struct {
	ApplicationID string   `json:"application_id" validate:"required"`
	Questions     []string `json:"questions" validate:"required,min=1"`
	Answers       []string `json:"answers" validate:"required,min=1"`
}

type EvaluationRepository interface {
	GetByApplicationID(ctx context.Context, applicationID string) (*Evaluation, error)
	// Replace removes any prior evaluation for the application and stores ev.
	Replace(ctx context.Context, ev *Evaluation) error
}

type EvaluationUsecase interface {
	// Evaluate runs the full pipeline for a completed interview: per-response
	// assessment followed by an aggregate pass over the stored responses.
	Evaluate(ctx context.Context, applicationID string) (*Evaluation, error)

	// EvaluateSubmission evaluates a provided transcript directly.
	EvaluateSubmission(ctx context.Context, req *EvaluationRequest) (*Evaluation, error)

	GetByApplicationID(ctx context.Context, actor Actor, applicationID string) (*Evaluation, error)
}
