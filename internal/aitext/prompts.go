// Package aitext builds the prompts sent to the language model and parses its
// free-text replies into structured interview data. The model is not trusted
// to follow the format; every parser tolerates missing or malformed sections
// and reports degraded output instead of failing.
package aitext

import (
	"encoding/json"
	"fmt"
	"strings"

	"go-hirestream-backend/internal/domain"
)

const QuestionSystemPrompt = `You are an expert interviewer creating questions for a technical interview.
Generate 5-10 questions based on the job description and candidate's profile.
Mix technical, behavioral, and situational questions.
Focus on the candidate's experience and the job requirements.
Format each question on its own line prefixed with its type, for example "technical: <question>".`

const ResponseSystemPrompt = `You are an expert interviewer evaluating a candidate's response.
Consider the job description and candidate's profile in your evaluation.
Provide a score (0-100) and detailed feedback.`

const EvaluationSystemPrompt = `You are an expert interviewer providing a comprehensive evaluation of a candidate's interview performance.
Consider all responses and provide, each on its own line:
1. Overall score (0-100)
2. Technical score (0-100)
3. Communication score (0-100)
4. Problem-solving score (0-100)
5. Detailed feedback
6. Key strengths (comma separated)
7. Areas for improvement (comma separated)
Use the exact labels above, followed by a colon.`

// QuestionUserPrompt assembles the job and candidate context for question
// generation. The candidate may be nil when no profile exists yet.
func QuestionUserPrompt(job *domain.Job, candidate *domain.CandidateProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job Title: %s\n", job.Title)
	fmt.Fprintf(&b, "Job Description: %s\n", job.Description)
	if job.Requirements != "" {
		fmt.Fprintf(&b, "Job Requirements: %s\n", job.Requirements)
	}
	writeCandidateProfile(&b, candidate)
	return b.String()
}

// ResponseUserPrompt assembles the context for a single-response assessment.
// The candidate may be nil when no profile exists.
func ResponseUserPrompt(job *domain.Job, candidate *domain.CandidateProfile, question, answer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job Description: %s\n", job.Description)
	writeCandidateProfile(&b, candidate)
	fmt.Fprintf(&b, "Question: %s\n", question)
	fmt.Fprintf(&b, "Response: %s\n", answer)
	return b.String()
}

// EvaluationUserPrompt assembles the aggregate evaluation context from the
// per-response analyses.
func EvaluationUserPrompt(job *domain.Job, candidate *domain.CandidateProfile, analyses []ResponseAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job Description: %s\n", job.Description)
	writeCandidateProfile(&b, candidate)
	body, err := json.Marshal(analyses)
	if err == nil {
		fmt.Fprintf(&b, "Response Analyses: %s\n", body)
	}
	return b.String()
}

func writeCandidateProfile(b *strings.Builder, candidate *domain.CandidateProfile) {
	if candidate == nil {
		return
	}
	profile, err := json.Marshal(candidate)
	if err == nil {
		fmt.Fprintf(b, "Candidate Profile: %s\n", profile)
	}
}

// ResponseAnalysis pairs a question with the model's assessment of its
// answer.
type ResponseAnalysis struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Analysis   string `json:"analysis"`
}
