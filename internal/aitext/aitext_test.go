package aitext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-hirestream-backend/internal/domain"
)

func TestParseQuestionsLabeled(t *testing.T) {
	text := `technical: Explain how a hash map handles collisions.
behavioral: Tell me about a time you disagreed with a teammate.

situational: A production deploy just failed. What do you do first?`

	questions := ParseQuestions(text)
	require.Len(t, questions, 3)
	assert.Equal(t, "Explain how a hash map handles collisions.", questions[0].Question)
	assert.Equal(t, domain.CategoryTechnical, questions[0].Category)
	assert.Equal(t, domain.CategoryBehavioral, questions[1].Category)
	assert.Equal(t, domain.CategorySituational, questions[2].Category)
}

func TestParseQuestionsStripsListMarkers(t *testing.T) {
	text := `1. technical: What is an index scan?
2) Behavioral: Describe a project you led.
- How would you prioritize conflicting deadlines?`

	questions := ParseQuestions(text)
	require.Len(t, questions, 3)
	assert.Equal(t, "What is an index scan?", questions[0].Question)
	assert.Equal(t, domain.CategoryTechnical, questions[0].Category)
	assert.Equal(t, domain.CategoryBehavioral, questions[1].Category)
	// No label: inferred from content.
	assert.Equal(t, domain.CategorySituational, questions[2].Category)
}

func TestInferCategory(t *testing.T) {
	assert.Equal(t, domain.CategoryTechnical, InferCategory("How would you design the database schema?"))
	assert.Equal(t, domain.CategoryBehavioral, InferCategory("Tell me about a challenge you faced."))
	assert.Equal(t, domain.CategorySituational, InferCategory("What would you do on day one?"))
}

func TestParseEvaluationWellFormed(t *testing.T) {
	content := `Overall score: 82
Technical score: 78
Communication score: 90
Problem-solving score: 75
Detailed feedback: Strong fundamentals with clear explanations throughout.
Key strengths: clear communication, solid debugging, ownership
Areas for improvement: system design depth, testing habits`

	result := ParseEvaluation(content)
	assert.True(t, result.Parsed)
	assert.Equal(t, 82, result.OverallScore)
	assert.Equal(t, 78, result.TechnicalScore)
	assert.Equal(t, 90, result.CommunicationScore)
	assert.Equal(t, 75, result.ProblemSolvingScore)
	assert.Equal(t, "Strong fundamentals with clear explanations throughout.", result.Feedback)
	assert.Equal(t, []string{"clear communication", "solid debugging", "ownership"}, result.Strengths)
	assert.Equal(t, []string{"system design depth", "testing habits"}, result.AreasForImprovement)
}

func TestParseEvaluationTolerantOfDecoration(t *testing.T) {
	content := `1. Overall score (0-100): 65
2. Technical score (0-100): 60
3. Communication score (0-100): 70
4. Problem-solving score (0-100): 55
5. Detailed feedback: Adequate answers but shallow on architecture.
6. Key strengths: persistence
7. Areas for improvement: depth`

	result := ParseEvaluation(content)
	assert.True(t, result.Parsed)
	assert.Equal(t, 65, result.OverallScore)
	assert.Equal(t, 55, result.ProblemSolvingScore)
}

func TestParseEvaluationMissingLabelsDegrades(t *testing.T) {
	content := `The candidate did reasonably well overall.
Technical score: 70`

	result := ParseEvaluation(content)
	assert.False(t, result.Parsed)
	assert.Equal(t, 0, result.OverallScore)
	assert.Equal(t, 70, result.TechnicalScore)
	assert.Empty(t, result.Feedback)
	assert.Nil(t, result.Strengths)
}

func TestParseEvaluationClampsScores(t *testing.T) {
	content := `Overall score: 140
Technical score: 95
Communication score: 88
Problem-solving score: 91
Detailed feedback: Excellent.
Key strengths: everything
Areas for improvement: none`

	result := ParseEvaluation(content)
	assert.Equal(t, 100, result.OverallScore)
}
