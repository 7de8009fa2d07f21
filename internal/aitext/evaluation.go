package aitext

import (
	"regexp"
	"strconv"
	"strings"
)

// EvaluationResult is the structured form of an aggregate evaluation reply.
// Parsed is false when none of the expected labels were found, which marks
// the stored evaluation as degraded.
type EvaluationResult struct {
	OverallScore        int
	TechnicalScore      int
	CommunicationScore  int
	ProblemSolvingScore int
	Feedback            string
	Strengths           []string
	AreasForImprovement []string
	Parsed              bool
}

// ParseEvaluation extracts the labeled lines from model output. A missing
// score defaults to 0; scores are clamped to [0, 100].
func ParseEvaluation(content string) EvaluationResult {
	overall, okOverall := extractScore(content, "Overall score")
	technical, okTech := extractScore(content, "Technical score")
	communication, okComm := extractScore(content, "Communication score")
	problemSolving, okProb := extractScore(content, "Problem-solving score")
	feedback, okFeedback := extractSection(content, "Detailed feedback")

	return EvaluationResult{
		OverallScore:        clampScore(overall),
		TechnicalScore:      clampScore(technical),
		CommunicationScore:  clampScore(communication),
		ProblemSolvingScore: clampScore(problemSolving),
		Feedback:            feedback,
		Strengths:           extractList(content, "Key strengths"),
		AreasForImprovement: extractList(content, "Areas for improvement"),
		Parsed:              okOverall && okTech && okComm && okProb && okFeedback,
	}
}

func labelRe(label string) *regexp.Regexp {
	// Labels may arrive with markdown emphasis or list numbering around
	// them; match the label anywhere at a line start-ish position.
	return regexp.MustCompile(`(?im)` + regexp.QuoteMeta(label) + `[^:\n]*:\s*([^\n]+)`)
}

func extractScore(content, label string) (int, bool) {
	m := labelRe(label).FindStringSubmatch(content)
	if m == nil {
		return 0, false
	}
	digits := regexp.MustCompile(`\d+`).FindString(m[1])
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

func extractSection(content, label string) (string, bool) {
	m := labelRe(label).FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func extractList(content, label string) []string {
	section, ok := extractSection(content, label)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range strings.Split(section, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
