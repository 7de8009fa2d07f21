package aitext

import (
	"regexp"
	"strings"

	"go-hirestream-backend/internal/domain"
)

// ParsedQuestion is one question extracted from model output, before ids and
// timestamps are assigned.
type ParsedQuestion struct {
	Question string
	Category string
}

var questionTypeRe = regexp.MustCompile(`(?i)^(technical|behavioral|situational):`)

// numberPrefixRe strips leading list markers like "1.", "2)" or "-" that
// models commonly add despite the format instruction.
var numberPrefixRe = regexp.MustCompile(`^\s*(?:\d+[.)]\s*|[-*]\s*)`)

// ParseQuestions extracts questions line by line. Lines prefixed with a known
// category keep it; anything else gets a category inferred from keywords.
// Blank lines are skipped.
func ParseQuestions(text string) []ParsedQuestion {
	var out []ParsedQuestion
	for _, line := range strings.Split(text, "\n") {
		line = numberPrefixRe.ReplaceAllString(strings.TrimSpace(line), "")
		if line == "" {
			continue
		}
		if m := questionTypeRe.FindString(line); m != "" {
			question := strings.TrimSpace(line[len(m):])
			if question != "" {
				out = append(out, ParsedQuestion{
					Question: question,
					Category: strings.ToLower(strings.TrimSuffix(m, ":")),
				})
			}
			continue
		}
		out = append(out, ParsedQuestion{Question: line, Category: InferCategory(line)})
	}
	return out
}

var technicalKeywords = []string{
	"code", "programming", "algorithm", "database", "api", "framework",
	"language", "technology", "system", "architecture", "design pattern",
}

var behavioralKeywords = []string{
	"experience", "worked", "team", "collaborate", "challenge", "situation",
	"handled", "managed", "lead", "mentor", "learned",
}

// InferCategory guesses a category for an unlabeled question. Situational is
// the fallback.
func InferCategory(question string) string {
	lower := strings.ToLower(question)
	for _, kw := range technicalKeywords {
		if strings.Contains(lower, kw) {
			return domain.CategoryTechnical
		}
	}
	for _, kw := range behavioralKeywords {
		if strings.Contains(lower, kw) {
			return domain.CategoryBehavioral
		}
	}
	return domain.CategorySituational
}
