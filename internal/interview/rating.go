package interview

import (
	"regexp"
	"strconv"
	"strings"

	"interviewhub-backend/internal/llm"
)

// Per-answer score weights. Four correct answers reach the 10.0 cap.
const (
	correctWeight   = 2.5
	partialWeight   = 1.5
	incorrectWeight = 0.5

	passThreshold = 7.0
	defaultRating = 7.0
	maxRating     = 10.0
)

var positiveKeywords = []string{
	"correct", "right", "good", "accurate", "well", "excellent", "perfect",
	"yes", "exactly", "that's correct", "you're right", "great answer",
	"that is correct", "you are right", "spot on", "precisely", "absolutely right",
}

var negativeKeywords = []string{
	"incorrect", "wrong", "not quite", "misunderstanding", "needs improvement",
	"not correct", "not right", "unfortunately", "that's not", "that is not",
	"that's wrong", "that is wrong", "incorrectly", "mistaken",
}

var partialKeywords = []string{
	"partially", "mostly", "somewhat", "almost", "close", "partly",
	"partially correct", "mostly correct",
}

// ratingPattern pulls a numeric rating out of free-form closing remarks,
// matching either "8.5/10" or "rating: 8.5".
var ratingPattern = regexp.MustCompile(`(\d+\.?\d*)/10|rating[:\s]+(\d+\.?\d*)`)

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// isFeedbackTurn reports whether an assistant turn carries answer feedback
// rather than a question.
func isFeedbackTurn(content string) bool {
	lowered := strings.ToLower(content)
	if strings.HasPrefix(strings.TrimSpace(lowered), "feedback:") {
		return true
	}
	return strings.Contains(lowered, "feedback") && !strings.Contains(lowered, "?")
}

// tallyFeedback walks the history and counts correct, partial, and incorrect
// verdicts from the feedback turns. Negative keywords dominate; positive
// without negative counts as correct unless softened by a partial keyword;
// substantial feedback with no clear verdict counts as partial.
func tallyFeedback(history []llm.Message) (correct, partial, incorrect int) {
	for _, msg := range history {
		if msg.Role != llm.RoleAssistant {
			continue
		}
		if !isFeedbackTurn(msg.Content) {
			continue
		}
		lowered := strings.ToLower(msg.Content)
		text := lowered
		if idx := strings.Index(lowered, "feedback:"); idx >= 0 {
			text = strings.TrimSpace(lowered[idx+len("feedback:"):])
		}

		hasNegative := containsAny(text, negativeKeywords)
		hasPositive := containsAny(text, positiveKeywords)
		hasPartial := containsAny(text, partialKeywords)

		switch {
		case hasNegative:
			incorrect++
		case hasPositive:
			if hasPartial {
				partial++
			} else {
				correct++
			}
		case hasPartial:
			partial++
		case len(text) > 10:
			partial++
		}
	}
	return correct, partial, incorrect
}

// scoreHistory derives a rating: deterministic tally first, then a number
// quoted in the closing remarks, then the fair default.
func scoreHistory(history []llm.Message, closing string) float64 {
	correct, partial, incorrect := tallyFeedback(history)
	if correct+partial+incorrect > 0 {
		rating := float64(correct)*correctWeight + float64(partial)*partialWeight + float64(incorrect)*incorrectWeight
		if rating > maxRating {
			rating = maxRating
		}
		return rating
	}

	if m := ratingPattern.FindStringSubmatch(strings.ToLower(closing)); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return defaultRating
}

// countQuestions counts assistant turns that pose a question: they contain a
// question mark and are not feedback turns.
func countQuestions(history []llm.Message) int {
	n := 0
	for _, msg := range history {
		if msg.Role != llm.RoleAssistant {
			continue
		}
		if strings.Contains(msg.Content, "?") && !strings.HasPrefix(strings.TrimSpace(msg.Content), "Feedback:") {
			n++
		}
	}
	return n
}

func countAnswers(history []llm.Message) int {
	n := 0
	for _, msg := range history {
		if msg.Role == llm.RoleUser {
			n++
		}
	}
	return n
}
