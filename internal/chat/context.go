package chat

import (
	"strings"

	"interviewhub-backend/internal/llm"
)

// Context is the structured state extracted from a conversation so far.
// Keys grow monotonically across turns: Merge overwrites and augments but
// never deletes. Unrecognized keys are tolerated and ignored by the gate.
type Context map[string]string

// Merge folds extracted fields into the context, overwriting existing keys.
func (c Context) Merge(other Context) {
	for k, v := range other {
		c[k] = v
	}
}

// interviewFields are the recognized context keys for interview sessions,
// in the order the readiness gate counts them.
var interviewFields = []string{
	"job_description",
	"company",
	"interview_format",
	"technologies",
	"timeline",
}

// knownCompanies is a crude company-name heuristic for interview context.
var knownCompanies = []string{"google", "microsoft", "amazon", "meta", "apple", "netflix"}

// jobDescriptionMinLen is the length past which a user message is treated as
// a pasted job description.
const jobDescriptionMinLen = 200

// Extract derives structured context fields from the message history. Only
// the interview category has extraction heuristics today; other categories
// return an empty context and rely on the message-count gate.
func Extract(history []llm.Message, eventType EventType) Context {
	extracted := Context{}
	if eventType != EventInterview {
		return extracted
	}

	// The longest user message past the threshold is assumed to be a pasted
	// job description.
	var longest llm.Message
	for _, msg := range history {
		if msg.Role != llm.RoleUser {
			continue
		}
		if len(msg.Content) > len(longest.Content) {
			longest = msg
		}
	}
	if len(longest.Content) > jobDescriptionMinLen {
		extracted["job_description"] = longest.Content
	}

	for _, msg := range history {
		lowered := strings.ToLower(msg.Content)
		for _, company := range knownCompanies {
			if strings.Contains(lowered, company) {
				extracted["company"] = msg.Content
				break
			}
		}
		if _, ok := extracted["company"]; ok {
			break
		}
	}

	return extracted
}

// Ready decides whether enough information exists to synthesize a checklist.
// Evaluated once per incoming user message until it returns true; synthesis
// itself is triggered at most once per session by the caller.
func Ready(eventType EventType, ctx Context, history []llm.Message) bool {
	switch eventType {
	case EventInterview:
		infoCount := 0
		for _, field := range interviewFields {
			if ctx[field] != "" {
				infoCount++
				continue
			}
			spaced := strings.ReplaceAll(field, "_", " ")
			for _, msg := range history {
				if strings.Contains(strings.ToLower(msg.Content), spaced) {
					infoCount++
					break
				}
			}
		}

		hasJobDesc := ctx["job_description"] != ""
		if !hasJobDesc {
			for _, msg := range history {
				if msg.Role != llm.RoleUser {
					continue
				}
				if strings.Contains(strings.ToLower(msg.Content), "job description") || len(msg.Content) > jobDescriptionMinLen {
					hasJobDesc = true
					break
				}
			}
		}

		return infoCount >= 3 || (hasJobDesc && infoCount >= 2)
	case EventPresentation:
		return ctx["audience"] != "" && ctx["goal"] != ""
	case EventPerformanceReview:
		// No extractor populates these keys today; the gate stays closed for
		// this category unless context is injected by the caller.
		return ctx["review_type"] != "" && ctx["goals"] != ""
	default:
		if len(ctx) >= 2 {
			return true
		}
		userMessages := 0
		for _, msg := range history {
			if msg.Role == llm.RoleUser {
				userMessages++
			}
		}
		return userMessages >= 3
	}
}
