package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"interviewhub-backend/internal/llm"
	"interviewhub-backend/internal/shared/telemetry"
)

// Service produces the conversational surface of a session: category
// classification, session titles, and assistant replies. Every method
// degrades instead of failing so the session flow never blocks on the
// completion provider.
type Service struct {
	llm llm.Client
}

func NewService(client llm.Client) *Service {
	return &Service{llm: client}
}

// Classify maps the opening goal text to an event category. The generator
// path and the keyword fallback agree on any text containing an unambiguous
// category keyword.
func (s *Service) Classify(ctx context.Context, goalText string) EventType {
	if !s.llm.Available() {
		return classifyKeywords(goalText)
	}

	prompt := fmt.Sprintf(`Classify the following user goal into one of these event types: interview, presentation, performance_review, negotiation, other.

User goal: %q

Respond with ONLY the event type (one word, lowercase).`, goalText)

	out, err := s.llm.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: classifierSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   10,
	})
	if err != nil {
		telemetry.Error("chat.classify_failed", map[string]any{"error": err.Error()})
		return classifyKeywords(goalText)
	}
	return matchEventType(out)
}

// titleMaxLen bounds the fallback title when the generator is unavailable.
const titleMaxLen = 50

// Title produces a short session title from the goal text, falling back to a
// truncated copy of the goal itself.
func (s *Service) Title(ctx context.Context, goalText string, eventType EventType) string {
	fallback := goalText
	if len(fallback) > titleMaxLen {
		fallback = fallback[:titleMaxLen]
	}
	if !s.llm.Available() {
		return fallback
	}

	prompt := fmt.Sprintf(`Generate a short, concise title (max 50 characters) for this event:

User goal: %q
Event type: %s

Respond with ONLY the title, no quotes.`, goalText, eventType)

	out, err := s.llm.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: titleSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: 0.5,
		MaxTokens:   30,
	})
	if err != nil {
		telemetry.Error("chat.title_failed", map[string]any{"error": err.Error()})
		return fallback
	}
	title := strings.TrimSpace(out)
	title = strings.Trim(title, `"'`)
	if title == "" {
		return fallback
	}
	return title
}

// Respond generates the assistant's next reply from the message history.
// Completion failures are translated into remediation messages that tell the
// user what to fix; the raw provider error never reaches the chat.
func (s *Service) Respond(ctx context.Context, history []llm.Message, eventType EventType) string {
	if !s.llm.Available() {
		return msgUnavailable
	}

	conversation := make([]llm.Message, 0, len(history)+2)
	conversation = append(conversation, llm.Message{Role: llm.RoleSystem, Content: assistantSystemPrompt})

	// Category guidance rides in a bracketed user turn since the provider
	// rejects a second system message.
	if eventType != "" {
		guidance, ok := categoryGuidance[eventType]
		if !ok {
			guidance = fmt.Sprintf("The user is preparing for a %s.", eventType)
		}
		conversation = append(conversation, llm.Message{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("[Context: %s Be proactive in asking for this information to create a personalized preparation plan.]", guidance),
		})
	}

	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		if msg.Role != llm.RoleUser && msg.Role != llm.RoleAssistant {
			continue
		}
		conversation = append(conversation, msg)
	}

	out, err := s.llm.Complete(ctx, llm.Request{
		Messages:    conversation,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		telemetry.Error("chat.respond_failed", map[string]any{"error": err.Error(), "event_type": string(eventType)})
		switch {
		case errors.Is(err, llm.ErrQuotaExceeded):
			return msgQuotaExceeded
		case errors.Is(err, llm.ErrModelNotFound):
			return msgModelAccess
		case errors.Is(err, llm.ErrAuth):
			return msgAuthFailed
		case errors.Is(err, llm.ErrUnavailable):
			return msgUnavailable
		default:
			return msgGenericFailure
		}
	}
	if strings.TrimSpace(out) == "" {
		return "I apologize, but I couldn't generate a response. Please try again."
	}
	return out
}
