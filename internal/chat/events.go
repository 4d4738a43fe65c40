package chat

import "strings"

// EventType is the closed set of preparation event categories.
type EventType string

const (
	EventInterview         EventType = "interview"
	EventPresentation      EventType = "presentation"
	EventPerformanceReview EventType = "performance_review"
	EventNegotiation       EventType = "negotiation"
	EventOther             EventType = "other"
)

var eventTypes = []EventType{
	EventInterview,
	EventPresentation,
	EventPerformanceReview,
	EventNegotiation,
	EventOther,
}

// Valid reports whether e is a member of the closed category set.
func (e EventType) Valid() bool {
	for _, v := range eventTypes {
		if e == v {
			return true
		}
	}
	return false
}

// classifyKeywords is the deterministic classification path, used when the
// completion provider is unavailable or errors. It must agree with the
// generator path on any input containing an unambiguous keyword.
func classifyKeywords(goalText string) EventType {
	lowered := strings.ToLower(goalText)
	switch {
	case strings.Contains(lowered, "interview"):
		return EventInterview
	case strings.Contains(lowered, "presentation"):
		return EventPresentation
	case strings.Contains(lowered, "review"), strings.Contains(lowered, "performance"):
		return EventPerformanceReview
	case strings.Contains(lowered, "negotiation"), strings.Contains(lowered, "negotiate"):
		return EventNegotiation
	default:
		return EventOther
	}
}

// matchEventType validates a raw generator answer against the closed set,
// trying substring matches in both directions before giving up.
func matchEventType(raw string) EventType {
	answer := strings.ToLower(strings.TrimSpace(raw))
	if answer == "" {
		return EventOther
	}
	if et := EventType(answer); et.Valid() {
		return et
	}
	for _, et := range eventTypes {
		if strings.Contains(answer, string(et)) || strings.Contains(string(et), answer) {
			return et
		}
	}
	return EventOther
}
