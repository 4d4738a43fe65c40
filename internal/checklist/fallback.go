package checklist

import "github.com/google/uuid"

// Fallback builds a minimal deterministic checklist without touching the
// completion provider. Used whenever synthesis is unavailable or fails.
func Fallback(eventType, goalText string) *Document {
	return fallbackWithAssumptions(eventType, goalText, []string{
		"Limited information available - please regenerate with more details",
	})
}

// QuotaFallback is the quota-exhaustion variant: same items, but the
// assumptions tell the user why generation was degraded.
func QuotaFallback(eventType, goalText string) *Document {
	return fallbackWithAssumptions(eventType, goalText, []string{
		"AI generation unavailable: OpenAI API quota exceeded",
		"This is a basic checklist - regenerate once your quota is restored for a personalized plan",
	})
}

func fallbackWithAssumptions(eventType, goalText string, assumptions []string) *Document {
	title := goalText
	if len(title) > 50 {
		title = title[:50]
	}

	baseItems := []struct {
		groupKey string
		text     string
		priority Priority
	}{
		{"context", "Review all available information about the event", PriorityHigh},
		{"skills", "Identify key skills needed and assess current level", PriorityHigh},
		{"evidence", "Prepare examples and evidence of relevant experience", PriorityMed},
		{"delivery", "Practice delivery and communication", PriorityMed},
		{"logistics", "Confirm time, location, and technical requirements", PriorityHigh},
	}

	groups := make([]Group, 0, len(groupOrder))
	for i, key := range groupOrder {
		base := baseItems[i]
		groups = append(groups, Group{
			Key:   key,
			Label: groupLabels[key],
			Items: []Item{{
				ID:       uuid.NewString(),
				GroupKey: base.groupKey,
				Text:     base.text,
				Status:   StatusTodo,
				Priority: base.priority,
			}},
		})
	}

	return &Document{
		Title:       title,
		EventType:   eventType,
		Assumptions: assumptions,
		Groups:      groups,
		Next3Actions: []string{
			"Review all available information",
			"Identify key skills needed",
			"Confirm logistics",
		},
	}
}
