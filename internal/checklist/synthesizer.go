package checklist

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"interviewhub-backend/internal/llm"
	"interviewhub-backend/internal/shared/telemetry"
)

// Synthesizer turns gathered context into a checklist document via the
// completion provider, then coerces whatever comes back into the canonical
// shape. Provider and parse failures surface as errors; the caller decides
// whether to fall back.
type Synthesizer struct {
	llm llm.Client
}

func NewSynthesizer(client llm.Client) *Synthesizer {
	return &Synthesizer{llm: client}
}

const synthesisSystemPrompt = `You are InterviewHub, an expert preparation assistant. Your job is to create concise, actionable, checkable TODO items to prepare the user for an upcoming event.

Rules:
- Output ONLY valid JSON that matches this exact schema (no markdown, no code blocks):
{
  "title": "string",
  "event_type": "string",
  "assumptions": ["string"],
  "groups": [
    {
      "key": "context",
      "label": "Context Understanding",
      "items": [
        {
          "id": "uuid-string",
          "group_key": "context",
          "text": "Actionable task starting with a verb",
          "status": "todo",
          "priority": "high|med|low",
          "estimate_minutes": number,
          "rationale": "optional short reason"
        }
      ]
    },
    {"key": "skills", "label": "Skills / Knowledge Prep", "items": [...]},
    {"key": "evidence", "label": "Evidence & Examples", "items": [...]},
    {"key": "delivery", "label": "Delivery & Execution", "items": [...]},
    {"key": "logistics", "label": "Logistics & Risk", "items": [...]}
  ],
  "next_3_actions": ["action 1", "action 2", "action 3"]
}

Requirements:
- Group tasks into the 5 readiness dimensions (context, skills, evidence, delivery, logistics)
- Keep total tasks between 10 and 18
- Each task should start with a verb and be specific and checkable
- Include priority (high/med/low) for each task
- Include estimate_minutes when reasonable
- Include rationale for complex tasks
- Generate next_3_actions as the most urgent/immediate steps
- Include assumptions if information is missing
- Avoid generic advice - be specific to each users situation
- If time is short (<3 days mentioned), compress into urgent steps only`

type rawItem struct {
	ID              string `json:"id"`
	Text            string `json:"text"`
	Priority        string `json:"priority"`
	EstimateMinutes *int   `json:"estimate_minutes"`
	Rationale       string `json:"rationale"`
}

type rawGroup struct {
	Key   string    `json:"key"`
	Items []rawItem `json:"items"`
}

type rawChecklist struct {
	Title        string     `json:"title"`
	Assumptions  []string   `json:"assumptions"`
	Groups       []rawGroup `json:"groups"`
	Next3Actions []string   `json:"next_3_actions"`
}

// Generate synthesizes a checklist for the event. Returns an error on
// provider failure or unparseable output; the document is otherwise always
// in canonical shape.
func (s *Synthesizer) Generate(ctx context.Context, eventType, goalText string, answers map[string]string) (*Document, error) {
	if !s.llm.Available() {
		return nil, fmt.Errorf("generate checklist: %w", llm.ErrUnavailable)
	}

	var contextText strings.Builder
	fmt.Fprintf(&contextText, "Event type: %s\n", eventType)
	fmt.Fprintf(&contextText, "User goal: %s\n", goalText)
	contextText.WriteString("Answers provided:\n")
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&contextText, "- %s: %s\n", k, answers[k])
	}

	userPrompt := fmt.Sprintf(`Generate a readiness checklist for this event:

%s

Output the JSON checklist now.`, contextText.String())

	out, err := s.llm.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: synthesisSystemPrompt},
			{Role: llm.RoleUser, Content: userPrompt},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
		JSONOutput:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("generate checklist: %w", err)
	}

	var raw rawChecklist
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		telemetry.Error("checklist.parse_failed", map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("generate checklist: malformed output: %w", err)
	}

	return coerce(raw, eventType, goalText), nil
}

// uuidPattern matches the canonical 8-4-4-4-12 hex form.
var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// coerce maps loosely shaped generator output onto the canonical document:
// exactly five groups in fixed order, missing ones materialized empty,
// every item id replaced unless it already is a well-formed UUID.
func coerce(raw rawChecklist, eventType, goalText string) *Document {
	byKey := make(map[string]rawGroup, len(raw.Groups))
	for _, g := range raw.Groups {
		if _, ok := byKey[g.Key]; !ok {
			byKey[g.Key] = g
		}
	}

	groups := make([]Group, 0, len(groupOrder))
	for _, key := range groupOrder {
		group := Group{Key: key, Label: groupLabels[key], Items: []Item{}}
		for _, it := range byKey[key].Items {
			id := it.ID
			if !uuidPattern.MatchString(id) {
				id = uuid.NewString()
			}
			priority := Priority(it.Priority)
			if !priority.Valid() {
				priority = ""
			}
			group.Items = append(group.Items, Item{
				ID:              id,
				GroupKey:        key,
				Text:            it.Text,
				Status:          StatusTodo,
				Priority:        priority,
				EstimateMinutes: it.EstimateMinutes,
				Rationale:       it.Rationale,
			})
		}
		groups = append(groups, group)
	}

	title := raw.Title
	if title == "" {
		title = goalText
	}
	assumptions := raw.Assumptions
	if assumptions == nil {
		assumptions = []string{}
	}
	actions := raw.Next3Actions
	if actions == nil {
		actions = []string{}
	}

	return &Document{
		Title:        title,
		EventType:    eventType,
		Assumptions:  assumptions,
		Groups:       groups,
		Next3Actions: actions,
	}
}
