package chat

// FollowupField is one input the client should render when prompting the
// user for missing context.
type FollowupField struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// FollowupQuestion is a structured prompt for the context fields a category
// needs before the readiness gate can open.
type FollowupQuestion struct {
	ID       string          `json:"id"`
	Question string          `json:"question"`
	Fields   []FollowupField `json:"fields"`
}

var followupQuestions = map[EventType]FollowupQuestion{
	EventInterview: {
		ID:       "q1",
		Question: "To create your personalized readiness checklist, I need a few details. If you've already shared some of this in our chat, feel free to copy it here or add any missing information.",
		Fields: []FollowupField{
			{Key: "job_description", Label: "Job description * (Paste the full job description here)", Type: "textarea", Required: true},
			{Key: "company", Label: "Company name (e.g., Google, Microsoft, Startup Inc.)", Type: "input"},
			{Key: "interview_format", Label: "Interview format (e.g., Coding + System Design + Behavioral)", Type: "input"},
			{Key: "technologies", Label: "Key technologies/frameworks (e.g., React, Node.js, Python, AWS)", Type: "input"},
			{Key: "timeline", Label: "Interview timeline (e.g., Next week, In 2 weeks)", Type: "input"},
		},
	},
	EventPresentation: {
		ID:       "q1",
		Question: "To create the best preparation plan, I need a few details about your presentation.",
		Fields: []FollowupField{
			{Key: "audience", Label: "Who is your audience?", Type: "textarea", Required: true},
			{Key: "goal", Label: "What is your main goal?", Type: "textarea", Required: true},
			{Key: "duration", Label: "Duration (e.g., 30 minutes)", Type: "input"},
		},
	},
	EventPerformanceReview: {
		ID:       "q1",
		Question: "Let me understand your performance review context better.",
		Fields: []FollowupField{
			{Key: "role_expectations", Label: "What are your role expectations?", Type: "textarea", Required: true},
			{Key: "review_period", Label: "Review period (e.g., Q4 2024)", Type: "input"},
			{Key: "previous_feedback", Label: "Any previous feedback received?", Type: "textarea"},
		},
	},
	EventNegotiation: {
		ID:       "q1",
		Question: "To prepare you effectively, I need to understand your negotiation context.",
		Fields: []FollowupField{
			{Key: "target_outcome", Label: "What is your target outcome?", Type: "textarea", Required: true},
			{Key: "constraints", Label: "Any constraints or limitations?", Type: "textarea"},
			{Key: "context", Label: "Context (offer/raise/client/etc.)", Type: "input"},
		},
	},
	EventOther: {
		ID:       "q1",
		Question: "Tell me more about what you're preparing for.",
		Fields: []FollowupField{
			{Key: "details", Label: "Additional details", Type: "textarea", Required: true},
		},
	},
}

// FollowupFor returns the structured question for the category, defaulting
// to the generic one.
func FollowupFor(eventType EventType) FollowupQuestion {
	if q, ok := followupQuestions[eventType]; ok {
		return q
	}
	return followupQuestions[EventOther]
}
