package sessions

import (
	"time"

	"interviewhub-backend/internal/chat"
	"interviewhub-backend/internal/checklist"
	"interviewhub-backend/internal/llm"
)

// Assessment status values.
const (
	InterviewInProgress = "in_progress"
	InterviewCompleted  = "completed"
)

// InterviewState is the per-todo assessment state, keyed by todo id on the
// session. History holds the raw turns fed back to the engine each answer.
type InterviewState struct {
	TodoID          string        `json:"todo_id"`
	TodoText        string        `json:"todo_text"`
	History         []llm.Message `json:"history"`
	CurrentQuestion int           `json:"current_question"`
	TotalQuestions  int           `json:"total_questions"`
	Status          string        `json:"status"`
	Rating          float64       `json:"rating,omitempty"`
	Passed          bool          `json:"passed,omitempty"`
	OverallFeedback string        `json:"overall_feedback,omitempty"`
}

// Session is one preparation conversation with its derived state. Context,
// Checklist, Messages, and Interviews persist as jsonb columns.
type Session struct {
	ID           string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	EventType    chat.EventType
	Title        string
	UserGoalText string
	Context      chat.Context
	Checklist    *checklist.Document
	Messages     []llm.Message
	Interviews   map[string]InterviewState
}
