package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"interviewhub-backend/internal/chat"
	"interviewhub-backend/internal/checklist"
	"interviewhub-backend/internal/interview"
	"interviewhub-backend/internal/llm"
	"interviewhub-backend/internal/shared/metrics"
	"interviewhub-backend/internal/shared/telemetry"
)

// checklistReadyMessage replaces the conversational reply on the turn the
// checklist is synthesized.
const checklistReadyMessage = "Perfect! I've gathered enough information to create your personalized preparation checklist. I've generated it for you - you can see it on the right side. Let me know if you'd like to discuss any specific items or need clarification on anything!"

const emptyReplyMessage = "I apologize, but I didn't receive a response. Please try again or check if your API quota is available."

// Service owns the session lifecycle: creation, chat turns with context
// extraction and one-shot checklist synthesis, todo updates, and knowledge
// assessments.
type Service struct {
	Repo   Repo
	Chat   *chat.Service
	Synth  *checklist.Synthesizer
	Engine *interview.Engine
}

// NewService constructs a Service.
func NewService(repo Repo, chatSvc *chat.Service, synth *checklist.Synthesizer, engine *interview.Engine) *Service {
	return &Service{Repo: repo, Chat: chatSvc, Synth: synth, Engine: engine}
}

// Create opens a session from the goal text: classify, title, first reply,
// persist. The returned followup question describes the context fields the
// category needs.
func (s *Service) Create(ctx context.Context, goalText string) (Session, chat.FollowupQuestion, error) {
	eventType := s.Chat.Classify(ctx, goalText)
	title := s.Chat.Title(ctx, goalText, eventType)

	opening := []llm.Message{{Role: llm.RoleUser, Content: goalText}}
	reply := s.Chat.Respond(ctx, opening, eventType)

	now := time.Now().UTC()
	session := Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		UpdatedAt:    now,
		EventType:    eventType,
		Title:        title,
		UserGoalText: goalText,
		Context:      chat.Context{},
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: goalText},
			{Role: llm.RoleAssistant, Content: reply},
		},
		Interviews: map[string]InterviewState{},
	}

	if err := s.Repo.Create(ctx, session); err != nil {
		return Session{}, chat.FollowupQuestion{}, err
	}
	metrics.IncSessionsCreated()
	telemetry.Info("session.created", map[string]any{
		"session_id": session.ID,
		"event_type": string(eventType),
	})
	return session, chat.FollowupFor(eventType), nil
}

// TurnResult is the outcome of one chat turn.
type TurnResult struct {
	Session            Session
	Reply              llm.Message
	ChecklistGenerated bool
}

// SendMessage appends a user message, re-extracts context, synthesizes the
// checklist once the readiness gate opens, and produces the assistant reply.
// Synthesis happens at most once per session; failures degrade to a
// deterministic fallback document instead of blocking the conversation.
func (s *Service) SendMessage(ctx context.Context, sessionID, content string) (TurnResult, error) {
	session, err := s.Repo.GetByID(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	session.Messages = append(session.Messages, llm.Message{Role: llm.RoleUser, Content: content})

	if session.Context == nil {
		session.Context = chat.Context{}
	}
	session.Context.Merge(chat.Extract(session.Messages, session.EventType))

	generated := false
	if session.Checklist == nil && chat.Ready(session.EventType, session.Context, session.Messages) {
		session.Checklist = s.synthesize(ctx, session)
		generated = true
	}

	var reply string
	if generated {
		reply = checklistReadyMessage
	} else {
		reply = s.Chat.Respond(ctx, session.Messages, session.EventType)
		if reply == "" {
			reply = emptyReplyMessage
		}
	}

	assistant := llm.Message{Role: llm.RoleAssistant, Content: reply}
	session.Messages = append(session.Messages, assistant)

	if err := s.Repo.Update(ctx, session); err != nil {
		return TurnResult{}, err
	}
	return TurnResult{Session: session, Reply: assistant, ChecklistGenerated: generated}, nil
}

// synthesize runs checklist generation and maps any failure onto the
// matching fallback document.
func (s *Service) synthesize(ctx context.Context, session Session) *checklist.Document {
	doc, err := s.Synth.Generate(ctx, string(session.EventType), session.UserGoalText, session.Context)
	if err == nil {
		metrics.IncChecklistGenerated()
		return doc
	}

	metrics.IncChecklistFailed()
	metrics.IncChecklistFallback()
	telemetry.Error("checklist.generation_failed", map[string]any{
		"session_id": session.ID,
		"error":      err.Error(),
	})
	if errors.Is(err, llm.ErrQuotaExceeded) {
		return checklist.QuotaFallback(string(session.EventType), session.UserGoalText)
	}
	return checklist.Fallback(string(session.EventType), session.UserGoalText)
}

// Get returns a session by ID.
func (s *Service) Get(ctx context.Context, sessionID string) (Session, error) {
	return s.Repo.GetByID(ctx, sessionID)
}

// List returns sessions newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Session, error) {
	return s.Repo.List(ctx, limit, offset)
}

// Delete removes a session and all its assessment state.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	return s.Repo.Delete(ctx, sessionID)
}

// UpdateTodo patches status and/or text of a checklist item.
func (s *Service) UpdateTodo(ctx context.Context, sessionID, todoID string, status, text *string) (checklist.Item, error) {
	session, err := s.Repo.GetByID(ctx, sessionID)
	if err != nil {
		return checklist.Item{}, err
	}
	if session.Checklist == nil {
		return checklist.Item{}, ErrNoChecklist
	}

	item, _ := session.Checklist.FindItem(todoID)
	if item == nil {
		return checklist.Item{}, ErrTodoNotFound
	}
	if status != nil {
		item.Status = checklist.Status(*status)
	}
	if text != nil {
		item.Text = *text
	}

	if err := s.Repo.Update(ctx, session); err != nil {
		return checklist.Item{}, err
	}
	return *item, nil
}

// interviewContext builds the generator context for an assessment: the goal
// text plus everything extracted so far.
func interviewContext(session Session) map[string]string {
	ctx := map[string]string{"user_goal_text": session.UserGoalText}
	for k, v := range session.Context {
		ctx[k] = v
	}
	return ctx
}

// StartInterview opens a knowledge assessment for a skills checklist item.
func (s *Service) StartInterview(ctx context.Context, sessionID, todoID string) (*interview.Result, error) {
	session, err := s.Repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Checklist == nil {
		return nil, ErrNoChecklist
	}
	if _, err := uuid.Parse(todoID); err != nil {
		return nil, ErrInvalidTodoID
	}

	item, group := session.Checklist.FindItem(todoID)
	if item == nil {
		return nil, ErrTodoNotFound
	}
	if group.Key != "skills" {
		return nil, ErrNotSkillsItem
	}

	result, err := s.Engine.Start(ctx, item.Text, string(session.EventType), interviewContext(session))
	if err != nil {
		return nil, err
	}

	if session.Interviews == nil {
		session.Interviews = map[string]InterviewState{}
	}
	session.Interviews[todoID] = InterviewState{
		TodoID:          todoID,
		TodoText:        item.Text,
		History:         []llm.Message{{Role: llm.RoleAssistant, Content: result.Question}},
		CurrentQuestion: result.QuestionNumber,
		TotalQuestions:  result.TotalQuestions,
		Status:          InterviewInProgress,
	}

	if err := s.Repo.Update(ctx, session); err != nil {
		return nil, err
	}
	metrics.IncInterviewsStarted()
	return result, nil
}

// AnswerInterview records an answer and advances the assessment. Feedback
// turns are stored with a "Feedback: " prefix so the engine's question
// counting can tell them apart from questions.
func (s *Service) AnswerInterview(ctx context.Context, sessionID, todoID, answer string) (*interview.Result, error) {
	session, err := s.Repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state, ok := session.Interviews[todoID]
	if !ok {
		return nil, ErrInterviewNotFound
	}

	state.History = append(state.History, llm.Message{Role: llm.RoleUser, Content: answer})

	result, err := s.Engine.Continue(ctx, state.TodoText, string(session.EventType), interviewContext(session), state.History)
	if err != nil {
		return nil, err
	}

	if result.IsComplete {
		state.Status = InterviewCompleted
		state.Rating = result.Rating
		state.Passed = result.Passed
		state.OverallFeedback = result.OverallFeedback
		metrics.IncInterviewsCompleted()
	} else {
		if result.Feedback != "" {
			state.History = append(state.History, llm.Message{Role: llm.RoleAssistant, Content: "Feedback: " + result.Feedback})
		}
		if result.Question != "" {
			state.History = append(state.History, llm.Message{Role: llm.RoleAssistant, Content: result.Question})
			state.CurrentQuestion = result.QuestionNumber
		}
	}

	session.Interviews[todoID] = state
	if err := s.Repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return result, nil
}
