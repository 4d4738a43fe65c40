package sessions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"interviewhub-backend/internal/chat"
	"interviewhub-backend/internal/checklist"
	"interviewhub-backend/internal/interview"
	"interviewhub-backend/internal/llm"
)

type scriptedLLM struct {
	available bool
	outputs   []string
	err       error
	calls     int
}

func (s *scriptedLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if len(s.outputs) == 0 {
		return "", nil
	}
	out := s.outputs[0]
	s.outputs = s.outputs[1:]
	return out, nil
}

func (s *scriptedLLM) Available() bool { return s.available }

func newTestService(client llm.Client) (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	svc := NewService(repo, chat.NewService(client), checklist.NewSynthesizer(client), interview.NewEngine(client))
	return svc, repo
}

func seedSession(t *testing.T, repo *MemoryRepo, session Session) Session {
	t.Helper()
	if session.ID == "" {
		session.ID = "sess-1"
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	if session.Context == nil {
		session.Context = chat.Context{}
	}
	if session.Interviews == nil {
		session.Interviews = map[string]InterviewState{}
	}
	if err := repo.Create(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return session
}

func skillsChecklist(itemID string) *checklist.Document {
	return &checklist.Document{
		Title:     "Backend Interview Prep",
		EventType: "interview",
		Groups: []checklist.Group{
			{Key: "context", Label: "Context Understanding", Items: []checklist.Item{
				{ID: "7f000001-0000-4000-8000-000000000001", GroupKey: "context", Text: "Research the company", Status: checklist.StatusTodo},
			}},
			{Key: "skills", Label: "Skills / Knowledge Prep", Items: []checklist.Item{
				{ID: itemID, GroupKey: "skills", Text: "Review Go concurrency patterns", Status: checklist.StatusTodo},
			}},
		},
	}
}

func TestCreateClassifiesAndPersists(t *testing.T) {
	svc, repo := newTestService(llm.Disabled{})

	goal := "Prep for my Google interview next week"
	session, followup, err := svc.Create(context.Background(), goal)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if session.EventType != chat.EventInterview {
		t.Fatalf("expected interview event type, got %s", session.EventType)
	}
	if session.Title != goal {
		t.Fatalf("expected fallback title %q, got %q", goal, session.Title)
	}
	if len(session.Messages) != 2 {
		t.Fatalf("expected opening exchange of 2 messages, got %d", len(session.Messages))
	}
	if session.Messages[0].Role != llm.RoleUser || session.Messages[0].Content != goal {
		t.Fatalf("unexpected first message: %+v", session.Messages[0])
	}
	if session.Messages[1].Role != llm.RoleAssistant || session.Messages[1].Content == "" {
		t.Fatalf("expected non-empty assistant reply, got %+v", session.Messages[1])
	}
	if len(followup.Fields) == 0 || followup.Fields[0].Key != "job_description" {
		t.Fatalf("expected interview followup question, got %+v", followup)
	}

	stored, err := repo.GetByID(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.UserGoalText != goal {
		t.Fatalf("expected persisted goal text, got %q", stored.UserGoalText)
	}
}

func TestSendMessageSynthesizesChecklistOnce(t *testing.T) {
	client := &scriptedLLM{
		available: true,
		outputs: []string{
			`{"title": "Google Interview Prep", "event_type": "interview", "assumptions": [], "groups": [{"key": "skills", "label": "Skills / Knowledge Prep", "items": [{"id": "7f000001-0000-4000-8000-0000000000aa", "text": "Review system design basics", "status": "todo"}]}], "next_3_actions": ["Research Google", "Practice coding", "Mock interview"]}`,
			"You're welcome!",
		},
	}
	svc, repo := newTestService(client)
	seedSession(t, repo, Session{
		EventType:    chat.EventInterview,
		UserGoalText: "Prepare for a backend interview",
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "Prepare for a backend interview"}},
	})

	turn, err := svc.SendMessage(context.Background(),
		"sess-1",
		"It's at Google, the interview format is coding plus system design, and the timeline is next week.")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if !turn.ChecklistGenerated {
		t.Fatal("expected checklist to be generated on this turn")
	}
	if turn.Reply.Content != checklistReadyMessage {
		t.Fatalf("expected announcement reply, got %q", turn.Reply.Content)
	}
	if turn.Session.Checklist == nil {
		t.Fatal("expected checklist on session")
	}
	if got := len(turn.Session.Checklist.Groups); got != 5 {
		t.Fatalf("expected 5 checklist groups, got %d", got)
	}
	if client.calls != 1 {
		t.Fatalf("expected exactly one completion call, got %d", client.calls)
	}

	// A later turn must not regenerate.
	turn2, err := svc.SendMessage(context.Background(), "sess-1", "thanks")
	if err != nil {
		t.Fatalf("SendMessage second turn: %v", err)
	}
	if turn2.ChecklistGenerated {
		t.Fatal("checklist must be generated at most once per session")
	}
	if turn2.Reply.Content != "You're welcome!" {
		t.Fatalf("expected conversational reply, got %q", turn2.Reply.Content)
	}

	stored, err := repo.GetByID(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Checklist == nil || stored.Checklist.Title != "Google Interview Prep" {
		t.Fatalf("expected persisted checklist, got %+v", stored.Checklist)
	}
	if stored.Context["company"] == "" {
		t.Fatal("expected company context to be extracted and persisted")
	}
}

func TestSendMessageQuotaFallback(t *testing.T) {
	client := &scriptedLLM{available: true, err: llm.ErrQuotaExceeded}
	svc, repo := newTestService(client)
	seedSession(t, repo, Session{
		EventType:    chat.EventInterview,
		UserGoalText: "Prepare for a backend interview",
	})

	turn, err := svc.SendMessage(context.Background(),
		"sess-1",
		"It's at Google, the interview format is coding plus system design, and the timeline is next week.")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if !turn.ChecklistGenerated {
		t.Fatal("expected fallback checklist to count as generated")
	}
	if turn.Session.Checklist == nil {
		t.Fatal("expected fallback checklist on session")
	}
	if got := len(turn.Session.Checklist.Assumptions); got != 2 {
		t.Fatalf("expected 2 quota assumptions, got %d", got)
	}
	stored, _ := repo.GetByID(context.Background(), "sess-1")
	if stored.Checklist == nil {
		t.Fatal("expected fallback checklist persisted")
	}
}

func TestSendMessageUnknownSession(t *testing.T) {
	svc, _ := newTestService(llm.Disabled{})
	if _, err := svc.SendMessage(context.Background(), "missing", "hi"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateTodo(t *testing.T) {
	itemID := "7f000001-0000-4000-8000-0000000000bb"
	svc, repo := newTestService(llm.Disabled{})
	seedSession(t, repo, Session{
		EventType: chat.EventInterview,
		Checklist: skillsChecklist(itemID),
	})

	done := "done"
	text := "Review goroutines and channels"
	item, err := svc.UpdateTodo(context.Background(), "sess-1", itemID, &done, &text)
	if err != nil {
		t.Fatalf("UpdateTodo: %v", err)
	}
	if item.Status != checklist.StatusDone || item.Text != text {
		t.Fatalf("unexpected item after update: %+v", item)
	}

	stored, _ := repo.GetByID(context.Background(), "sess-1")
	updated, _ := stored.Checklist.FindItem(itemID)
	if updated == nil || updated.Status != checklist.StatusDone {
		t.Fatalf("expected persisted status change, got %+v", updated)
	}
}

func TestUpdateTodoErrors(t *testing.T) {
	itemID := "7f000001-0000-4000-8000-0000000000cc"
	svc, repo := newTestService(llm.Disabled{})
	seedSession(t, repo, Session{ID: "no-checklist", EventType: chat.EventInterview})
	seedSession(t, repo, Session{ID: "with-checklist", EventType: chat.EventInterview, Checklist: skillsChecklist(itemID)})

	done := "done"
	if _, err := svc.UpdateTodo(context.Background(), "no-checklist", itemID, &done, nil); !errors.Is(err, ErrNoChecklist) {
		t.Fatalf("expected ErrNoChecklist, got %v", err)
	}
	if _, err := svc.UpdateTodo(context.Background(), "with-checklist", "7f000001-0000-4000-8000-0000000000ff", &done, nil); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}

func TestStartInterviewValidation(t *testing.T) {
	itemID := "7f000001-0000-4000-8000-0000000000dd"
	client := &scriptedLLM{available: true}
	svc, repo := newTestService(client)
	seedSession(t, repo, Session{EventType: chat.EventInterview, Checklist: skillsChecklist(itemID)})

	if _, err := svc.StartInterview(context.Background(), "sess-1", "not-a-uuid"); !errors.Is(err, ErrInvalidTodoID) {
		t.Fatalf("expected ErrInvalidTodoID, got %v", err)
	}
	if _, err := svc.StartInterview(context.Background(), "sess-1", "7f000001-0000-4000-8000-000000000001"); !errors.Is(err, ErrNotSkillsItem) {
		t.Fatalf("expected ErrNotSkillsItem, got %v", err)
	}
	if _, err := svc.StartInterview(context.Background(), "sess-1", "7f000001-0000-4000-8000-0000000000ee"); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}

func TestStartInterviewOpensAssessment(t *testing.T) {
	itemID := "7f000001-0000-4000-8000-0000000000dd"
	client := &scriptedLLM{
		available: true,
		outputs:   []string{`{"type": "question", "question": "What is a goroutine?", "question_number": 1, "total_questions": 4}`},
	}
	svc, repo := newTestService(client)
	seedSession(t, repo, Session{EventType: chat.EventInterview, Checklist: skillsChecklist(itemID)})

	result, err := svc.StartInterview(context.Background(), "sess-1", itemID)
	if err != nil {
		t.Fatalf("StartInterview: %v", err)
	}
	if result.IsComplete {
		t.Fatal("first turn must not be complete")
	}
	if result.Question != "What is a goroutine?" || result.QuestionNumber != 1 || result.TotalQuestions != 4 {
		t.Fatalf("unexpected first question: %+v", result)
	}

	stored, _ := repo.GetByID(context.Background(), "sess-1")
	state, ok := stored.Interviews[itemID]
	if !ok {
		t.Fatal("expected interview state persisted")
	}
	if state.Status != InterviewInProgress {
		t.Fatalf("expected in_progress status, got %s", state.Status)
	}
	if len(state.History) != 1 || state.History[0].Content != "What is a goroutine?" {
		t.Fatalf("expected history seeded with the first question, got %+v", state.History)
	}
}

func TestAnswerInterviewRecordsFeedbackAndQuestion(t *testing.T) {
	itemID := "7f000001-0000-4000-8000-0000000000dd"
	client := &scriptedLLM{
		available: true,
		outputs: []string{
			`{"type": "feedback", "feedback": "CORRECT. Good explanation.", "question_number": 1}{"type": "question", "question": "How do channels work?", "question_number": 2, "total_questions": 4}`,
		},
	}
	svc, repo := newTestService(client)
	session := seedSession(t, repo, Session{EventType: chat.EventInterview, Checklist: skillsChecklist(itemID)})
	session.Interviews[itemID] = InterviewState{
		TodoID:          itemID,
		TodoText:        "Review Go concurrency patterns",
		History:         []llm.Message{{Role: llm.RoleAssistant, Content: "What is a goroutine?"}},
		CurrentQuestion: 1,
		TotalQuestions:  4,
		Status:          InterviewInProgress,
	}
	if err := repo.Update(context.Background(), session); err != nil {
		t.Fatalf("seed interview state: %v", err)
	}

	result, err := svc.AnswerInterview(context.Background(), "sess-1", itemID, "A lightweight thread managed by the runtime.")
	if err != nil {
		t.Fatalf("AnswerInterview: %v", err)
	}
	if result.IsComplete {
		t.Fatal("turn 1 must not complete the assessment")
	}
	if result.Feedback != "CORRECT. Good explanation." || result.Question != "How do channels work?" {
		t.Fatalf("unexpected result: %+v", result)
	}

	stored, _ := repo.GetByID(context.Background(), "sess-1")
	state := stored.Interviews[itemID]
	if state.CurrentQuestion != 2 {
		t.Fatalf("expected current question 2, got %d", state.CurrentQuestion)
	}
	if len(state.History) != 4 {
		t.Fatalf("expected 4 history turns, got %d", len(state.History))
	}
	if !strings.HasPrefix(state.History[2].Content, "Feedback: ") {
		t.Fatalf("expected stored feedback turn to carry prefix, got %q", state.History[2].Content)
	}
	if state.History[3].Content != "How do channels work?" {
		t.Fatalf("expected next question stored last, got %q", state.History[3].Content)
	}
}

func TestAnswerInterviewCompletion(t *testing.T) {
	itemID := "7f000001-0000-4000-8000-0000000000dd"
	client := &scriptedLLM{
		available: true,
		outputs:   []string{`{"type": "complete", "overall_feedback": "Strong performance across all four answers.", "rating": 8.5, "passed": true}`},
	}
	svc, repo := newTestService(client)
	session := seedSession(t, repo, Session{EventType: chat.EventInterview, Checklist: skillsChecklist(itemID)})
	session.Interviews[itemID] = InterviewState{
		TodoID:   itemID,
		TodoText: "Review Go concurrency patterns",
		History: []llm.Message{
			{Role: llm.RoleAssistant, Content: "Question 1?"},
			{Role: llm.RoleUser, Content: "Answer 1"},
			{Role: llm.RoleAssistant, Content: "Question 2?"},
			{Role: llm.RoleUser, Content: "Answer 2"},
			{Role: llm.RoleAssistant, Content: "Question 3?"},
			{Role: llm.RoleUser, Content: "Answer 3"},
			{Role: llm.RoleAssistant, Content: "Question 4?"},
		},
		CurrentQuestion: 4,
		TotalQuestions:  4,
		Status:          InterviewInProgress,
	}
	if err := repo.Update(context.Background(), session); err != nil {
		t.Fatalf("seed interview state: %v", err)
	}

	result, err := svc.AnswerInterview(context.Background(), "sess-1", itemID, "Answer 4")
	if err != nil {
		t.Fatalf("AnswerInterview: %v", err)
	}
	if !result.IsComplete {
		t.Fatal("expected assessment to complete after the fourth answer")
	}
	if result.Rating != 8.5 || !result.Passed {
		t.Fatalf("unexpected completion result: %+v", result)
	}

	stored, _ := repo.GetByID(context.Background(), "sess-1")
	state := stored.Interviews[itemID]
	if state.Status != InterviewCompleted {
		t.Fatalf("expected completed status, got %s", state.Status)
	}
	if state.Rating != 8.5 || !state.Passed {
		t.Fatalf("unexpected persisted state: %+v", state)
	}
	if state.OverallFeedback != "Strong performance across all four answers." {
		t.Fatalf("unexpected overall feedback: %q", state.OverallFeedback)
	}
}

func TestAnswerInterviewUnknownTodo(t *testing.T) {
	itemID := "7f000001-0000-4000-8000-0000000000dd"
	svc, repo := newTestService(&scriptedLLM{available: true})
	seedSession(t, repo, Session{EventType: chat.EventInterview, Checklist: skillsChecklist(itemID)})

	if _, err := svc.AnswerInterview(context.Background(), "sess-1", itemID, "hello"); !errors.Is(err, ErrInterviewNotFound) {
		t.Fatalf("expected ErrInterviewNotFound, got %v", err)
	}
}
