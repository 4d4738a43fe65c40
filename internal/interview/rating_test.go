package interview

import (
	"testing"

	"interviewhub-backend/internal/llm"
)

func feedbackTurn(text string) llm.Message {
	return llm.Message{Role: llm.RoleAssistant, Content: "Feedback: " + text}
}

func TestTallyFeedbackClassification(t *testing.T) {
	cases := []struct {
		name      string
		text      string
		correct   int
		partial   int
		incorrect int
	}{
		{"positive", "Correct, exactly right.", 1, 0, 0},
		{"negative dominates positive", "That's not right, the correct answer is different.", 0, 0, 1},
		{"positive softened by partial", "Mostly correct, well done.", 0, 1, 0},
		{"partial only", "You were close on the main point.", 0, 1, 0},
		{"substantial but unclear", "Consider reviewing the documentation on this topic.", 0, 1, 0},
		{"too short to judge", "Hmm.", 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, p, i := tallyFeedback([]llm.Message{feedbackTurn(tc.text)})
			if c != tc.correct || p != tc.partial || i != tc.incorrect {
				t.Fatalf("tally = (%d,%d,%d), want (%d,%d,%d)", c, p, i, tc.correct, tc.partial, tc.incorrect)
			}
		})
	}
}

func TestTallyIgnoresQuestionsAndUserTurns(t *testing.T) {
	history := []llm.Message{
		{Role: llm.RoleAssistant, Content: "Is this answer correct?"},
		{Role: llm.RoleUser, Content: "correct, I think"},
	}
	if c, p, i := tallyFeedback(history); c+p+i != 0 {
		t.Fatalf("questions and user turns must not be tallied, got (%d,%d,%d)", c, p, i)
	}
}

func TestScoreHistoryCapsAtTen(t *testing.T) {
	history := []llm.Message{
		feedbackTurn("Correct, exactly."),
		feedbackTurn("Correct, perfect."),
		feedbackTurn("Correct, spot on."),
		feedbackTurn("Correct, precisely."),
		feedbackTurn("Correct, excellent."),
	}
	if got := scoreHistory(history, ""); got != 10.0 {
		t.Fatalf("expected capped rating 10.0, got %v", got)
	}
}

func TestScoreHistoryFallsBackToQuotedRating(t *testing.T) {
	if got := scoreHistory(nil, "Overall you scored 8.5/10, nice work"); got != 8.5 {
		t.Fatalf("expected 8.5 from slash form, got %v", got)
	}
	if got := scoreHistory(nil, "Final rating: 6.5 out of ten"); got != 6.5 {
		t.Fatalf("expected 6.5 from rating form, got %v", got)
	}
}

func TestScoreHistoryFairDefault(t *testing.T) {
	if got := scoreHistory(nil, "Thanks for the great session overall!"); got != defaultRating {
		t.Fatalf("expected fair default %v, got %v", defaultRating, got)
	}
}

func TestCountQuestionsExcludesFeedback(t *testing.T) {
	history := []llm.Message{
		{Role: llm.RoleAssistant, Content: "What is a mutex?"},
		{Role: llm.RoleAssistant, Content: "Feedback: correct, but why not use a channel?"},
		{Role: llm.RoleAssistant, Content: "No question mark here"},
		{Role: llm.RoleUser, Content: "is this counted?"},
	}
	if got := countQuestions(history); got != 1 {
		t.Fatalf("expected 1 question, got %d", got)
	}
	if got := countAnswers(history); got != 1 {
		t.Fatalf("expected 1 answer, got %d", got)
	}
}
