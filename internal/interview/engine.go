package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"interviewhub-backend/internal/llm"
)

// requiredQuestions is the fixed assessment length. The engine, not the
// generator, enforces it: a completion claim before 4 questions and 4
// answers exist in history is silently converted into another question.
const requiredQuestions = 4

// Result is the outcome of one assessment turn. Either Question (with an
// optional Feedback on the previous answer) or the completion fields are
// populated, never both.
type Result struct {
	IsComplete      bool
	Question        string
	Feedback        string
	QuestionNumber  int
	TotalQuestions  int
	OverallFeedback string
	Rating          float64
	Passed          bool
}

// Engine runs bounded knowledge assessments against checklist items.
type Engine struct {
	llm llm.Client
}

func NewEngine(client llm.Client) *Engine {
	return &Engine{llm: client}
}

// turn is the loosely validated per-turn JSON the generator is asked to emit.
type turn struct {
	Type            string  `json:"type"`
	Question        string  `json:"question"`
	QuestionNumber  int     `json:"question_number"`
	TotalQuestions  int     `json:"total_questions"`
	Feedback        string  `json:"feedback"`
	OverallFeedback string  `json:"overall_feedback"`
	Rating          float64 `json:"rating"`
	Passed          bool    `json:"passed"`
}

// completionKeywords flag free-form closing remarks when the generator
// abandons the JSON protocol.
var completionKeywords = []string{"rating", "overall", "passed", "score", "assessment", "final"}

func assessmentContext(eventType string, sessCtx map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event type: %s\n", eventType)
	fmt.Fprintf(&b, "User goal: %s\n", sessCtx["user_goal_text"])
	if jd := sessCtx["job_description"]; jd != "" {
		if len(jd) > 500 {
			jd = jd[:500]
		}
		fmt.Fprintf(&b, "Job description: %s\n", jd)
	}
	return b.String()
}

func (e *Engine) systemPrompt(todoText, eventType string, sessCtx map[string]string, asked int) string {
	return fmt.Sprintf(`You are an expert technical interviewer conducting a knowledge assessment. Your role is to test the candidate's understanding of: %q

Context about the interview preparation:
%s

IMPORTANT RULES:
1. You MUST ask EXACTLY 4 questions before completing the interview. Currently %d questions have been asked.
2. DO NOT complete the interview until all 4 questions have been asked AND answered.
3. Evaluate each answer FAIRLY and ACCURATELY:
   - If an answer is CORRECT or shows good understanding, acknowledge this positively
   - If an answer is PARTIALLY correct, note what's right and what needs improvement
   - If an answer is WRONG, explain why and what the correct answer should be
4. Rating should be FAIR and reflect actual performance:
   - CORRECT answers should contribute positively to the rating
   - PARTIALLY correct answers should get moderate scores
   - WRONG answers should lower the score appropriately
5. Only complete the interview after asking EXACTLY 4 questions and receiving answers to all of them

Your task:
1. Ask EXACTLY 4 focused questions that test practical knowledge and understanding
2. Questions should be progressive (start easier, get more challenging)
3. After each answer, provide brief, constructive feedback that:
   - Clearly states if the answer is correct, partially correct, or incorrect
   - Explains what was good about the answer
   - Suggests improvements if needed
4. At the end (after EXACTLY 4 questions are asked and answered), calculate rating based on performance:
   - Count how many answers were: fully correct, partially correct, incorrect
   - Calculate rating: (correct_answers * 2.5) + (partial_answers * 1.5) + (incorrect_answers * 0.5)
   - Example: 2 correct + 2 partial = (2*2.5) + (2*1.5) = 5 + 3 = 8.0/10 (PASS)
   - Example: 3 correct + 1 partial = (3*2.5) + (1*1.5) = 7.5 + 1.5 = 9.0/10 (PASS)
   - Example: 2 correct + 2 incorrect = (2*2.5) + (2*0.5) = 5 + 1 = 6.0/10 (FAIL)
   - Scale to 0-10 range, cap at 10
   - Pass = 7.0/10 or higher
5. Provide specific feedback on strengths and areas to improve

Format your responses as JSON:
- For questions: {"type": "question", "question": "Your question here", "question_number": 2, "total_questions": 4}
- For feedback: {"type": "feedback", "feedback": "Your feedback here. Clearly state: CORRECT/PARTIALLY CORRECT/INCORRECT", "question_number": 1}
- For completion (ONLY after EXACTLY 4 questions are asked and answered): {"type": "complete", "overall_feedback": "Overall assessment with breakdown of correct/partial/incorrect answers", "rating": 8.5, "passed": true}

Be encouraging but thorough. This is a learning opportunity. Rate FAIRLY based on actual performance - if answers are correct, give appropriate credit.`, todoText, assessmentContext(eventType, sessCtx), asked)
}

// Start opens an assessment for a checklist item and returns the first
// question. Unparseable generator output is treated as the question itself.
func (e *Engine) Start(ctx context.Context, todoText, eventType string, sessCtx map[string]string) (*Result, error) {
	if !e.llm.Available() {
		return nil, fmt.Errorf("start assessment: %w", llm.ErrUnavailable)
	}

	initial := fmt.Sprintf(`I'm ready to test my knowledge on: %s

Please start with the first question. Keep it focused and practical.`, todoText)

	out, err := e.llm.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: e.systemPrompt(todoText, eventType, sessCtx, 0)},
			{Role: llm.RoleUser, Content: initial},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return nil, fmt.Errorf("start assessment: %w", err)
	}

	content := stripFences(out)
	var parsed turn
	if err := json.Unmarshal([]byte(content), &parsed); err == nil && parsed.Type == "question" {
		return questionResult(parsed.Question, parsed.QuestionNumber, parsed.TotalQuestions, ""), nil
	}
	return questionResult(content, 1, requiredQuestions, ""), nil
}

// Continue advances the assessment. The history must already include the
// latest user answer; question and answer counts are derived from it, never
// from what the generator claims.
func (e *Engine) Continue(ctx context.Context, todoText, eventType string, sessCtx map[string]string, history []llm.Message) (*Result, error) {
	if !e.llm.Available() {
		return nil, fmt.Errorf("continue assessment: %w", llm.ErrUnavailable)
	}

	asked := countQuestions(history)
	answered := countAnswers(history)

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: e.systemPrompt(todoText, eventType, sessCtx, asked)})
	messages = append(messages, history...)

	out, err := e.llm.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return nil, fmt.Errorf("continue assessment: %w", err)
	}

	content := stripFences(out)
	if obj, rest, ok := firstObject(content); ok {
		var parsed turn
		if err := json.Unmarshal([]byte(obj), &parsed); err == nil {
			switch parsed.Type {
			case "complete":
				if asked < requiredQuestions || answered < requiredQuestions {
					return forcedQuestion(todoText, "a different aspect", asked), nil
				}
				return &Result{
					IsComplete:      true,
					OverallFeedback: parsed.OverallFeedback,
					Rating:          parsed.Rating,
					Passed:          parsed.Passed,
				}, nil
			case "feedback":
				return e.afterFeedback(ctx, messages, content, rest, parsed)
			case "question":
				return questionResult(parsed.Question, parsed.QuestionNumber, parsed.TotalQuestions, ""), nil
			}
		}
	}

	return e.freeFormTurn(todoText, content, history, asked, answered), nil
}

// afterFeedback pairs a feedback object with its follow-up question: first
// from a second concatenated JSON object, then by asking the generator for
// the next question, finally by using the raw reply verbatim.
func (e *Engine) afterFeedback(ctx context.Context, messages []llm.Message, rawReply, rest string, fb turn) (*Result, error) {
	if obj, _, ok := firstObject(rest); ok {
		var next turn
		if err := json.Unmarshal([]byte(obj), &next); err == nil && next.Type == "question" {
			number := next.QuestionNumber
			if number == 0 {
				number = fb.QuestionNumber + 1
			}
			return questionResult(next.Question, number, next.TotalQuestions, fb.Feedback), nil
		}
	}

	out, err := e.llm.Complete(ctx, llm.Request{
		Messages:    append(append([]llm.Message{}, messages...), llm.Message{Role: llm.RoleAssistant, Content: rawReply}),
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		return nil, fmt.Errorf("continue assessment: %w", err)
	}

	nextContent := strings.TrimSpace(out)
	var next turn
	if err := json.Unmarshal([]byte(nextContent), &next); err == nil && next.Type == "question" {
		number := next.QuestionNumber
		if number == 0 {
			number = fb.QuestionNumber + 1
		}
		return questionResult(next.Question, number, next.TotalQuestions, fb.Feedback), nil
	}
	return questionResult(nextContent, fb.QuestionNumber+1, requiredQuestions, fb.Feedback), nil
}

// freeFormTurn handles replies that abandoned the JSON protocol. Closing
// remarks complete the assessment only once the exact-count invariant holds;
// anything else becomes the next question.
func (e *Engine) freeFormTurn(todoText, content string, history []llm.Message, asked, answered int) *Result {
	lowered := strings.ToLower(content)
	if containsAny(lowered, completionKeywords) {
		if asked < requiredQuestions || answered < requiredQuestions {
			return forcedQuestion(todoText, "another aspect", asked)
		}
		rating := scoreHistory(history, content)
		return &Result{
			IsComplete:      true,
			OverallFeedback: content,
			Rating:          rating,
			Passed:          rating >= passThreshold,
		}
	}

	if asked >= requiredQuestions && answered >= requiredQuestions {
		rating := scoreHistory(history, content)
		return &Result{
			IsComplete:      true,
			OverallFeedback: "Based on your answers: " + content,
			Rating:          rating,
			Passed:          rating >= passThreshold,
		}
	}

	return questionResult(content, asked+1, requiredQuestions, "")
}

func questionResult(question string, number, total int, feedback string) *Result {
	if number == 0 {
		number = 1
	}
	if total == 0 {
		total = requiredQuestions
	}
	return &Result{
		Question:       question,
		QuestionNumber: number,
		TotalQuestions: total,
		Feedback:       feedback,
	}
}

func forcedQuestion(todoText, aspect string, asked int) *Result {
	return &Result{
		Feedback:       "Let me ask another question to complete the assessment.",
		Question:       fmt.Sprintf("Can you explain %s of %s?", aspect, todoText),
		QuestionNumber: asked + 1,
		TotalQuestions: requiredQuestions,
	}
}
