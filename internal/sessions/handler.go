package sessions

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"interviewhub-backend/internal/checklist"
	"interviewhub-backend/internal/interview"
	"interviewhub-backend/internal/llm"
	"interviewhub-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the sessions service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.createSession)
	rg.GET("/sessions", h.listSessions)
	rg.GET("/sessions/:id", h.getSession)
	rg.DELETE("/sessions/:id", h.deleteSession)
	rg.POST("/sessions/:id/messages", h.sendMessage)
	rg.PATCH("/sessions/:id/todos/:todoId", h.updateTodo)
	rg.POST("/sessions/:id/interview/start", h.startInterview)
	rg.POST("/sessions/:id/interview/answer", h.answerInterview)
}

type createSessionRequest struct {
	UserGoalText string `json:"user_goal_text"`
}

func (h *Handler) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UserGoalText) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_goal_text is required", nil)
		return
	}

	session, followup, err := h.Svc.Create(c.Request.Context(), req.UserGoalText)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create session", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{
		"session_id":        session.ID,
		"event_type":        session.EventType,
		"title":             session.Title,
		"message":           lastMessage(session),
		"followup_question": followup,
	})
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	sessionID := c.Param("id")
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "content is required", nil)
		return
	}

	turn, err := h.Svc.SendMessage(c.Request.Context(), sessionID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to send message", nil)
		}
		return
	}

	resp := gin.H{
		"session_id":          turn.Session.ID,
		"message":             turn.Reply,
		"messages":            turn.Session.Messages,
		"checklist_generated": turn.ChecklistGenerated,
	}
	if turn.Session.Checklist != nil {
		resp["checklist"] = turn.Session.Checklist
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) getSession(c *gin.Context) {
	session, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch session", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"session_id":     session.ID,
		"created_at":     session.CreatedAt.Format(time.RFC3339),
		"event_type":     session.EventType,
		"title":          session.Title,
		"user_goal_text": session.UserGoalText,
		"context":        session.Context,
		"checklist":      session.Checklist,
		"messages":       session.Messages,
	})
}

func (h *Handler) listSessions(c *gin.Context) {
	limit := 50
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	sessions, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list sessions", nil)
		return
	}

	resp := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, gin.H{
			"session_id": s.ID,
			"title":      s.Title,
			"event_type": s.EventType,
			"created_at": s.CreatedAt.Format(time.RFC3339),
		})
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) deleteSession(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete session", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

type updateTodoRequest struct {
	Status *string `json:"status"`
	Text   *string `json:"text"`
}

func (h *Handler) updateTodo(c *gin.Context) {
	var req updateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.Status != nil {
		status := checklist.Status(*req.Status)
		if status != checklist.StatusTodo && status != checklist.StatusDone {
			respond.Error(c, http.StatusBadRequest, "validation_error", "status must be todo or done", nil)
			return
		}
	}

	item, err := h.Svc.UpdateTodo(c.Request.Context(), c.Param("id"), c.Param("todoId"), req.Status, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
		case errors.Is(err, ErrNoChecklist):
			respond.Error(c, http.StatusBadRequest, "no_checklist", "no checklist found", nil)
		case errors.Is(err, ErrTodoNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "todo not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update todo", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, item)
}

type startInterviewRequest struct {
	TodoID string `json:"todo_id"`
}

func (h *Handler) startInterview(c *gin.Context) {
	var req startInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TodoID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "todo_id is required", nil)
		return
	}

	result, err := h.Svc.StartInterview(c.Request.Context(), c.Param("id"), req.TodoID)
	if err != nil {
		h.respondInterviewError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, interviewResponse(result))
}

type answerInterviewRequest struct {
	TodoID string `json:"todo_id"`
	Answer string `json:"answer"`
}

func (h *Handler) answerInterview(c *gin.Context) {
	var req answerInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TodoID == "" || strings.TrimSpace(req.Answer) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "todo_id and answer are required", nil)
		return
	}

	result, err := h.Svc.AnswerInterview(c.Request.Context(), c.Param("id"), req.TodoID, req.Answer)
	if err != nil {
		h.respondInterviewError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, interviewResponse(result))
}

func (h *Handler) respondInterviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
	case errors.Is(err, ErrNoChecklist):
		respond.Error(c, http.StatusBadRequest, "no_checklist", "no checklist found", nil)
	case errors.Is(err, ErrInvalidTodoID):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid todo_id format, refresh and try again", nil)
	case errors.Is(err, ErrTodoNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "todo item not found", nil)
	case errors.Is(err, ErrNotSkillsItem):
		respond.Error(c, http.StatusBadRequest, "not_skills_item", "interviews are only available for Skills / Knowledge Prep items", nil)
	case errors.Is(err, ErrInterviewNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "interview session not found", nil)
	case errors.Is(err, llm.ErrQuotaExceeded):
		respond.Error(c, http.StatusTooManyRequests, "quota_exceeded", "AI quota exceeded, try again later", nil)
	case errors.Is(err, llm.ErrUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "llm_unavailable", "AI assessments require a configured API key", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "assessment failed", nil)
	}
}

func interviewResponse(result *interview.Result) gin.H {
	resp := gin.H{"is_complete": result.IsComplete}
	if result.IsComplete {
		resp["overall_feedback"] = result.OverallFeedback
		resp["rating"] = result.Rating
		resp["passed"] = result.Passed
		return resp
	}
	if result.Feedback != "" {
		resp["feedback"] = result.Feedback
	}
	resp["question"] = gin.H{
		"question":        result.Question,
		"question_number": result.QuestionNumber,
		"total_questions": result.TotalQuestions,
	}
	return resp
}

func lastMessage(session Session) llm.Message {
	if len(session.Messages) == 0 {
		return llm.Message{}
	}
	return session.Messages[len(session.Messages)-1]
}
