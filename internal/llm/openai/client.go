package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"interviewhub-backend/internal/llm"
	"interviewhub-backend/internal/shared/metrics"
	"interviewhub-backend/internal/shared/telemetry"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements llm.Client using OpenAI Chat Completions with a ranked
// model candidate list. Models that the account cannot access are skipped in
// favor of the next candidate; any other provider error aborts the call.
type Client struct {
	apiKey     string
	baseURL    string
	preferred  string
	httpClient *http.Client

	models modelCache
}

// NewClient constructs an OpenAI client. An empty API key yields a client
// that reports unavailable rather than an error, so callers can degrade.
func NewClient(apiKey, preferredModel string) *Client {
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey:    strings.TrimSpace(apiKey),
		baseURL:   defaultBaseURL,
		preferred: strings.TrimSpace(preferredModel),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Available reports whether an API key is configured.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float32        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

// Complete tries each candidate model in rank order. Model-access failures
// move on to the next candidate; the first other error is returned as-is.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	if !c.Available() {
		return "", llm.ErrUnavailable
	}

	candidates := c.candidateModels(ctx)
	var lastErr error
	for _, model := range candidates {
		out, err := c.completeOnce(ctx, model, req)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, llm.ErrModelNotFound) {
			telemetry.Info("llm.model_skipped", map[string]any{"model": model})
			lastErr = err
			continue
		}
		return "", err
	}
	if lastErr != nil {
		return "", fmt.Errorf("all candidate models failed: %w", lastErr)
	}
	return "", fmt.Errorf("no candidate models: %w", llm.ErrModelNotFound)
}

func (c *Client) completeOnce(ctx context.Context, model string, req llm.Request) (string, error) {
	reqMessages := make([]chatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		reqMessages = append(reqMessages, chatMessage{Role: m.Role, Content: m.Content})
	}
	temp := req.Temperature
	reqBody := chatRequest{
		Model:       model,
		Messages:    reqMessages,
		Temperature: &temp,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONOutput {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("openai request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()
	metrics.ObserveLLMDurationMs(float64(time.Since(started).Microseconds()) / 1000.0)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil || resp.StatusCode >= 400 {
		return "", classifyAPIError(resp.StatusCode, parsed.Error)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai response empty content")
	}
	return content, nil
}

// classifyAPIError maps a provider error payload onto the llm error taxonomy.
func classifyAPIError(status int, apiErr *apiError) error {
	msg := ""
	errType := ""
	errCode := ""
	if apiErr != nil {
		msg = apiErr.Message
		errType = apiErr.Type
		errCode = apiErr.Code
	}
	lowered := strings.ToLower(msg)

	switch {
	case status == http.StatusTooManyRequests,
		errType == "insufficient_quota",
		strings.Contains(lowered, "quota"),
		strings.Contains(lowered, "rate limit"),
		strings.Contains(lowered, "rate_limit"):
		return fmt.Errorf("openai: %s: %w", msg, llm.ErrQuotaExceeded)
	case errCode == "model_not_found",
		status == http.StatusNotFound,
		strings.Contains(lowered, "model_not_found"),
		strings.Contains(lowered, "does not exist"),
		strings.Contains(lowered, "not have access"),
		status == http.StatusForbidden && strings.Contains(lowered, "model"):
		return fmt.Errorf("openai: %s: %w", msg, llm.ErrModelNotFound)
	case status == http.StatusUnauthorized,
		strings.Contains(lowered, "api key"),
		strings.Contains(lowered, "api_key"),
		strings.Contains(lowered, "authentication"):
		return fmt.Errorf("openai: %s: %w", msg, llm.ErrAuth)
	default:
		return fmt.Errorf("openai error (status %d): %s (%s)", status, msg, errType)
	}
}

var _ llm.Client = (*Client)(nil)
