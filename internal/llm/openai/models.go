package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"interviewhub-backend/internal/shared/telemetry"
)

// preferredModels ranks well-known chat models ahead of whatever else the
// account exposes. The configured model, if any, outranks all of these.
var preferredModels = []string{
	"gpt-4o-mini",
	"gpt-3.5-turbo-0125",
	"gpt-3.5-turbo-1106",
	"gpt-3.5-turbo",
}

// fallbackModels is used when discovery fails or finds nothing chat-capable.
var fallbackModels = []string{
	"gpt-3.5-turbo-0125",
	"gpt-3.5-turbo-1106",
	"gpt-3.5-turbo",
}

const maxCandidates = 5

// modelCache holds the ranked candidate list for the process lifetime.
// Discovery runs at most once; the result, even an empty one, is never
// invalidated. Concurrent first callers wait for the single discovery.
type modelCache struct {
	mu         sync.Mutex
	discovered bool
	ranked     []string
}

// candidateModels returns the ranked model ids to try, discovering them from
// the provider on first use.
func (c *Client) candidateModels(ctx context.Context) []string {
	c.models.mu.Lock()
	defer c.models.mu.Unlock()

	if !c.models.discovered {
		c.models.ranked = c.discoverModels(ctx)
		c.models.discovered = true
		if len(c.models.ranked) > 0 {
			telemetry.Info("llm.models_discovered", map[string]any{"models": c.models.ranked})
		}
	}
	if len(c.models.ranked) == 0 {
		return c.rankModels(fallbackModels)
	}
	return c.models.ranked
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (c *Client) discoverModels(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Error("llm.model_discovery_failed", map[string]any{"error": err.Error()})
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		telemetry.Error("llm.model_discovery_failed", map[string]any{"status": resp.StatusCode})
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	var parsed modelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		telemetry.Error("llm.model_discovery_failed", map[string]any{"error": err.Error()})
		return nil
	}

	chatCapable := make([]string, 0, len(parsed.Data))
	for _, m := range parsed.Data {
		lowered := strings.ToLower(m.ID)
		if strings.Contains(lowered, "gpt") || strings.Contains(lowered, "chat") {
			chatCapable = append(chatCapable, m.ID)
		}
	}
	ranked := c.rankModels(chatCapable)
	if len(ranked) > maxCandidates {
		ranked = ranked[:maxCandidates]
	}
	return ranked
}

// rankModels orders ids as: configured model, then preferred ids present in
// the list, then the rest in discovery order.
func (c *Client) rankModels(available []string) []string {
	seen := make(map[string]bool, len(available)+1)
	ranked := make([]string, 0, len(available)+1)

	push := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ranked = append(ranked, id)
	}

	inList := make(map[string]bool, len(available))
	for _, id := range available {
		inList[id] = true
	}

	if c.preferred != "" && (inList[c.preferred] || len(available) == 0) {
		push(c.preferred)
	}
	for _, id := range preferredModels {
		if inList[id] {
			push(id)
		}
	}
	for _, id := range available {
		push(id)
	}
	return ranked
}
