// Package intent provides the LLM-backed intent model consumed by the
// planner. The model is strictly best-effort: missing credentials, transport
// failures, and malformed responses all degrade to "no suggestion".
package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/page-harvest/harvest/pkg/models"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

const systemPrompt = "You are an assistant that converts natural language scraping requests " +
	"into structured extraction plans. Return JSON with keys seed_url, " +
	"additional_urls, fields, max_pages, interactions, and notes."

// OpenAIModel discovers extraction intent through the chat-completions API.
// It requests a structured JSON response describing the target URL, fields,
// and browser interactions needed to satisfy the prompt.
type OpenAIModel struct {
	APIKey   string // resolved via APIKey() when empty
	Model    string
	Endpoint string
	client   *http.Client
}

// NewOpenAIModel creates a model using the given chat model name and timeout
func NewOpenAIModel(model string, timeout time.Duration) *OpenAIModel {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &OpenAIModel{
		Model:    model,
		Endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model          string            `json:"model"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
	Messages       []chatMessage     `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze queries the model for an intent suggestion. A nil suggestion with
// nil error means "nothing to suggest" (no credential configured).
func (m *OpenAIModel) Analyze(ctx context.Context, prompt string) (*models.IntentSuggestion, error) {
	apiKey := m.APIKey
	if apiKey == "" {
		apiKey = APIKey()
	}
	if apiKey == "" {
		log.Debug().Msg("Intent model skipped: no API key configured")
		return nil, nil
	}

	payload := chatRequest{
		Model:          m.Model,
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.2,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode intent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build intent request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("intent analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("intent analysis returned HTTP %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("failed to decode intent response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("intent response contained no choices")
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse intent payload: %w", err)
	}

	suggestion := suggestionFromPayload(parsed)
	suggestion.Notes = append(suggestion.Notes, "Intent derived from OpenAI model response.")
	return suggestion, nil
}

func (m *OpenAIModel) endpoint() string {
	if m.Endpoint != "" {
		return m.Endpoint
	}
	return defaultEndpoint
}

// suggestionFromPayload coerces the model's loosely-typed JSON into a
// suggestion, skipping anything that does not fit.
func suggestionFromPayload(payload map[string]any) *models.IntentSuggestion {
	suggestion := &models.IntentSuggestion{}
	suggestion.SeedURL = asString(payload["seed_url"])

	for _, raw := range asList(payload["additional_urls"]) {
		if u := asString(raw); u != "" {
			suggestion.ExtraURLs = append(suggestion.ExtraURLs, u)
		}
	}

	for _, raw := range asList(payload["fields"]) {
		if name := asString(raw); name != "" {
			suggestion.FieldNames = append(suggestion.FieldNames, strings.ToLower(name))
		}
	}

	if pages, ok := asInt(payload["max_pages"]); ok && pages > 0 {
		suggestion.MaxPages = pages
	}

	for _, raw := range asList(payload["interactions"]) {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		kind := asString(entry["kind"])
		if kind == "" {
			continue
		}
		count, ok := asInt(entry["count"])
		if !ok || count < 1 {
			count = 1
		}
		waitMS, ok := asInt(entry["wait_ms"])
		if !ok || waitMS < 0 {
			waitMS = 0
		}
		suggestion.Interactions = append(suggestion.Interactions, models.InteractionStep{
			Kind:     kind,
			Selector: asString(entry["selector"]),
			Count:    count,
			WaitMS:   waitMS,
			Value:    asString(entry["value"]),
			Note:     asString(entry["note"]),
		})
	}

	for _, raw := range asList(payload["notes"]) {
		if note, ok := raw.(string); ok {
			suggestion.Notes = append(suggestion.Notes, note)
		}
	}

	return suggestion
}

func asString(value any) string {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func asList(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case nil:
		return nil
	default:
		return []any{v}
	}
}

func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}
