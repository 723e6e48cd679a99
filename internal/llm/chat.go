package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	MistralBaseURL    = "https://api.mistral.ai/v1"
)

// ChatCompleter talks to an OpenAI-compatible chat completions endpoint
// (OpenRouter, Mistral) using json_schema structured output.
type ChatCompleter struct {
	baseURL    string
	apiKey     string
	model      string
	referer    string
	appTitle   string
	httpClient *http.Client
}

type ChatOptions struct {
	BaseURL string
	APIKey  string
	Model   string
	// Referer and AppTitle identify the app to OpenRouter.
	Referer    string
	AppTitle   string
	HTTPClient *http.Client
}

func NewChatCompleter(opts ChatOptions) *ChatCompleter {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}
	return &ChatCompleter{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		model:      opts.Model,
		referer:    opts.Referer,
		appTitle:   opts.AppTitle,
		httpClient: client,
	}
}

type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ResponseFormat struct {
	Type       string     `json:"type"`
	JSONSchema JSONSchema `json:"json_schema"`
}

type JSONSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

type ChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int         `json:"index"`
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

func (c *ChatCompleter) GenerateObject(ctx context.Context, req Request, out any) error {
	model := firstNonEmpty(req.Model, c.model)

	var messages []ChatMessage
	if req.System != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: req.Prompt})

	reqBody := ChatRequest{
		Model:    model,
		Messages: messages,
		ResponseFormat: &ResponseFormat{
			Type: "json_schema",
			JSONSchema: JSONSchema{
				Name:   firstNonEmpty(req.SchemaName, "response"),
				Schema: req.Schema,
				Strict: true,
			},
		},
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return eris.Wrap(err, "llm: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(raw))
	if err != nil {
		return eris.Wrap(err, "llm: create request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}
	if c.appTitle != "" {
		httpReq.Header.Set("X-Title", c.appTitle)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return eris.Wrap(err, "llm: call chat completions")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody bytes.Buffer
		errBody.ReadFrom(resp.Body)
		return eris.Errorf("llm: chat completions error (status %d): %s", resp.StatusCode, errBody.String())
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return eris.Wrap(err, "llm: decode response")
	}

	if len(chatResp.Choices) == 0 {
		return ErrEmptyResponse
	}

	return decodeObject(chatResp.Choices[0].Message.Content, req.Schema, out)
}
