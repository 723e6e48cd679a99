// Package llm asks a completion model for a JSON object that matches a
// schema and decodes it into a Go value.
package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/letieu/agent-directory/config"
	"github.com/rotisserie/eris"
)

var (
	ErrEmptyResponse  = eris.New("llm: empty response")
	ErrSchemaMismatch = eris.New("llm: response does not match schema")
)

type Request struct {
	// Model overrides the completer's default model when set.
	Model      string
	System     string
	Prompt     string
	SchemaName string
	Schema     map[string]any
}

type Completer interface {
	// GenerateObject decodes the model's answer into out, failing when the
	// answer is not JSON or misses a required property of req.Schema.
	GenerateObject(ctx context.Context, req Request, out any) error
}

func New(ctx context.Context, cfg *config.Config) (Completer, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		return NewGeminiCompleter(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	case "mistral":
		return NewChatCompleter(ChatOptions{
			BaseURL: firstNonEmpty(cfg.LLM.BaseURL, MistralBaseURL),
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
		}), nil
	case "openrouter", "":
		return NewChatCompleter(ChatOptions{
			BaseURL:  firstNonEmpty(cfg.LLM.BaseURL, OpenRouterBaseURL),
			APIKey:   cfg.LLM.APIKey,
			Model:    cfg.LLM.Model,
			Referer:  cfg.LLM.AppURL,
			AppTitle: cfg.LLM.AppTitle,
		}), nil
	}
	return nil, eris.Errorf("llm: unsupported provider %q", cfg.LLM.Provider)
}

// decodeObject unmarshals raw into out after checking the schema's required
// top-level properties are present.
func decodeObject(raw string, schema map[string]any, out any) error {
	raw = stripFences(raw)
	if raw == "" {
		return ErrEmptyResponse
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return eris.Wrap(ErrSchemaMismatch, err.Error())
	}
	for _, name := range requiredFields(schema) {
		if _, ok := fields[name]; !ok {
			return eris.Wrapf(ErrSchemaMismatch, "missing %q", name)
		}
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return eris.Wrap(ErrSchemaMismatch, err.Error())
	}
	return nil
}

func requiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		names := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}

// stripFences removes a ```json fence some models wrap around their answer.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
