package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/letieu/agent-directory/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":  map[string]any{"type": "string"},
		"score": map[string]any{"type": "number"},
	},
	"required": []string{"name", "score"},
}

type answer struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func chatServer(t *testing.T, content string, inspect func(*http.Request, ChatRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if inspect != nil {
			inspect(r, body)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": "cmpl-1",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChatCompleterSendsSchemaAndDecodes(t *testing.T) {
	srv := chatServer(t, `{"name":"scribe","score":0.9}`, func(r *http.Request, body ChatRequest) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		assert.Equal(t, "https://example.com", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "Directory", r.Header.Get("X-Title"))
		assert.Equal(t, "override-model", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "hello", body.Messages[1].Content)
		require.NotNil(t, body.ResponseFormat)
		assert.Equal(t, "json_schema", body.ResponseFormat.Type)
		assert.Equal(t, "answer", body.ResponseFormat.JSONSchema.Name)
		assert.True(t, body.ResponseFormat.JSONSchema.Strict)
	})

	c := NewChatCompleter(ChatOptions{
		BaseURL:  srv.URL,
		APIKey:   "key-1",
		Model:    "default-model",
		Referer:  "https://example.com",
		AppTitle: "Directory",
	})

	var got answer
	err := c.GenerateObject(context.Background(), Request{
		Model:      "override-model",
		System:     "be brief",
		Prompt:     "hello",
		SchemaName: "answer",
		Schema:     testSchema,
	}, &got)
	require.NoError(t, err)
	assert.Equal(t, answer{Name: "scribe", Score: 0.9}, got)
}

func TestChatCompleterMissingRequiredField(t *testing.T) {
	srv := chatServer(t, `{"name":"scribe"}`, nil)
	c := NewChatCompleter(ChatOptions{BaseURL: srv.URL, Model: "m"})

	var got answer
	err := c.GenerateObject(context.Background(), Request{Prompt: "x", Schema: testSchema}, &got)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestChatCompleterNonJSONAnswer(t *testing.T) {
	srv := chatServer(t, "sorry, I can't help", nil)
	c := NewChatCompleter(ChatOptions{BaseURL: srv.URL, Model: "m"})

	var got answer
	err := c.GenerateObject(context.Background(), Request{Prompt: "x", Schema: testSchema}, &got)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestChatCompleterHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewChatCompleter(ChatOptions{BaseURL: srv.URL, Model: "m"})
	var got answer
	err := c.GenerateObject(context.Background(), Request{Prompt: "x", Schema: testSchema}, &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestChatCompleterNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer srv.Close()

	c := NewChatCompleter(ChatOptions{BaseURL: srv.URL, Model: "m"})
	var got answer
	err := c.GenerateObject(context.Background(), Request{Prompt: "x", Schema: testSchema}, &got)
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestDecodeObjectStripsFences(t *testing.T) {
	var got answer
	err := decodeObject("```json\n{\"name\":\"a\",\"score\":1}\n```", testSchema, &got)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
}

func TestRequiredFieldsAcceptsAnySlice(t *testing.T) {
	schema := map[string]any{"required": []any{"a", 3, "b"}}
	assert.Equal(t, []string{"a", "b"}, requiredFields(schema))
	assert.Nil(t, requiredFields(map[string]any{}))
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Provider = "carrier-pigeon"
	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "unsupported provider")
}

func TestNewDefaultsToOpenRouter(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Provider = "openrouter"
	cfg.LLM.APIKey = "k"
	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	chat, ok := c.(*ChatCompleter)
	require.True(t, ok)
	assert.Equal(t, OpenRouterBaseURL, chat.baseURL)
}
