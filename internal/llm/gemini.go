package llm

import (
	"context"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiCompleter uses the Gemini API's JSON schema response mode.
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, eris.New("llm: gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, eris.Wrap(err, "llm: create gemini client")
	}

	return &GeminiCompleter{client: client, model: firstNonEmpty(model, defaultGeminiModel)}, nil
}

func (g *GeminiCompleter) GenerateObject(ctx context.Context, req Request, out any) error {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: req.Schema,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	result, err := g.client.Models.GenerateContent(ctx,
		firstNonEmpty(req.Model, g.model),
		genai.Text(req.Prompt),
		cfg,
	)
	if err != nil {
		return eris.Wrap(err, "llm: gemini generate")
	}

	return decodeObject(result.Text(), req.Schema, out)
}
