package extraction

import (
	"fmt"

	"github.com/letieu/agent-directory/internal/database"
)

const websitePrompt = `Extract information about this AI agent or tool.
For pricing model, it should be one of the following: free, freemium, or paid.
- free: the product has no paid tier at all.
- freemium: the core product is free and paid upgrades exist.
- paid: there is no usable free tier (a free trial is still paid).
For type, use "agent" if it handles multiple tasks or acts autonomously, "tool" if it has a single functionality.
For the avatar, it should be the url of an icon/favicon/apple icon.
For the category, pick the closest value from the allowed list.
For tags, give short lowercase keywords.`

const autofillSystemPrompt = `You are a product marketing specialist tasked with creating a feature list for a product based on a provided YouTube video URL and transcript. The product is either a tool or an AI Agent. Your goal is to highlight the key features and use cases in a clear, informative, and engaging manner.

### Steps to Complete the Task:

1. **Analyze the Video and Transcript:**
    - Read through the transcript thoroughly.
    - Identify key features, functionalities, and use cases.
    - Note specific timestamps where important features are demonstrated or mentioned.
2. **Create a Feature List:**
    - List each major feature or functionality of the product.
    - For each feature, provide the timestamp start and timestamp end in seconds.
    - To calculate the timestamp start and timestamp end, use the transcript lines that cover the feature:
        timestampStart = offset
        timestampEnd = offset + Duration
3. **Provide a Detailed Product Analysis:**
    - List the key benefits of the product.
    - Summarize who the product is for.`

func videoUserPrompt(videoURL, transcript string) string {
	return fmt.Sprintf("Video URL: %s\nTranscript: %s", videoURL, transcript)
}

func stringEnum(values []string) map[string]any {
	return map[string]any{"type": "string", "enum": values}
}

func stringArray() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

func websiteSchema() map[string]any {
	pricing := make([]string, len(database.PricingModels))
	for i, p := range database.PricingModels {
		pricing[i] = string(p)
	}
	types := make([]string, len(database.ItemTypes))
	for i, t := range database.ItemTypes {
		types[i] = string(t)
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":         map[string]any{"type": "string"},
			"slug":         map[string]any{"type": "string"},
			"description":  map[string]any{"type": "string"},
			"category":     stringEnum(database.CategoryNames()),
			"href":         map[string]any{"type": "string"},
			"avatar":       map[string]any{"type": "string"},
			"tags":         stringArray(),
			"pricingModel": stringEnum(pricing),
			"type":         stringEnum(types),
			"whoIsItFor":   stringArray(),
			"keybenefits":  stringArray(),
		},
		"required": []string{"name", "slug", "description", "category", "href", "tags", "pricingModel", "type"},
	}
}

var videoSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"features": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"feature":        map[string]any{"type": "string"},
					"description":    map[string]any{"type": "string"},
					"timestampStart": map[string]any{"type": "number"},
					"timestampEnd":   map[string]any{"type": "number"},
				},
				"required":             []string{"feature", "description", "timestampStart", "timestampEnd"},
				"additionalProperties": false,
			},
		},
		"keybenefits": stringArray(),
		"whoIsItFor":  stringArray(),
	},
	"required":             []string{"features", "keybenefits", "whoIsItFor"},
	"additionalProperties": false,
}
