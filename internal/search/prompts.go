package search

import "fmt"

const slugsSystemPrompt = `You are an AI assistant that helps find relevant items based on a user query.

You will be provided with:
1. A user query describing what they're looking for
2. A context document containing information about various AI tools and agents

Your task is to analyze the query and context, then return a list of slugs (unique identifiers)
for items that best match the query. Focus on understanding the user's intent and finding
the most relevant matches based on:

- Item name and description
- Tags and categories
- Target audience (whoIsItFor)
- Key benefits
- Type (agent or tool)
- Pricing model

The context document contains information about each item, including its slug.
You should extract the slugs of items that match the query criteria.

For example:
- If the query is "writing tools for marketers", look for items with type "tool",
  related to writing, and targeted at marketers.
- If the query is "free AI agents for coding", look for items with type "agent",
  pricingModel "free", and related to coding.

Note: freemium is different from free, there are three pricing models: free, freemium, and paid.

Give every slug a relevanceScore between 0 and 1 and a short reason.
Set queryIsTooGeneral when the query would match nearly every item.`

func slugsUserPrompt(query, corpus string) string {
	return fmt.Sprintf(`User query: %q

Context:
%s

Based on this query and context, return the slugs of the most relevant items.`, query, corpus)
}

var interpretationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"queryIsTooGeneral":     map[string]any{"type": "boolean"},
		"queryIsTooSpecific":    map[string]any{"type": "boolean"},
		"queryIsNotSafeForWork": map[string]any{"type": "boolean"},
		"hasRelevantSlugs":      map[string]any{"type": "boolean"},
		"slugs": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"slug":           map[string]any{"type": "string"},
					"relevanceScore": map[string]any{"type": "number"},
					"reason":         map[string]any{"type": "string"},
				},
				"required":             []string{"slug", "relevanceScore", "reason"},
				"additionalProperties": false,
			},
		},
	},
	"required": []string{
		"queryIsTooGeneral",
		"queryIsTooSpecific",
		"queryIsNotSafeForWork",
		"hasRelevantSlugs",
		"slugs",
	},
	"additionalProperties": false,
}
