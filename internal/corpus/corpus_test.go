package corpus

import (
	"strings"
	"testing"

	"github.com/letieu/agent-directory/internal/database"
	"github.com/stretchr/testify/assert"
)

func TestRenderListing(t *testing.T) {
	out := Render([]database.Listing{{
		Slug:         "scribe-ai",
		Name:         "Scribe AI",
		Description:  "Drafts blog posts.",
		Category:     database.CategoryWriting,
		Href:         "https://scribe.ai",
		Type:         database.TypeTool,
		PricingModel: database.PricingFree,
		Tags:         []string{"writing", "blog"},
		IsNew:        true,
		DemoVideo:    "https://youtu.be/dQw4w9WgXcQ",
	}})

	want := `
# Scribe AI

## Slug
scribe-ai

## Description
Drafts blog posts.

## Details
- **Type**: tool
- **Category**: Writing
- **URL**: https://scribe.ai
- **Demo Video**: https://youtu.be/dQw4w9WgXcQ
- **NEW!**
- **Pricing Model**: free

## Tags
- writing
- blog

## Key Benefits
No key benefits listed

## Who Is It For
No target audience specified

---
`
	assert.Equal(t, want, out)
}

func TestRenderKeepsOrderAndSeparates(t *testing.T) {
	out := Render([]database.Listing{
		{Slug: "b", Name: "B"},
		{Slug: "a", Name: "A"},
	})
	assert.Equal(t, 2, strings.Count(out, "---\n"))
	assert.Less(t, strings.Index(out, "# B"), strings.Index(out, "# A"))
	assert.Contains(t, out, "- **Pricing Model**: Not specified")
}

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, "", Render(nil))
}
