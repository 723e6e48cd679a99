// Package corpus renders the directory as the llms.txt markdown document
// that both crawlers and the search interpreter read.
package corpus

import (
	"strings"

	"github.com/letieu/agent-directory/internal/database"
)

// Render writes one markdown section per listing, each closed by a "---"
// line, in the order given.
func Render(listings []database.Listing) string {
	var b strings.Builder
	for i, l := range listings {
		if i > 0 {
			b.WriteString("\n")
		}
		writeListing(&b, l)
	}
	return b.String()
}

func writeListing(b *strings.Builder, l database.Listing) {
	b.WriteString("\n# " + l.Name + "\n\n")
	b.WriteString("## Slug\n" + l.Slug + "\n\n")
	b.WriteString("## Description\n" + l.Description + "\n\n")

	b.WriteString("## Details\n")
	b.WriteString("- **Type**: " + string(l.Type) + "\n")
	b.WriteString("- **Category**: " + string(l.Category) + "\n")
	b.WriteString("- **URL**: " + l.Href + "\n")
	if l.DemoVideo != "" {
		b.WriteString("- **Demo Video**: " + l.DemoVideo + "\n")
	}
	if l.IsNew {
		b.WriteString("- **NEW!**\n")
	}
	pricing := string(l.PricingModel)
	if pricing == "" {
		pricing = "Not specified"
	}
	b.WriteString("- **Pricing Model**: " + pricing + "\n\n")

	writeList(b, "Tags", l.Tags, "No tags available")
	writeList(b, "Key Benefits", l.KeyBenefits, "No key benefits listed")
	writeList(b, "Who Is It For", l.WhoIsItFor, "No target audience specified")

	b.WriteString("---\n")
}

func writeList(b *strings.Builder, title string, items []string, empty string) {
	b.WriteString("## " + title + "\n")
	if len(items) == 0 {
		b.WriteString(empty + "\n\n")
		return
	}
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
	b.WriteString("\n")
}
