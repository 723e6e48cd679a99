package search

import (
	"strings"

	"github.com/letieu/agent-directory/internal/database"
)

// Filter keeps the listings whose name, description or one of whose tags
// contains query, ignoring case. Pricing, type, benefits and audience are
// not consulted. An empty query returns listings unchanged.
func Filter(query string, listings []database.Listing) []database.Listing {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return listings
	}

	matched := make([]database.Listing, 0, len(listings))
	for _, l := range listings {
		if matches(l, q) {
			matched = append(matched, l)
		}
	}
	return matched
}

func matches(l database.Listing, q string) bool {
	if strings.Contains(strings.ToLower(l.Name), q) ||
		strings.Contains(strings.ToLower(l.Description), q) {
		return true
	}
	for _, tag := range l.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
