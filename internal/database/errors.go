package database

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	ErrNotFound       = eris.New("listing not found")
	ErrInvalidListing = eris.New("invalid listing")
	ErrDuplicateSlug  = eris.New("slug already exists")
)

// FieldError reports the offending field of an invalid listing. It matches
// ErrInvalidListing under errors.Is.
type FieldError struct {
	Field string
	Value string
}

func invalidField(field, value string) error {
	return &FieldError{Field: field, Value: value}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid listing: %s %q", e.Field, e.Value)
}

func (e *FieldError) Unwrap() error { return ErrInvalidListing }

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Validate checks the fields the store cannot check on its own. Slug
// uniqueness is left to the UNIQUE index.
func (in ListingInput) Validate() error {
	if !slugPattern.MatchString(in.Slug) {
		return invalidField("slug", in.Slug)
	}
	if strings.TrimSpace(in.Name) == "" {
		return invalidField("name", in.Name)
	}
	if strings.TrimSpace(in.Description) == "" {
		return invalidField("description", in.Description)
	}
	if strings.TrimSpace(in.Href) == "" {
		return invalidField("href", in.Href)
	}
	if !in.Category.Valid() {
		return invalidField("category", string(in.Category))
	}
	if !in.Type.Valid() {
		return invalidField("type", string(in.Type))
	}
	if !in.PricingModel.Valid() {
		return invalidField("pricing_model", string(in.PricingModel))
	}
	for _, f := range in.Features {
		if strings.TrimSpace(f.Name) == "" {
			return invalidField("feature", f.Name)
		}
		if f.TimestampStart < 0 || f.TimestampStart > f.TimestampEnd {
			return invalidField("feature_timestamps", fmt.Sprintf("%d-%d", f.TimestampStart, f.TimestampEnd))
		}
	}
	return nil
}
