// Package directory holds the listing workflows: browse, submit, edit and
// autofill from a website and demo video.
package directory

import (
	"context"
	"errors"
	"net/http"

	"github.com/letieu/agent-directory/internal/database"
	"github.com/letieu/agent-directory/internal/extraction"
	"github.com/letieu/agent-directory/internal/slug"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrAutofillFailed is what callers see when extraction fails for any
// reason other than a missing website URL.
var ErrAutofillFailed = eris.New("Failed to process URLs. Please check the provided URLs and try again.")

const maxSlugAttempts = 5

// ForbiddenError is returned when the edit flag is off or cannot be read.
type ForbiddenError struct {
	Op    string
	Cause error
}

func (e *ForbiddenError) Error() string { return "You are not authorized to edit this item" }

func (e *ForbiddenError) StatusCode() int { return http.StatusForbidden }

func (e *ForbiddenError) Unwrap() error { return e.Cause }

type Store interface {
	FindListings(ctx context.Context, f database.ListingFilter) ([]database.Listing, error)
	FindListing(ctx context.Context, f database.ListingFilter, withFeatures bool) (*database.Listing, error)
	CreateListing(ctx context.Context, in database.ListingInput) (string, error)
	UpdateListing(ctx context.Context, id int64, in database.ListingInput) (string, error)
}

type Gate interface {
	EditEnabled(ctx context.Context) (bool, error)
}

type Autofiller interface {
	Run(ctx context.Context, in extraction.Input) (*extraction.Draft, error)
}

type Service struct {
	store    Store
	gate     Gate
	autofill Autofiller
	logger   *zap.Logger
}

// NewService wires the workflows. autofill may be nil when the remote
// services are not configured; Autofill then fails.
func NewService(store Store, gate Gate, autofill Autofiller, logger *zap.Logger) *Service {
	return &Service{store: store, gate: gate, autofill: autofill, logger: logger}
}

// List returns listings of type t (all types when empty), new ones first.
func (s *Service) List(ctx context.Context, t database.ItemType) ([]database.Listing, error) {
	return s.store.FindListings(ctx, database.ListingFilter{Type: t, Order: database.OrderNewest})
}

func (s *Service) Get(ctx context.Context, listingSlug string) (*database.Listing, error) {
	return s.store.FindListing(ctx, database.ListingFilter{Slug: listingSlug}, true)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*database.Listing, error) {
	return s.store.FindListing(ctx, database.ListingFilter{ID: id}, true)
}

// Create stores a new listing with its features and returns its slug. An
// empty slug is derived from the name, with a numeric suffix when taken.
func (s *Service) Create(ctx context.Context, in database.ListingInput) (string, error) {
	if err := s.authorize(ctx, "create"); err != nil {
		return "", err
	}

	derived := in.Slug == ""
	if derived {
		in.Slug = slug.Make(in.Name)
	}
	if err := in.Validate(); err != nil {
		return "", err
	}

	base := in.Slug
	for attempt := 1; ; attempt++ {
		in.Slug = slug.WithSuffix(base, attempt)
		created, err := s.store.CreateListing(ctx, in)
		if err == nil {
			s.logger.Info("listing created", zap.String("slug", created))
			return created, nil
		}
		if !derived || !errors.Is(err, database.ErrDuplicateSlug) || attempt == maxSlugAttempts {
			return "", err
		}
	}
}

// Update replaces the listing row and its whole feature set.
func (s *Service) Update(ctx context.Context, id int64, in database.ListingInput) (string, error) {
	if err := s.authorize(ctx, "update"); err != nil {
		return "", err
	}
	if err := in.Validate(); err != nil {
		return "", err
	}

	updated, err := s.store.UpdateListing(ctx, id, in)
	if err != nil {
		return "", err
	}
	s.logger.Info("listing updated", zap.Int64("id", id), zap.String("slug", updated), zap.Int("features", len(in.Features)))
	return updated, nil
}

// Autofill runs the extraction pipeline and returns a draft for review.
func (s *Service) Autofill(ctx context.Context, in extraction.Input) (*extraction.Draft, error) {
	if err := s.authorize(ctx, "autofill"); err != nil {
		return nil, err
	}
	if s.autofill == nil {
		return nil, eris.Wrap(ErrAutofillFailed, "autofill is not configured")
	}

	draft, err := s.autofill.Run(ctx, in)
	if err != nil {
		if errors.Is(err, extraction.ErrWebsiteURLRequired) {
			return nil, err
		}
		s.logger.Error("autofill failed", zap.Error(err))
		return nil, eris.Wrap(ErrAutofillFailed, err.Error())
	}
	return draft, nil
}

func (s *Service) authorize(ctx context.Context, op string) error {
	ok, err := s.gate.EditEnabled(ctx)
	if err != nil {
		s.logger.Warn("edit flag lookup failed", zap.String("op", op), zap.Error(err))
		return &ForbiddenError{Op: op, Cause: err}
	}
	if !ok {
		return &ForbiddenError{Op: op}
	}
	return nil
}
