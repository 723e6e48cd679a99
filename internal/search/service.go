package search

import (
	"context"
	"strings"

	"github.com/letieu/agent-directory/internal/corpus"
	"github.com/letieu/agent-directory/internal/database"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FailureNotice is shown next to fallback results when the AI path failed.
const FailureNotice = "Failed to process search query"

type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

type Store interface {
	FindListings(ctx context.Context, f database.ListingFilter) ([]database.Listing, error)
}

type Request struct {
	Query string
	AI    bool
}

type Result struct {
	Listings   []database.Listing `json:"results"`
	Source     Source             `json:"source"`
	Candidates []Candidate        `json:"candidates,omitempty"`
	Notice     string             `json:"error,omitempty"`
}

type Service struct {
	store       Store
	interpreter *Interpreter
	logger      *zap.Logger
}

// NewService builds a search service. A nil interpreter disables the AI path.
func NewService(store Store, interpreter *Interpreter, logger *zap.Logger) *Service {
	return &Service{store: store, interpreter: interpreter, logger: logger}
}

// Search only returns an error when the store fails; every interpreter
// problem degrades to the substring filter.
func (s *Service) Search(ctx context.Context, req Request) (*Result, error) {
	all, err := s.store.FindListings(ctx, database.ListingFilter{Order: database.OrderNewest})
	if err != nil {
		return nil, eris.Wrap(err, "search: load listings")
	}

	query := strings.TrimSpace(req.Query)
	if !req.AI || s.interpreter == nil || query == "" {
		return fallback(query, all, ""), nil
	}

	res := s.interpreter.Interpret(ctx, query, corpus.Render(all))
	if !res.OK() {
		return fallback(query, all, FailureNotice), nil
	}

	candidates := res.Value()
	if len(candidates) == 0 {
		return fallback(query, all, ""), nil
	}

	slugs := make([]string, len(candidates))
	for i, c := range candidates {
		slugs[i] = c.Slug
	}
	found, err := s.store.FindListings(ctx, database.ListingFilter{Slugs: slugs})
	if err != nil {
		return nil, eris.Wrap(err, "search: load candidates")
	}

	listings := inCandidateOrder(found, candidates)
	if len(listings) == 0 {
		s.logger.Info("no candidate slug matched a listing", zap.String("query", query), zap.Strings("slugs", slugs))
		return fallback(query, all, ""), nil
	}

	return &Result{Listings: listings, Source: SourceAI, Candidates: candidates}, nil
}

func fallback(query string, all []database.Listing, notice string) *Result {
	return &Result{Listings: Filter(query, all), Source: SourceFallback, Notice: notice}
}

// inCandidateOrder reorders listings to follow candidates, dropping slugs
// the store does not know and repeated slugs.
func inCandidateOrder(listings []database.Listing, candidates []Candidate) []database.Listing {
	bySlug := make(map[string]database.Listing, len(listings))
	for _, l := range listings {
		bySlug[l.Slug] = l
	}

	ordered := make([]database.Listing, 0, len(candidates))
	for _, c := range candidates {
		l, ok := bySlug[c.Slug]
		if !ok {
			continue
		}
		ordered = append(ordered, l)
		delete(bySlug, c.Slug)
	}
	return ordered
}
