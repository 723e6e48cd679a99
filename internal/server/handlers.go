package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/letieu/agent-directory/internal/corpus"
	"github.com/letieu/agent-directory/internal/database"
	"github.com/letieu/agent-directory/internal/directory"
	"github.com/letieu/agent-directory/internal/extraction"
	"github.com/letieu/agent-directory/internal/search"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type slugResponse struct {
	Slug string `json:"slug"`
}

// GET /api/listings?type=agent|tool|all
func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	t, err := database.ParseItemType(r.URL.Query().Get("type"))
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	listings, err := s.directory.List(r.Context(), t)
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

// GET /api/listings/{slug}
func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	l, err := s.directory.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// POST /api/listings
func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var in database.ListingInput
	if !s.decode(w, r, &in) {
		return
	}
	created, err := s.directory.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, slugResponse{Slug: created})
}

// PUT /api/listings/{id}
func (s *Server) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid listing id"})
		return
	}
	var in database.ListingInput
	if !s.decode(w, r, &in) {
		return
	}
	updated, err := s.directory.Update(r.Context(), id, in)
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, slugResponse{Slug: updated})
}

// POST /api/autofill
func (s *Server) handleAutofill(w http.ResponseWriter, r *http.Request) {
	var in extraction.Input
	if !s.decode(w, r, &in) {
		return
	}
	draft, err := s.directory.Autofill(r.Context(), in)
	if err != nil {
		s.writeError(w, err, directory.ErrAutofillFailed.Error())
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// GET /api/search?q=...&ai=true
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ai, _ := strconv.ParseBool(q.Get("ai"))

	res, err := s.search.Search(r.Context(), search.Request{Query: q.Get("q"), AI: ai})
	if err != nil {
		s.writeError(w, err, search.FailureNotice)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /llms.txt
func (s *Server) handleLLMsTxt(w http.ResponseWriter, r *http.Request) {
	listings, err := s.directory.List(r.Context(), "")
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(corpus.Render(listings)))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return false
	}
	return true
}

type statusCoder interface {
	StatusCode() int
}

// writeError maps domain errors to status codes. Anything unrecognised is a
// 500 carrying generic (or a default) rather than the internal message.
func (s *Server) writeError(w http.ResponseWriter, err error, generic string) {
	var sc statusCoder
	switch {
	case errors.As(err, &sc):
		writeJSON(w, sc.StatusCode(), errorResponse{Error: err.Error()})
	case errors.Is(err, database.ErrInvalidListing), errors.Is(err, extraction.ErrWebsiteURLRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: firstLine(err.Error())})
	case errors.Is(err, database.ErrDuplicateSlug):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "slug already exists"})
	case errors.Is(err, database.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		s.logger.Error("request failed", zap.Error(err))
		if generic == "" {
			generic = "internal server error"
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: generic})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
