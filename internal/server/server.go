// Package server exposes the directory over a JSON HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/letieu/agent-directory/internal/directory"
	"github.com/letieu/agent-directory/internal/search"
	"go.uber.org/zap"
)

type Server struct {
	directory *directory.Service
	search    *search.Service
	logger    *zap.Logger
}

func New(dir *directory.Service, searchSvc *search.Service, logger *zap.Logger) *Server {
	return &Server{directory: dir, search: searchSvc, logger: logger}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/llms.txt", s.handleLLMsTxt)

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Post("/autofill", s.handleAutofill)

		r.Get("/listings", s.handleListListings)
		r.Post("/listings", s.handleCreateListing)
		r.Get("/listings/{slug}", s.handleGetListing)
		r.Put("/listings/{id}", s.handleUpdateListing)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("http request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
