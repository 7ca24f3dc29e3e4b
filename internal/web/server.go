// Package web is the presentation layer. It owns no business logic: it
// reads through the repository and triggers the harvester, rendering
// whatever they return.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tinfoiltimes/internal/domain"
	"tinfoiltimes/internal/ports"
	"tinfoiltimes/internal/usecase"
)

// Server serves the ranked list, detail pages, and the refresh trigger.
type Server struct {
	repo      ports.TheoryRepository
	harvester *usecase.Harvester
	logger    *slog.Logger
	router    chi.Router
}

// NewServer builds the router.
func NewServer(repo ports.TheoryRepository, harvester *usecase.Harvester, logger *slog.Logger) *Server {
	s := &Server{
		repo:      repo,
		harvester: harvester,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleHome)
	r.Get("/hall-of-fame", s.handleHallOfFame)
	r.Get("/theory/{slug}", s.handleTheory)
	r.Post("/refresh", s.handleRefresh)
	s.router = r

	return s
}

// Handler exposes the http.Handler for the application to serve.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	// Synchronous trigger: the freshness check makes this a cheap no-op on
	// most requests.
	if _, err := s.harvester.RunCycle(r.Context()); err != nil {
		s.logger.Warn("request-driven harvest failed", "error", err)
	}

	latest, err := s.repo.List(r.Context(), domain.OrderAddedDesc, 6)
	if err != nil {
		s.renderUnavailable(w, err)
		return
	}
	top, err := s.repo.List(r.Context(), domain.OrderScoreDesc, 6)
	if err != nil {
		s.renderUnavailable(w, err)
		return
	}

	if len(latest) == 0 {
		s.render(w, emptyTemplate, map[string]any{
			"Harvesting": s.harvester.Running(),
		})
		return
	}

	s.render(w, homeTemplate, map[string]any{
		"Latest": latest,
		"Top":    top,
	})
}

func (s *Server) handleHallOfFame(w http.ResponseWriter, r *http.Request) {
	theories, err := s.repo.List(r.Context(), domain.OrderScoreDesc, 100)
	if err != nil {
		s.renderUnavailable(w, err)
		return
	}
	s.render(w, hallTemplate, map[string]any{"Theories": theories})
}

func (s *Server) handleTheory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	theory, err := s.repo.GetBySlug(r.Context(), slug)
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.renderUnavailable(w, err)
		return
	}

	s.render(w, detailTemplate, map[string]any{"Theory": theory})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := s.harvester.RunCycle(context.WithoutCancel(r.Context()))
	if err != nil {
		s.logger.Error("refresh failed", "error", err)
		http.Error(w, "harvest failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"triggered": result.Triggered,
		"reason":    result.Reason,
		"fetched":   result.Fetched,
		"stored":    result.Stored,
		"skipped":   result.Skipped,
		"failed":    result.Failed,
	})
}

func (s *Server) renderUnavailable(w http.ResponseWriter, err error) {
	s.logger.Error("read failed", "error", err)
	w.WriteHeader(http.StatusServiceUnavailable)
	s.render(w, unavailableTemplate, nil)
}

func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("render failed", "template", tmpl.Name(), "error", err)
	}
}
