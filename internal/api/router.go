package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/addressbook/internal/auth"
)

// healthCheckTimeout bounds each backend check on /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Read routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware(auth.PermBooksRead))

			r.Get("/stats", s.handleStats)
			r.Get("/books", s.handleListBooks)
			r.Get("/books/{book}/contacts", s.handleListBookContacts)
			r.Get("/contacts", s.handleListAllContacts)
			r.Get("/ws", s.handleWebSocket)
		})

		// Write routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware(auth.PermBooksWrite))

			r.Post("/books", s.handleCreateBook)
			r.Delete("/books/{book}", s.handleDeleteBook)
			r.Post("/books/{book}/contacts", s.handleAddBookContact)
			r.Delete("/books/{book}/contacts/{name}", s.handleRemoveBookContact)
			r.Post("/contacts", s.handleAddDefaultContact)
			r.Delete("/contacts/{name}", s.handleRemoveDefaultContact)
		})
	})

	return r
}

// handleHealth returns the server health status and the state of optional
// backends. A failing backend degrades the status but still returns 200.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	checks := make(map[string]string, len(s.checks))
	for name, checker := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := checker.HealthCheck(ctx)
		cancel()
		if err != nil {
			checks[name] = err.Error()
			status = "degraded"
			continue
		}
		checks[name] = "ok"
	}

	resp := map[string]any{
		"status":  status,
		"version": s.version,
	}
	if len(checks) > 0 {
		resp["checks"] = checks
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStats returns registry statistics.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.GetStats())
}
