/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack and route definitions. This is
  the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     request logging
  2. Recoverer:  panic recovery (500 instead of crash)
  3. RequestID:  unique id per request for tracing
  4. CORS:       cross-origin requests for a browser front end

SECURITY NOTE:
  No authentication middleware. The server is meant to sit behind the
  messaging front end on a private network.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Parsing and ingestion
		r.Post("/parse", h.Parse)
		r.Post("/blocks", h.IngestBlock)

		// Operations
		r.Route("/operations", func(r chi.Router) {
			r.Get("/", h.ListOperations)
			r.Put("/", h.UpdateOperation)
			r.Delete("/", h.DeleteOperation)
		})

		// Reports and audit
		r.Get("/report", h.GetReport)
		r.Get("/editlog", h.GetEditLog)

		// Employee payment history
		r.Get("/employees/{code}/payments", h.EmployeePayments)
	})

	return r
}
