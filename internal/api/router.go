package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.ingressMiddleware)
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)

		// Device endpoints
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Post("/", s.handleCreateDevice)
			r.Post("/import", s.handleImportDevices)
			r.Post("/bulk-delete", s.handleBulkDeleteDevices)
			r.Delete("/", s.handleDeleteAllDevices)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Put("/", s.handleUpdateDevice)
				r.Delete("/", s.handleDeleteDevice)
			})
		})

		// Location endpoints
		r.Route("/locations", func(r chi.Router) {
			r.Get("/", s.handleListLocations)
			r.Post("/", s.handleCreateLocation)
			r.Post("/import", s.handleImportLocations)

			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", s.handleGetLocation)
				r.Put("/", s.handleUpdateLocation)
				r.Delete("/", s.handleDeleteLocation)
			})
		})

		// Manual endpoints
		r.Route("/manuals", func(r chi.Router) {
			r.Get("/", s.handleListManuals)
			r.Post("/", s.handleUploadManual)

			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", s.handleGetManual)
				r.Delete("/", s.handleDeleteManual)
			})
		})
	})

	return r
}
