package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", s.handleHealth)

		// Device fleet protocol (polled by the IR blaster nodes)
		r.Route("/device/{deviceID}", func(r chi.Router) {
			r.Get("/commands", s.handleDevicePoll)
			r.Post("/command", s.handleDeviceCommand)
			r.Post("/ack/{commandID}", s.handleDeviceAck)
			r.Get("/status", s.handleDeviceStatus)
			r.Get("/history", s.handleDeviceHistory)
		})
		r.Get("/devices", s.handleListDeviceStatuses)

		// Room-level command dispatch (used by the web application)
		r.Route("/room/{roomID}", func(r chi.Router) {
			r.Post("/command", s.handleRoomCommand)
			r.Post("/command/{entryID}", s.handleRoomCatalogCommand)
			r.Get("/commands", s.handleRoomCommands)
			r.Get("/device/status", s.handleRoomDeviceStatus)
		})

		// Room management
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", s.handleListRooms)
			r.Post("/", s.handleCreateRoom)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetRoom)
				r.Put("/", s.handleUpdateRoom)
				r.Delete("/", s.handleDeleteRoom)
			})
		})

		// IR command catalog management
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", s.handleListCatalog)
			r.Post("/", s.handleCreateCatalogEntry)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetCatalogEntry)
				r.Put("/", s.handleUpdateCatalogEntry)
				r.Delete("/", s.handleDeleteCatalogEntry)
			})
		})
	})

	return r
}
