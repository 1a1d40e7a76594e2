package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter configures all routes and middleware for the webmap API.
func NewRouter(service Service, logger *slog.Logger) http.Handler {
	handler := NewHandler(service, logger)

	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", handler.Health)

	// Node endpoints
	router.Post("/node/create", handler.CreateNode)
	router.Put("/node/update/{contentID}", handler.UpdateNode)
	router.Delete("/node/delete/{contentID}", handler.DeleteNode)
	router.Get("/node/search/{term}", handler.SearchNodes)
	router.Get("/node/search_unrelated/{contentID}/{term}", handler.SearchUnrelatedNodes)

	// Relationship endpoints
	router.Post("/relation/create", handler.CreateRelation)
	router.Delete("/relation/delete", handler.DeleteRelation)

	// Click endpoints
	router.Post("/link/click", handler.RecordClick)
	router.Get("/inbound_stats/{contentID}", handler.InboundStats)
	router.Get("/outbound_stats/{contentID}", handler.OutboundStats)
	router.Get("/all_stats", handler.AllStats)

	// Tree and administration
	router.Get("/tree", handler.Tree)
	router.Delete("/reset", handler.Reset)

	return router
}
