package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/genesys-companion/internal/api/handlers"
	"github.com/ramonehamilton/genesys-companion/internal/api/response"
	"github.com/ramonehamilton/genesys-companion/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint (no JSON content-type requirement)
	s.router.Get("/ws", s.wsHub.ServeWs)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.deckFacade != nil {
			deckHandler := handlers.NewDeckHandler(s.deckFacade)
			r.Route("/decks", func(r chi.Router) {
				r.Post("/decode", deckHandler.Decode)
				r.Post("/encode", deckHandler.Encode)
				r.Post("/share", deckHandler.Share)
				r.Post("/unshare", deckHandler.Unshare)
				r.Post("/import", deckHandler.Import)
				r.Post("/export", deckHandler.Export)
				r.Post("/breakdown", deckHandler.Breakdown)
				r.Post("/resolve", deckHandler.Resolve)
			})
		}

		if s.pointsFacade != nil {
			pointsHandler := handlers.NewPointsHandler(s.pointsFacade)
			r.Route("/points", func(r chi.Router) {
				r.Get("/", pointsHandler.GetInfo)
				r.Get("/lookup", pointsHandler.Lookup)
			})
		}

		if s.cardFacade != nil {
			cardHandler := handlers.NewCardHandler(s.cardFacade)
			r.Route("/cards", func(r chi.Router) {
				r.Get("/search", cardHandler.SearchCards)
				r.Post("/bulk", cardHandler.GetCardsBulk)
			})
		}

		if s.metrics != nil {
			r.Get("/metrics", s.getMetrics)
		}
	})

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, errors.New("route not found"))
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "genesys-companion-api",
		"version": version.GetVersion(),
		"clients": s.wsHub.ClientCount(),
	})
}

func (s *Server) getMetrics(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, s.metrics.Stats())
}
