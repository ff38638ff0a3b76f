package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/ramonehamilton/genesys-companion/internal/api/response"
	"github.com/ramonehamilton/genesys-companion/internal/facade"
)

// PointsFacade is the point list operations the handler needs.
type PointsFacade interface {
	Info(ctx context.Context) *facade.PointsInfo
	Lookup(ctx context.Context, name string) (*facade.PointLookup, error)
}

// PointsHandler handles point list API requests.
type PointsHandler struct {
	facade PointsFacade
}

// NewPointsHandler creates a new PointsHandler.
func NewPointsHandler(facade PointsFacade) *PointsHandler {
	return &PointsHandler{facade: facade}
}

// GetInfo returns the active point list summary.
func (h *PointsHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.facade.Info(r.Context()))
}

// Lookup returns the points of one card name.
func (h *PointsHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		response.BadRequest(w, errors.New("name is required"))
		return
	}

	result, err := h.facade.Lookup(r.Context(), name)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}
