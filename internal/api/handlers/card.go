package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/ramonehamilton/genesys-companion/internal/api/response"
	"github.com/ramonehamilton/genesys-companion/internal/facade"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/cards"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
)

// CardFacade is the card metadata operations the handler needs.
type CardFacade interface {
	Search(ctx context.Context, name string) ([]*cards.Metadata, error)
	Bulk(ctx context.Context, ids []deck.CardID) (*facade.BulkResult, error)
}

// CardHandler handles card-related API requests.
type CardHandler struct {
	facade CardFacade
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(facade CardFacade) *CardHandler {
	return &CardHandler{facade: facade}
}

// BulkRequest lists card passcodes to resolve.
type BulkRequest struct {
	IDs []deck.CardID `json:"ids"`
}

// SearchCards searches for cards by name.
func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		response.BadRequest(w, errors.New("query parameter q is required"))
		return
	}

	found, err := h.facade.Search(r.Context(), query)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, found)
}

// GetCardsBulk returns metadata for multiple cards.
func (h *CardHandler) GetCardsBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.facade.Bulk(r.Context(), req.IDs)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}
