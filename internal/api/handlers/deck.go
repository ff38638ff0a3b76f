package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ramonehamilton/genesys-companion/internal/api/response"
	"github.com/ramonehamilton/genesys-companion/internal/facade"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deckexport"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deckimport"
)

// DeckFacade is the deck operations the handler needs.
// *facade.DeckFacade implements it.
type DeckFacade interface {
	Decode(ctx context.Context, code string) (*facade.DecodedDeck, error)
	Encode(ctx context.Context, d deck.Deck) (string, error)
	Share(ctx context.Context, code string) (*facade.SharedDeck, error)
	Unshare(ctx context.Context, token string) (*facade.DecodedDeck, error)
	Import(ctx context.Context, input string) (*deckimport.ParseResult, error)
	Breakdown(ctx context.Context, req *facade.BreakdownRequest) (*facade.BreakdownResponse, error)
	Export(ctx context.Context, req *facade.ExportRequest) (*deckexport.DeckExport, error)
	Resolve(ctx context.Context, req *facade.ResolveRequest) (*facade.ResolveResponse, error)
}

// DeckHandler handles deck-related API requests.
type DeckHandler struct {
	facade DeckFacade
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(facade DeckFacade) *DeckHandler {
	return &DeckHandler{facade: facade}
}

// CodeRequest carries a ydke:// deck code.
type CodeRequest struct {
	Code string `json:"code"`
}

// EncodeRequest carries a deck to encode.
type EncodeRequest struct {
	Deck deck.Deck `json:"deck"`
}

// TokenRequest carries a share token.
type TokenRequest struct {
	Token string `json:"token"`
}

// ImportRequest carries a ydke code, YDK file contents or share token.
type ImportRequest struct {
	Content string `json:"content"`
}

// Decode decodes a deck code.
func (h *DeckHandler) Decode(w http.ResponseWriter, r *http.Request) {
	var req CodeRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.facade.Decode(r.Context(), req.Code)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

// Encode encodes a deck into its canonical code.
func (h *DeckHandler) Encode(w http.ResponseWriter, r *http.Request) {
	var req EncodeRequest
	if !decode(w, r, &req) {
		return
	}

	code, err := h.facade.Encode(r.Context(), req.Deck)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, CodeRequest{Code: code})
}

// Share compresses a deck code into a share token.
func (h *DeckHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req CodeRequest
	if !decode(w, r, &req) {
		return
	}

	shared, err := h.facade.Share(r.Context(), req.Code)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, shared)
}

// Unshare expands a share token.
func (h *DeckHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.facade.Unshare(r.Context(), req.Token)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

// Import parses any supported deck representation.
func (h *DeckHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.facade.Import(r.Context(), req.Content)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

// Breakdown annotates a deck with Genesys points.
func (h *DeckHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	var req facade.BreakdownRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.facade.Breakdown(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

// Export writes a deck in the requested format.
func (h *DeckHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req facade.ExportRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.facade.Export(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

// Resolve fills placeholder slots of one zone.
func (h *DeckHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req facade.ResolveRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.facade.Resolve(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

// decode reads a JSON request body into dst and writes a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return false
	}
	return true
}
