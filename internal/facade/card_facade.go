package facade

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/ramonehamilton/genesys-companion/internal/ygo/cards"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
)

// maxBulkIDs bounds a single bulk lookup.
const maxBulkIDs = 500

// CardFacade exposes card metadata search and lookup.
type CardFacade struct {
	services *Services
}

// NewCardFacade creates a new CardFacade with the given services.
func NewCardFacade(services *Services) *CardFacade {
	return &CardFacade{services: services}
}

// Search finds candidate cards by name, for picking replacements of
// placeholder slots.
func (c *CardFacade) Search(ctx context.Context, name string) ([]*cards.Metadata, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid("Search query is required", nil)
	}
	if c.services.Cards == nil {
		return nil, &AppError{Kind: KindUnavailable, Message: "Card database not configured"}
	}

	found, err := c.services.Cards.Search(ctx, name)
	if err != nil {
		return nil, &AppError{Kind: KindUnavailable, Message: "Card search failed", Err: err}
	}
	if found == nil {
		found = []*cards.Metadata{}
	}
	return found, nil
}

// BulkResult is the metadata found for a set of IDs.
type BulkResult struct {
	Cards   []*cards.Metadata `json:"cards"`
	Missing []deck.CardID     `json:"missing"`
}

// Bulk resolves metadata for ids. Cards are returned in ID order; IDs with
// no metadata are listed in Missing. Placeholders are ignored.
func (c *CardFacade) Bulk(ctx context.Context, ids []deck.CardID) (*BulkResult, error) {
	if len(ids) > maxBulkIDs {
		return nil, invalid("Too many card IDs", nil)
	}

	table := cards.Table{}
	if c.services.Cards != nil {
		found, err := c.services.Cards.Lookup(ctx, ids)
		if err != nil {
			return nil, &AppError{Kind: KindUnavailable, Message: "Card lookup canceled", Err: err}
		}
		table = found
	}

	result := &BulkResult{
		Cards:   make([]*cards.Metadata, 0, len(table)),
		Missing: table.Missing(ids),
	}
	for _, m := range table {
		result.Cards = append(result.Cards, m)
	}
	slices.SortFunc(result.Cards, func(a, b *cards.Metadata) int {
		return cmp.Compare(a.ID, b.ID)
	})
	if result.Missing == nil {
		result.Missing = []deck.CardID{}
	}
	return result, nil
}

