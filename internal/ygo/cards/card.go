// Package cards describes the card metadata consumed from the external card
// database and the type taxonomy used to order and validate deck lists.
package cards

import (
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
)

// Metadata is the per-card information resolved from the card database.
// Only Name is required; the remaining fields are cosmetic or used for
// ordering.
type Metadata struct {
	ID          deck.CardID `json:"id"`
	Name        string      `json:"name"`
	Type        string      `json:"type,omitempty"`       // e.g. "Effect Monster", "Spell Card"
	FrameType   string      `json:"frame_type,omitempty"` // e.g. "effect", "xyz", "spell"
	Race        string      `json:"race,omitempty"`       // monster type, or spell/trap subtype
	Level       int         `json:"level,omitempty"`
	LinkValue   int         `json:"link_value,omitempty"`
	Image       string      `json:"image,omitempty"`
	Description string      `json:"description,omitempty"`
}

// Table is a resolved metadata lookup keyed by card ID. It may be partial.
type Table map[deck.CardID]*Metadata

// NewTable builds a table from a list of metadata.
func NewTable(list []*Metadata) Table {
	t := make(Table, len(list))
	for _, m := range list {
		if m != nil {
			t[m.ID] = m
		}
	}
	return t
}

// Get returns the metadata for id. A nil table or missing entry returns
// (nil, false).
func (t Table) Get(id deck.CardID) (*Metadata, bool) {
	m, ok := t[id]
	if !ok || m == nil {
		return nil, false
	}
	return m, true
}

// Merge copies every entry of other into t, overwriting existing entries.
func (t Table) Merge(other Table) {
	for id, m := range other {
		if m != nil {
			t[id] = m
		}
	}
}

// Missing returns the resolved-slot IDs from ids that have no entry in t,
// deduplicated and in first-seen order. Placeholders are never reported.
func (t Table) Missing(ids []deck.CardID) []deck.CardID {
	seen := make(map[deck.CardID]bool)
	var out []deck.CardID
	for _, id := range ids {
		if id.IsUnresolved() || seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := t.Get(id); !ok {
			out = append(out, id)
		}
	}
	return out
}
