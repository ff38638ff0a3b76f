// Package deck defines the card identifier and three-section deck value types
// shared by the codec, importer, aggregator and resolver.
package deck

import (
	"fmt"
	"slices"
	"strings"
)

// CardID is a passcode in the external card database.
type CardID uint32

// Unresolved marks a slot whose passcode could not be embedded in the deck
// code, usually an alternate-art print. It is never a valid card.
const Unresolved CardID = 0

// IsUnresolved reports whether the ID is the placeholder sentinel.
func (id CardID) IsUnresolved() bool {
	return id == Unresolved
}

// Zone identifies one of the three deck sections.
type Zone int

const (
	Main Zone = iota
	Extra
	Side
)

// AllZones lists the zones in encoding order.
var AllZones = []Zone{Main, Extra, Side}

func (z Zone) String() string {
	switch z {
	case Main:
		return "main"
	case Extra:
		return "extra"
	case Side:
		return "side"
	default:
		return fmt.Sprintf("zone(%d)", int(z))
	}
}

// ParseZone parses a zone name case-insensitively.
func ParseZone(s string) (Zone, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "main":
		return Main, nil
	case "extra":
		return Extra, nil
	case "side":
		return Side, nil
	default:
		return 0, fmt.Errorf("unknown deck zone %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (z *Zone) UnmarshalText(text []byte) error {
	parsed, err := ParseZone(string(text))
	if err != nil {
		return err
	}
	*z = parsed
	return nil
}

// Deck holds the three ordered sections of a deck list. Order and duplicates
// are significant. A Deck is treated as immutable: edits go through
// WithSection, which returns a copy.
type Deck struct {
	Main  []CardID `json:"main"`
	Extra []CardID `json:"extra"`
	Side  []CardID `json:"side"`
}

// Section returns the IDs of the given zone.
func (d Deck) Section(z Zone) []CardID {
	switch z {
	case Main:
		return d.Main
	case Extra:
		return d.Extra
	case Side:
		return d.Side
	default:
		return nil
	}
}

// WithSection returns a copy of the deck with the zone's IDs replaced.
func (d Deck) WithSection(z Zone, ids []CardID) Deck {
	out := d.Clone()
	ids = slices.Clone(ids)
	switch z {
	case Main:
		out.Main = ids
	case Extra:
		out.Extra = ids
	case Side:
		out.Side = ids
	}
	return out
}

// Clone returns a deep copy of the deck.
func (d Deck) Clone() Deck {
	return Deck{
		Main:  slices.Clone(d.Main),
		Extra: slices.Clone(d.Extra),
		Side:  slices.Clone(d.Side),
	}
}

// Len returns the number of slots across all zones.
func (d Deck) Len() int {
	return len(d.Main) + len(d.Extra) + len(d.Side)
}

// UnresolvedCount returns the number of placeholder slots across all zones.
func (d Deck) UnresolvedCount() int {
	n := 0
	for _, z := range AllZones {
		n += CountUnresolved(d.Section(z))
	}
	return n
}

// Equal reports whether both decks hold the same IDs in the same order.
// A nil section equals an empty one.
func (d Deck) Equal(other Deck) bool {
	for _, z := range AllZones {
		if !slices.Equal(d.Section(z), other.Section(z)) {
			return false
		}
	}
	return true
}

// CountUnresolved returns the number of placeholder IDs in ids.
func CountUnresolved(ids []CardID) int {
	n := 0
	for _, id := range ids {
		if id.IsUnresolved() {
			n++
		}
	}
	return n
}
