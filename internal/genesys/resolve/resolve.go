// Package resolve replaces placeholder slots of one deck zone with cards the
// user picked, then re-encodes the deck.
package resolve

import (
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deckcode"
)

// Pick is one chosen replacement card and how many copies of it to use.
type Pick struct {
	ID    deck.CardID `json:"id"`
	Name  string      `json:"name,omitempty"`
	Count int         `json:"count"`
}

// Session accumulates replacement picks for one zone. The number of
// placeholder slots is fixed when the session starts; picks beyond it are
// ignored.
type Session struct {
	zone    deck.Zone
	missing int
	picks   []Pick
	total   int
}

// Start opens a session for zone, capturing its current placeholder count.
func Start(d deck.Deck, zone deck.Zone) *Session {
	return &Session{
		zone:    zone,
		missing: deck.CountUnresolved(d.Section(zone)),
	}
}

// Zone returns the zone being resolved.
func (s *Session) Zone() deck.Zone { return s.zone }

// MissingCount returns the number of placeholder slots captured at Start.
func (s *Session) MissingCount() int { return s.missing }

// Remaining returns how many more picks can be added.
func (s *Session) Remaining() int { return s.missing - s.total }

// Picks returns the picks in the order they were first added.
func (s *Session) Picks() []Pick {
	return append([]Pick(nil), s.picks...)
}

// Add records one more copy of id. It returns false, changing nothing, when
// the session is full or id is itself a placeholder.
func (s *Session) Add(id deck.CardID, name string) bool {
	if id.IsUnresolved() || s.total >= s.missing {
		return false
	}
	s.total++
	for i := range s.picks {
		if s.picks[i].ID == id {
			s.picks[i].Count++
			return true
		}
	}
	s.picks = append(s.picks, Pick{ID: id, Name: name, Count: 1})
	return true
}

// AddN records up to n copies of id, clamped to Remaining, and returns how
// many were added.
func (s *Session) AddN(id deck.CardID, name string, n int) int {
	if id.IsUnresolved() || n <= 0 {
		return 0
	}
	n = min(n, s.Remaining())
	if n <= 0 {
		return 0
	}
	s.total += n
	for i := range s.picks {
		if s.picks[i].ID == id {
			s.picks[i].Count += n
			return n
		}
	}
	s.picks = append(s.picks, Pick{ID: id, Name: name, Count: n})
	return n
}

// Remove drops one copy of id. It returns false if id was not picked.
func (s *Session) Remove(id deck.CardID) bool {
	for i := range s.picks {
		if s.picks[i].ID != id {
			continue
		}
		s.total--
		s.picks[i].Count--
		if s.picks[i].Count == 0 {
			s.picks = append(s.picks[:i], s.picks[i+1:]...)
		}
		return true
	}
	return false
}

// Replacements expands the picks into one ID per slot, in pick order.
func (s *Session) Replacements() []deck.CardID {
	out := make([]deck.CardID, 0, s.total)
	for _, p := range s.picks {
		for i := 0; i < p.Count; i++ {
			out = append(out, p.ID)
		}
	}
	return out
}

// Outcome is the result of confirming a session.
type Outcome struct {
	Deck      deck.Deck `json:"deck"`
	Code      string    `json:"code"`
	Applied   int       `json:"applied"`
	Remaining int       `json:"remaining"`
	Changed   bool      `json:"changed"`
}

// Confirm applies the picks to d, which should be the current deck. If the
// zone has no placeholders left the deck is returned unchanged with
// Changed false.
func (s *Session) Confirm(d deck.Deck) Outcome {
	ids := d.Section(s.zone)
	if deck.CountUnresolved(ids) == 0 {
		return Outcome{Deck: d, Code: deckcode.Encode(d)}
	}

	filled, applied := Apply(ids, s.Replacements())
	updated := d.WithSection(s.zone, filled)
	return Outcome{
		Deck:      updated,
		Code:      deckcode.Encode(updated),
		Applied:   applied,
		Remaining: deck.CountUnresolved(filled),
		Changed:   applied > 0,
	}
}

// Apply fills placeholder slots of ids with replacements, earliest slot
// first, and returns a new slice plus the number of slots filled. Resolved
// slots are never touched; surplus replacements are dropped.
func Apply(ids, replacements []deck.CardID) ([]deck.CardID, int) {
	out := make([]deck.CardID, len(ids))
	copy(out, ids)

	applied := 0
	for i, id := range out {
		if applied == len(replacements) {
			break
		}
		if id.IsUnresolved() {
			out[i] = replacements[applied]
			applied++
		}
	}
	return out, applied
}
