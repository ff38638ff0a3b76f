// Package breakdown aggregates a decoded deck into per-zone card groups
// annotated with Genesys points.
//
// Aggregate is a pure function of its inputs: the same deck, metadata table,
// index and options always produce an equal Result, so it can be re-run
// whenever the metadata table fills in.
package breakdown

import (
	"fmt"
	"strings"

	"github.com/ramonehamilton/genesys-companion/internal/genesys"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/cards"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
)

// MissingIDLabel names the group collecting placeholder slots.
const MissingIDLabel = "Missing ID"

// Group is one row of a zone: every copy of a card, print variants merged.
type Group struct {
	ID            deck.CardID    `json:"id"`
	IDs           []deck.CardID  `json:"ids"`
	Name          string         `json:"name"`
	Key           string         `json:"key"`
	Zone          deck.Zone      `json:"zone"`
	Count         int            `json:"count"`
	PointsPerCopy int            `json:"points_per_copy"`
	TotalPoints   int            `json:"total_points"`
	MissingInfo   bool           `json:"missing_info"`
	NotInList     bool           `json:"not_in_list"`
	Restricted    bool           `json:"restricted"`
	Category      cards.Category `json:"category"`
	Bucket        int            `json:"-"`
	Type          string         `json:"type,omitempty"`
	Race          string         `json:"race,omitempty"`
	Image         string         `json:"image,omitempty"`
	Description   string         `json:"description,omitempty"`
	FirstIndex    int            `json:"first_index"`
}

// Section is the aggregated view of one zone.
type Section struct {
	Zone   deck.Zone `json:"zone"`
	Groups []Group   `json:"groups"`
	Cards  int       `json:"cards"`
	Points int       `json:"points"`
}

// Result is the aggregated deck.
type Result struct {
	Main            Section `json:"main"`
	Extra           Section `json:"extra"`
	Side            Section `json:"side"`
	TotalPoints     int     `json:"total_points"`
	PointCap        int     `json:"point_cap"`
	OverCap         bool    `json:"over_cap"`
	UnknownCards    int     `json:"unknown_cards"`
	MissingIDs      int     `json:"missing_ids"`
	RestrictedCards int     `json:"restricted_cards"`
}

// Section returns the aggregated zone.
func (r *Result) Section(z deck.Zone) *Section {
	switch z {
	case deck.Main:
		return &r.Main
	case deck.Extra:
		return &r.Extra
	default:
		return &r.Side
	}
}

// Groups returns every group across all zones in zone order.
func (r *Result) Groups() []Group {
	var out []Group
	for _, z := range deck.AllZones {
		out = append(out, r.Section(z).Groups...)
	}
	return out
}

// Options carries the ruleset and display settings for an aggregation.
type Options struct {
	// PointCap is the deck's point budget. Zero disables the cap check.
	PointCap int

	MainSort  SortMode
	ExtraSort SortMode
	SideSort  SortMode
}

// SortFor returns the sort mode configured for a zone.
func (o Options) SortFor(z deck.Zone) SortMode {
	switch z {
	case deck.Main:
		return o.MainSort
	case deck.Extra:
		return o.ExtraSort
	default:
		return o.SideSort
	}
}

// Aggregate groups every slot of d, annotates the groups with points from
// idx and orders each zone per opts. It never fails: cards without metadata
// or without a point list entry are kept and flagged.
func Aggregate(d deck.Deck, table cards.Table, idx *genesys.Index, opts Options) *Result {
	result := &Result{
		PointCap:   opts.PointCap,
		MissingIDs: d.UnresolvedCount(),
	}

	for _, z := range deck.AllZones {
		groups := merge(enrich(z, count(d.Section(z)), table, idx))
		sortGroups(groups, opts.SortFor(z))

		section := result.Section(z)
		section.Zone = z
		section.Groups = groups
		for _, g := range groups {
			section.Cards += g.Count
			section.Points += g.TotalPoints
			if g.NotInList {
				result.UnknownCards += g.Count
			}
			if g.Restricted {
				result.RestrictedCards += g.Count
			}
		}
		result.TotalPoints += section.Points
	}

	result.OverCap = opts.PointCap > 0 && result.TotalPoints > opts.PointCap
	return result
}

type tally struct {
	id    deck.CardID
	count int
	first int
}

// count walks a zone once and returns one tally per distinct ID in
// first-occurrence order.
func count(ids []deck.CardID) []*tally {
	byID := make(map[deck.CardID]*tally)
	var order []*tally
	for i, id := range ids {
		t, ok := byID[id]
		if !ok {
			t = &tally{id: id, first: i}
			byID[id] = t
			order = append(order, t)
		}
		t.count++
	}
	return order
}

func enrich(z deck.Zone, tallies []*tally, table cards.Table, idx *genesys.Index) []Group {
	groups := make([]Group, 0, len(tallies))
	for _, t := range tallies {
		g := Group{
			ID:          t.id,
			IDs:         []deck.CardID{t.id},
			Zone:        z,
			Count:       t.count,
			FirstIndex:  t.first,
			MissingInfo: true,
			Category:    cards.CategoryUnknown,
		}

		var meta *cards.Metadata
		if !t.id.IsUnresolved() {
			meta, _ = table.Get(t.id)
		}
		if meta != nil {
			g.Name = genesys.DisplayName(meta.Name)
		}
		if g.Name != "" {
			g.MissingInfo = false
			g.Category, g.Bucket = cards.Classify(meta)
			g.Restricted = cards.Restricted(meta)
			g.Type = meta.Type
			g.Race = meta.Race
			g.Image = meta.Image
			g.Description = meta.Description
		} else {
			g.Name = fallbackName(t.id)
		}

		g.Key = genesys.NormalizeName(g.Name)
		points, found := idx.LookupNormalized(g.Key)
		g.PointsPerCopy = points
		g.NotInList = !found
		g.TotalPoints = g.PointsPerCopy * g.Count

		groups = append(groups, g)
	}
	return groups
}

func fallbackName(id deck.CardID) string {
	if id.IsUnresolved() {
		return MissingIDLabel
	}
	return fmt.Sprintf("Card #%d", id)
}

// merge folds groups sharing a normalized name into the earliest one. Input
// is in first-occurrence order, so the surviving group keeps the smallest
// FirstIndex and its ID.
func merge(groups []Group) []Group {
	byKey := make(map[string]int, len(groups))
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		i, ok := byKey[g.Key]
		if !ok {
			byKey[g.Key] = len(out)
			out = append(out, g)
			continue
		}

		dst := &out[i]
		dst.IDs = append(dst.IDs, g.IDs...)
		dst.Count += g.Count
		dst.TotalPoints += g.TotalPoints
		dst.FirstIndex = min(dst.FirstIndex, g.FirstIndex)
		dst.Restricted = dst.Restricted || g.Restricted
		if dst.MissingInfo && !g.MissingInfo {
			dst.Category, dst.Bucket = g.Category, g.Bucket
		}
		dst.MissingInfo = dst.MissingInfo && g.MissingInfo
		dst.Type = firstNonEmpty(dst.Type, g.Type)
		dst.Race = firstNonEmpty(dst.Race, g.Race)
		dst.Image = firstNonEmpty(dst.Image, g.Image)
		dst.Description = firstNonEmpty(dst.Description, g.Description)
	}
	return out
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
