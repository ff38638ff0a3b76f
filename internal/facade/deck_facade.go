package facade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ramonehamilton/genesys-companion/internal/genesys/breakdown"
	"github.com/ramonehamilton/genesys-companion/internal/genesys/resolve"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/cards"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deckcode"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deckexport"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deckimport"
)

// DeckFacade handles deck code, sharing and point breakdown operations.
type DeckFacade struct {
	services *Services
}

// NewDeckFacade creates a new DeckFacade with the given services.
func NewDeckFacade(services *Services) *DeckFacade {
	return &DeckFacade{services: services}
}

// DecodedDeck is a decoded deck with its canonical code.
type DecodedDeck struct {
	Deck       deck.Deck `json:"deck"`
	Code       string    `json:"code"`
	Unresolved int       `json:"unresolved"`
	Main       int       `json:"main_count"`
	Extra      int       `json:"extra_count"`
	Side       int       `json:"side_count"`
}

// Decode parses a deck code.
func (d *DeckFacade) Decode(_ context.Context, code string) (*DecodedDeck, error) {
	decoded, err := deckcode.Decode(code)
	if err != nil {
		return nil, invalid("Invalid deck code", err)
	}
	return newDecodedDeck(decoded.Deck), nil
}

func newDecodedDeck(dk deck.Deck) *DecodedDeck {
	return &DecodedDeck{
		Deck:       dk,
		Code:       deckcode.Encode(dk),
		Unresolved: dk.UnresolvedCount(),
		Main:       len(dk.Main),
		Extra:      len(dk.Extra),
		Side:       len(dk.Side),
	}
}

// Encode returns the canonical code of a deck.
func (d *DeckFacade) Encode(_ context.Context, dk deck.Deck) (string, error) {
	return deckcode.Encode(dk), nil
}

// SharedDeck is a share token and the code it carries.
type SharedDeck struct {
	Token string `json:"token"`
	Code  string `json:"code"`
}

// Share canonicalizes a deck code and compresses it into a share token.
func (d *DeckFacade) Share(_ context.Context, code string) (*SharedDeck, error) {
	token, canonical, err := deckcode.ShareDeck(code)
	switch {
	case errors.Is(err, deckcode.ErrShareTooLarge):
		return nil, invalid("Deck is too large to share", err)
	case err != nil:
		return nil, invalid("Invalid deck code", err)
	}
	return &SharedDeck{Token: token, Code: canonical}, nil
}

// Unshare expands a share token back into a decoded deck.
func (d *DeckFacade) Unshare(ctx context.Context, token string) (*DecodedDeck, error) {
	code, err := deckcode.DecodeShareToken(token)
	if err != nil {
		return nil, invalid("Invalid share token", err)
	}
	return d.Decode(ctx, code)
}

// Import parses a ydke code, a YDK deck list or a share token.
func (d *DeckFacade) Import(_ context.Context, input string) (*deckimport.ParseResult, error) {
	result, err := deckimport.Parse(input)
	if err != nil {
		return nil, invalid("Failed to import deck", err)
	}
	return result, nil
}

// BreakdownRequest selects the deck and overrides the default ruleset.
type BreakdownRequest struct {
	Code      string `json:"code"`
	PointCap  *int   `json:"point_cap,omitempty"`
	MainSort  string `json:"main_sort,omitempty"`
	ExtraSort string `json:"extra_sort,omitempty"`
	SideSort  string `json:"side_sort,omitempty"`
}

// BreakdownResponse is a deck annotated with Genesys points.
type BreakdownResponse struct {
	Code        string            `json:"code"`
	Deck        deck.Deck         `json:"deck"`
	Result      *breakdown.Result `json:"result"`
	PointSource string            `json:"point_source"`
	Incomplete  bool              `json:"incomplete"` // Some metadata could not be resolved
}

// Breakdown decodes the deck, resolves card metadata and aggregates it
// against the active point list.
func (d *DeckFacade) Breakdown(ctx context.Context, req *BreakdownRequest) (*BreakdownResponse, error) {
	if req == nil {
		return nil, invalid("Breakdown request is required", nil)
	}
	decoded, err := deckcode.Decode(req.Code)
	if err != nil {
		return nil, invalid("Invalid deck code", err)
	}

	opts, err := d.options(req)
	if err != nil {
		return nil, err
	}
	return d.aggregate(ctx, decoded.Deck, opts)
}

func (d *DeckFacade) options(req *BreakdownRequest) (breakdown.Options, error) {
	opts := d.services.Options
	if req.PointCap != nil {
		if *req.PointCap < 0 {
			return opts, invalid("Point cap cannot be negative", nil)
		}
		opts.PointCap = *req.PointCap
	}

	for _, o := range []struct {
		value string
		dst   *breakdown.SortMode
	}{
		{req.MainSort, &opts.MainSort},
		{req.ExtraSort, &opts.ExtraSort},
		{req.SideSort, &opts.SideSort},
	} {
		if o.value == "" {
			continue
		}
		mode, err := breakdown.ParseSortMode(o.value)
		if err != nil {
			return opts, invalid("Invalid sort mode", err)
		}
		*o.dst = mode
	}
	return opts, nil
}

func (d *DeckFacade) aggregate(ctx context.Context, dk deck.Deck, opts breakdown.Options) (*BreakdownResponse, error) {
	start := time.Now()
	table := cards.Table{}
	if d.services.Cards != nil {
		var ids []deck.CardID
		for _, z := range deck.AllZones {
			ids = append(ids, dk.Section(z)...)
		}
		found, err := d.services.Cards.Lookup(ctx, ids)
		d.services.Metrics.RecordLookup(time.Since(start), err)
		if err != nil {
			return nil, &AppError{Kind: KindUnavailable, Message: "Card lookup canceled", Err: err}
		}
		table = found
	}

	idx := d.services.index()
	result := breakdown.Aggregate(dk, table, idx, opts)
	d.services.Metrics.RecordBreakdown(time.Since(start))

	d.services.logger().Debug("deck aggregated",
		zap.Int("cards", dk.Len()),
		zap.Int("total_points", result.TotalPoints),
		zap.Int("missing_ids", result.MissingIDs),
	)

	incomplete := false
	for _, g := range result.Groups() {
		if g.MissingInfo && !g.ID.IsUnresolved() {
			incomplete = true
			break
		}
	}

	return &BreakdownResponse{
		Code:        deckcode.Encode(dk),
		Deck:        dk,
		Result:      result,
		PointSource: idx.Source(),
		Incomplete:  incomplete,
	}, nil
}

// ExportRequest selects the deck and the export format.
type ExportRequest struct {
	Code      string `json:"code"`
	Format    string `json:"format"`
	Name      string `json:"name,omitempty"`
	CreatedBy string `json:"created_by,omitempty"`
}

// Export writes the deck as YDK, ydke, a share token, a points report or a
// points chart.
func (d *DeckFacade) Export(ctx context.Context, req *ExportRequest) (*deckexport.DeckExport, error) {
	if req == nil {
		return nil, invalid("Export request is required", nil)
	}
	decoded, err := deckcode.Decode(req.Code)
	if err != nil {
		return nil, invalid("Invalid deck code", err)
	}

	format := deckexport.ExportFormat(req.Format)
	if format == "" {
		format = deckexport.FormatYDK
	}

	var result *breakdown.Result
	if format.NeedsBreakdown() {
		resp, err := d.aggregate(ctx, decoded.Deck, d.services.Options)
		if err != nil {
			return nil, err
		}
		result = resp.Result
	}

	out, err := deckexport.Export(decoded.Deck, result, &deckexport.ExportOptions{
		Format:    format,
		Name:      req.Name,
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		return nil, invalid("Failed to export deck", err)
	}
	return out, nil
}

// ResolveRequest replaces placeholder slots of one zone.
type ResolveRequest struct {
	Code  string         `json:"code"`
	Zone  deck.Zone      `json:"zone"`
	Picks []resolve.Pick `json:"picks"`
}

// ResolveResponse is the confirmed deck plus the picks that did not fit.
type ResolveResponse struct {
	resolve.Outcome
	Ignored int `json:"ignored"`
}

// Resolve fills the zone's placeholder slots with the requested picks, in
// order, and re-encodes the deck. Picks beyond the number of placeholders
// are ignored.
func (d *DeckFacade) Resolve(_ context.Context, req *ResolveRequest) (*ResolveResponse, error) {
	if req == nil {
		return nil, invalid("Resolve request is required", nil)
	}
	decoded, err := deckcode.Decode(req.Code)
	if err != nil {
		return nil, invalid("Invalid deck code", err)
	}

	session := resolve.Start(decoded.Deck, req.Zone)
	ignored := 0
	for _, p := range req.Picks {
		if p.Count < 0 {
			return nil, invalid("Pick count cannot be negative", fmt.Errorf("card %d: count %d", p.ID, p.Count))
		}
		ignored += p.Count - session.AddN(p.ID, p.Name, p.Count)
	}

	return &ResolveResponse{
		Outcome: session.Confirm(decoded.Deck),
		Ignored: ignored,
	}, nil
}
