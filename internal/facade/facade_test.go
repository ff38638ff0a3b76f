package facade

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/genesys-companion/internal/genesys"
	"github.com/ramonehamilton/genesys-companion/internal/genesys/breakdown"
	"github.com/ramonehamilton/genesys-companion/internal/genesys/resolve"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/cards"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deckcode"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deckexport"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deckimport"
)

type fakeLookup struct {
	table     cards.Table
	err       error
	searchErr error
	lookedUp  []deck.CardID
}

func (f *fakeLookup) Lookup(_ context.Context, ids []deck.CardID) (cards.Table, error) {
	f.lookedUp = append(f.lookedUp, ids...)
	out := cards.Table{}
	for _, id := range ids {
		if m, ok := f.table.Get(id); ok {
			out[id] = m
		}
	}
	return out, f.err
}

func (f *fakeLookup) Search(_ context.Context, name string) ([]*cards.Metadata, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []*cards.Metadata
	for _, m := range f.table {
		if strings.Contains(strings.ToLower(m.Name), strings.ToLower(name)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func testServices() (*Services, *fakeLookup) {
	lookup := &fakeLookup{table: cards.NewTable([]*cards.Metadata{
		{ID: 1, Name: "Card A", Type: "Effect Monster"},
		{ID: 2, Name: "Card B", Type: "Spell Card", Race: "Normal"},
		{ID: 3, Name: "Card A", Type: "Effect Monster"},
	})}
	idx := genesys.NewIndex(&genesys.PointList{
		Source: "https://example.com/points",
		Cards: []genesys.Card{
			{Name: "Card A", Points: 5},
			{Name: "Card B", Points: 3},
			{Name: "card  b", Points: 7},
		},
	})
	return &Services{
		Points:  NewStaticPoints(idx),
		Cards:   lookup,
		Options: breakdown.Options{PointCap: 20},
	}, lookup
}

func encode(d deck.Deck) string {
	return deckcode.Encode(d)
}

func TestDeckFacade_DecodeEncode(t *testing.T) {
	services, _ := testServices()
	f := NewDeckFacade(services)
	ctx := context.Background()

	got, err := f.Decode(ctx, "YDKE://AQAAAA==!!!")
	require.NoError(t, err)
	assert.Equal(t, "ydke://AQAAAA==!!!", got.Code)
	assert.Equal(t, 1, got.Main)
	assert.Zero(t, got.Unresolved)

	code, err := f.Encode(ctx, got.Deck)
	require.NoError(t, err)
	assert.Equal(t, got.Code, code)

	_, err = f.Decode(ctx, "ydke://AQAAAA==")
	require.Error(t, err)
	assert.Equal(t, KindInvalid, KindOf(err))
	assert.ErrorIs(t, err, deckcode.ErrIncompleteLink)
}

func TestDeckFacade_ShareUnshare(t *testing.T) {
	services, _ := testServices()
	f := NewDeckFacade(services)
	ctx := context.Background()

	shared, err := f.Share(ctx, " ydke://AQAAAA==!!! ")
	require.NoError(t, err)
	assert.Equal(t, "ydke://AQAAAA==!!!", shared.Code)

	back, err := f.Unshare(ctx, shared.Token)
	require.NoError(t, err)
	assert.Equal(t, shared.Code, back.Code)

	_, err = f.Unshare(ctx, "not-a-token")
	assert.Equal(t, KindInvalid, KindOf(err))
	assert.ErrorIs(t, err, deckcode.ErrInvalidShareToken)
}

func TestDeckFacade_ShareTooLarge(t *testing.T) {
	services, _ := testServices()
	f := NewDeckFacade(services)

	main := make([]deck.CardID, 20000)
	for i := range main {
		main[i] = 1
	}
	_, err := f.Share(context.Background(), encode(deck.Deck{Main: main}))
	assert.Equal(t, KindInvalid, KindOf(err))
	assert.ErrorIs(t, err, deckcode.ErrShareTooLarge)
}

func TestDeckFacade_Import(t *testing.T) {
	services, _ := testServices()
	f := NewDeckFacade(services)

	result, err := f.Import(context.Background(), "#main\n1\n1\n#extra\n!side\n2\n")
	require.NoError(t, err)
	assert.Equal(t, deckimport.FormatYDK, result.Format)
	assert.Equal(t, encode(deck.Deck{Main: []deck.CardID{1, 1}, Extra: []deck.CardID{}, Side: []deck.CardID{2}}), result.Code)

	_, err = f.Import(context.Background(), "")
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestDeckFacade_Breakdown(t *testing.T) {
	services, lookup := testServices()
	f := NewDeckFacade(services)

	code := encode(deck.Deck{Main: []deck.CardID{1, 1, 3, 2, 0, 9}})
	resp, err := f.Breakdown(context.Background(), &BreakdownRequest{Code: code})
	require.NoError(t, err)

	// Card A (IDs 1 and 3) merges into one group: 3 x 5.
	// Card B: later duplicate entry wins, 7 points.
	assert.Equal(t, 22, resp.Result.TotalPoints)
	assert.True(t, resp.Result.OverCap)
	assert.Equal(t, 1, resp.Result.MissingIDs)
	assert.True(t, resp.Incomplete, "card 9 has no metadata")
	assert.Equal(t, "https://example.com/points", resp.PointSource)
	assert.NotContains(t, lookup.lookedUp, deck.CardID(0))

	var cardA *breakdown.Group
	for _, g := range resp.Result.Main.Groups {
		if g.Name == "Card A" {
			g := g
			cardA = &g
		}
	}
	require.NotNil(t, cardA)
	assert.Equal(t, 3, cardA.Count)
	assert.Equal(t, []deck.CardID{1, 3}, cardA.IDs)
}

func TestDeckFacade_BreakdownOverrides(t *testing.T) {
	services, _ := testServices()
	f := NewDeckFacade(services)
	code := encode(deck.Deck{Main: []deck.CardID{2, 1}})

	zero := 0
	resp, err := f.Breakdown(context.Background(), &BreakdownRequest{Code: code, PointCap: &zero, MainSort: "points"})
	require.NoError(t, err)
	assert.False(t, resp.Result.OverCap, "zero cap disables the check")
	assert.Equal(t, "Card B", resp.Result.Main.Groups[0].Name)

	negative := -1
	_, err = f.Breakdown(context.Background(), &BreakdownRequest{Code: code, PointCap: &negative})
	assert.Equal(t, KindInvalid, KindOf(err))

	_, err = f.Breakdown(context.Background(), &BreakdownRequest{Code: code, SideSort: "random"})
	assert.Equal(t, KindInvalid, KindOf(err))

	_, err = f.Breakdown(context.Background(), nil)
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestDeckFacade_BreakdownWithoutCollaborators(t *testing.T) {
	f := NewDeckFacade(&Services{})

	resp, err := f.Breakdown(context.Background(), &BreakdownRequest{Code: encode(deck.Deck{Main: []deck.CardID{1, 0}})})
	require.NoError(t, err)
	assert.Zero(t, resp.Result.TotalPoints)
	assert.Equal(t, 2, resp.Result.UnknownCards)
	assert.True(t, resp.Incomplete)
}

func TestDeckFacade_BreakdownCanceled(t *testing.T) {
	services, lookup := testServices()
	lookup.err = context.Canceled
	f := NewDeckFacade(services)

	_, err := f.Breakdown(context.Background(), &BreakdownRequest{Code: encode(deck.Deck{Main: []deck.CardID{1}})})
	require.Error(t, err)
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeckFacade_Export(t *testing.T) {
	services, _ := testServices()
	f := NewDeckFacade(services)
	ctx := context.Background()
	code := encode(deck.Deck{Main: []deck.CardID{1, 0}})

	ydk, err := f.Export(ctx, &ExportRequest{Code: code})
	require.NoError(t, err)
	assert.Equal(t, deckexport.FormatYDK, ydk.Format)
	assert.Equal(t, 1, ydk.Omitted)

	report, err := f.Export(ctx, &ExportRequest{Code: code, Format: "breakdown"})
	require.NoError(t, err)
	assert.Contains(t, report.Content, "1x Card A (5) = 5")

	_, err = f.Export(ctx, &ExportRequest{Code: code, Format: "arena"})
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestDeckFacade_Resolve(t *testing.T) {
	services, _ := testServices()
	f := NewDeckFacade(services)
	code := encode(deck.Deck{Main: []deck.CardID{0, 5, 0}, Side: []deck.CardID{0}})

	resp, err := f.Resolve(context.Background(), &ResolveRequest{
		Code:  code,
		Zone:  deck.Main,
		Picks: []resolve.Pick{{ID: 7, Count: 1}, {ID: 8, Count: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, []deck.CardID{7, 5, 8}, resp.Deck.Main)
	assert.Equal(t, []deck.CardID{0}, resp.Deck.Side)
	assert.Equal(t, 2, resp.Applied)
	assert.Equal(t, 1, resp.Ignored)
	assert.True(t, resp.Changed)
	assert.Equal(t, encode(resp.Deck), resp.Code)
}

func TestDeckFacade_ResolveHugeCount(t *testing.T) {
	services, _ := testServices()
	f := NewDeckFacade(services)

	done := make(chan struct{})
	var (
		resp *ResolveResponse
		err  error
	)
	go func() {
		defer close(done)
		resp, err = f.Resolve(context.Background(), &ResolveRequest{
			Code:  encode(deck.Deck{Main: []deck.CardID{0, 1}}),
			Zone:  deck.Main,
			Picks: []resolve.Pick{{ID: 5, Count: 1 << 40}, {ID: 6, Count: 1 << 40}},
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Resolve did not return for a huge pick count")
	}
	require.NoError(t, err)
	assert.Equal(t, []deck.CardID{5, 1}, resp.Deck.Main)
	assert.Equal(t, 1, resp.Applied)
	assert.Equal(t, 2*(1<<40)-1, resp.Ignored)
}

func TestDeckFacade_ResolveNoPlaceholders(t *testing.T) {
	services, _ := testServices()
	f := NewDeckFacade(services)
	code := encode(deck.Deck{Main: []deck.CardID{5}})

	resp, err := f.Resolve(context.Background(), &ResolveRequest{
		Code:  code,
		Zone:  deck.Main,
		Picks: []resolve.Pick{{ID: 7, Count: 1}},
	})
	require.NoError(t, err)
	assert.False(t, resp.Changed)
	assert.Equal(t, code, resp.Code)
	assert.Equal(t, 1, resp.Ignored)

	_, err = f.Resolve(context.Background(), &ResolveRequest{Code: code, Picks: []resolve.Pick{{ID: 7, Count: -1}}})
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestPointsFacade(t *testing.T) {
	services, _ := testServices()
	f := NewPointsFacade(services)
	ctx := context.Background()

	info := f.Info(ctx)
	assert.True(t, info.Loaded)
	assert.Equal(t, 3, info.Entries)
	assert.Equal(t, 2, info.Cards)
	assert.Equal(t, 20, info.PointCap)
	require.Len(t, info.Collisions, 1)
	assert.Equal(t, "card b", info.Collisions[0].Key)
	assert.Nil(t, info.Updated)

	got, err := f.Lookup(ctx, "  CARD   a ")
	require.NoError(t, err)
	assert.True(t, got.Listed)
	assert.Equal(t, 5, got.Points)

	missing, err := f.Lookup(ctx, "Pot of Greed")
	require.NoError(t, err)
	assert.False(t, missing.Listed)
	assert.Zero(t, missing.Points)

	_, err = f.Lookup(ctx, " ")
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestPointsFacade_NoList(t *testing.T) {
	f := NewPointsFacade(&Services{})
	info := f.Info(context.Background())
	assert.False(t, info.Loaded)
	assert.Empty(t, info.Collisions)
}

func TestCardFacade_Search(t *testing.T) {
	services, lookup := testServices()
	f := NewCardFacade(services)
	ctx := context.Background()

	found, err := f.Search(ctx, "card b")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, deck.CardID(2), found[0].ID)

	none, err := f.Search(ctx, "zzz")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = f.Search(ctx, "")
	assert.Equal(t, KindInvalid, KindOf(err))

	lookup.searchErr = errors.New("down")
	_, err = f.Search(ctx, "card")
	assert.Equal(t, KindUnavailable, KindOf(err))

	_, err = NewCardFacade(&Services{}).Search(ctx, "card")
	assert.Equal(t, KindUnavailable, KindOf(err))
}

func TestCardFacade_Bulk(t *testing.T) {
	services, _ := testServices()
	f := NewCardFacade(services)

	result, err := f.Bulk(context.Background(), []deck.CardID{3, 0, 1, 42, 1})
	require.NoError(t, err)
	require.Len(t, result.Cards, 2)
	assert.Equal(t, deck.CardID(1), result.Cards[0].ID)
	assert.Equal(t, deck.CardID(3), result.Cards[1].ID)
	assert.Equal(t, []deck.CardID{42}, result.Missing)

	_, err = f.Bulk(context.Background(), make([]deck.CardID, maxBulkIDs+1))
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindNotFound, KindOf(&AppError{Kind: KindNotFound}))

	wrapped := &AppError{Message: "outer", Err: deckcode.ErrNoDeck}
	assert.ErrorIs(t, wrapped, deckcode.ErrNoDeck)
	assert.Equal(t, "outer: no deck provided", wrapped.Error())
}
