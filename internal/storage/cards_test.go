package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/genesys-companion/internal/ygo/cards"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
)

func testCards() []*cards.Metadata {
	return []*cards.Metadata{
		{ID: 55144522, Name: "Pot of Greed", Type: "Spell Card", FrameType: "spell", Race: "Normal", Description: "Draw 2 cards."},
		{ID: 1861629, Name: "Decode Talker", Type: "Link Monster", FrameType: "link", Race: "Cyberse", LinkValue: 3},
		{ID: 89631139, Name: "Blue-Eyes White Dragon", Type: "Normal Monster", FrameType: "normal", Race: "Dragon", Level: 8},
	}
}

func TestSaveAndGetCards(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	require.NoError(t, service.SaveCards(ctx, testCards()))

	got, err := service.GetCards(ctx, []deck.CardID{55144522, 0, 1861629, 55144522, 424242})
	require.NoError(t, err)
	require.Len(t, got, 2)

	table := cards.Table{}
	for _, c := range got {
		table[c.ID] = c.Metadata
		assert.False(t, c.FetchedAt.Before(before), "fetched_at should be recent")
	}

	pot, ok := table.Get(55144522)
	require.True(t, ok)
	assert.Equal(t, "Pot of Greed", pot.Name)
	assert.Equal(t, "Normal", pot.Race)
	assert.Equal(t, "Draw 2 cards.", pot.Description)

	talker, ok := table.Get(1861629)
	require.True(t, ok)
	assert.Equal(t, 3, talker.LinkValue)
	assert.Equal(t, "link", talker.FrameType)
}

func TestSaveCards_Upserts(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, service.SaveCards(ctx, testCards()))
	require.NoError(t, service.SaveCards(ctx, []*cards.Metadata{
		{ID: 55144522, Name: "Pot of Greed", Type: "Spell Card", Race: "Normal", Image: "https://images.example/pot.jpg"},
	}))

	n, err := service.CountCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := service.GetCards(ctx, []deck.CardID{55144522})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://images.example/pot.jpg", got[0].Image)
}

func TestSaveCards_SkipsPlaceholdersAndNameless(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, service.SaveCards(ctx, []*cards.Metadata{
		nil,
		{ID: 0, Name: "Placeholder"},
		{ID: 7, Name: "   "},
	}))

	n, err := service.CountCards(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetCards_Empty(t *testing.T) {
	service := setupTestService(t)

	got, err := service.GetCards(context.Background(), []deck.CardID{0, 0})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchCardsByName(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	require.NoError(t, service.SaveCards(ctx, append(testCards(),
		&cards.Metadata{ID: 12345, Name: "Heavenâ€™s Gate", Type: "Trap Card"},
		&cards.Metadata{ID: 100, Name: "100% Strength", Type: "Spell Card"},
	)))

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"case insensitive", "POT", []string{"Pot of Greed"}},
		{"collapses whitespace", "  decode   talker ", []string{"Decode Talker"}},
		{"substring", "e", []string{"Blue-Eyes White Dragon", "Decode Talker", "Heavenâ€™s Gate", "Pot of Greed", "100% Strength"}},
		{"mojibake folded", "heaven's", []string{"Heavenâ€™s Gate"}},
		{"literal percent", "100%", []string{"100% Strength"}},
		{"no match", "exodia", nil},
		{"empty query", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.SearchCardsByName(ctx, tt.query, 0)
			require.NoError(t, err)

			var names []string
			for _, m := range got {
				names = append(names, m.Name)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}
}

func TestSearchCardsByName_Limit(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	require.NoError(t, service.SaveCards(ctx, testCards()))

	got, err := service.SearchCardsByName(ctx, "e", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
