package deckcode

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
)

func TestDecode_SingleCardScenario(t *testing.T) {
	decoded, err := Decode("ydke://AQAAAA==!!!")
	require.NoError(t, err)

	assert.Equal(t, []deck.CardID{1}, decoded.Deck.Main)
	assert.Empty(t, decoded.Deck.Extra)
	assert.Empty(t, decoded.Deck.Side)
	assert.Equal(t, 0, decoded.Unresolved)

	assert.Equal(t, "ydke://AQAAAA==!!!", Encode(decoded.Deck))
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		deck deck.Deck
	}{
		{name: "empty", deck: deck.Deck{}},
		{
			name: "duplicates preserved in order",
			deck: deck.Deck{Main: []deck.CardID{5, 5, 5, 7, 5}},
		},
		{
			name: "placeholders and large ids",
			deck: deck.Deck{
				Main:  []deck.CardID{deck.Unresolved, 89631139, 1<<31 + 7},
				Extra: []deck.CardID{0xFFFFFFFF, deck.Unresolved},
				Side:  []deck.CardID{14558127, 14558127},
			},
		},
		{
			name: "side only",
			deck: deck.Deck{Side: []deck.CardID{1, 2, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := Encode(tt.deck)
			require.True(t, strings.HasPrefix(code, Scheme))

			decoded, err := Decode(code)
			require.NoError(t, err)

			if !decoded.Deck.Equal(tt.deck) {
				t.Errorf("round trip mismatch (-want +got):\n%s", cmp.Diff(tt.deck, decoded.Deck))
			}
			assert.Equal(t, tt.deck.UnresolvedCount(), decoded.Unresolved)
		})
	}
}

func TestDecode_Lenient(t *testing.T) {
	want := []deck.CardID{1}

	tests := []struct {
		name  string
		input string
	}{
		{"uppercase scheme", "YDKE://AQAAAA==!!!"},
		{"missing scheme", "AQAAAA==!!!"},
		{"surrounding whitespace", "  ydke://AQAAAA==!!!\n"},
		{"embedded whitespace", "ydke://AQAA AA==\n!!!"},
		{"unpadded", "ydke://AQAAAA!!!"},
		{"no trailing separator", "ydke://AQAAAA==!!"},
		{"extra parts ignored", "ydke://AQAAAA==!!!garbage!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := Decode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, want, decoded.Deck.Main)
		})
	}
}

func TestDecode_URLSafeAlphabet(t *testing.T) {
	ids := []deck.CardID{0xFFFFFFFB, 0xFFFFFFFF}
	std := EncodeSection(ids)
	urlSafe := strings.NewReplacer("+", "-", "/", "_").Replace(strings.TrimRight(std, "="))
	require.NotEqual(t, std, urlSafe)

	decoded, err := Decode(Scheme + urlSafe + "!!!")
	require.NoError(t, err)
	assert.Equal(t, ids, decoded.Deck.Main)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", ErrNoDeck},
		{"whitespace only", " \t\n ", ErrNoDeck},
		{"scheme only", "ydke://", ErrIncompleteLink},
		{"two parts", "ydke://AQAAAA==!", ErrIncompleteLink},
		{"bad base64", "ydke://@@@@!!!", ErrInvalidBase64},
		{"misaligned extra", "ydke://!AQ==!!", ErrSectionMisaligned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestDecodeSection_AlignmentCheck(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 6, 7, 9, 11} {
		section := base64.StdEncoding.EncodeToString(make([]byte, n))

		_, err := DecodeSection(section)
		if !errors.Is(err, ErrSectionMisaligned) {
			t.Errorf("length %d: got %v, want ErrSectionMisaligned", n, err)
		}
	}
}

func TestDecode_ErrorNamesSection(t *testing.T) {
	_, err := Decode("ydke://!!AQ==!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "side section")
}

func TestDecode_CountsUnresolved(t *testing.T) {
	code := Encode(deck.Deck{
		Main:  []deck.CardID{0, 1, 0},
		Extra: []deck.CardID{0},
	})

	decoded, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(t, 3, decoded.Unresolved)
	assert.Equal(t, []deck.CardID{0, 1, 0}, decoded.Deck.Main, "placeholders must be kept")
}

func TestCanonicalize(t *testing.T) {
	got, err := Canonicalize(" ydke://AQAAAA!!")
	require.NoError(t, err)
	assert.Equal(t, "ydke://AQAAAA==!!!", got)
}

func TestHasScheme(t *testing.T) {
	assert.True(t, HasScheme("ydke://x"))
	assert.True(t, HasScheme("  Ydke://x"))
	assert.False(t, HasScheme("ydk://x"))
	assert.False(t, HasScheme("#main"))
}
