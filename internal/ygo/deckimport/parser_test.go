package deckimport

import (
	"errors"
	"testing"

	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deckcode"
)

func TestParseYDK(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantMain    int
		wantExtra   int
		wantSide    int
		wantSkipped int
	}{
		{
			name: "standard ydk",
			input: `#created by Player
#main
89631139
89631139
14558127
#extra
63767246
!side
14558127`,
			wantMain:    3,
			wantExtra:   1,
			wantSide:    1,
			wantSkipped: 0,
		},
		{
			name: "case-insensitive headers and #side",
			input: `#MAIN
1
#Extra
2
#SIDE
3`,
			wantMain:  1,
			wantExtra: 1,
			wantSide:  1,
		},
		{
			name: "stray lines skipped",
			input: `89631139
#main
89631139
not-a-number
0
-5
# a comment
#ocg
12345 trailing text
#extra`,
			wantMain:    2,
			wantSkipped: 6,
		},
		{
			name: "windows line endings",
			input: "#main\r\n1\r\n2\r\n#extra\r\n!side\r\n3\r\n",
			wantMain: 2,
			wantSide: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseYDK(tt.input)
			if err != nil {
				t.Fatalf("ParseYDK() error = %v", err)
			}

			if len(result.Deck.Main) != tt.wantMain {
				t.Errorf("main cards = %d, want %d", len(result.Deck.Main), tt.wantMain)
			}
			if len(result.Deck.Extra) != tt.wantExtra {
				t.Errorf("extra cards = %d, want %d", len(result.Deck.Extra), tt.wantExtra)
			}
			if len(result.Deck.Side) != tt.wantSide {
				t.Errorf("side cards = %d, want %d", len(result.Deck.Side), tt.wantSide)
			}
			if result.Skipped != tt.wantSkipped {
				t.Errorf("skipped = %d, want %d", result.Skipped, tt.wantSkipped)
			}
			if result.Format != FormatYDK {
				t.Errorf("format = %q, want %q", result.Format, FormatYDK)
			}
		})
	}
}

func TestParseYDK_ReEncodes(t *testing.T) {
	result, err := ParseYDK("#main\n1\n#extra\n!side\n")
	if err != nil {
		t.Fatalf("ParseYDK() error = %v", err)
	}

	if result.Code != "ydke://AQAAAA==!!!" {
		t.Errorf("code = %q, want %q", result.Code, "ydke://AQAAAA==!!!")
	}

	decoded, err := deckcode.Decode(result.Code)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !decoded.Deck.Equal(result.Deck) {
		t.Errorf("decoded deck %+v does not match parsed deck %+v", decoded.Deck, result.Deck)
	}
}

func TestParseYDK_PreservesOrder(t *testing.T) {
	result, err := ParseYDK("#main\n3\n1\n3\n2\n")
	if err != nil {
		t.Fatalf("ParseYDK() error = %v", err)
	}

	want := []deck.CardID{3, 1, 3, 2}
	for i, id := range result.Deck.Main {
		if id != want[i] {
			t.Errorf("main[%d] = %d, want %d", i, id, want[i])
		}
	}
}

func TestParseYDK_Errors(t *testing.T) {
	if _, err := ParseYDK("   "); !errors.Is(err, deckcode.ErrNoDeck) {
		t.Errorf("blank input error = %v, want ErrNoDeck", err)
	}
	if _, err := ParseYDK("#created by nobody\n12345\n"); !errors.Is(err, ErrNoCards) {
		t.Errorf("headerless list error = %v, want ErrNoCards", err)
	}
}

func TestParseYDK_EmptySections(t *testing.T) {
	result, err := ParseYDK("#created by tester\n#main\n#extra\n!side\n")
	if err != nil {
		t.Fatalf("ParseYDK() error = %v", err)
	}
	if result.Code != "ydke://!!!" {
		t.Errorf("code = %q, want ydke://!!!", result.Code)
	}
	if result.Deck.Len() != 0 {
		t.Errorf("deck has %d cards, want 0", result.Deck.Len())
	}

	// Unusable lines under a header still leave an empty deck.
	result, err = ParseYDK("#main\nabc\n-5\n0\n")
	if err != nil {
		t.Fatalf("ParseYDK() error = %v", err)
	}
	if result.Code != "ydke://!!!" || result.Skipped != 3 {
		t.Errorf("got code %q skipped %d, want ydke://!!! and 3", result.Code, result.Skipped)
	}
}

func TestParse_DetectsFormat(t *testing.T) {
	token, err := deckcode.EncodeShareToken("ydke://AQAAAA==!!!")
	if err != nil {
		t.Fatalf("EncodeShareToken() error = %v", err)
	}

	tests := []struct {
		name       string
		input      string
		wantFormat Format
	}{
		{"deck code", "ydke://AQAAAA==!!!", FormatYDKE},
		{"deck code without scheme", "AQAAAA==!!!", FormatYDKE},
		{"ydk", "#main\n1\n", FormatYDK},
		{"share token", token, FormatShareToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if result.Format != tt.wantFormat {
				t.Errorf("format = %q, want %q", result.Format, tt.wantFormat)
			}
			if result.Code != "ydke://AQAAAA==!!!" {
				t.Errorf("code = %q", result.Code)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", deckcode.ErrNoDeck},
		{"incomplete link", "ydke://AQAAAA==", deckcode.ErrIncompleteLink},
		{"garbage token", "definitely not a deck", deckcode.ErrInvalidShareToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
