package genesys

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lower-cases", "Pot of Greed", "pot of greed"},
		{"trims", "  Raigeki \n", "raigeki"},
		{"collapses whitespace", "Ash   Blossom\t&  Joyous Spring", "ash blossom & joyous spring"},
		{"repairs mojibake apostrophe", "Called by the Grave â€™s", "called by the grave 's"},
		{"repairs mojibake inside word", "Maxx â€œCâ€\u009d Heavenâ€™s", "maxx â€œcâ€\u009d heaven's"},
		{"keeps plain apostrophe", "Kuriboh's Fluff", "kuriboh's fluff"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeName_Idempotent(t *testing.T) {
	inputs := []string{
		"Pot of Greed",
		"  MAXX   \"C\"  ",
		"Heavenâ€™s Gate",
		"ÂÂ€™€™",
		"a  b",
		"\t\n",
		"Ａｂｃ",
		"İstanbul",
	}

	for _, in := range inputs {
		once := NormalizeName(in)
		if twice := NormalizeName(once); twice != once {
			t.Errorf("NormalizeName not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Dark Magician (Alternate Art)", "Dark Magician"},
		{"Blue-Eyes White Dragon  ( Anime )  ", "Blue-Eyes White Dragon"},
		{"Pot   of Greed", "Pot of Greed"},
		{"(Only Parens)", "(Only Parens)"},
		{"Card (A) Middle", "Card (A) Middle"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := DisplayName(tt.input); got != tt.want {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
