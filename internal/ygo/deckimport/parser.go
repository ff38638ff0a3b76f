package deckimport

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deckcode"
)

// Format identifies the input format a deck was parsed from.
type Format string

const (
	FormatYDKE       Format = "ydke"  // ydke:// deck code
	FormatYDK        Format = "ydk"   // plain-text .ydk deck list
	FormatShareToken Format = "share" // compressed share token
)

// ErrNoCards is returned when a YDK deck list has no section header and so
// no usable card lines.
var ErrNoCards = errors.New("no cards found in deck list")

// ParseResult contains the result of parsing a deck import.
type ParseResult struct {
	Deck   deck.Deck `json:"deck"`
	Code   string    `json:"code"` // canonical ydke:// code
	Format Format    `json:"format"`

	// Skipped counts YDK lines that were ignored: comments, unknown headers,
	// non-numeric or non-positive IDs, and cards before the first header.
	Skipped int `json:"skipped"`
}

// Parse accepts a ydke:// code, a YDK deck list or a share token and
// returns the deck with its canonical code.
func Parse(input string) (*ParseResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, deckcode.ErrNoDeck
	}

	switch {
	case deckcode.HasScheme(input):
		return fromCode(input, FormatYDKE)
	case looksLikeYDK(input):
		return ParseYDK(input)
	case strings.Contains(input, deckcode.Separator):
		// A ydke payload pasted without its scheme.
		return fromCode(input, FormatYDKE)
	default:
		code, err := deckcode.DecodeShareToken(input)
		if err != nil {
			return nil, err
		}
		return fromCode(code, FormatShareToken)
	}
}

func fromCode(code string, format Format) (*ParseResult, error) {
	decoded, err := deckcode.Decode(code)
	if err != nil {
		return nil, err
	}
	return &ParseResult{
		Deck:   decoded.Deck,
		Code:   deckcode.Encode(decoded.Deck),
		Format: format,
	}, nil
}

// ParseYDK parses a YDK deck list.
// Format example:
//
//	#created by ...
//	#main
//	89631139
//	89631139
//	#extra
//	63767246
//	!side
//	14558127
//
// Header lines are matched case-insensitively and "#side" is accepted as
// well as "!side".
func ParseYDK(input string) (*ParseResult, error) {
	if strings.TrimSpace(input) == "" {
		return nil, deckcode.ErrNoDeck
	}

	result := &ParseResult{Format: FormatYDK}
	sections := map[deck.Zone][]deck.CardID{}
	var current *deck.Zone

	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if zone, ok := sectionHeader(line); ok {
			current = &zone
			continue
		}

		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") || current == nil {
			result.Skipped++
			continue
		}

		id, ok := parseID(line)
		if !ok {
			result.Skipped++
			continue
		}
		sections[*current] = append(sections[*current], id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read deck list: %w", err)
	}

	d := deck.Deck{
		Main:  orEmpty(sections[deck.Main]),
		Extra: orEmpty(sections[deck.Extra]),
		Side:  orEmpty(sections[deck.Side]),
	}
	// Headers with no cards under them are an empty deck, not an error.
	if current == nil {
		return nil, ErrNoCards
	}

	result.Deck = d
	result.Code = deckcode.Encode(d)
	return result, nil
}

func sectionHeader(line string) (deck.Zone, bool) {
	switch strings.ToLower(line) {
	case "#main":
		return deck.Main, true
	case "#extra":
		return deck.Extra, true
	case "!side", "#side":
		return deck.Side, true
	default:
		return 0, false
	}
}

// parseID reads the leading decimal passcode of a line. Zero, negative and
// non-numeric values are rejected.
func parseID(line string) (deck.CardID, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return deck.CardID(n), true
}

func looksLikeYDK(input string) bool {
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		if _, ok := sectionHeader(strings.TrimSpace(scanner.Text())); ok {
			return true
		}
	}
	return false
}

func orEmpty(ids []deck.CardID) []deck.CardID {
	if ids == nil {
		return []deck.CardID{}
	}
	return ids
}
