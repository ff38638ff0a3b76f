// Package deckcode converts decks to and from the ydke:// deck code and the
// compressed share token used in links.
package deckcode

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
)

const (
	// Scheme prefixes every deck code.
	Scheme = "ydke://"

	// Separator joins the base64 sections.
	Separator = "!"

	cardWidth = 4
)

var (
	ErrNoDeck            = errors.New("no deck provided")
	ErrIncompleteLink    = errors.New("incomplete deck link")
	ErrSectionMisaligned = errors.New("section not byte-aligned")
	ErrInvalidBase64     = errors.New("invalid base64 in deck section")
)

// Decoded is the result of parsing a deck code.
type Decoded struct {
	Deck deck.Deck

	// Unresolved counts placeholder slots across all sections. Advisory only.
	Unresolved int
}

// Encode serializes a deck into a canonical ydke:// code. The code always
// carries three sections followed by a trailing separator.
func Encode(d deck.Deck) string {
	var sb strings.Builder
	sb.WriteString(Scheme)
	for _, z := range deck.AllZones {
		sb.WriteString(EncodeSection(d.Section(z)))
		sb.WriteString(Separator)
	}
	return sb.String()
}

// EncodeSection writes each ID as a 4-byte little-endian integer and
// base64-encodes the result with the padded standard alphabet.
func EncodeSection(ids []deck.CardID) string {
	if len(ids) == 0 {
		return ""
	}
	buf := make([]byte, len(ids)*cardWidth)
	for i, id := range ids {
		binary.LittleEndian.PutUint32(buf[i*cardWidth:], uint32(id))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// Decode parses a deck code. The scheme prefix is optional and matched
// case-insensitively; whitespace anywhere in the payload is ignored.
func Decode(code string) (*Decoded, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrNoDeck
	}

	payload := code
	if len(payload) >= len(Scheme) && strings.EqualFold(payload[:len(Scheme)], Scheme) {
		payload = payload[len(Scheme):]
	}
	payload = stripSpace(payload)

	parts := strings.Split(payload, Separator)
	if len(parts) < len(deck.AllZones) {
		return nil, fmt.Errorf("%w: expected %d sections, found %d", ErrIncompleteLink, len(deck.AllZones), len(parts))
	}

	var d deck.Deck
	for i, z := range deck.AllZones {
		ids, err := DecodeSection(parts[i])
		if err != nil {
			return nil, fmt.Errorf("%s section: %w", z, err)
		}
		d = d.WithSection(z, ids)
	}

	return &Decoded{
		Deck:       d,
		Unresolved: d.UnresolvedCount(),
	}, nil
}

// DecodeSection decodes one base64 section into IDs. Both the standard and
// URL-safe alphabets are accepted, with or without padding.
func DecodeSection(section string) ([]deck.CardID, error) {
	if section == "" {
		return []deck.CardID{}, nil
	}

	raw, err := base64.StdEncoding.DecodeString(normalizeBase64(section))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	if len(raw)%cardWidth != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrSectionMisaligned, len(raw))
	}

	ids := make([]deck.CardID, 0, len(raw)/cardWidth)
	for i := 0; i < len(raw); i += cardWidth {
		ids = append(ids, deck.CardID(binary.LittleEndian.Uint32(raw[i:])))
	}
	return ids, nil
}

// Canonicalize decodes and re-encodes a code.
func Canonicalize(code string) (string, error) {
	decoded, err := Decode(code)
	if err != nil {
		return "", err
	}
	return Encode(decoded.Deck), nil
}

// HasScheme reports whether s starts with the deck code scheme, ignoring
// case and leading whitespace.
func HasScheme(s string) bool {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	return len(s) >= len(Scheme) && strings.EqualFold(s[:len(Scheme)], Scheme)
}

func normalizeBase64(s string) string {
	s = strings.NewReplacer("-", "+", "_", "/").Replace(s)
	s = strings.TrimRight(s, "=")
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}
	return s
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
