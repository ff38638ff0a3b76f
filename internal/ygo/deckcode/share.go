package deckcode

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ErrInvalidShareToken is returned when a share token cannot be decoded or
// decompressed.
var ErrInvalidShareToken = errors.New("invalid share token")

// ErrShareTooLarge is returned when a deck code exceeds MaxShareSize.
var ErrShareTooLarge = errors.New("deck code too large to share")

// MaxShareSize bounds the deck code carried by a share token, on both the
// encoding and decoding side. A full deck code is well under 2 KiB.
const MaxShareSize = 64 << 10

// EncodeShareToken gzips a deck code and encodes it with the unpadded
// URL-safe base64 alphabet. Codes longer than MaxShareSize are rejected so
// every token produced decodes again.
func EncodeShareToken(code string) (string, error) {
	if len(code) > MaxShareSize {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrShareTooLarge, len(code), MaxShareSize)
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return "", fmt.Errorf("create gzip writer: %w", err)
	}
	if _, err := zw.Write([]byte(code)); err != nil {
		return "", fmt.Errorf("compress deck code: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("flush gzip writer: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeShareToken reverses EncodeShareToken and returns the original deck
// code text. Padding characters in the token are tolerated.
func DecodeShareToken(token string) (string, error) {
	token = strings.TrimRight(stripSpace(token), "=")
	if token == "" {
		return "", ErrNoDeck
	}

	compressed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidShareToken, err)
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidShareToken, err)
	}
	defer func() { _ = zr.Close() }()

	text, err := io.ReadAll(io.LimitReader(zr, MaxShareSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidShareToken, err)
	}
	if len(text) > MaxShareSize {
		return "", fmt.Errorf("%w: decompressed payload too large", ErrInvalidShareToken)
	}
	if !utf8.Valid(text) {
		return "", fmt.Errorf("%w: payload is not text", ErrInvalidShareToken)
	}
	return string(text), nil
}

// ShareDeck canonicalizes a deck code and returns its share token together
// with the canonical code it carries.
func ShareDeck(code string) (token, canonical string, err error) {
	canonical, err = Canonicalize(code)
	if err != nil {
		return "", "", err
	}
	token, err = EncodeShareToken(canonical)
	if err != nil {
		return "", "", err
	}
	return token, canonical, nil
}
