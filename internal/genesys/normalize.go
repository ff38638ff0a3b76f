// Package genesys holds the Genesys point list, the name normalization used
// to join deck cards against it, and the point table index.
package genesys

import (
	"regexp"
	"strings"
)

// mojibakeApostrophe is U+2019 encoded as UTF-8 and then mis-decoded as
// Windows-1252, as it appears in the published point list.
const mojibakeApostrophe = "â€™"

var (
	trailingParens  = regexp.MustCompile(`\s*\([^()]*\)\s*$`)
	apostropheFixer = strings.NewReplacer(mojibakeApostrophe, "'")
)

// NormalizeName returns the join key for a card name: trimmed, internal
// whitespace collapsed, lower-cased, with the mis-encoded apostrophe repaired.
// NormalizeName is idempotent.
func NormalizeName(name string) string {
	name = strings.ToLower(collapseSpace(name))
	return apostropheFixer.Replace(name)
}

// DisplayName simplifies a card database name for display: a trailing
// parenthetical such as an alternate-art marker is dropped and whitespace is
// collapsed.
func DisplayName(name string) string {
	name = strings.TrimSpace(name)
	if stripped := trailingParens.ReplaceAllString(name, ""); stripped != "" {
		name = stripped
	}
	return collapseSpace(name)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
