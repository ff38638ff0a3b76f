package breakdown

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortMode selects the ordering of groups within a zone.
type SortMode int

const (
	// SortStructural orders monsters, spells, traps, then unresolved cards,
	// each by subtype bucket, then name, then list position.
	SortStructural SortMode = iota

	// SortPoints puts the most expensive groups first and breaks ties
	// structurally.
	SortPoints
)

func (m SortMode) String() string {
	switch m {
	case SortPoints:
		return "points"
	default:
		return "structural"
	}
}

// ParseSortMode parses "points" or "structural". An empty string is
// structural.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "structural", "type":
		return SortStructural, nil
	case "points":
		return SortPoints, nil
	default:
		return SortStructural, fmt.Errorf("unknown sort mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m SortMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *SortMode) UnmarshalText(text []byte) error {
	parsed, err := ParseSortMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func sortGroups(groups []Group, mode SortMode) {
	if mode == SortPoints {
		slices.SortFunc(groups, comparePoints)
		return
	}
	slices.SortFunc(groups, compareStructural)
}

func comparePoints(a, b Group) int {
	if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
		return c
	}
	return compareStructural(a, b)
}

// compareStructural is a total order: FirstIndex is unique within a zone.
func compareStructural(a, b Group) int {
	if c := cmp.Compare(a.Category, b.Category); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Bucket, b.Bucket); c != 0 {
		return c
	}
	if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.FirstIndex, b.FirstIndex)
}
