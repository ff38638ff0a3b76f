package genesys

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Card is one entry of the published point list.
type Card struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// PointList is the externally refreshed Genesys point list. It is read-only
// input; nothing in this module writes the source file.
type PointList struct {
	Source  string    `json:"source"`
	Updated time.Time `json:"updated"`
	Cards   []Card    `json:"cards"`
}

// ParsePointList decodes a point list document.
func ParsePointList(r io.Reader) (*PointList, error) {
	var list PointList
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode point list: %w", err)
	}
	for i, c := range list.Cards {
		if c.Points < 0 {
			return nil, fmt.Errorf("point list entry %d (%q): negative points %d", i, c.Name, c.Points)
		}
	}
	return &list, nil
}

// LoadPointList reads a point list document from disk.
func LoadPointList(path string) (*PointList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open point list: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParsePointList(f)
}
