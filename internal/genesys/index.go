package genesys

import "time"

// Collision records two point list entries that normalize to the same name.
// The later entry wins.
type Collision struct {
	Key      string `json:"key"`
	Kept     Card   `json:"kept"`
	Replaced Card   `json:"replaced"`
}

// Index maps normalized card names to Genesys points. An Index is immutable
// after construction and safe for concurrent use.
type Index struct {
	points     map[string]int
	collisions []Collision
	source     string
	updated    time.Time
	size       int
}

// NewIndex builds an index from a point list. A nil list yields an empty index.
func NewIndex(list *PointList) *Index {
	idx := &Index{points: make(map[string]int)}
	if list == nil {
		return idx
	}

	idx.source = list.Source
	idx.updated = list.Updated
	idx.size = len(list.Cards)

	names := make(map[string]Card, len(list.Cards))
	for _, c := range list.Cards {
		key := NormalizeName(c.Name)
		if prev, ok := names[key]; ok {
			idx.collisions = append(idx.collisions, Collision{Key: key, Kept: c, Replaced: prev})
		}
		names[key] = c
		idx.points[key] = c.Points
	}
	return idx
}

// Lookup returns the points for a card name. The name is normalized first.
func (i *Index) Lookup(name string) (int, bool) {
	return i.LookupNormalized(NormalizeName(name))
}

// LookupNormalized looks up an already-normalized key.
func (i *Index) LookupNormalized(key string) (int, bool) {
	if i == nil {
		return 0, false
	}
	p, ok := i.points[key]
	return p, ok
}

// Len returns the number of distinct normalized names.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.points)
}

// Entries returns the number of entries in the source list, collisions included.
func (i *Index) Entries() int {
	if i == nil {
		return 0
	}
	return i.size
}

// Collisions lists entries that overwrote an earlier entry with the same
// normalized name, in list order.
func (i *Index) Collisions() []Collision {
	if i == nil {
		return nil
	}
	return append([]Collision(nil), i.collisions...)
}

// Source returns the URL the list was published at.
func (i *Index) Source() string {
	if i == nil {
		return ""
	}
	return i.source
}

// Updated returns the list's last-updated timestamp.
func (i *Index) Updated() time.Time {
	if i == nil {
		return time.Time{}
	}
	return i.updated
}
