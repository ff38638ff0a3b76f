package facade

import (
	"context"
	"strings"
	"time"

	"github.com/ramonehamilton/genesys-companion/internal/genesys"
)

// PointsFacade exposes the active point list.
type PointsFacade struct {
	services *Services
}

// NewPointsFacade creates a new PointsFacade with the given services.
func NewPointsFacade(services *Services) *PointsFacade {
	return &PointsFacade{services: services}
}

// PointsInfo summarizes the active point list.
type PointsInfo struct {
	Source     string              `json:"source"`
	Updated    *time.Time          `json:"updated,omitempty"`
	Entries    int                 `json:"entries"`
	Cards      int                 `json:"cards"` // Distinct normalized names
	PointCap   int                 `json:"point_cap"`
	Collisions []genesys.Collision `json:"collisions"`
	Loaded     bool                `json:"loaded"`
}

// Info describes the active point list.
func (p *PointsFacade) Info(_ context.Context) *PointsInfo {
	idx := p.services.index()
	info := &PointsInfo{
		Source:     idx.Source(),
		Entries:    idx.Entries(),
		Cards:      idx.Len(),
		PointCap:   p.services.Options.PointCap,
		Collisions: idx.Collisions(),
		Loaded:     idx != nil,
	}
	if info.Collisions == nil {
		info.Collisions = []genesys.Collision{}
	}
	if updated := idx.Updated(); !updated.IsZero() {
		info.Updated = &updated
	}
	return info
}

// PointLookup is the point cost of one card name.
type PointLookup struct {
	Name   string `json:"name"`
	Key    string `json:"key"`
	Points int    `json:"points"`
	Listed bool   `json:"listed"`
}

// Lookup returns the points of a card by name. Unlisted cards cost 0.
func (p *PointsFacade) Lookup(_ context.Context, name string) (*PointLookup, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid("Card name is required", nil)
	}
	key := genesys.NormalizeName(genesys.DisplayName(name))
	points, listed := p.services.index().LookupNormalized(key)
	return &PointLookup{Name: name, Key: key, Points: points, Listed: listed}, nil
}
