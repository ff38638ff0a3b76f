package websocket

import (
	"time"

	"go.uber.org/zap"

	"github.com/ramonehamilton/genesys-companion/internal/genesys"
)

// EventPointsUpdated is broadcast after the point list is reloaded.
const EventPointsUpdated = "points:updated"

// PointsUpdate is the payload of EventPointsUpdated.
type PointsUpdate struct {
	Source     string              `json:"source"`
	Updated    *time.Time          `json:"updated,omitempty"`
	Entries    int                 `json:"entries"`
	Cards      int                 `json:"cards"`
	Collisions []genesys.Collision `json:"collisions"`
}

// PointsObserver forwards point list reloads to WebSocket clients.
type PointsObserver struct {
	hub    *Hub
	logger *zap.Logger
}

// NewPointsObserver creates an observer broadcasting on hub.
func NewPointsObserver(hub *Hub) *PointsObserver {
	return &PointsObserver{hub: hub, logger: hub.logger}
}

// OnReload matches genesys.ReloadFunc.
func (o *PointsObserver) OnReload(_ *genesys.PointList, idx *genesys.Index) {
	update := PointsUpdate{
		Source:     idx.Source(),
		Entries:    idx.Entries(),
		Cards:      idx.Len(),
		Collisions: idx.Collisions(),
	}
	if update.Collisions == nil {
		update.Collisions = []genesys.Collision{}
	}
	if updated := idx.Updated(); !updated.IsZero() {
		update.Updated = &updated
	}

	if !o.hub.BroadcastEvent(Event{Type: EventPointsUpdated, Data: update}) {
		o.logger.Debug("hub stopped, point list update not broadcast")
		return
	}
	o.logger.Info("point list update broadcast",
		zap.String("source", update.Source),
		zap.Int("entries", update.Entries),
		zap.Int("clients", o.hub.ClientCount()),
	)
}
