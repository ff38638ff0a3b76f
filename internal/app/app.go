// Package app wires configuration, storage, the point list and the card
// lookup into the facades shared by the API server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ramonehamilton/genesys-companion/internal/config"
	"github.com/ramonehamilton/genesys-companion/internal/facade"
	"github.com/ramonehamilton/genesys-companion/internal/genesys"
	"github.com/ramonehamilton/genesys-companion/internal/metrics"
	"github.com/ramonehamilton/genesys-companion/internal/storage"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/cardlookup"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/cards/ygoprodeck"
)

const snapshotTimeout = 10 * time.Second

// App holds the long-lived services of one process.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	storage *storage.Service
	watcher *genesys.Watcher
	lookup  *cardlookup.Service
	metrics *metrics.Service

	Services *facade.Services
	Deck     *facade.DeckFacade
	Points   *facade.PointsFacade
	Cards    *facade.CardFacade
}

// New builds the application from cfg. A database that cannot be opened or
// a point list file that cannot be read degrade the app rather than fail it:
// without storage there is no metadata cache, and without the file the last
// saved snapshot is served, or no list at all.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts, err := cfg.BreakdownOptions()
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, logger: logger, metrics: metrics.New()}

	if svc, err := storage.OpenService(cfg.Storage.Path); err != nil {
		logger.Warn("Storage unavailable, card metadata will not be cached",
			zap.String("path", cfg.Storage.Path), zap.Error(err))
	} else {
		a.storage = svc
	}

	lookup, err := a.newLookup()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.lookup = lookup

	a.Services = &facade.Services{
		Points:  a.loadPoints(ctx),
		Cards:   lookup,
		Options: opts,
		Metrics: a.metrics,
		Logger:  logger,
	}
	a.Deck = facade.NewDeckFacade(a.Services)
	a.Points = facade.NewPointsFacade(a.Services)
	a.Cards = facade.NewCardFacade(a.Services)
	return a, nil
}

func (a *App) newLookup() (*cardlookup.Service, error) {
	stale, err := a.cfg.StaleThreshold()
	if err != nil {
		return nil, fmt.Errorf("invalid stale threshold: %w", err)
	}

	var cache cardlookup.Cache
	if a.storage != nil {
		cache = a.storage
	}

	var remote cardlookup.Remote
	if !a.cfg.Cards.Offline {
		timeout, err := a.cfg.CardTimeout()
		if err != nil {
			return nil, fmt.Errorf("invalid card timeout: %w", err)
		}
		remote = ygoprodeck.NewClientWithConfig(ygoprodeck.Config{
			BaseURL:           a.cfg.Cards.BaseURL,
			RequestsPerSecond: a.cfg.Cards.RequestsPerSecond,
			Timeout:           timeout,
		})
	}

	return cardlookup.NewService(cache, remote, cardlookup.ServiceOptions{
		StaleThreshold: stale,
		Logger:         a.logger,
	}), nil
}

// loadPoints opens the point list file, falling back to the newest stored
// snapshot.
func (a *App) loadPoints(ctx context.Context) facade.PointsSource {
	path := a.cfg.Genesys.PointsPath
	w, err := genesys.NewWatcher(path, a.logger)
	if err == nil {
		a.watcher = w
		w.OnReload(func(*genesys.PointList, *genesys.Index) { a.metrics.RecordPointReload() })
		if a.storage != nil {
			w.OnReload(a.saveSnapshot)
			// Store the list that was just loaded as well.
			if _, err := w.Reload(); err != nil {
				a.logger.Warn("Point list reload failed", zap.Error(err))
			}
		}
		return w
	}

	a.logger.Warn("Point list file unavailable", zap.String("path", path), zap.Error(err))
	if a.storage != nil {
		snap, serr := a.storage.LatestPointList(ctx)
		if serr != nil {
			a.logger.Warn("Failed to read stored point list", zap.Error(serr))
		} else if snap != nil {
			a.logger.Info("Using stored point list",
				zap.String("source", snap.Source),
				zap.Time("loaded_at", snap.LoadedAt),
				zap.Int("cards", snap.CardCount))
			return facade.NewStaticPoints(genesys.NewIndex(snap.List))
		}
	}
	return facade.NewStaticPoints(nil)
}

func (a *App) saveSnapshot(list *genesys.PointList, _ *genesys.Index) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	id, saved, err := a.storage.SavePointList(ctx, list)
	if err != nil {
		a.logger.Warn("Failed to store point list snapshot", zap.Error(err))
		return
	}
	if saved {
		a.logger.Debug("Stored point list snapshot", zap.Int64("id", id), zap.Int("cards", len(list.Cards)))
	}
}

// Metrics returns the collector shared by the facades.
func (a *App) Metrics() *metrics.Service {
	return a.metrics
}

// Watcher returns the point list watcher, or nil when the list came from a
// stored snapshot.
func (a *App) Watcher() *genesys.Watcher {
	return a.watcher
}

// Storage returns the storage service, or nil when the database could not be
// opened.
func (a *App) Storage() *storage.Service {
	return a.storage
}

// Offline reports whether remote card lookups are disabled.
func (a *App) Offline() bool {
	return a.lookup.Offline()
}

// Watch follows the point list file until ctx is cancelled. It returns
// immediately when watching is disabled or there is no file.
func (a *App) Watch(ctx context.Context) error {
	if a.watcher == nil || !a.cfg.Genesys.Watch {
		return nil
	}
	return a.watcher.Run(ctx)
}

// Close releases the storage service.
func (a *App) Close() error {
	if a.storage == nil {
		return nil
	}
	return a.storage.Close()
}
