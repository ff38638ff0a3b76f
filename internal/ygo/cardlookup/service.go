// Package cardlookup resolves card metadata from the local cache, falling
// back to the remote card database.
package cardlookup

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ramonehamilton/genesys-companion/internal/storage"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/cards"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
)

// Cache is the local metadata store.
type Cache interface {
	GetCards(ctx context.Context, ids []deck.CardID) ([]*storage.CachedCard, error)
	SaveCards(ctx context.Context, list []*cards.Metadata) error
	SearchCardsByName(ctx context.Context, name string, limit int) ([]*cards.Metadata, error)
}

// Remote is the remote card database.
type Remote interface {
	GetCards(ctx context.Context, ids []deck.CardID) ([]*cards.Metadata, error)
	SearchByName(ctx context.Context, name string) ([]*cards.Metadata, error)
	GetByName(ctx context.Context, name string) (*cards.Metadata, error)
}

// Service provides unified card lookup with caching.
// Either collaborator may be nil: without a remote the service is offline,
// without a cache every lookup goes to the remote.
type Service struct {
	cache          Cache
	remote         Remote
	staleThreshold time.Duration
	searchLimit    int
	logger         *zap.Logger
}

// ServiceOptions configures the card lookup service.
type ServiceOptions struct {
	// StaleThreshold is how old cached data can be before it is re-fetched.
	// Default: 30 days
	StaleThreshold time.Duration

	// SearchLimit caps the number of search results.
	// Default: 50
	SearchLimit int

	Logger *zap.Logger
}

// DefaultServiceOptions returns sensible defaults.
func DefaultServiceOptions() ServiceOptions {
	return ServiceOptions{
		StaleThreshold: 30 * 24 * time.Hour,
		SearchLimit:    50,
	}
}

// NewService creates a new card lookup service.
func NewService(cache Cache, remote Remote, options ServiceOptions) *Service {
	defaults := DefaultServiceOptions()
	if options.StaleThreshold <= 0 {
		options.StaleThreshold = defaults.StaleThreshold
	}
	if options.SearchLimit <= 0 {
		options.SearchLimit = defaults.SearchLimit
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	return &Service{
		cache:          cache,
		remote:         remote,
		staleThreshold: options.StaleThreshold,
		searchLimit:    options.SearchLimit,
		logger:         options.Logger.Named("cardlookup"),
	}
}

// Offline reports whether the service has no remote to fall back on.
func (s *Service) Offline() bool {
	return s.remote == nil
}

// Lookup returns whatever metadata can be found for ids. The table may be
// partial: cache and remote failures are logged, not returned, and stale
// cache entries are used when a refresh fails. Placeholder IDs are never
// looked up. The only error is cancellation of ctx.
func (s *Service) Lookup(ctx context.Context, ids []deck.CardID) (cards.Table, error) {
	table := cards.Table{}
	wanted := table.Missing(ids)
	if len(wanted) == 0 {
		return table, nil
	}

	stale := cards.Table{}
	if s.cache != nil {
		cached, err := s.cache.GetCards(ctx, wanted)
		if err != nil {
			s.logger.Warn("card cache read failed", zap.Error(err))
		}
		for _, c := range cached {
			if time.Since(c.FetchedAt) < s.staleThreshold {
				table[c.ID] = c.Metadata
			} else {
				stale[c.ID] = c.Metadata
			}
		}
	}

	if toFetch := table.Missing(wanted); len(toFetch) > 0 && s.remote != nil {
		fetched, err := s.remote.GetCards(ctx, toFetch)
		if err != nil {
			s.logger.Warn("remote card lookup failed",
				zap.Int("requested", len(toFetch)),
				zap.Int("received", len(fetched)),
				zap.Error(err),
			)
		}
		table.Merge(cards.NewTable(fetched))
		s.save(ctx, fetched)
	}

	for id, m := range stale {
		if _, ok := table[id]; !ok {
			table[id] = m
		}
	}

	if missing := table.Missing(wanted); len(missing) > 0 {
		s.logger.Debug("card metadata unresolved", zap.Int("count", len(missing)))
	}
	return table, ctx.Err()
}

// Search finds cards by name, preferring the remote database so new cards
// are found, and falling back to the cache when offline or on failure. A card
// named exactly name is listed first.
func (s *Service) Search(ctx context.Context, name string) ([]*cards.Metadata, error) {
	if s.remote != nil {
		exact := s.exactMatch(ctx, name)
		found, err := s.remote.SearchByName(ctx, name)
		if err == nil {
			found = withExactFirst(exact, found)
			s.save(ctx, found)
			if len(found) > s.searchLimit {
				found = found[:s.searchLimit]
			}
			return found, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("remote card search failed, using cache", zap.String("name", name), zap.Error(err))
	}

	if s.cache == nil {
		return nil, nil
	}
	return s.cache.SearchCardsByName(ctx, name, s.searchLimit)
}

// exactMatch asks the remote for the card named exactly name. A miss or a
// failure yields nil; the fuzzy search still runs.
func (s *Service) exactMatch(ctx context.Context, name string) *cards.Metadata {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	m, err := s.remote.GetByName(ctx, name)
	if err != nil {
		s.logger.Debug("no exact card match", zap.String("name", name), zap.Error(err))
		return nil
	}
	return m
}

func withExactFirst(exact *cards.Metadata, found []*cards.Metadata) []*cards.Metadata {
	if exact == nil {
		return found
	}
	out := make([]*cards.Metadata, 0, len(found)+1)
	out = append(out, exact)
	for _, m := range found {
		if m.ID != exact.ID {
			out = append(out, m)
		}
	}
	return out
}

func (s *Service) save(ctx context.Context, list []*cards.Metadata) {
	if s.cache == nil || len(list) == 0 {
		return
	}
	// The data is already in hand, so a failed cache write is not fatal.
	if err := s.cache.SaveCards(ctx, list); err != nil {
		s.logger.Warn("card cache write failed", zap.Int("cards", len(list)), zap.Error(err))
	}
}
