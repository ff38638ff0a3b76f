package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ramonehamilton/genesys-companion/internal/genesys"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/cards"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
)

// CachedCard is card metadata with the time it was fetched from the remote
// card database.
type CachedCard struct {
	*cards.Metadata
	FetchedAt time.Time
}

// maxQueryIDs keeps IN clauses below SQLite's host parameter limit.
const maxQueryIDs = 500

const cardColumns = `id, name, type, frame_type, race, level, link_value, image, description, fetched_at`

// SaveCards inserts or refreshes cached metadata. Placeholder and nameless
// entries are skipped.
func (s *Service) SaveCards(ctx context.Context, list []*cards.Metadata) error {
	if len(list) == 0 {
		return nil
	}

	query := `
		INSERT INTO card_metadata (
			id, name, name_key, type, frame_type, race, level, link_value, image, description, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			name_key = excluded.name_key,
			type = excluded.type,
			frame_type = excluded.frame_type,
			race = excluded.race,
			level = excluded.level,
			link_value = excluded.link_value,
			image = excluded.image,
			description = excluded.description,
			fetched_at = excluded.fetched_at
	`

	now := time.Now().Unix()
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare card insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, m := range list {
			if m == nil || m.ID.IsUnresolved() || strings.TrimSpace(m.Name) == "" {
				continue
			}
			_, err := stmt.ExecContext(ctx,
				uint32(m.ID), m.Name, genesys.NormalizeName(m.Name), m.Type, m.FrameType, m.Race,
				m.Level, m.LinkValue, m.Image, m.Description, now,
			)
			if err != nil {
				return fmt.Errorf("failed to save card %d: %w", m.ID, err)
			}
		}
		return nil
	})
}

// GetCards returns the cached entries for ids. IDs not in the cache are
// absent from the result.
func (s *Service) GetCards(ctx context.Context, ids []deck.CardID) ([]*CachedCard, error) {
	wanted := cards.Table(nil).Missing(ids)

	var out []*CachedCard
	for start := 0; start < len(wanted); start += maxQueryIDs {
		batch := wanted[start:min(start+maxQueryIDs, len(wanted))]

		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = uint32(id)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")

		query := `SELECT ` + cardColumns + ` FROM card_metadata WHERE id IN (` + placeholders + `)`
		found, err := s.queryCards(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}

// SearchCardsByName returns cached cards whose normalized name contains the
// normalized query, ordered by name.
func (s *Service) SearchCardsByName(ctx context.Context, name string, limit int) ([]*cards.Metadata, error) {
	key := genesys.NormalizeName(name)
	if key == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + cardColumns + `
		FROM card_metadata
		WHERE name_key LIKE ? ESCAPE '\'
		ORDER BY name, id
		LIMIT ?
	`
	found, err := s.queryCards(ctx, query, "%"+escapeLike(key)+"%", limit)
	if err != nil {
		return nil, err
	}

	out := make([]*cards.Metadata, len(found))
	for i, c := range found {
		out[i] = c.Metadata
	}
	return out, nil
}

// CountCards returns the number of cached cards.
func (s *Service) CountCards(ctx context.Context) (int, error) {
	var n int
	if err := s.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM card_metadata`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return n, nil
}

func (s *Service) queryCards(ctx context.Context, query string, args ...any) ([]*CachedCard, error) {
	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*CachedCard
	for rows.Next() {
		var (
			id        int64
			fetchedAt int64
			m         cards.Metadata
		)
		err := rows.Scan(&id, &m.Name, &m.Type, &m.FrameType, &m.Race,
			&m.Level, &m.LinkValue, &m.Image, &m.Description, &fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		m.ID = deck.CardID(id)
		out = append(out, &CachedCard{Metadata: &m, FetchedAt: time.Unix(fetchedAt, 0)})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
