package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ramonehamilton/genesys-companion/internal/genesys"
)

// PointListSnapshot is a stored copy of a loaded point list.
type PointListSnapshot struct {
	ID        int64
	Source    string
	Updated   time.Time // Zero if the list carried no timestamp
	LoadedAt  time.Time
	CardCount int
	Checksum  string
	List      *genesys.PointList
}

// SavePointList snapshots list. When the latest snapshot already has the
// same content nothing is written and saved is false.
func (s *Service) SavePointList(ctx context.Context, list *genesys.PointList) (id int64, saved bool, err error) {
	if list == nil {
		return 0, false, fmt.Errorf("point list cannot be nil")
	}
	sum := checksum(list)

	err = s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var latestID int64
		var latestSum string
		err := tx.QueryRowContext(ctx,
			`SELECT id, checksum FROM point_lists ORDER BY id DESC LIMIT 1`,
		).Scan(&latestID, &latestSum)
		switch {
		case err == nil && latestSum == sum:
			id = latestID
			return nil
		case err != nil && err != sql.ErrNoRows:
			return fmt.Errorf("failed to read latest point list: %w", err)
		}

		var updated sql.NullInt64
		if !list.Updated.IsZero() {
			updated = sql.NullInt64{Int64: list.Updated.Unix(), Valid: true}
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO point_lists (source, updated_at, loaded_at, card_count, checksum)
			VALUES (?, ?, ?, ?, ?)
		`, list.Source, updated, time.Now().Unix(), len(list.Cards), sum)
		if err != nil {
			return fmt.Errorf("failed to insert point list: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get point list id: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO point_entries (list_id, position, name, points) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare point entry insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, c := range list.Cards {
			if _, err := stmt.ExecContext(ctx, id, i, c.Name, c.Points); err != nil {
				return fmt.Errorf("failed to insert point entry %d: %w", i, err)
			}
		}
		saved = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return id, saved, nil
}

// LatestPointList returns the most recent snapshot with its entries in
// their original order, or nil if none has been saved.
func (s *Service) LatestPointList(ctx context.Context) (*PointListSnapshot, error) {
	var (
		snap     PointListSnapshot
		updated  sql.NullInt64
		loadedAt int64
	)
	err := s.db.Conn().QueryRowContext(ctx, `
		SELECT id, source, updated_at, loaded_at, card_count, checksum
		FROM point_lists
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&snap.ID, &snap.Source, &updated, &loadedAt, &snap.CardCount, &snap.Checksum)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest point list: %w", err)
	}

	snap.LoadedAt = time.Unix(loadedAt, 0)
	if updated.Valid {
		snap.Updated = time.Unix(updated.Int64, 0).UTC()
	}

	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT name, points FROM point_entries WHERE list_id = ? ORDER BY position`, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get point entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	list := &genesys.PointList{Source: snap.Source, Updated: snap.Updated, Cards: []genesys.Card{}}
	for rows.Next() {
		var c genesys.Card
		if err := rows.Scan(&c.Name, &c.Points); err != nil {
			return nil, fmt.Errorf("failed to scan point entry: %w", err)
		}
		list.Cards = append(list.Cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating point entries: %w", err)
	}

	snap.List = list
	return &snap, nil
}

// checksum hashes the list content in entry order.
func checksum(list *genesys.PointList) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00", list.Source, list.Updated.Unix())
	for _, c := range list.Cards {
		fmt.Fprintf(h, "%s\x00%d\x00", c.Name, c.Points)
	}
	return hex.EncodeToString(h.Sum(nil))
}
