package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("test.db")

	if config.Path != "test.db" {
		t.Errorf("expected path 'test.db', got '%s'", config.Path)
	}
	if config.MaxOpenConns != 10 {
		t.Errorf("expected MaxOpenConns 10, got %d", config.MaxOpenConns)
	}
	if config.BusyTimeout != 5*time.Second {
		t.Errorf("expected BusyTimeout 5s, got %v", config.BusyTimeout)
	}
	if config.JournalMode != "WAL" {
		t.Errorf("expected JournalMode 'WAL', got '%s'", config.JournalMode)
	}
	if !config.AutoMigrate {
		t.Error("expected AutoMigrate to default to true")
	}
}

func TestOpen(t *testing.T) {
	db, err := Open(DefaultConfig(filepath.Join(t.TempDir(), "nested", "open.db")))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Errorf("failed to ping database: %v", err)
	}

	var foreignKeys int
	if err := db.Conn().QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		t.Fatalf("failed to read pragma: %v", err)
	}
	if foreignKeys != 1 {
		t.Errorf("expected foreign_keys on, got %d", foreignKeys)
	}
}

func TestOpenWithInvalidConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("expected error with nil config")
	}
	if _, err := Open(&Config{}); err == nil {
		t.Error("expected error with empty path")
	}
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := service.DB().WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO card_metadata (id, name, name_key, fetched_at) VALUES (1, 'A', 'a', 0)`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	n, err := service.CountCards(ctx)
	if err != nil {
		t.Fatalf("CountCards() error = %v", err)
	}
	if n != 0 {
		t.Errorf("expected rollback, found %d cards", n)
	}
}
