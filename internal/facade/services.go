// Package facade exposes the deck checker operations to the API server and
// the CLI.
package facade

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ramonehamilton/genesys-companion/internal/genesys"
	"github.com/ramonehamilton/genesys-companion/internal/genesys/breakdown"
	"github.com/ramonehamilton/genesys-companion/internal/metrics"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/cards"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
)

// PointsSource supplies the active point index. *genesys.Watcher
// implements it.
type PointsSource interface {
	Current() *genesys.Index
}

// StaticPoints is a PointsSource that never changes.
type StaticPoints struct {
	idx *genesys.Index
}

// NewStaticPoints wraps a fixed index.
func NewStaticPoints(idx *genesys.Index) *StaticPoints {
	return &StaticPoints{idx: idx}
}

// Current returns the wrapped index.
func (s *StaticPoints) Current() *genesys.Index {
	return s.idx
}

// CardLookup resolves card metadata. *cardlookup.Service implements it.
type CardLookup interface {
	Lookup(ctx context.Context, ids []deck.CardID) (cards.Table, error)
	Search(ctx context.Context, name string) ([]*cards.Metadata, error)
}

// Services contains the shared dependencies of the facades.
type Services struct {
	// Active point list
	Points PointsSource

	// Card metadata; nil disables enrichment
	Cards CardLookup

	// Default ruleset and sort modes
	Options breakdown.Options

	// Optional; nil discards measurements
	Metrics *metrics.Service

	Logger *zap.Logger
}

func (s *Services) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Services) index() *genesys.Index {
	if s.Points == nil {
		return nil
	}
	return s.Points.Current()
}

// ErrorKind classifies an AppError for the transport layer.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalid
	KindNotFound
	KindUnavailable
)

// AppError represents an application error with a user-friendly message.
type AppError struct {
	Kind    ErrorKind `json:"-"`
	Message string    `json:"message"`
	Err     error     `json:"-"` // Wrapped error for errors.Is/As chain
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As chain.
func (e *AppError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func invalid(message string, err error) *AppError {
	return &AppError{Kind: KindInvalid, Message: message, Err: err}
}
