// Package store persists deals keyed by dedup fingerprint.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/deal-scout/internal/model"
)

// ErrDuplicateFingerprint is returned by Insert when a deal with the same
// fingerprint already exists. The unique index enforces it, so concurrent
// inserts cannot both succeed.
var ErrDuplicateFingerprint = eris.New("store: duplicate fingerprint")

// ErrNotFound is returned when no deal matches the given id or fingerprint.
var ErrNotFound = eris.New("store: deal not found")

// DealFilter specifies criteria for listing deals.
type DealFilter struct {
	Status model.DealStatus `json:"status,omitempty"`
	Limit  int              `json:"limit,omitempty"`
}

// Store defines the persistence interface for the intake pipeline.
type Store interface {
	// Dedup surface
	Exists(ctx context.Context, fingerprint string) (bool, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (*model.Deal, error)
	Insert(ctx context.Context, deal *model.Deal) error
	UpdateTerms(ctx context.Context, fingerprint string, patch model.TermsPatch) error
	SetVerdict(ctx context.Context, id string, verdict *model.InvestmentVerdict) error

	// Query surface
	UpdateStatus(ctx context.Context, id string, status model.DealStatus) error
	List(ctx context.Context, filter DealFilter) ([]model.DealSummary, error)
	Get(ctx context.Context, id string) (*model.Deal, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
