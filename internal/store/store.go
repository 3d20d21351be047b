// Package store provides snapshot persistence and snapshot file decoding.
package store

import (
	"context"
	"time"

	"intrinsic-valuator/internal/models"
)

// SnapshotStore defines the interface for snapshot persistence. Only the
// inputs supplied by the data provider are stored; valuations are always
// recomputed.
type SnapshotStore interface {
	Save(ctx context.Context, s *models.FinancialSnapshot) error
	// Latest returns the most recent snapshot for ticker.
	Latest(ctx context.Context, ticker string) (*models.FinancialSnapshot, error)
	Get(ctx context.Context, ticker string, asOf time.Time) (*models.FinancialSnapshot, error)
	List(ctx context.Context, filter SnapshotFilter) ([]SnapshotSummary, error)
	Delete(ctx context.Context, ticker string) (int64, error)

	// Lifecycle
	Close() error
}

// SnapshotFilter represents filters for listing snapshots.
type SnapshotFilter struct {
	Ticker string
	Since  time.Time
	Limit  int
}

// SnapshotSummary is one row of a snapshot listing.
type SnapshotSummary struct {
	Ticker    string    `json:"ticker"`
	Name      string    `json:"name,omitempty"`
	AsOf      time.Time `json:"as_of"`
	Price     float64   `json:"price"`
	Shares    float64   `json:"shares_outstanding"`
	UpdatedAt time.Time `json:"updated_at"`
}
