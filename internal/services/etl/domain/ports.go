package domain

import (
	"context"
	"time"

	"floordwh/internal/core/status"
)

// RunnerPort is the port the module exposes to the orchestrator
type RunnerPort interface {
	Run(ctx context.Context) (RunResult, error)
}

// Warehouse is the write side of the ETL against either backend
type Warehouse interface {
	// SyncStatuses upserts the status enumeration into dim_status
	SyncStatuses(ctx context.Context, statuses []status.Status) error

	// ExistingKeys returns which of keys are already in the dimension
	ExistingKeys(ctx context.Context, d Dimension, keys []string) ([]string, error)

	// InsertKeys appends keys to the dimension in one batch
	InsertKeys(ctx context.Context, d Dimension, keys []string) (int64, error)

	// LoadFacts runs fn with exclusive fact loading access
	LoadFacts(ctx context.Context, fn func(FactStore) error) error
}

// FactStore is the fact table surface available inside LoadFacts
type FactStore interface {
	// MaxEventTime returns the table wide mark; ok is false when the table is empty
	MaxEventTime(ctx context.Context) (t time.Time, ok bool, err error)

	// MaxEventTimeByLine returns marks for the given lines; lines without facts are absent
	MaxEventTimeByLine(ctx context.Context, lines []string) (map[string]time.Time, error)

	// InsertFacts appends events in one batch of exactly the three canonical columns
	InsertFacts(ctx context.Context, events []Event) (int64, error)
}
