package domain

import (
	"context"

	"floordwh/internal/core/report"
)

// StorageRepo reads the analytical views; every parameter is bound, never interpolated
type StorageRepo interface {
	Cycles(ctx context.Context, lineID string) ([]Cycle, error)
	FloorTotals(ctx context.Context) (FloorTotals, error)
	TopDowntime(ctx context.Context, n int) ([]LineDowntime, error)
}

// ServicePort is the query surface over the warehouse
type ServicePort interface {
	CycleReport(ctx context.Context, lineID string) ([]CycleRow, error)
	FloorSummary(ctx context.Context) (FloorSummary, error)
	TopDowntime(ctx context.Context, n int) ([]DowntimeRow, error)
}

// ReporterPort runs every query and writes the report artifact
type ReporterPort interface {
	Report(ctx context.Context, run RunSummary) (report.Document, error)
}
