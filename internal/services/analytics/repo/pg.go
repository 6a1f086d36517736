// Package repo reads the analytical views from Postgres or ClickHouse
package repo

import (
	"context"
	"time"

	"floordwh/internal/modkit/repokit"
	perr "floordwh/internal/platform/errors"
	"floordwh/internal/platform/store"
	"floordwh/internal/services/analytics/domain"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: repokit.RequireQueryer(q)} }

// Cycles lists the completed cycles of one line ordered by start
func (r *queries) Cycles(ctx context.Context, lineID string) ([]domain.Cycle, error) {
	out, err := store.Many(ctx, r.q, scanCycle, `
		SELECT start_timestamp, stop_timestamp
		FROM view_line_process_durations
		WHERE production_line_id = $1
		ORDER BY start_timestamp, stop_timestamp
	`, lineID)
	return out, perr.FromPostgres(err, "query process cycles")
}

// FloorTotals sums both views; empty views sum to zero
func (r *queries) FloorTotals(ctx context.Context) (domain.FloorTotals, error) {
	var t domain.FloorTotals
	err := r.q.QueryRow(ctx, `
		SELECT
			(SELECT COALESCE(SUM(total_uptime_seconds), 0)::float8 FROM view_total_uptime_downtime),
			(SELECT COALESCE(SUM(floor_downtime_seconds), 0)::float8 FROM view_total_uptime_downtime),
			(SELECT COALESCE(SUM(duration_seconds), 0)::float8 FROM view_line_process_durations)
	`).Scan(&t.UptimeSeconds, &t.DowntimeSeconds, &t.CycleUptimeSeconds)
	if err != nil {
		return domain.FloorTotals{}, perr.FromPostgres(err, "query floor totals")
	}
	return t, nil
}

// TopDowntime ranks lines by downtime, ties broken by line id
func (r *queries) TopDowntime(ctx context.Context, n int) ([]domain.LineDowntime, error) {
	out, err := store.Many(ctx, r.q, scanDowntime, `
		SELECT production_line_id, floor_downtime_seconds
		FROM view_total_uptime_downtime
		ORDER BY floor_downtime_seconds DESC, production_line_id ASC
		LIMIT $1
	`, n)
	return out, perr.FromPostgres(err, "query top downtime")
}

func scanCycle(row store.Row) (domain.Cycle, error) {
	var start, stop time.Time
	if err := row.Scan(&start, &stop); err != nil {
		return domain.Cycle{}, err
	}
	return domain.Cycle{Start: start.UTC(), Stop: stop.UTC()}, nil
}

func scanDowntime(row store.Row) (domain.LineDowntime, error) {
	var d domain.LineDowntime
	err := row.Scan(&d.ProductionLineID, &d.DowntimeSeconds)
	return d, err
}
