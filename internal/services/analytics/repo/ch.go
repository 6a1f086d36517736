package repo

import (
	"context"

	"floordwh/internal/modkit/repokit"
	perr "floordwh/internal/platform/errors"
	"floordwh/internal/platform/store"
	"floordwh/internal/services/analytics/domain"
)

// NewCH returns a ClickHouse binder; the bound Queryer is unused
func NewCH(ch store.Clickhouse) repokit.Binder[domain.StorageRepo] { return &chBinder{ch: ch} }

type chBinder struct{ ch store.Clickhouse }

// Bind implements repokit.Binder
func (b *chBinder) Bind(repokit.Queryer) domain.StorageRepo {
	if b.ch == nil {
		panic("analytics repo requires a non nil clickhouse client")
	}
	return &chQueries{ch: b.ch}
}

type chQueries struct{ ch store.Clickhouse }

// Cycles lists the completed cycles of one line ordered by start
func (r *chQueries) Cycles(ctx context.Context, lineID string) ([]domain.Cycle, error) {
	rows, err := r.ch.Query(ctx, `
		SELECT start_timestamp, stop_timestamp
		FROM view_line_process_durations
		WHERE production_line_id = ?
		ORDER BY start_timestamp, stop_timestamp
	`, lineID)
	if err != nil {
		return nil, perr.FromClickhouse(err, "query process cycles")
	}
	out, err := store.Collect(rows, scanCycle)
	return out, perr.FromClickhouse(err, "read process cycles")
}

// FloorTotals sums both views; sum() over no rows is zero in clickhouse
func (r *chQueries) FloorTotals(ctx context.Context) (domain.FloorTotals, error) {
	var t domain.FloorTotals
	if err := r.scalars(ctx, `
		SELECT toFloat64(sum(total_uptime_seconds)), toFloat64(sum(floor_downtime_seconds))
		FROM view_total_uptime_downtime
	`, &t.UptimeSeconds, &t.DowntimeSeconds); err != nil {
		return domain.FloorTotals{}, err
	}
	if err := r.scalars(ctx, `
		SELECT toFloat64(sum(duration_seconds)) FROM view_line_process_durations
	`, &t.CycleUptimeSeconds); err != nil {
		return domain.FloorTotals{}, err
	}
	return t, nil
}

func (r *chQueries) scalars(ctx context.Context, sql string, dest ...any) error {
	rows, err := r.ch.Query(ctx, sql)
	if err != nil {
		return perr.FromClickhouse(err, "query floor totals")
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return perr.FromClickhouse(err, "scan floor totals")
		}
	}
	return perr.FromClickhouse(rows.Err(), "read floor totals")
}

// TopDowntime ranks lines by downtime, ties broken by line id
func (r *chQueries) TopDowntime(ctx context.Context, n int) ([]domain.LineDowntime, error) {
	rows, err := r.ch.Query(ctx, `
		SELECT production_line_id, toFloat64(floor_downtime_seconds)
		FROM view_total_uptime_downtime
		ORDER BY floor_downtime_seconds DESC, production_line_id ASC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, perr.FromClickhouse(err, "query top downtime")
	}
	out, err := store.Collect(rows, scanDowntime)
	return out, perr.FromClickhouse(err, "read top downtime")
}
