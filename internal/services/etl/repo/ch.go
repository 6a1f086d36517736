package repo

import (
	"context"
	"fmt"
	"time"

	"floordwh/internal/core/status"
	perr "floordwh/internal/platform/errors"
	"floordwh/internal/platform/store"
	"floordwh/internal/services/etl/domain"
)

// FactColumns is the exact projection written to the fact table
var FactColumns = []string{"production_line_id", "status_id", "event_time"}

type chWarehouse struct {
	ch store.Clickhouse
}

// NewCH returns a Warehouse over ClickHouse
// ReplacingMergeTree collapses duplicate keys on merge; loads assume a single writer
func NewCH(ch store.Clickhouse) domain.Warehouse {
	if ch == nil {
		panic("etl repo requires a non nil clickhouse client")
	}
	return &chWarehouse{ch: ch}
}

func quoteCH(ident string) string { return "`" + ident + "`" }

// SyncStatuses writes only the entries missing or different from what dim_status holds
// the newest row per status_id wins on merge
func (w *chWarehouse) SyncStatuses(ctx context.Context, ss []status.Status) error {
	if len(ss) == 0 {
		return nil
	}
	rows, err := w.ch.Query(ctx, `SELECT status_id, status_name, kind FROM dim_status FINAL`)
	if err != nil {
		return perr.FromClickhouse(err, "read dim_status")
	}
	stored, err := store.Collect(rows, scanStatus)
	if err != nil {
		return perr.FromClickhouse(err, "read dim_status")
	}
	have := make(map[int16]status.Status, len(stored))
	for _, s := range stored {
		have[s.Code] = s
	}

	var drift [][]any
	for _, s := range ss {
		if cur, ok := have[s.Code]; ok && cur == s {
			continue
		}
		drift = append(drift, []any{s.Code, s.Token, string(s.Kind)})
	}
	if len(drift) == 0 {
		return nil
	}
	err = w.ch.Insert(ctx, "dim_status", []string{"status_id", "status_name", "kind"}, drift)
	return perr.FromClickhouse(err, "sync dim_status")
}

func scanStatus(r store.Row) (status.Status, error) {
	var (
		s    status.Status
		kind string
	)
	err := r.Scan(&s.Code, &s.Token, &kind)
	s.Kind = status.Kind(kind)
	return s, err
}

// ExistingKeys reads which keys the dimension already holds
func (w *chWarehouse) ExistingKeys(ctx context.Context, d domain.Dimension, keys []string) ([]string, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	col := quoteCH(d.KeyColumn)
	sql := fmt.Sprintf(`SELECT DISTINCT %s FROM %s FINAL WHERE %s IN ?`, col, quoteCH(d.Table), col)

	rows, err := w.ch.Query(ctx, sql, keys)
	if err != nil {
		return nil, perr.FromClickhousef(err, "read %s", d.Table)
	}
	out, err := store.Collect(rows, scanKey)
	return out, perr.FromClickhousef(err, "read %s", d.Table)
}

// InsertKeys appends keys in one batch
func (w *chWarehouse) InsertKeys(ctx context.Context, d domain.Dimension, keys []string) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	rows := make([][]any, len(keys))
	for i, k := range keys {
		rows[i] = []any{k}
	}
	if err := w.ch.Insert(ctx, d.Table, []string{d.KeyColumn}, rows); err != nil {
		return 0, perr.FromClickhousef(err, "insert %s", d.Table)
	}
	return int64(len(keys)), nil
}

// LoadFacts runs fn directly; clickhouse offers no multi statement transaction
func (w *chWarehouse) LoadFacts(ctx context.Context, fn func(domain.FactStore) error) error {
	return fn(chFacts{ch: w.ch})
}

type chFacts struct{ ch store.Clickhouse }

// MaxEventTime reads the table wide mark
// max() over an empty table yields the epoch, so emptiness comes from count()
func (f chFacts) MaxEventTime(ctx context.Context) (time.Time, bool, error) {
	rows, err := f.ch.Query(ctx, `SELECT count(), max(event_time) FROM fact_process_events FINAL`)
	if err != nil {
		return time.Time{}, false, perr.FromClickhouse(err, "read max event_time")
	}
	defer rows.Close()

	var (
		n  uint64
		ts time.Time
	)
	if rows.Next() {
		if err := rows.Scan(&n, &ts); err != nil {
			return time.Time{}, false, perr.FromClickhouse(err, "scan max event_time")
		}
	}
	if err := rows.Err(); err != nil {
		return time.Time{}, false, perr.FromClickhouse(err, "read max event_time")
	}
	if n == 0 {
		return time.Time{}, false, nil
	}
	return ts.UTC(), true, nil
}

// MaxEventTimeByLine reads one mark per line that already has facts
func (f chFacts) MaxEventTimeByLine(ctx context.Context, lines []string) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(lines))
	if len(lines) == 0 {
		return out, nil
	}
	rows, err := f.ch.Query(ctx, `
		SELECT production_line_id, max(event_time)
		FROM fact_process_events FINAL
		WHERE production_line_id IN ?
		GROUP BY production_line_id
	`, lines)
	if err != nil {
		return nil, perr.FromClickhouse(err, "read max event_time by line")
	}
	defer rows.Close()
	for rows.Next() {
		var line string
		var ts time.Time
		if err := rows.Scan(&line, &ts); err != nil {
			return nil, perr.FromClickhouse(err, "scan max event_time by line")
		}
		out[line] = ts.UTC()
	}
	return out, perr.FromClickhouse(rows.Err(), "read max event_time by line")
}

// InsertFacts appends events in one batch of the three canonical columns
func (f chFacts) InsertFacts(ctx context.Context, events []domain.Event) (int64, error) {
	if len(events) == 0 {
		return 0, nil
	}
	rows := make([][]any, len(events))
	for i, e := range events {
		rows[i] = []any{e.ProductionLineID, e.StatusID, e.EventTime.UTC()}
	}
	if err := f.ch.Insert(ctx, "fact_process_events", FactColumns, rows); err != nil {
		return 0, perr.FromClickhouse(err, "insert fact_process_events")
	}
	return int64(len(events)), nil
}
