// Package repo implements the ETL warehouse port for Postgres and ClickHouse
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"floordwh/internal/core/status"
	"floordwh/internal/modkit/repokit"
	perr "floordwh/internal/platform/errors"
	"floordwh/internal/platform/store"
	"floordwh/internal/services/etl/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// FactLockKey names the advisory lock serialising fact loads
const FactLockKey = "floordwh:fact_process_events"

type pgWarehouse struct {
	db repokit.TxRunner
}

// NewPG returns a Warehouse over a Postgres transaction runner
func NewPG(db repokit.TxRunner) domain.Warehouse {
	if db == nil {
		panic("etl repo requires a non nil TxRunner")
	}
	return &pgWarehouse{db: db}
}

// SyncStatuses upserts the enumeration so views see the configured kinds
func (w *pgWarehouse) SyncStatuses(ctx context.Context, ss []status.Status) error {
	if len(ss) == 0 {
		return nil
	}
	ids := make([]int16, len(ss))
	names := make([]string, len(ss))
	kinds := make([]string, len(ss))
	for i, s := range ss {
		ids[i], names[i], kinds[i] = s.Code, s.Token, string(s.Kind)
	}
	_, err := w.db.Exec(ctx, `
		INSERT INTO dim_status (status_id, status_name, kind)
		SELECT * FROM unnest($1::smallint[], $2::text[], $3::text[])
		ON CONFLICT (status_id) DO UPDATE
		SET status_name = EXCLUDED.status_name, kind = EXCLUDED.kind
		WHERE (dim_status.status_name, dim_status.kind) IS DISTINCT FROM (EXCLUDED.status_name, EXCLUDED.kind)
	`, ids, names, kinds)
	return perr.FromPostgres(err, "sync dim_status")
}

// ExistingKeys reads which keys the dimension already holds
func (w *pgWarehouse) ExistingKeys(ctx context.Context, d domain.Dimension, keys []string) ([]string, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	col := pgx.Identifier{d.KeyColumn}.Sanitize()
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1::text[])`,
		col, pgx.Identifier{d.Table}.Sanitize(), col)

	out, err := store.Many(ctx, w.db, scanKey, sql, keys)
	return out, perr.FromPostgresf(err, "read %s", d.Table)
}

func scanKey(row store.Row) (string, error) {
	var k string
	err := row.Scan(&k)
	return k, err
}

// InsertKeys appends keys; a key inserted concurrently by another writer is skipped
func (w *pgWarehouse) InsertKeys(ctx context.Context, d domain.Dimension, keys []string) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	sql := fmt.Sprintf(`INSERT INTO %s (%s) SELECT unnest($1::text[]) ON CONFLICT DO NOTHING`,
		pgx.Identifier{d.Table}.Sanitize(), pgx.Identifier{d.KeyColumn}.Sanitize())

	tag, err := w.db.Exec(ctx, sql, keys)
	if err != nil {
		return 0, perr.AttachFieldFromPg(perr.FromPostgresf(err, "insert %s", d.Table))
	}
	return tag.RowsAffected(), nil
}

// LoadFacts runs fn inside one transaction holding the fact load advisory lock
func (w *pgWarehouse) LoadFacts(ctx context.Context, fn func(domain.FactStore) error) error {
	tx := repokit.WithBeginHooks(w.db, advisoryLock(FactLockKey))
	return tx.Tx(ctx, func(q repokit.Queryer) error {
		return fn(&pgFacts{q: q})
	})
}

// advisoryLock takes a transaction scoped lock released on commit or rollback
func advisoryLock(key string) repokit.BeginHook {
	return func(ctx context.Context, q repokit.Queryer) error {
		_, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key)
		return perr.FromPostgres(err, "acquire fact load lock")
	}
}

type pgFacts struct{ q repokit.Queryer }

// MaxEventTime reads the table wide mark
// the read runs under a savepoint so a failure leaves the transaction usable
func (f *pgFacts) MaxEventTime(ctx context.Context) (time.Time, bool, error) {
	var ts pgtype.Timestamptz
	err := f.savepoint(ctx, func() (err error) {
		ts, err = store.Scalar[pgtype.Timestamptz](ctx, f.q, `SELECT max(event_time) FROM fact_process_events`)
		return err
	})
	if err != nil {
		return time.Time{}, false, perr.FromPostgres(err, "read max event_time")
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return ts.Time.UTC(), true, nil
}

// MaxEventTimeByLine reads one mark per line that already has facts
func (f *pgFacts) MaxEventTimeByLine(ctx context.Context, lines []string) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(lines))
	if len(lines) == 0 {
		return out, nil
	}
	err := f.savepoint(ctx, func() error {
		rows, err := f.q.Query(ctx, `
			SELECT production_line_id, max(event_time)
			FROM fact_process_events
			WHERE production_line_id = ANY($1::text[])
			GROUP BY production_line_id
		`, lines)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var line string
			var t time.Time
			if err := rows.Scan(&line, &t); err != nil {
				return err
			}
			out[line] = t.UTC()
		}
		return rows.Err()
	})
	if err != nil {
		return nil, perr.FromPostgres(err, "read max event_time by line")
	}
	return out, nil
}

// InsertFacts appends events; exact duplicates of an existing fact are skipped
func (f *pgFacts) InsertFacts(ctx context.Context, events []domain.Event) (int64, error) {
	if len(events) == 0 {
		return 0, nil
	}
	lines := make([]string, len(events))
	codes := make([]int16, len(events))
	times := make([]time.Time, len(events))
	for i, e := range events {
		lines[i], codes[i], times[i] = e.ProductionLineID, e.StatusID, e.EventTime.UTC()
	}
	tag, err := f.q.Exec(ctx, `
		INSERT INTO fact_process_events (production_line_id, status_id, event_time)
		SELECT * FROM unnest($1::text[], $2::smallint[], $3::timestamptz[])
		ON CONFLICT (production_line_id, status_id, event_time) DO NOTHING
	`, lines, codes, times)
	if err != nil {
		return 0, perr.AttachFieldFromPg(perr.FromPostgres(err, "insert fact_process_events"))
	}
	return tag.RowsAffected(), nil
}

func (f *pgFacts) savepoint(ctx context.Context, fn func() error) error {
	if _, err := f.q.Exec(ctx, `SAVEPOINT hwm`); err != nil {
		return err
	}
	if err := fn(); err != nil {
		if _, rerr := f.q.Exec(ctx, `ROLLBACK TO SAVEPOINT hwm`); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	_, err := f.q.Exec(ctx, `RELEASE SAVEPOINT hwm`)
	return err
}
