package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"floordwh/internal/platform/store"

	"github.com/jackc/pgx/v5/pgtype"
)

type call struct {
	sql  string
	args []any
}

type tag int64

func (t tag) String() string      { return "OK" }
func (t tag) RowsAffected() int64 { return int64(t) }

// fakeDB records every statement and answers from per-substring scripts
type fakeDB struct {
	calls    []call
	txs      int
	affected int64
	fail     map[string]error
	scan     func(sql string, dest ...any) error
	rows     func(sql string) store.Rows
}

func (f *fakeDB) errFor(sql string) error {
	for frag, err := range f.fail {
		if strings.Contains(sql, frag) {
			return err
		}
	}
	return nil
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	f.calls = append(f.calls, call{sql, args})
	if err := f.errFor(sql); err != nil {
		return nil, err
	}
	return tag(f.affected), nil
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.calls = append(f.calls, call{sql, args})
	if err := f.errFor(sql); err != nil {
		return nil, err
	}
	if f.rows != nil {
		return f.rows(sql), nil
	}
	return &sliceRows{}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) store.Row {
	f.calls = append(f.calls, call{sql, args})
	return rowFunc(func(dest ...any) error {
		if err := f.errFor(sql); err != nil {
			return err
		}
		if f.scan != nil {
			return f.scan(sql, dest...)
		}
		return nil
	})
}

func (f *fakeDB) Tx(_ context.Context, fn func(store.RowQuerier) error) error {
	f.txs++
	return fn(f)
}

func (f *fakeDB) sqls() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = strings.Join(strings.Fields(c.sql), " ")
	}
	return out
}

type rowFunc func(dest ...any) error

func (r rowFunc) Scan(dest ...any) error { return r(dest...) }

// sliceRows yields each inner slice through a scan func
type sliceRows struct {
	data [][]any
	i    int
	err  error
}

func (r *sliceRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *sliceRows) Scan(dest ...any) error {
	return assign(r.data[r.i-1], dest)
}

func (r *sliceRows) Err() error        { return r.err }
func (r *sliceRows) Close()            {}
func (r *sliceRows) Columns() []string { return nil }

// fakeCH records inserts and answers queries from rows
type fakeCH struct {
	inserts []insert
	queries []call
	rows    func(sql string) store.Rows
	err     error
}

type insert struct {
	table   string
	columns []string
	rows    [][]any
}

func (f *fakeCH) Exec(context.Context, string, ...any) error { return f.err }

func (f *fakeCH) Insert(_ context.Context, table string, columns []string, rows [][]any) error {
	f.inserts = append(f.inserts, insert{table, columns, rows})
	return f.err
}

func (f *fakeCH) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.queries = append(f.queries, call{sql, args})
	if f.err != nil {
		return nil, f.err
	}
	if f.rows != nil {
		return f.rows(sql), nil
	}
	return &sliceRows{}, nil
}

func (f *fakeCH) Close() error { return nil }

// assign copies src values into typed scan destinations
func assign(src []any, dest []any) error {
	if len(src) != len(dest) {
		return fmt.Errorf("scan: %d values into %d dest", len(src), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = src[i].(string)
		case *int16:
			*p = src[i].(int16)
		case *uint64:
			*p = src[i].(uint64)
		case *time.Time:
			*p = src[i].(time.Time)
		case *pgtype.Timestamptz:
			*p = src[i].(pgtype.Timestamptz)
		default:
			return fmt.Errorf("scan: unsupported dest %T", d)
		}
	}
	return nil
}
