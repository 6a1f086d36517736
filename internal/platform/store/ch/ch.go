// Package ch provides a clickhouse client on top of clickhouse-go's native protocol
package ch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"floordwh/internal/platform/logger"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures clickhouse client
type Config struct {
	URL          string
	MaxOpenConns int
	Role         string
	Tag          string

	// Debugf receives driver debug lines when set
	Debugf func(format string, v ...any)
}

// Rows is the minimal result set iteration for ch
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
	Columns() []string
}

// CH is a clickhouse client
type CH struct {
	conn driver.Conn
}

// openConn is a seam over clickhouse.Open for tests
var openConn = clickhouse.Open

// Open parses the DSN and opens a pooled native connection
// the pool dials lazily; call Ping to verify reachability
func Open(_ context.Context, cfg Config) (*CH, error) {
	opts, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("ch: parse dsn: %w", err)
	}
	opts.ClientInfo = BuildClientInfo(cfg.Role, cfg.Tag)
	if cfg.MaxOpenConns > 0 {
		opts.MaxOpenConns = cfg.MaxOpenConns
	}
	if cfg.Debugf != nil {
		opts.Debug = true
		opts.Debugf = cfg.Debugf
	}
	conn, err := openConn(opts)
	if err != nil {
		return nil, err
	}
	return &CH{conn: conn}, nil
}

// Debugf adapts a logger into the driver's printf style debug hook
func Debugf(log logger.Logger) func(format string, v ...any) {
	ll := log.With().Str("component", "ch").Logger()
	return func(format string, v ...any) {
		ll.Debug().Msg(fmt.Sprintf(format, v...))
	}
}

// Ping verifies the server answers
func (c *CH) Ping(ctx context.Context) error {
	if c == nil || c.conn == nil {
		return errors.New("ch: not connected")
	}
	return c.conn.Ping(ctx)
}

// Exec runs DDL or a mutation that returns no rows
func (c *CH) Exec(ctx context.Context, sql string, args ...any) error {
	return c.conn.Exec(ctx, sql, args...)
}

// Insert appends rows to table through one native batch
// columns name the target columns in row order
func (c *CH) Insert(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	stmt := "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ")"
	batch, err := c.conn.PrepareBatch(ctx, stmt)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := batch.Append(r...); err != nil {
			_ = batch.Abort()
			return err
		}
	}
	return batch.Send()
}

// Query runs a query and returns ch.Rows
func (c *CH) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Close closes resources
func (c *CH) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
