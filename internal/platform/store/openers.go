package store

import (
	"context"
	"fmt"
	"time"

	chx "floordwh/internal/platform/store/ch"
	"floordwh/internal/platform/store/pg"
)

const (
	defaultConnectRetries = 20
	defaultPingTimeout    = 3 * time.Second
	backoffStart          = 150 * time.Millisecond
	backoffCeiling        = 2 * time.Second
)

// sleep is a seam so tests don't wait out real backoff
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// pingWithBackoff pings until success, ctx cancel, or attempts run out
func pingWithBackoff(ctx context.Context, name string, attempts int, timeout time.Duration, ping func(context.Context) error) error {
	if attempts <= 0 {
		attempts = defaultConnectRetries
	}
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	var lastErr error
	backoff := backoffStart
	for i := 0; i < attempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, timeout)
		lastErr = ping(toCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i == attempts-1 {
			break
		}
		if err := sleep(ctx, backoff); err != nil {
			return err
		}
		if backoff < backoffCeiling {
			backoff *= 2
			if backoff > backoffCeiling {
				backoff = backoffCeiling
			}
		}
	}
	return fmt.Errorf("%s ping failed after %d attempts: %w", name, attempts, lastErr)
}

// openPG opens pg and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
		AppName:  cfg.AppName,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	// ping the pool directly so boot probes never show up as traced sql
	if err := pingWithBackoff(ctx, "postgres", cfg.PG.ConnectRetries, cfg.PG.PingTimeout, p.Pool.Ping); err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p), nil
}

// openCH opens clickhouse and wraps it with the columnar adapter
func openCH(ctx context.Context, cfg Config, s *Store) (Clickhouse, error) {
	ccfg := chx.Config{
		URL:          cfg.CH.URL,
		MaxOpenConns: cfg.CH.MaxOpenConns,
		Role:         "etl",
		Tag:          cfg.AppName,
	}
	if cfg.CH.LogSQL {
		ccfg.Debugf = chx.Debugf(s.Log)
	}

	c, err := chx.Open(ctx, ccfg)
	if err != nil {
		return nil, err
	}
	if err := pingWithBackoff(ctx, "clickhouse", cfg.CH.ConnectRetries, cfg.CH.PingTimeout, c.Ping); err != nil {
		_ = c.Close()
		return nil, err
	}
	return newCHAdapter(c), nil
}
