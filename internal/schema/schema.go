// Package schema creates the warehouse tables and analytical views
package schema

import (
	"context"
	"embed"

	"floordwh/internal/platform/config"
	perr "floordwh/internal/platform/errors"
	"floordwh/internal/platform/logger"
	"floordwh/internal/platform/store"
)

//go:embed migrations/pg/*.sql migrations/ch/*.sql
var migrationsFS embed.FS

const (
	pgDir = "migrations/pg"
	chDir = "migrations/ch"
)

// Options controls schema setup
type Options struct {
	// Migrate applies pending migrations before the run
	Migrate bool
	// Reset drops every table and view first; destroys loaded data
	Reset bool
}

// FromConfig reads schema options with CORE_SCHEMA_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_SCHEMA_")
	return Options{
		Migrate: c.MayBool("MIGRATE", true),
		Reset:   c.MayBool("RESET", false),
	}
}

// Setup brings the selected backend's schema up to date
// pgURL is only read for postgres, where golang-migrate opens its own connection
func Setup(ctx context.Context, st *store.Store, pgURL string, opts Options) error {
	log := logger.C(ctx)
	if !opts.Migrate && !opts.Reset {
		log.Info().Msg("schema setup skipped")
		return nil
	}
	if st == nil {
		return perr.InvalidArgf("schema: nil store")
	}

	switch st.Backend {
	case store.BackendClickhouse:
		if st.CH == nil {
			return perr.Unavailablef("schema: clickhouse not connected")
		}
		return ApplyCH(ctx, st.CH, opts.Reset)
	default:
		if pgURL == "" {
			return perr.InvalidArgf("schema: postgres url is required")
		}
		r, err := NewPGMigrator(ctx, pgURL)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := r.Close(); cerr != nil {
				log.Warn().Err(cerr).Msg("close migrator")
			}
		}()
		if opts.Reset {
			return r.Reset()
		}
		return r.Up()
	}
}
