package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	perr "floordwh/internal/platform/errors"
	"floordwh/internal/platform/logger"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver "pgx"
)

// MigrationsTable records the applied schema version
const MigrationsTable = "floordwh_schema_migrations"

// PGMigrator applies the embedded postgres migrations
type PGMigrator struct {
	m   *migrate.Migrate
	db  *sql.DB
	log *logger.Logger
}

// migrateLogger bridges golang-migrate output into zerolog
type migrateLogger struct{ log *logger.Logger }

var _ migrate.Logger = migrateLogger{}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool { return false }

// NewPGMigrator opens a dedicated connection and binds the embedded migrations
func NewPGMigrator(ctx context.Context, url string) (*PGMigrator, error) {
	log := logger.C(ctx).With().Str("component", "migrate").Logger()

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "open migration connection")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, perr.FromPostgres(err, "ping migration connection")
	}

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		_ = db.Close()
		return nil, perr.FromPostgres(err, "create migrate driver")
	}

	src, err := iofs.New(migrationsFS, pgDir)
	if err != nil {
		_ = db.Close()
		return nil, perr.Wrap(err, perr.ErrorCodeIO, "open embedded migrations")
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		_ = db.Close()
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "create migrate instance")
	}
	m.Log = migrateLogger{log: &log}

	return &PGMigrator{m: m, db: db, log: &log}, nil
}

// Up applies all pending migrations; an up to date schema is not an error
func (r *PGMigrator) Up() error {
	err := r.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		r.log.Info().Msg("schema up to date")
		return nil
	}
	if err != nil {
		return perr.FromPostgres(err, "migrate up")
	}
	r.logVersion("schema migrated")
	return nil
}

// Reset rolls every migration back and applies them again
func (r *PGMigrator) Reset() error {
	r.log.Warn().Msg("resetting schema, all warehouse data will be dropped")
	if err := r.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return perr.FromPostgres(err, "migrate down")
	}
	return r.Up()
}

// Version reports the applied version; zero when nothing is applied
func (r *PGMigrator) Version() (uint, bool, error) {
	v, dirty, err := r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, perr.FromPostgres(err, "read schema version")
	}
	return v, dirty, nil
}

func (r *PGMigrator) logVersion(msg string) {
	v, dirty, err := r.Version()
	if err != nil {
		r.log.Warn().Err(err).Msg(msg)
		return
	}
	r.log.Info().Uint("version", v).Bool("dirty", dirty).Msg(msg)
}

// Close releases the source, driver and connection
func (r *PGMigrator) Close() error {
	srcErr, dbErr := r.m.Close()
	return errors.Join(srcErr, dbErr, r.db.Close())
}
