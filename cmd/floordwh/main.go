package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"floordwh/internal/core/version"
	"floordwh/internal/modkit"
	"floordwh/internal/modkit/module"
	"floordwh/internal/platform/config"
	perr "floordwh/internal/platform/errors"
	"floordwh/internal/platform/logger"
	"floordwh/internal/platform/metrics"
	"floordwh/internal/platform/store"
	"floordwh/internal/schema"

	analyticsdom "floordwh/internal/services/analytics/domain"
	analyticsmod "floordwh/internal/services/analytics/module"
	etlmod "floordwh/internal/services/etl/module"

	"github.com/google/uuid"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

// setBoolEnv only overrides the environment when the flag was passed explicitly
func setBoolEnv(passed map[string]bool, name, key string, val bool) {
	if passed[name] {
		mustSetEnv(key, strconv.FormatBool(val))
	}
}

func main() {
	var (
		fBackend    = flag.String("backend", "", "warehouse backend: postgres | clickhouse")
		fInput      = flag.String("input", "", "input CSV of production line events")
		fQuarantine = flag.String("quarantine", "", "quarantine CSV path")
		fReport     = flag.String("report", "", "analytics report path")
		fLine       = flag.String("line", "", "production line for the cycle report")
		fTop        = flag.Int("top", 0, "number of lines in the downtime ranking")
		fScope      = flag.String("watermark-scope", "", "fact high-water mark scope: global | line")
		fStatuses   = flag.String("status-file", "", "YAML status enumeration")
		fMetrics    = flag.String("metrics-textfile", "", "write run metrics in prometheus text format")
		fLoad       = flag.Bool("load", true, "load accepted events into the warehouse")
		fMigrate    = flag.Bool("migrate", true, "apply schema migrations before the run")
		fReset      = flag.Bool("reset", false, "drop and recreate every table and view (destroys data)")
		fVersion    = flag.Bool("version", false, "print the build version and exit")
		fCheck      = flag.Bool("check", false, "ping the warehouse and exit without running the pipeline")
	)
	flag.Parse()

	if *fVersion {
		fmt.Println(version.Info())
		return
	}

	passed := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { passed[f.Name] = true })

	// Surface flags to modules that read FromConfig
	mustSetEnv("SERVICE_WAREHOUSE_BACKEND", *fBackend)
	mustSetEnv("CORE_ETL_INPUT", *fInput)
	mustSetEnv("CORE_ETL_QUARANTINE", *fQuarantine)
	mustSetEnv("CORE_ETL_WATERMARK_SCOPE", *fScope)
	mustSetEnv("CORE_ETL_STATUS_FILE", *fStatuses)
	mustSetEnv("CORE_ANALYTICS_REPORT", *fReport)
	mustSetEnv("CORE_ANALYTICS_LINE", *fLine)
	if *fTop != 0 {
		mustSetEnv("CORE_ANALYTICS_TOP_N", strconv.Itoa(*fTop))
	}
	mustSetEnv("METRICS_TEXTFILE", *fMetrics)
	setBoolEnv(passed, "load", "CORE_ETL_LOAD", *fLoad)
	setBoolEnv(passed, "migrate", "CORE_SCHEMA_MIGRATE", *fMigrate)
	setBoolEnv(passed, "reset", "CORE_SCHEMA_RESET", *fReset)

	if *fCheck {
		os.Exit(check(config.New()))
	}
	os.Exit(run(config.New()))
}

// run executes one pipeline invocation and returns the process exit code
func run(root config.Conf) int {
	start := time.Now()
	ctx := logger.WithRun(context.Background(), uuid.NewString())
	l := logger.C(ctx)

	m := metrics.NewRun()
	err := execute(ctx, root, m)
	elapsed := time.Since(start)

	m.Finish(elapsed, err, time.Now())
	if path := root.MayString("METRICS_TEXTFILE", ""); path != "" {
		if werr := m.WriteTextfile(path); werr != nil {
			l.Warn().Err(werr).Str("path", path).Msg("metrics textfile not written")
		}
	}

	if err != nil {
		ev := l.Error().Err(err).Dur("elapsed", elapsed)
		if e, ok := perr.As(err); ok {
			ev = ev.Str("code", e.Code().String()).Str("op", e.Op()).Str("field", e.Field())
		}
		ev.Msg("pipeline failed")
		fmt.Fprintf(os.Stderr, "\nPIPELINE EXECUTION HALTED due to error after %.2f seconds.\n", elapsed.Seconds())
		return perr.ExitCode(err)
	}

	fmt.Println("\n=====================================================")
	fmt.Printf("PIPELINE COMPLETED SUCCESSFULLY in %.2f seconds.\n", elapsed.Seconds())
	fmt.Println("=====================================================")
	return 0
}

// execute runs schema, etl and analytics against one store that is closed on every path
func execute(ctx context.Context, root config.Conf, m *metrics.Run) error {
	l := logger.C(ctx)

	st, cfg, err := openStore(ctx, root)
	if err != nil {
		return err
	}
	defer closeStore(ctx, st)

	if err := schema.Setup(logger.WithPhase(ctx, "schema"), st, cfg.PG.URL, schema.FromConfig(root)); err != nil {
		return perr.WithOp(err, "schema")
	}

	deps := modkit.FromStore(st, root, m)

	etl, err := etlmod.New(deps)
	if err != nil {
		return err
	}
	module.Register(etl.Name(), etl.Ports())

	an, err := analyticsmod.New(deps)
	if err != nil {
		return err
	}
	module.Register(an.Name(), an.Ports())
	l.Debug().Strs("modules", module.Names()).Msg("modules registered")

	res, err := module.MustPortsOf[etlmod.Ports](etl).Runner.Run(logger.WithPhase(ctx, "etl"))
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		l.Warn().Msg(w)
	}

	ap, ok := module.PortsAs[analyticsmod.Ports](an.Name())
	if !ok {
		return perr.New(perr.ErrorCodeUnknown, "analytics ports not registered")
	}
	_, err = ap.Reporter.Report(logger.WithPhase(ctx, "analytics"), analyticsdom.RunSummary{
		RunID:       res.RunID,
		Loaded:      res.Load.Loaded,
		Quarantined: res.Quarantined,
		Skipped:     res.Skipped,
		Warnings:    res.Warnings,
	})
	return err
}

// openStore connects the configured backend; connection failures are Unavailable
func openStore(ctx context.Context, root config.Conf) (*store.Store, store.Config, error) {
	cfg, err := storeConfig(root)
	if err != nil {
		return nil, cfg, err
	}
	b := version.Info()
	logger.C(ctx).Info().Str("backend", string(cfg.Backend)).Str("version", b.Version).Str("commit", b.Commit).Msg("opening warehouse")

	st, err := store.Open(ctx, cfg, store.WithLogger(*logger.Get()))
	if err != nil {
		if _, ok := perr.As(err); !ok {
			err = perr.Wrap(err, perr.ErrorCodeUnavailable, "open warehouse")
		}
		return nil, cfg, err
	}
	return st, cfg, nil
}

func closeStore(ctx context.Context, st *store.Store) {
	if err := st.Close(context.Background()); err != nil {
		logger.C(ctx).Error().Err(err).Msg("failed to close store")
	}
}

// check opens the warehouse, pings every seam and returns the exit code
func check(root config.Conf) int {
	ctx := logger.WithPhase(context.Background(), "check")
	st, _, err := openStore(ctx, root)
	if err == nil {
		err = st.Guard(ctx)
		if err != nil {
			err = perr.Wrap(err, perr.ErrorCodeUnavailable, "warehouse not ready")
		}
		closeStore(ctx, st)
	}
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("warehouse check failed")
		return perr.ExitCode(err)
	}
	fmt.Println("warehouse ready")
	return 0
}

// storeConfig reads SERVICE_* and enables only the selected backend
func storeConfig(root config.Conf) (store.Config, error) {
	backend, err := store.ParseBackend(root.MayString("SERVICE_WAREHOUSE_BACKEND", ""))
	if err != nil {
		return store.Config{}, perr.WithField(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "warehouse backend"), "SERVICE_WAREHOUSE_BACKEND")
	}
	cfg := store.Config{AppName: "floordwh", Backend: backend}

	switch backend {
	case store.BackendClickhouse:
		ch := root.Prefix("SERVICE_CLICKHOUSE_")
		cfg.CH = store.CHConfig{
			Enabled:        true,
			MaxOpenConns:   ch.MayInt("MAX_CONNS", 4),
			LogSQL:         ch.MayBool("LOG_SQL", false),
			ConnectRetries: ch.MayInt("CONNECT_RETRIES", 0),
			PingTimeout:    ch.MayDuration("PING_TIMEOUT", 0),
		}
		if cfg.CH.URL, err = ch.Need("DBURL"); err != nil {
			return cfg, err
		}
	default:
		pg := root.Prefix("SERVICE_PGSQL_")
		cfg.PG = store.PGConfig{
			Enabled:        true,
			MaxConns:       int32(pg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs:    pg.MayInt("SLOW_MS", 500),
			LogSQL:         pg.MayBool("LOG_SQL", false),
			ConnectRetries: pg.MayInt("CONNECT_RETRIES", 0),
			PingTimeout:    pg.MayDuration("PING_TIMEOUT", 0),
		}
		if cfg.PG.URL, err = pg.Need("DBURL"); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}
