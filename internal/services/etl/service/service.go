// Package service runs the ETL: read, normalize, quarantine, reconcile dimensions and load facts
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"floordwh/internal/core/status"
	perr "floordwh/internal/platform/errors"
	"floordwh/internal/platform/logger"
	"floordwh/internal/platform/metrics"
	"floordwh/internal/services/etl/domain"
	"floordwh/internal/services/etl/ingest"

	"github.com/google/uuid"
)

// Config holds the ETL run options
type Config struct {
	InputPath      string
	QuarantinePath string
	Scope          domain.WatermarkScope
	// Load false validates and quarantines without touching the warehouse
	Load bool
}

// Service implements domain.RunnerPort
type Service struct {
	WH      domain.Warehouse
	Catalog *status.Catalog
	Norm    ingest.Normalizer
	Cfg     Config
	Metrics *metrics.Run

	// seams, defaulted by New
	Read            func(path string) ([]domain.RawRecord, error)
	WriteQuarantine func(path string, recs []domain.QuarantinedRecord) error
}

// New constructs the ETL service
func New(wh domain.Warehouse, catalog *status.Catalog, cfg Config, m *metrics.Run) *Service {
	if wh == nil && cfg.Load {
		panic("etl.Service requires a non nil Warehouse when loading")
	}
	if catalog == nil {
		catalog = status.Default()
	}
	if cfg.Scope == "" {
		cfg.Scope = domain.ScopeGlobal
	}
	return &Service{
		WH:              wh,
		Catalog:         catalog,
		Norm:            ingest.NewNormalizer(catalog, time.UTC),
		Cfg:             cfg,
		Metrics:         m,
		Read:            ingest.OpenCSV,
		WriteQuarantine: ingest.WriteQuarantine,
	}
}

// Run executes one batch end to end
// structural input errors abort before any write; data access errors abort the run
func (s *Service) Run(ctx context.Context) (domain.RunResult, error) {
	runID := logger.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logger.WithRun(ctx, runID)
	}
	log := logger.C(ctx)
	res := domain.RunResult{RunID: runID}

	records, err := s.Read(s.Cfg.InputPath)
	if err != nil {
		return res, perr.WithOp(err, "extract")
	}

	batch := s.Norm.Normalize(records)
	res.Read, res.Accepted, res.Quarantined = len(records), len(batch.Accepted), len(batch.Quarantined)
	s.Metrics.Batch(res.Read, res.Accepted, res.Quarantined)
	log.Info().
		Int("read", res.Read).
		Int("accepted", res.Accepted).
		Int("quarantined", res.Quarantined).
		Msg("batch normalized")

	if len(batch.Quarantined) > 0 && s.Cfg.QuarantinePath != "" {
		if err := s.WriteQuarantine(s.Cfg.QuarantinePath, batch.Quarantined); err != nil {
			return res, perr.WithOp(err, "quarantine")
		}
		res.QuarantinePath = s.Cfg.QuarantinePath
		log.Warn().Int("rows", len(batch.Quarantined)).Str("path", s.Cfg.QuarantinePath).Msg("records quarantined")
	}

	if !s.Cfg.Load {
		res.Skipped = true
		log.Info().Msg("warehouse load skipped")
		return res, nil
	}

	if len(batch.Accepted) == 0 {
		log.Info().Msg("no accepted events, warehouse untouched")
		return res, nil
	}

	if err := s.WH.SyncStatuses(ctx, s.Catalog.Statuses()); err != nil {
		return res, perr.WithOp(err, "sync statuses")
	}

	dim, err := s.ReconcileDimension(ctx, domain.ProductionLines, batch.Accepted)
	res.Dimension = dim
	if err != nil {
		return res, perr.WithOp(err, "reconcile")
	}

	load, warnings, err := s.LoadFacts(ctx, batch.Accepted)
	res.Load = load
	res.Warnings = append(res.Warnings, warnings...)
	if err != nil {
		return res, perr.WithOp(err, "load")
	}
	return res, nil
}

// ReconcileDimension inserts only the keys the dimension does not hold yet
// existing keys are read fresh on every call; nothing is written when the remainder is empty
func (s *Service) ReconcileDimension(ctx context.Context, d domain.Dimension, events []domain.Event) (domain.DimensionResult, error) {
	log := logger.C(ctx)
	res := domain.DimensionResult{Table: d.Table}
	if err := d.Validate(); err != nil {
		return res, err
	}

	keys := distinctLines(events)
	res.Observed = len(keys)
	if len(keys) == 0 {
		log.Info().Str("table", d.Table).Msg("no data to reconcile, nothing inserted")
		return res, nil
	}

	existing, err := s.WH.ExistingKeys(ctx, d, keys)
	if err != nil {
		return res, err
	}
	res.Existing = len(existing)

	have := make(map[string]struct{}, len(existing))
	for _, k := range existing {
		have[k] = struct{}{}
	}
	fresh := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := have[k]; !ok {
			fresh = append(fresh, k)
		}
	}
	if len(fresh) == 0 {
		log.Info().Str("table", d.Table).Int("observed", res.Observed).Msg("no new dimension keys")
		return res, nil
	}

	n, err := s.WH.InsertKeys(ctx, d, fresh)
	if err != nil {
		return res, err
	}
	res.Inserted = n
	s.Metrics.Dimension(d.Table, int(n))
	log.Info().Str("table", d.Table).Int64("inserted", n).Msg("dimension keys inserted")
	return res, nil
}

// LoadFacts appends the events strictly newer than the high-water mark
// a failed mark lookup is treated as an empty table and reported as a warning
func (s *Service) LoadFacts(ctx context.Context, events []domain.Event) (domain.LoadResult, []string, error) {
	log := logger.C(ctx)
	res := domain.LoadResult{Scope: s.Cfg.Scope}
	var warnings []string

	if len(events) == 0 {
		log.Info().Msg("no accepted events, nothing to load")
		return res, nil, nil
	}
	for _, e := range events {
		if !s.Catalog.Valid(e.StatusID) {
			return res, nil, perr.WithField(
				perr.Validationf("status_id %d is not in the status enumeration (line %s)", e.StatusID, e.ProductionLineID),
				"status_id")
		}
	}

	err := s.WH.LoadFacts(ctx, func(fs domain.FactStore) error {
		var (
			eligible []domain.Event
			werr     error
		)
		switch s.Cfg.Scope {
		case domain.ScopeLine:
			eligible, werr = s.filterByLine(ctx, fs, events, &res)
		default:
			eligible, werr = s.filterGlobal(ctx, fs, events, &res)
		}
		if werr != nil {
			res.Fallback = true
			msg := fmt.Sprintf("could not determine high-water mark, loading as if the fact table were empty: %v", werr)
			warnings = append(warnings, msg)
			log.Warn().Err(werr).Msg("high-water mark lookup failed")
			eligible = events
		}
		res.Eligible = len(eligible)
		if len(eligible) == 0 {
			log.Info().Msg("no new facts in this batch")
			return nil
		}
		n, err := fs.InsertFacts(ctx, eligible)
		if err != nil {
			return err
		}
		res.Loaded = n
		return nil
	})
	s.Metrics.Facts(int(res.Loaded), res.Fallback)
	if err != nil {
		return res, warnings, err
	}

	ev := log.Info().Str("scope", string(res.Scope)).Int("eligible", res.Eligible).Int64("loaded", res.Loaded)
	if res.Watermark != nil {
		ev = ev.Time("watermark", *res.Watermark)
	}
	ev.Msg("facts loaded")
	return res, warnings, nil
}

func (s *Service) filterGlobal(ctx context.Context, fs domain.FactStore, events []domain.Event, res *domain.LoadResult) ([]domain.Event, error) {
	mark, ok, err := fs.MaxEventTime(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return events, nil
	}
	res.Watermark = &mark
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if e.EventTime.After(mark) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Service) filterByLine(ctx context.Context, fs domain.FactStore, events []domain.Event, res *domain.LoadResult) ([]domain.Event, error) {
	marks, err := fs.MaxEventTimeByLine(ctx, distinctLines(events))
	if err != nil {
		return nil, err
	}
	var latest time.Time
	for _, m := range marks {
		if m.After(latest) {
			latest = m
		}
	}
	if !latest.IsZero() {
		res.Watermark = &latest
	}
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if m, ok := marks[e.ProductionLineID]; ok && !e.EventTime.After(m) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// distinctLines returns the sorted set of line ids in events
func distinctLines(events []domain.Event) []string {
	seen := make(map[string]struct{}, len(events))
	out := make([]string, 0)
	for _, e := range events {
		if _, ok := seen[e.ProductionLineID]; ok {
			continue
		}
		seen[e.ProductionLineID] = struct{}{}
		out = append(out, e.ProductionLineID)
	}
	sort.Strings(out)
	return out
}
