package service

import (
	"context"
	"fmt"

	"floordwh/internal/core/report"
	perr "floordwh/internal/platform/errors"
	"floordwh/internal/platform/logger"
	"floordwh/internal/services/analytics/domain"
)

// Report runs the three queries in order and saves the document
// nothing is written when any query fails
func (s *Svc) Report(ctx context.Context, run domain.RunSummary) (report.Document, error) {
	doc, err := s.Assemble(ctx, run)
	if err != nil {
		return doc, err
	}
	if s.Cfg.ReportPath == "" {
		return doc, nil
	}
	if err := doc.Save(s.Cfg.ReportPath); err != nil {
		return doc, perr.WithOp(err, "write report")
	}
	logger.C(ctx).Info().Str("path", s.Cfg.ReportPath).Msg("report saved")
	return doc, nil
}

// Assemble builds the report without touching the filesystem
func (s *Svc) Assemble(ctx context.Context, run domain.RunSummary) (report.Document, error) {
	doc := report.Document{
		ExecutedAt:  s.Now(),
		RunID:       run.RunID,
		Loaded:      int(run.Loaded),
		Quarantined: run.Quarantined,
		Skipped:     run.Skipped,
		Warnings:    run.Warnings,
	}

	cycles, err := s.CycleReport(ctx, s.Cfg.LineID)
	if err != nil {
		return doc, perr.WithOp(err, "cycle report")
	}
	summary, err := s.FloorSummary(ctx)
	if err != nil {
		return doc, perr.WithOp(err, "floor summary")
	}
	top, err := s.TopDowntime(ctx, s.Cfg.TopN)
	if err != nil {
		return doc, perr.WithOp(err, "top downtime")
	}

	doc.Sections = []report.Section{
		{Title: fmt.Sprintf("Q1: Process Cycles for Line '%s'", s.Cfg.LineID), Table: CyclesTable(cycles)},
		{Title: "Q2: Total Floor Uptime and Downtime", Table: SummaryTable(summary)},
		{Title: "Q3: Production Line with Most Downtime", Table: DowntimeTable(top)},
	}
	return doc, nil
}

// CyclesTable renders cycle rows with "N minutes" durations
func CyclesTable(rows []domain.CycleRow) report.Table {
	t := report.Table{Columns: []string{"start_timestamp", "stop_timestamp", "duration"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Start.UTC().Format(report.TimeLayout),
			r.Stop.UTC().Format(report.TimeLayout),
			r.Minutes.StringFixed(2) + " minutes",
		})
	}
	return t
}

// SummaryTable renders the two row uptime/downtime summary
func SummaryTable(s domain.FloorSummary) report.Table {
	down := s.DowntimeMinutes.StringFixed(3) + " minutes"
	return report.Table{
		Columns: []string{"Total Up/Down-time", "Total", "In Full Cycles"},
		Rows: [][]string{
			{"Total Uptime", s.UptimeMinutes.StringFixed(3) + " minutes", s.CycleUptimeMinutes.StringFixed(3) + " minutes"},
			{"Total Downtime", down, down},
		},
	}
}

// DowntimeTable renders the ranked lines
func DowntimeTable(rows []domain.DowntimeRow) report.Table {
	t := report.Table{Columns: []string{"production_line_id", "downtime"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.ProductionLineID, r.Minutes.StringFixed(4) + " minutes"})
	}
	return t
}
