// Package service answers the floor questions and assembles the run report
package service

import (
	"context"
	"sort"
	"time"

	perr "floordwh/internal/platform/errors"
	"floordwh/internal/platform/logger"
	"floordwh/internal/services/analytics/domain"

	"github.com/shopspring/decimal"
)

var (
	secondsPerMinute = decimal.NewFromInt(60)
	nanosPerMinute   = decimal.NewFromInt(int64(time.Minute))
)

// Svc implements domain.ServicePort and domain.ReporterPort
type Svc struct {
	Repo domain.StorageRepo
	Cfg  Config

	// Now stamps the report; tests pin it
	Now func() time.Time
}

// New constructs the analytics service
func New(repo domain.StorageRepo, cfg Config) *Svc {
	if repo == nil {
		panic("analytics.Service requires a non nil StorageRepo")
	}
	return &Svc{Repo: repo, Cfg: cfg, Now: time.Now}
}

// CycleReport returns one line's cycles ordered by start, durations rounded to 2 places
func (s *Svc) CycleReport(ctx context.Context, lineID string) ([]domain.CycleRow, error) {
	cycles, err := s.Repo.Cycles(ctx, lineID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CycleRow, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, domain.CycleRow{
			Start:   c.Start,
			Stop:    c.Stop,
			Minutes: minutesBetween(c.Start, c.Stop).Round(2),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	logger.C(ctx).Debug().Str("line", lineID).Int("cycles", len(out)).Msg("cycle report")
	return out, nil
}

// FloorSummary returns floor wide uptime and downtime, rounded to 3 places
func (s *Svc) FloorSummary(ctx context.Context) (domain.FloorSummary, error) {
	t, err := s.Repo.FloorTotals(ctx)
	if err != nil {
		return domain.FloorSummary{}, err
	}
	return domain.FloorSummary{
		UptimeMinutes:      secondsToMinutes(t.UptimeSeconds).Round(3),
		DowntimeMinutes:    secondsToMinutes(t.DowntimeSeconds).Round(3),
		CycleUptimeMinutes: secondsToMinutes(t.CycleUptimeSeconds).Round(3),
	}, nil
}

// TopDowntime returns at most n lines by downtime descending, ties by line id
func (s *Svc) TopDowntime(ctx context.Context, n int) ([]domain.DowntimeRow, error) {
	if n < 1 {
		return nil, perr.WithField(perr.InvalidArgf("top downtime needs n >= 1, got %d", n), "n")
	}
	lines, err := s.Repo.TopDowntime(ctx, n)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].DowntimeSeconds != lines[j].DowntimeSeconds {
			return lines[i].DowntimeSeconds > lines[j].DowntimeSeconds
		}
		return lines[i].ProductionLineID < lines[j].ProductionLineID
	})
	if len(lines) > n {
		lines = lines[:n]
	}
	out := make([]domain.DowntimeRow, 0, len(lines))
	for _, l := range lines {
		out = append(out, domain.DowntimeRow{
			ProductionLineID: l.ProductionLineID,
			Minutes:          secondsToMinutes(l.DowntimeSeconds).Round(4),
		})
	}
	return out, nil
}

func minutesBetween(start, stop time.Time) decimal.Decimal {
	return decimal.NewFromInt(stop.Sub(start).Nanoseconds()).Div(nanosPerMinute)
}

func secondsToMinutes(sec float64) decimal.Decimal {
	return decimal.NewFromFloat(sec).Div(secondsPerMinute)
}
