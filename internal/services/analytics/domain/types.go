// Package domain holds the analytics read models and ports
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cycle is one start to stop interval as read from the duration view
type Cycle struct {
	Start time.Time
	Stop  time.Time
}

// FloorTotals are the raw second sums behind the floor summary
type FloorTotals struct {
	UptimeSeconds      float64
	DowntimeSeconds    float64
	CycleUptimeSeconds float64
}

// LineDowntime is one line's accumulated downtime in seconds
type LineDowntime struct {
	ProductionLineID string
	DowntimeSeconds  float64
}

// CycleRow is a cycle with its duration in minutes, two decimals
type CycleRow struct {
	Start   time.Time
	Stop    time.Time
	Minutes decimal.Decimal
}

// FloorSummary holds floor wide totals in minutes, three decimals
// downtime is the same whether counted in full cycles or not
type FloorSummary struct {
	UptimeMinutes      decimal.Decimal
	DowntimeMinutes    decimal.Decimal
	CycleUptimeMinutes decimal.Decimal
}

// DowntimeRow is one ranked line with downtime in minutes, four decimals
type DowntimeRow struct {
	ProductionLineID string
	Minutes          decimal.Decimal
}

// RunSummary carries the ETL outcome into the report header
type RunSummary struct {
	RunID       string
	Loaded      int64
	Quarantined int
	Skipped     bool // load disabled, nothing written to the warehouse
	Warnings    []string
}
