// Package domain holds the ETL types and ports shared by ingest, repo and service
package domain

import (
	"time"

	perr "floordwh/internal/platform/errors"
	"floordwh/internal/platform/validate"
)

// Required raw header columns
const (
	ColProductionLineID = "production_line_id"
	ColStatus           = "status"
	ColTimestamp        = "timestamp"
)

// RequiredColumns lists the raw columns every batch must carry
var RequiredColumns = []string{ColProductionLineID, ColStatus, ColTimestamp}

// RawRecord is one input row as text, plus its 1-based source line for diagnostics
type RawRecord struct {
	Line             int
	ProductionLineID string
	Status           string
	Timestamp        string
}

// Event is the canonical, fully typed form of an accepted record
type Event struct {
	ProductionLineID string
	StatusID         int16
	EventTime        time.Time
}

// QuarantinedRecord keeps the raw values, whatever parsed, and why it was rejected
type QuarantinedRecord struct {
	Raw       RawRecord
	StatusID  *int16
	EventTime *time.Time
	Reason    string
}

// Batch is the partition of one input into accepted and quarantined rows
type Batch struct {
	Accepted    []Event
	Quarantined []QuarantinedRecord
}

// Total returns the number of input records the batch covers
func (b Batch) Total() int { return len(b.Accepted) + len(b.Quarantined) }

// Dimension names a dimension table and its single key column
type Dimension struct {
	Table     string
	KeyColumn string
}

// ProductionLines is the production line dimension
var ProductionLines = Dimension{Table: "dim_production_line", KeyColumn: "production_line_id"}

// Validate rejects identifiers that are not plain sql names
func (d Dimension) Validate() error {
	if !validate.IsIdent(d.Table) {
		return perr.WithField(perr.InvalidArgf("invalid dimension table %q", d.Table), "table")
	}
	if !validate.IsIdent(d.KeyColumn) {
		return perr.WithField(perr.InvalidArgf("invalid dimension key column %q", d.KeyColumn), "key_column")
	}
	return nil
}

// WatermarkScope selects how the fact loader derives its high-water mark
type WatermarkScope string

const (
	// ScopeGlobal uses one mark across the whole fact table
	ScopeGlobal WatermarkScope = "global"
	// ScopeLine keeps one mark per production line
	ScopeLine WatermarkScope = "line"
)

// ParseWatermarkScope accepts "", "global" or "line"
func ParseWatermarkScope(s string) (WatermarkScope, error) {
	switch WatermarkScope(s) {
	case "", ScopeGlobal:
		return ScopeGlobal, nil
	case ScopeLine:
		return ScopeLine, nil
	}
	return "", perr.InvalidArgf("unknown watermark scope %q", s)
}

// DimensionResult reports one reconciliation
type DimensionResult struct {
	Table    string
	Observed int
	Existing int
	Inserted int64
}

// LoadResult reports one fact load
type LoadResult struct {
	Scope     WatermarkScope
	Watermark *time.Time
	Eligible  int
	Loaded    int64
	Fallback  bool
}

// RunResult summarises a full ETL run
type RunResult struct {
	RunID          string
	Read           int
	Accepted       int
	Quarantined    int
	QuarantinePath string
	Dimension      DimensionResult
	Load           LoadResult
	Skipped        bool
	Warnings       []string
}
