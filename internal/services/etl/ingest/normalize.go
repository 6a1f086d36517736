package ingest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"floordwh/internal/core/normalize"
	"floordwh/internal/core/status"
	"floordwh/internal/services/etl/domain"

	"github.com/araddon/dateparse"
)

// Quarantine reasons
const (
	ReasonMissingLine      = "missing production_line_id"
	ReasonUnknownStatus    = "unknown status"
	ReasonInvalidTimestamp = "unparseable timestamp"
)

// Normalizer turns raw records into canonical events
// it is pure and safe to share
type Normalizer struct {
	catalog *status.Catalog
	loc     *time.Location
}

// NewNormalizer builds a Normalizer over the given enumeration
// naive timestamps are read in loc, UTC when nil
func NewNormalizer(catalog *status.Catalog, loc *time.Location) Normalizer {
	if catalog == nil {
		catalog = status.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return Normalizer{catalog: catalog, loc: loc}
}

// Normalize partitions records into accepted events and quarantined records
// every input lands in exactly one side; accepted events are stably sorted by event time
func (n Normalizer) Normalize(records []domain.RawRecord) domain.Batch {
	var b domain.Batch
	for _, rec := range records {
		ev, q, ok := n.one(rec)
		if ok {
			b.Accepted = append(b.Accepted, ev)
			continue
		}
		b.Quarantined = append(b.Quarantined, q)
	}
	sort.SliceStable(b.Accepted, func(i, j int) bool {
		return b.Accepted[i].EventTime.Before(b.Accepted[j].EventTime)
	})
	return b
}

func (n Normalizer) one(rec domain.RawRecord) (domain.Event, domain.QuarantinedRecord, bool) {
	var reasons []string

	line := normalize.Field(rec.ProductionLineID)
	if line == "" {
		reasons = append(reasons, ReasonMissingLine)
	}

	var statusID *int16
	if code, ok := n.catalog.Code(rec.Status); ok {
		statusID = &code
	} else {
		reasons = append(reasons, fmt.Sprintf("%s %q", ReasonUnknownStatus, rec.Status))
	}

	var eventTime *time.Time
	if t, ok := n.parseTime(rec.Timestamp); ok {
		eventTime = &t
	} else {
		reasons = append(reasons, fmt.Sprintf("%s %q", ReasonInvalidTimestamp, rec.Timestamp))
	}

	if len(reasons) > 0 {
		return domain.Event{}, domain.QuarantinedRecord{
			Raw:       rec,
			StatusID:  statusID,
			EventTime: eventTime,
			Reason:    strings.Join(reasons, "; "),
		}, false
	}
	return domain.Event{ProductionLineID: line, StatusID: *statusID, EventTime: *eventTime}, domain.QuarantinedRecord{}, true
}

// parseTime reads any common date-time layout; zero times count as missing
func (n Normalizer) parseTime(s string) (time.Time, bool) {
	s = normalize.Field(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, n.loc)
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t.UTC(), true
}
