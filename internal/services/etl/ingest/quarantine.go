package ingest

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"floordwh/internal/platform/fsx"
	"floordwh/internal/services/etl/domain"
)

// QuarantineHeader is the column layout of the quarantine file
var QuarantineHeader = []string{
	domain.ColProductionLineID, domain.ColStatus, domain.ColTimestamp,
	"status_id", "event_time", "reason",
}

// WriteQuarantine replaces path with recs as CSV
// the previous file is untouched if anything fails
func WriteQuarantine(path string, recs []domain.QuarantinedRecord) error {
	return fsx.WriteAtomic(path, func(w io.Writer) error {
		return EncodeQuarantine(w, recs)
	})
}

// EncodeQuarantine writes the header and one row per record
// status_id and event_time are empty when they did not parse
func EncodeQuarantine(w io.Writer, recs []domain.QuarantinedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(QuarantineHeader); err != nil {
		return err
	}
	row := make([]string, len(QuarantineHeader))
	for _, q := range recs {
		row[0], row[1], row[2] = q.Raw.ProductionLineID, q.Raw.Status, q.Raw.Timestamp
		row[3], row[4] = "", ""
		if q.StatusID != nil {
			row[3] = strconv.Itoa(int(*q.StatusID))
		}
		if q.EventTime != nil {
			row[4] = q.EventTime.UTC().Format(time.RFC3339Nano)
		}
		row[5] = q.Reason
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
