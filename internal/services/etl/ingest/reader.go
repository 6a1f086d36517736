// Package ingest reads raw event files, normalizes them into canonical events and writes quarantine output
package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	perr "floordwh/internal/platform/errors"
	"floordwh/internal/services/etl/domain"
)

const utf8BOM = "\ufeff"

// OpenCSV reads a raw batch from path
func OpenCSV(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "input file %s", path)
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeIO, "open input %s", path)
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f)
}

// ReadCSV reads a header-addressed CSV batch
// columns are matched by name in any order, extra columns are ignored and short rows read as empty cells
// a required column missing from the header is fatal for the whole batch
func ReadCSV(r io.Reader) ([]domain.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, perr.InvalidArgf("input has no header row")
		}
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "read header")
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}
	var missing []string
	for _, col := range domain.RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, perr.WithField(
			perr.InvalidArgf("required column %q missing from input header", missing[0]),
			strings.Join(missing, ","),
		)
	}
	li, si, ti := idx[domain.ColProductionLineID], idx[domain.ColStatus], idx[domain.ColTimestamp]

	var out []domain.RawRecord
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "read input")
		}
		line, _ := cr.FieldPos(0)
		out = append(out, domain.RawRecord{
			Line:             line,
			ProductionLineID: cell(rec, li),
			Status:           cell(rec, si),
			Timestamp:        cell(rec, ti),
		})
	}
	return out, nil
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
