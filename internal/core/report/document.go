package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"floordwh/internal/platform/fsx"
)

const (
	banner = "====================================================="
	// TimeLayout renders execution and event timestamps
	TimeLayout = "2006-01-02 15:04:05"
)

// Section is one titled query block
type Section struct {
	Title string
	Table Table
}

// Document is the whole report for one run
type Document struct {
	ExecutedAt  time.Time
	RunID       string
	Loaded      int
	Quarantined int
	Skipped     bool
	Warnings    []string
	Sections    []Section
}

// Render builds the report text; sections are separated by a blank line
func (d Document) Render() string {
	var lines []string
	lines = append(lines,
		banner,
		"=== Production Floor DWH Pipeline Execution Log ===",
		fmt.Sprintf("=== Execution Date: %s ===", d.ExecutedAt.Format(TimeLayout)),
	)
	if d.RunID != "" {
		lines = append(lines, fmt.Sprintf("=== Run ID: %s ===", d.RunID))
	}
	lines = append(lines, banner, "\n"+d.statusBlock()+"\n", banner, "=== ANALYTICS REPORTING ===", banner)

	for i, s := range d.Sections {
		head := fmt.Sprintf("--- %s ---\n", s.Title)
		if i > 0 {
			head = "\n" + head
		}
		lines = append(lines, head+s.Table.Markdown())
	}
	return strings.Join(lines, "\n")
}

// statusBlock is the ETL status line followed by one line per warning
// a run with the load disabled says so instead of reporting zero loaded rows
func (d Document) statusBlock() string {
	var b strings.Builder
	if d.Skipped {
		fmt.Fprintf(&b, "ETL Status: SKIPPED (load disabled, quarantined %d)", d.Quarantined)
	} else {
		fmt.Fprintf(&b, "ETL Status: SUCCESS (loaded %d, quarantined %d)", d.Loaded, d.Quarantined)
	}
	for _, w := range d.Warnings {
		b.WriteString("\nWARNING: ")
		b.WriteString(w)
	}
	return b.String()
}

// WriteTo streams the rendered document to w
func (d Document) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, d.Render())
	return int64(n), err
}

// Save writes the document to path atomically; the previous report survives any failure
func (d Document) Save(path string) error {
	return fsx.WriteAtomic(path, func(w io.Writer) error {
		_, err := d.WriteTo(w)
		return err
	})
}
