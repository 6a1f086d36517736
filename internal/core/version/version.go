// Package version reports the build version of the pipeline binary
package version

import "fmt"

// BuildInfo holds version information about the build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Set via -ldflags "-X 'floordwh/internal/core/version.version=v0.1.0'
// -X 'floordwh/internal/core/version.commit=abcd' -X 'floordwh/internal/core/version.date=2026-10-01'"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build information stamped at link time
func Info() BuildInfo {
	return BuildInfo{
		Service: "floordwh",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// String renders "floordwh dev (none, unknown)"
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s %s (%s, %s)", b.Service, b.Version, b.Commit, b.Date)
}
