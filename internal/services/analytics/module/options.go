package module

import (
	"floordwh/internal/platform/config"
	"floordwh/internal/platform/validate"
)

// Options holds the analytics report parameters
type Options struct {
	LineID     string `env:"CORE_ANALYTICS_LINE" validate:"required"`
	TopN       int    `env:"CORE_ANALYTICS_TOP_N" validate:"min=1"`
	ReportPath string `env:"CORE_ANALYTICS_REPORT" validate:"required"`
}

// FromConfig reads the analytics options from config with CORE_ANALYTICS_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_ANALYTICS_")
	return Options{
		LineID:     c.MayString("LINE", "gr-np-47"),
		TopN:       c.MayInt("TOP_N", 1),
		ReportPath: c.MayString("REPORT", "analytics_report.txt"),
	}
}

// Validate checks the options before any query runs
func (o Options) Validate() error { return validate.Struct(o) }
