package module

import (
	"floordwh/internal/platform/config"
	"floordwh/internal/platform/validate"
	"floordwh/internal/services/etl/domain"
)

// Options holds configuration options for the etl service
type Options struct {
	InputPath      string `env:"CORE_ETL_INPUT" validate:"required"`
	QuarantinePath string `env:"CORE_ETL_QUARANTINE"`
	Scope          string `env:"CORE_ETL_WATERMARK_SCOPE" validate:"oneof=global line"`
	Load           bool   `env:"CORE_ETL_LOAD"`
	StatusFile     string `env:"CORE_ETL_STATUS_FILE"`
}

// FromConfig reads the etl options from config with CORE_ETL_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_ETL_")
	return Options{
		InputPath:      c.MayString("INPUT", "DATA/dataset.csv"),
		QuarantinePath: c.MayString("QUARANTINE", "quarantined_events.csv"),
		Scope:          c.MayString("WATERMARK_SCOPE", string(domain.ScopeGlobal)),
		Load:           c.MayBool("LOAD", true),
		StatusFile:     c.MayString("STATUS_FILE", ""),
	}
}

// Validate checks the options before any file or warehouse is touched
func (o Options) Validate() error { return validate.Struct(o) }
