// Package module provides the analytics module implementation
package module

import (
	"floordwh/internal/modkit"
	"floordwh/internal/modkit/repokit"
	perr "floordwh/internal/platform/errors"
	"floordwh/internal/platform/store"
	"floordwh/internal/services/analytics/domain"
	"floordwh/internal/services/analytics/repo"
	"floordwh/internal/services/analytics/service"
)

// Ports defines the analytics module ports
type Ports struct {
	Queries  domain.ServicePort
	Reporter domain.ReporterPort
}

// Module implements the analytics module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the analytics module against the backend in deps
func New(deps modkit.Deps) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	if err := opts.Validate(); err != nil {
		return nil, perr.WithOp(err, "analytics options")
	}

	var queries domain.StorageRepo
	switch deps.Backend {
	case store.BackendClickhouse:
		if deps.CH == nil {
			return nil, perr.Unavailablef("analytics: clickhouse backend selected but not connected")
		}
		queries = repo.NewCH(deps.CH).Bind(nil)
	default:
		if deps.PG == nil {
			return nil, perr.Unavailablef("analytics: postgres backend selected but not connected")
		}
		queries = repokit.MustBind(repo.NewPG(), deps.PG)
	}

	svc := service.New(queries, service.Config{
		LineID:     opts.LineID,
		TopN:       opts.TopN,
		ReportPath: opts.ReportPath,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Queries: svc, Reporter: svc}
	return m, nil
}

// Name returns the module name
func (m *Module) Name() string { return "analytics" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
