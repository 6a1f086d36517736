// Package module provides the etl module implementation
package module

import (
	"strings"

	"floordwh/internal/core/status"
	"floordwh/internal/modkit"
	perr "floordwh/internal/platform/errors"
	"floordwh/internal/platform/store"
	"floordwh/internal/services/etl/domain"
	"floordwh/internal/services/etl/repo"
	"floordwh/internal/services/etl/service"
)

// Ports defines the etl module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the etl module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the etl module
// it resolves the status enumeration and binds the warehouse for deps.Backend
func New(deps modkit.Deps) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	opts.Scope = strings.ToLower(opts.Scope)
	if err := opts.Validate(); err != nil {
		return nil, perr.WithOp(err, "etl options")
	}

	catalog := status.Default()
	if opts.StatusFile != "" {
		c, err := status.LoadYAML(opts.StatusFile)
		if err != nil {
			return nil, err
		}
		catalog = c
	}

	var wh domain.Warehouse
	if opts.Load {
		switch deps.Backend {
		case store.BackendClickhouse:
			if deps.CH == nil {
				return nil, perr.Unavailablef("etl: clickhouse backend selected but not connected")
			}
			wh = repo.NewCH(deps.CH)
		default:
			if deps.PG == nil {
				return nil, perr.Unavailablef("etl: postgres backend selected but not connected")
			}
			wh = repo.NewPG(deps.PG)
		}
	}

	scope, err := domain.ParseWatermarkScope(opts.Scope)
	if err != nil {
		return nil, err
	}

	svc := service.New(wh, catalog, service.Config{
		InputPath:      opts.InputPath,
		QuarantinePath: opts.QuarantinePath,
		Scope:          scope,
		Load:           opts.Load,
	}, deps.Metrics)

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m, nil
}

// Name returns the module name
func (m *Module) Name() string { return "etl" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
