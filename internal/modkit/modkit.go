// Package modkit provides module wiring and core deps
package modkit

import "floordwh/internal/modkit/module"

// Module is the common surface for pipeline modules that expose ports
// keep this tiny so modules stay decoupled
type Module = module.Module

// Builder constructs a Module from shared deps
// modules typically expose New(deps Deps) and may delegate to this pattern
type Builder func(Deps) Module
