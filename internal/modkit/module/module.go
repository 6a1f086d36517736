// Package module is the contract between cmd/floordwh and the etl and analytics modules
package module

// Module is one composable unit of the pipeline
// Ports returns the bundle of interfaces other modules and main may call
type Module interface {
	Ports() any
	Name() string
}
