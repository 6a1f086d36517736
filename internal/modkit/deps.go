// Package modkit provides module wiring and core deps
package modkit

import (
	"floordwh/internal/modkit/repokit"
	"floordwh/internal/platform/config"
	"floordwh/internal/platform/logger"
	"floordwh/internal/platform/metrics"
	"floordwh/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	Backend store.Backend
	PG      repokit.TxRunner
	CH      store.Clickhouse
	Metrics *metrics.Run
}

// FromStore copies the warehouse seams of an opened store into deps
func FromStore(st *store.Store, cfg config.Conf, m *metrics.Run) Deps {
	d := Deps{Cfg: cfg, Metrics: m}
	if st == nil {
		return d
	}
	d.Log = st.Log
	d.Backend = st.Backend
	d.PG = st.PG
	d.CH = st.CH
	return d
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check for optional stores
func (d Deps) ZeroOK() bool { return true }
