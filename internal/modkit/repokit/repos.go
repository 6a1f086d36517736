// Package repokit holds the seams warehouse repos are written against
package repokit

import "floordwh/internal/platform/store"

type (
	// Queryer is the read and write surface of the pool or of one open tx
	Queryer = store.RowQuerier

	// TxRunner can execute a function inside a transaction
	TxRunner = store.TxRunner
)
