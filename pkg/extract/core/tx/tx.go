// Package tx defines the transaction contract the engine uses to make each
// processed batch atomic: record upserts, counter increments and the offset
// checkpoint commit or roll back together.
package tx

import "context"

// Tx is one open transaction.
type Tx interface {
	Commit() error
	Rollback() error
}

// Manager begins transactions. Begin returns the transaction together with a
// derived context carrying it; repository operations invoked with that
// context run inside the transaction.
type Manager interface {
	Begin(ctx context.Context) (Tx, context.Context, error)
}
