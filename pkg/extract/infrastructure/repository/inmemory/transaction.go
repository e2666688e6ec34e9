package inmemory

import (
	"context"

	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/tx"
)

// TxManager is a no-op tx.Manager. The in-memory repository applies every
// operation immediately, so transactions degrade to pass-throughs.
type TxManager struct{}

// NewTxManager creates a no-op transaction manager.
func NewTxManager() tx.Manager {
	return &TxManager{}
}

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

// Begin implements tx.Manager.
func (TxManager) Begin(ctx context.Context) (tx.Tx, context.Context, error) {
	return noopTx{}, ctx, nil
}
