package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/tx"
)

type txContextKey struct{}

// WithTx returns a context carrying the transactional *gorm.DB. Repositories
// that receive this context execute against the transaction instead of the
// shared connection.
func WithTx(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, db)
}

// TxFrom extracts the transactional *gorm.DB from the context, if present.
func TxFrom(ctx context.Context) (*gorm.DB, bool) {
	db, ok := ctx.Value(txContextKey{}).(*gorm.DB)
	return db, ok
}

// GormTxAdapter implements tx.Tx over a started GORM transaction.
type GormTxAdapter struct {
	db *gorm.DB
}

func (t *GormTxAdapter) Commit() error {
	return t.db.Commit().Error
}

func (t *GormTxAdapter) Rollback() error {
	return t.db.Rollback().Error
}

// GormTransactionManager implements tx.Manager over one Connection.
type GormTransactionManager struct {
	conn *Connection
}

// NewGormTransactionManager creates a GORM-based transaction manager.
func NewGormTransactionManager(conn *Connection) tx.Manager {
	return &GormTransactionManager{conn: conn}
}

// Begin starts a transaction and returns it together with a context carrying
// the transactional handle for the repository layer.
func (m *GormTransactionManager) Begin(ctx context.Context) (tx.Tx, context.Context, error) {
	gormTx := m.conn.Gorm().WithContext(ctx).Begin()
	if gormTx.Error != nil {
		return nil, ctx, fmt.Errorf("failed to begin transaction: %w", gormTx.Error)
	}
	return &GormTxAdapter{db: gormTx}, WithTx(ctx, gormTx), nil
}
