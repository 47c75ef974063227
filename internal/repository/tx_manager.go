package repository

import (
	"context"
	"time"

	"rrhh/internal/database"

	"gorm.io/gorm"
)

type contextKey string

const txKey contextKey = "gorm_tx"

const (
	txLockAttempts = 3
	txLockBackoff  = 100 * time.Millisecond
)

// TransactionManager manages database transactions via context injection.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

// RunInTx runs fn inside one transaction. A context that already carries a
// transaction joins it instead of opening a nested one. Busy/locked failures
// of the whole unit are retried.
func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}

	return database.WithLockRetry(ctx, txLockAttempts, txLockBackoff, func() error {
		return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			txCtx := context.WithValue(ctx, txKey, tx)
			return fn(txCtx)
		})
	})
}

// GetDB extracts the transaction DB from context if present, otherwise returns root DB.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
