package database

import (
	"context"
	"errors"
)

// ErrNoTransaction is returned when Commit or Rollback find no transaction in ctx.
var ErrNoTransaction = errors.New("no transaction in context")

type txKey struct{}

type txInfo struct {
	tx    Transaction
	owned bool
}

func withTx(ctx context.Context, tx Transaction, owned bool) context.Context {
	return context.WithValue(ctx, txKey{}, txInfo{tx: tx, owned: owned})
}

func txFromContext(ctx context.Context) (txInfo, bool) {
	info, ok := ctx.Value(txKey{}).(txInfo)
	if !ok || info.tx == nil {
		return txInfo{}, false
	}
	return info, true
}

// ExecutorFromContext returns the open transaction when there is one and the
// plain connection otherwise, so repositories work inside or outside a unit of work.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if info, ok := txFromContext(ctx); ok {
		return info.tx
	}
	return conn
}

// InTransaction reports whether ctx carries an open transaction.
func InTransaction(ctx context.Context) bool {
	_, ok := txFromContext(ctx)
	return ok
}

// UnitOfWork implements application.UnitOfWork over any Connection.
// Nested Begin calls join the outer transaction; only the owner commits.
type UnitOfWork struct {
	conn Connection
}

// NewUnitOfWork creates a unit of work bound to conn.
func NewUnitOfWork(conn Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

// Begin opens a transaction or joins the one already in ctx.
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if info, ok := txFromContext(ctx); ok {
		return withTx(ctx, info.tx, false), nil
	}

	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return withTx(ctx, tx, true), nil
}

// Commit commits when this unit owns the transaction.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	info, ok := txFromContext(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if !info.owned {
		return nil
	}
	return info.tx.Commit(ctx)
}

// Rollback rolls back when this unit owns the transaction.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	info, ok := txFromContext(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if !info.owned {
		return nil
	}
	return info.tx.Rollback(ctx)
}
