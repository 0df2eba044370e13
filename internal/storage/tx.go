package storage

import (
	"context"

	"github.com/uptrace/bun"
)

// TxRunner runs a function inside a storage transaction. When fn returns an
// error every write it performed must be rolled back; step saves rely on
// this to keep domain rows, completion markers and progress in lockstep.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

// ContextWithTx stores an open bun transaction on the context. Repositories
// called inside a TxRunner callback pick it up through Conn so all writes of
// one step save land in the same transaction.
func ContextWithTx(ctx context.Context, tx bun.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the bun transaction stored on the context, if any.
func TxFromContext(ctx context.Context) (bun.Tx, bool) {
	if ctx == nil {
		return bun.Tx{}, false
	}
	tx, ok := ctx.Value(txKey{}).(bun.Tx)
	return tx, ok
}

// Conn picks the connection a repository should issue queries on: the
// context transaction when one is open, otherwise the repository's own db.
func Conn(ctx context.Context, db bun.IDB) bun.IDB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db
}

// BunTxRunner is the TxRunner used by the bun storage provider.
type BunTxRunner struct {
	db *bun.DB
}

func NewBunTxRunner(db *bun.DB) *BunTxRunner {
	if db == nil {
		panic("storage: bun database is required")
	}
	return &BunTxRunner{db: db}
}

// RunInTx opens a transaction, exposes it via the context and commits when
// fn succeeds. A nested call reuses the transaction already on the context
// instead of opening a second one.
func (r *BunTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return nil
	}
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ContextWithTx(ctx, tx))
	})
}

// PassthroughTxRunner runs callbacks directly. It pairs with the in-memory
// repositories, which mutate under their own locks and have nothing to roll
// back.
type PassthroughTxRunner struct{}

func NewPassthroughTxRunner() PassthroughTxRunner {
	return PassthroughTxRunner{}
}

func (PassthroughTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}
