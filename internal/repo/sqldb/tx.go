package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Isolation selects how strictly a transaction is isolated from concurrent ones.
type Isolation int

const (
	// IsolationDefault uses the database's default level.
	IsolationDefault Isolation = iota
	// IsolationStrict uses the strictest level the database offers.
	IsolationStrict
)

// Transactor runs a function inside a database transaction.
type Transactor interface {
	// InTx runs fn in a transaction that commits when fn returns nil and
	// rolls back otherwise. Repositories called with the context passed to fn
	// take part in the transaction. A nested InTx joins the outer transaction.
	InTx(ctx context.Context, isolation Isolation, fn func(ctx context.Context) error) error
}

var _ Transactor = (*DB)(nil)

type txKey struct{}

// Ext returns the transaction carried by ctx, or db when there is none.
func Ext(ctx context.Context, db sqlx.ExtContext) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}

	return db
}

// InTx implements Transactor.
func (db *DB) InTx(ctx context.Context, isolation Isolation, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := db.BeginTxx(ctx, db.txOptions(isolation))
	if err != nil {
		return fmt.Errorf("begin tx: %w", TranslateError(err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}

		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				db.log.WarnContext(ctx, "rollback failed", "error", rbErr)
			}

			return
		}

		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("commit tx: %w", TranslateError(cErr))
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, tx))
}

func (db *DB) txOptions(isolation Isolation) *sql.TxOptions {
	// SQLite transactions are serializable already and modernc rejects explicit levels.
	if isolation != IsolationStrict || db.dialect != DialectPostgres {
		return nil
	}

	//nolint:exhaustruct
	return &sql.TxOptions{Isolation: sql.LevelSerializable}
}
