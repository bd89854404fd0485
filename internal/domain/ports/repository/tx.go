package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque execution context handed to repositories. Concrete
// implementations accept pgx.Tx, *pgxpool.Conn, *pgxpool.Pool or nil.
type Tx = any

// NoTX signals "run against the pool, outside any transaction".
var NoTX Tx = nil

// TransactionManager runs a callback inside a database transaction.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
