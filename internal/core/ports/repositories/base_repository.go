package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager exposes explicit database transactions to callers that
// need several store writes to succeed or fail together.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	// Rollback is safe to defer after Commit.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
