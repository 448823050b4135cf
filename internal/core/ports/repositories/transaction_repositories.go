package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/core/domain"
)

// TransactionReader defines read operations for project transactions
type TransactionReader interface {
	// GeneratedExists reports whether a generated transaction exists for (templateID, date).
	GeneratedExists(ctx context.Context, templateID string, date time.Time) (bool, error)

	// CountGenerated counts every generated transaction ever linked to the template.
	CountGenerated(ctx context.Context, templateID string) (int, error)

	// FindTransactionByID retrieves a transaction by its ID.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListGeneratedByTemplate pages through a template's generated transactions, newest first.
	ListGeneratedByTemplate(ctx context.Context, templateID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// TransactionWriter defines write operations for project transactions
type TransactionWriter interface {
	// SaveGeneratedTransactions persists txns in one database transaction, isolating each row.
	// The returned slice holds one entry per input (nil on success); a row that hits the
	// (template, date) uniqueness constraint yields apperrors.ErrDuplicate.
	// The second return value is set only when the batch as a whole could not be committed.
	SaveGeneratedTransactions(ctx context.Context, txns []domain.Transaction) ([]error, error)

	// BulkUpdateGenerated rewrites the propagated fields of every generated transaction of the template.
	BulkUpdateGenerated(ctx context.Context, templateID string, update domain.GeneratedFieldUpdate) (int64, error)

	// DeleteTransaction removes a transaction.
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionRepositoryWithTx extends TransactionRepositoryFacade with transaction capabilities
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
