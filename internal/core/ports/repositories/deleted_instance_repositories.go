package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/core/domain"
)

// DeletedInstanceReader defines read operations for the deleted-instance ledger
type DeletedInstanceReader interface {
	IsDeleted(ctx context.Context, templateID string, date time.Time) (bool, error)
	ListByTemplate(ctx context.Context, templateID string) ([]domain.DeletedRecurringInstance, error)
}

// DeletedInstanceWriter defines write operations for the deleted-instance ledger
type DeletedInstanceWriter interface {
	// Record writes a tombstone. Recording an existing tombstone is a no-op.
	Record(ctx context.Context, instance domain.DeletedRecurringInstance) error

	// Restore removes a tombstone and reports whether one existed.
	Restore(ctx context.Context, templateID string, date time.Time) (bool, error)
}

// DeletedInstanceRepositoryFacade combines all ledger interfaces
type DeletedInstanceRepositoryFacade interface {
	DeletedInstanceReader
	DeletedInstanceWriter
}
