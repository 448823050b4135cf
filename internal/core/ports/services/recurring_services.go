package services

import (
	"context"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	"github.com/SscSPs/construction_budget_app/internal/dto"
)

// RecurringGeneratorSvc materialises transactions from recurring templates.
// Every method is idempotent per (template, date).
type RecurringGeneratorSvc interface {
	// GenerateForDate generates templates whose day_of_month equals date's day.
	GenerateForDate(ctx context.Context, date time.Time) (*domain.GenerationReport, error)

	// GenerateForMonth generates every day of the month; templates whose day_of_month
	// does not exist in the month generate on its last day.
	GenerateForMonth(ctx context.Context, year int, month time.Month) (*domain.GenerationReport, error)

	// GenerateMonthToDate generates the current month from its first day up to now.
	GenerateMonthToDate(ctx context.Context, now time.Time) (*domain.GenerationReport, error)

	// GenerateBacklog generates every day in [start, end].
	GenerateBacklog(ctx context.Context, start, end time.Time) (*domain.GenerationReport, error)

	// GenerateUpcoming generates every day from today through today+days.
	GenerateUpcoming(ctx context.Context, days int) (*domain.GenerationReport, error)

	// EnsureCaughtUp generates every month touched by the project's active templates up
	// to today and returns the number of transactions created.
	EnsureCaughtUp(ctx context.Context, projectID string) (int, error)

	// FutureOccurrences projects a template's instances without persisting anything.
	FutureOccurrences(ctx context.Context, templateID string, start time.Time, monthsAhead int) ([]domain.FutureOccurrence, error)
}

// RecurringTemplateReaderSvc defines read operations for templates
type RecurringTemplateReaderSvc interface {
	GetTemplate(ctx context.Context, templateID string) (*domain.RecurringTemplate, error)
	ListTemplates(ctx context.Context, projectID string, activeOnly bool) ([]domain.RecurringTemplate, error)
}

// RecurringTemplateWriterSvc defines write operations for templates
type RecurringTemplateWriterSvc interface {
	CreateTemplate(ctx context.Context, projectID string, req dto.CreateRecurringTemplateRequest, creatorUserID string) (*domain.RecurringTemplate, error)

	// UpdateTemplate applies req and propagates changed fields onto generated transactions.
	// Propagation failures do not fail the update; they are returned as warnings.
	UpdateTemplate(ctx context.Context, templateID string, req dto.UpdateRecurringTemplateRequest, userID string) (*domain.RecurringTemplate, []string, error)

	DeactivateTemplate(ctx context.Context, templateID string, userID string) error

	// DeleteTemplate hard-deletes a template that has never generated a transaction.
	DeleteTemplate(ctx context.Context, templateID string) error
}

// RecurringTemplateSvcFacade combines all template service interfaces
type RecurringTemplateSvcFacade interface {
	RecurringTemplateReaderSvc
	RecurringTemplateWriterSvc
}

// RecurringTransactionSvc manages generated instances and their tombstones.
type RecurringTransactionSvc interface {
	// DeleteTransaction deletes a transaction; recurring instances are tombstoned on a best-effort basis.
	DeleteTransaction(ctx context.Context, transactionID string, userID string) error

	// RestoreInstance removes a tombstone so the date can generate again.
	RestoreInstance(ctx context.Context, templateID string, date time.Time) (bool, error)

	ListDeletedInstances(ctx context.Context, templateID string) ([]domain.DeletedRecurringInstance, error)

	ListGeneratedTransactions(ctx context.Context, templateID string, params dto.ListGeneratedTransactionsParams) (*dto.ListGeneratedTransactionsResponse, error)
}

// ContractRenewalSvc flags projects whose contract is about to end.
type ContractRenewalSvc interface {
	// CheckRenewals marks projects ending within the lookahead window and returns how many were marked.
	CheckRenewals(ctx context.Context, now time.Time) (int, error)
}
