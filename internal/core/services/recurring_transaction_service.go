package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/apperrors"
	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	portsrepo "github.com/SscSPs/construction_budget_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/construction_budget_app/internal/core/ports/services"
	"github.com/SscSPs/construction_budget_app/internal/dto"
	"github.com/jonboulle/clockwork"
)

type recurringTransactionService struct {
	BaseService
	transactionRepo portsrepo.TransactionRepositoryFacade
	deletedRepo     portsrepo.DeletedInstanceRepositoryFacade
	templateRepo    portsrepo.TemplateReader
	clock           clockwork.Clock
}

// NewRecurringTransactionService creates the service that deletes and restores generated instances.
func NewRecurringTransactionService(
	transactionRepo portsrepo.TransactionRepositoryFacade,
	deletedRepo portsrepo.DeletedInstanceRepositoryFacade,
	templateRepo portsrepo.TemplateReader,
	clock clockwork.Clock,
) portssvc.RecurringTransactionSvc {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &recurringTransactionService{
		transactionRepo: transactionRepo,
		deletedRepo:     deletedRepo,
		templateRepo:    templateRepo,
		clock:           clock,
	}
}

var _ portssvc.RecurringTransactionSvc = (*recurringTransactionService)(nil)

// DeleteTransaction deletes the transaction first. Writing the tombstone afterwards is
// best effort: a failure there is logged and the deletion still stands.
func (s *recurringTransactionService) DeleteTransaction(ctx context.Context, transactionID string, userID string) error {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction", slog.String("transaction_id", transactionID))
		}
		return err
	}

	if err := s.transactionRepo.DeleteTransaction(ctx, transactionID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		}
		return err
	}
	s.LogInfo(ctx, "Transaction deleted", slog.String("transaction_id", transactionID))

	if !txn.IsRecurringInstance() || txn.RecurringTemplateID == nil {
		return nil
	}

	tombstone := domain.DeletedRecurringInstance{
		TemplateID: *txn.RecurringTemplateID,
		TxDate:     domain.DateOf(txn.TxDate),
		DeletedAt:  s.clock.Now().UTC(),
		DeletedBy:  userID,
	}
	if err := s.deletedRepo.Record(ctx, tombstone); err != nil {
		s.LogError(ctx, err, "Failed to record deleted recurring instance",
			slog.String("transaction_id", transactionID),
			slog.String("template_id", tombstone.TemplateID),
			slog.String("date", tombstone.TxDate.Format(domain.DateLayout)))
		return nil
	}
	s.LogInfo(ctx, "Recorded deleted recurring instance",
		slog.String("template_id", tombstone.TemplateID),
		slog.String("date", tombstone.TxDate.Format(domain.DateLayout)))
	return nil
}

func (s *recurringTransactionService) RestoreInstance(ctx context.Context, templateID string, date time.Time) (bool, error) {
	restored, err := s.deletedRepo.Restore(ctx, templateID, domain.DateOf(date))
	if err != nil {
		s.LogError(ctx, err, "Failed to restore recurring instance",
			slog.String("template_id", templateID),
			slog.String("date", domain.DateOf(date).Format(domain.DateLayout)))
		return false, err
	}
	if restored {
		s.LogInfo(ctx, "Restored recurring instance",
			slog.String("template_id", templateID),
			slog.String("date", domain.DateOf(date).Format(domain.DateLayout)))
	}
	return restored, nil
}

func (s *recurringTransactionService) ListDeletedInstances(ctx context.Context, templateID string) ([]domain.DeletedRecurringInstance, error) {
	if _, err := s.templateRepo.FindTemplateByID(ctx, templateID); err != nil {
		return nil, err
	}
	items, err := s.deletedRepo.ListByTemplate(ctx, templateID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list deleted recurring instances", slog.String("template_id", templateID))
		return nil, err
	}
	if items == nil {
		return []domain.DeletedRecurringInstance{}, nil
	}
	return items, nil
}

func (s *recurringTransactionService) ListGeneratedTransactions(ctx context.Context, templateID string, params dto.ListGeneratedTransactionsParams) (*dto.ListGeneratedTransactionsResponse, error) {
	if _, err := s.templateRepo.FindTemplateByID(ctx, templateID); err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	txns, nextToken, err := s.transactionRepo.ListGeneratedByTemplate(ctx, templateID, limit, params.NextToken)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list generated transactions", slog.String("template_id", templateID))
		}
		return nil, err
	}
	return &dto.ListGeneratedTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}
