package pgsql

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/apperrors"
	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	portsrepo "github.com/SscSPs/construction_budget_app/internal/core/ports/repositories"
	"github.com/SscSPs/construction_budget_app/internal/models"
	"github.com/SscSPs/construction_budget_app/internal/utils/mapping"
	"github.com/SscSPs/construction_budget_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// generatedUniqueIndex enforces one generated transaction per (template, date).
const generatedUniqueIndex = "uq_transactions_generated_template_date"

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for project transactions.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryWithTx
var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

var FULL_TRANSACTION_SELECT_QUERY = `
SELECT
	tx.transaction_id, tx.project_id, tx.kind, tx.amount, tx.description,
	tx.category_id, tx.supplier_id, tx.payment_method, tx.notes, tx.tx_date,
	tx.recurring_template_id, tx.is_generated,
	tx.created_at, tx.created_by, tx.last_updated_at, tx.last_updated_by
FROM transactions tx
`

func (r *PgxTransactionRepository) getTransactions(ctx context.Context, filterQuery string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.Pool.Query(ctx, FULL_TRANSACTION_SELECT_QUERY+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query transactions", err)
	}
	defer rows.Close()

	modelTxns, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Transaction])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Transaction{}, nil
		}
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to collect transaction rows", err)
	}
	return mapping.ToDomainTransactionSlice(modelTxns), nil
}

func (r *PgxTransactionRepository) GeneratedExists(ctx context.Context, templateID string, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE recurring_template_id = $1 AND tx_date = $2 AND is_generated
		);
	`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, templateID, domain.DateOf(date)).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(http.StatusInternalServerError, "failed to check generated transaction for template "+templateID, err)
	}
	return exists, nil
}

func (r *PgxTransactionRepository) CountGenerated(ctx context.Context, templateID string) (int, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE recurring_template_id = $1 AND is_generated;`
	var count int
	if err := r.Pool.QueryRow(ctx, query, templateID).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(http.StatusInternalServerError, "failed to count generated transactions for template "+templateID, err)
	}
	return count, nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txns, err := r.getTransactions(ctx, `WHERE tx.transaction_id = $1`, transactionID)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, apperrors.NewNotFoundError("transaction " + transactionID + " not found")
	}
	return &txns[0], nil
}

// ListGeneratedByTemplate returns one page plus the token of the next page, if any.
func (r *PgxTransactionRepository) ListGeneratedByTemplate(ctx context.Context, templateID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := []any{templateID}
	filter := `WHERE tx.recurring_template_id = $1 AND tx.is_generated`
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationFailedError("invalid nextToken: " + err.Error())
		}
		filter += ` AND (tx.tx_date, tx.created_at, tx.transaction_id) < ($2, $3, $4)`
		args = append(args, cursor.TxDate, cursor.CreatedAt, cursor.TransactionID)
	}
	// One extra row tells us whether another page exists.
	args = append(args, limit+1)
	filter += ` ORDER BY tx.tx_date DESC, tx.created_at DESC, tx.transaction_id DESC LIMIT $` + strconv.Itoa(len(args))

	txns, err := r.getTransactions(ctx, filter, args...)
	if err != nil {
		return nil, nil, err
	}
	if len(txns) <= limit {
		return txns, nil, nil
	}

	page := txns[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(pagination.Cursor{
		TxDate:        last.TxDate,
		CreatedAt:     last.CreatedAt,
		TransactionID: last.TransactionID,
	})
	return page, &token, nil
}

// SaveGeneratedTransactions inserts the batch in one database transaction with a
// savepoint per row, so a failing row is rolled back alone.
func (r *PgxTransactionRepository) SaveGeneratedTransactions(ctx context.Context, txns []domain.Transaction) ([]error, error) {
	results := make([]error, len(txns))
	if len(txns) == 0 {
		return results, nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	for i, txn := range txns {
		results[i] = insertInSavepoint(ctx, tx, mapping.ToModelTransaction(txn))
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return results, nil
}

func insertInSavepoint(ctx context.Context, tx pgx.Tx, m models.Transaction) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to create savepoint", err)
	}

	query := `
		INSERT INTO transactions (
			transaction_id, project_id, kind, amount, description,
			category_id, supplier_id, payment_method, notes, tx_date,
			recurring_template_id, is_generated,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = sp.Exec(ctx, query,
		m.TransactionID, m.ProjectID, m.Kind, m.Amount, m.Description,
		m.CategoryID, m.SupplierID, m.PaymentMethod, m.Notes, m.TxDate,
		m.RecurringTemplateID, m.IsGenerated,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		_ = sp.Rollback(ctx)
		code, constraint := pgErrorCode(err)
		switch {
		case code == pgUniqueViolation && constraint == generatedUniqueIndex:
			return apperrors.NewDuplicateError("transaction already generated for " + m.TxDate.Format(domain.DateLayout))
		case code == pgForeignKeyViolation:
			return apperrors.NewValidationFailedError("transaction references a missing record (" + constraint + ")")
		}
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to insert transaction "+m.TransactionID, err)
	}

	if err := sp.Commit(ctx); err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to release savepoint", err)
	}
	return nil
}

func (r *PgxTransactionRepository) BulkUpdateGenerated(ctx context.Context, templateID string, update domain.GeneratedFieldUpdate) (int64, error) {
	query := `
		UPDATE transactions
		SET amount = $2, description = $3, category_id = $4, supplier_id = $5,
			payment_method = $6, notes = $7, last_updated_at = $8, last_updated_by = $9
		WHERE recurring_template_id = $1 AND is_generated;
	`
	tag, err := r.Pool.Exec(ctx, query,
		templateID, update.Amount, update.Description, update.CategoryID, update.SupplierID,
		update.PaymentMethod, update.Notes, update.UpdatedAt, update.UpdatedBy,
	)
	if err != nil {
		return 0, apperrors.NewAppError(http.StatusInternalServerError, "failed to propagate template "+templateID+" to generated transactions", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to delete transaction "+transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("transaction " + transactionID + " not found")
	}
	return nil
}
