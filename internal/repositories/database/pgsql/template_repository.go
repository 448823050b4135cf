package pgsql

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/apperrors"
	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	portsrepo "github.com/SscSPs/construction_budget_app/internal/core/ports/repositories"
	"github.com/SscSPs/construction_budget_app/internal/models"
	"github.com/SscSPs/construction_budget_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTemplateRepository struct {
	BaseRepository
}

// newPgxTemplateRepository creates a new repository for recurring templates.
func newPgxTemplateRepository(pool *pgxpool.Pool) portsrepo.TemplateRepositoryWithTx {
	return &PgxTemplateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxTemplateRepository implements portsrepo.TemplateRepositoryWithTx
var _ portsrepo.TemplateRepositoryWithTx = (*PgxTemplateRepository)(nil)

var FULL_TEMPLATE_SELECT_QUERY = `
SELECT
	t.template_id, t.project_id, t.description, t.kind, t.amount,
	t.category_id, t.supplier_id, t.payment_method, t.notes,
	t.frequency, t.day_of_month, t.start_date, t.end_type, t.end_date, t.max_occurrences,
	t.is_active, t.created_at, t.created_by, t.last_updated_at, t.last_updated_by
FROM recurring_transaction_templates t
`

// getTemplates runs the full select with the given filter.
func (r *PgxTemplateRepository) getTemplates(ctx context.Context, filterQuery string, args ...any) ([]domain.RecurringTemplate, error) {
	rows, err := r.Pool.Query(ctx, FULL_TEMPLATE_SELECT_QUERY+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query recurring templates", err)
	}
	defer rows.Close()

	modelTemplates, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.RecurringTemplate])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.RecurringTemplate{}, nil
		}
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to collect recurring template rows", err)
	}
	return mapping.ToDomainRecurringTemplateSlice(modelTemplates), nil
}

// FindDueTemplates selects templates that may generate on q.Date.
// The occurrence-limit predicate is advisory; callers re-count per template.
func (r *PgxTemplateRepository) FindDueTemplates(ctx context.Context, q portsrepo.DueTemplateQuery) ([]domain.RecurringTemplate, error) {
	date := domain.DateOf(q.Date)
	filter := `
WHERE t.is_active
  AND t.start_date <= $1
  AND (t.day_of_month = $2 OR ($3 AND t.day_of_month > $2))
  AND (t.end_type <> 'ON_DATE' OR t.end_date >= $1)
  AND (t.end_type <> 'AFTER_OCCURRENCES' OR t.max_occurrences > (
        SELECT COUNT(*) FROM transactions tx
        WHERE tx.recurring_template_id = t.template_id AND tx.is_generated))
  AND ($4::varchar IS NULL OR t.project_id = $4)
ORDER BY t.project_id, t.template_id;`
	return r.getTemplates(ctx, filter, date, date.Day(), q.IncludeOverflow, q.ProjectID)
}

func (r *PgxTemplateRepository) FindTemplateByID(ctx context.Context, templateID string) (*domain.RecurringTemplate, error) {
	templates, err := r.getTemplates(ctx, `WHERE t.template_id = $1`, templateID)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, apperrors.NewNotFoundError("recurring template " + templateID + " not found")
	}
	return &templates[0], nil
}

func (r *PgxTemplateRepository) ListTemplatesByProject(ctx context.Context, projectID string, activeOnly bool) ([]domain.RecurringTemplate, error) {
	filter := `WHERE t.project_id = $1 AND (NOT $2 OR t.is_active) ORDER BY t.start_date, t.template_id;`
	return r.getTemplates(ctx, filter, projectID, activeOnly)
}

func (r *PgxTemplateRepository) SaveTemplate(ctx context.Context, template domain.RecurringTemplate) error {
	m := mapping.ToModelRecurringTemplate(template)
	query := `
		INSERT INTO recurring_transaction_templates (
			template_id, project_id, description, kind, amount,
			category_id, supplier_id, payment_method, notes,
			frequency, day_of_month, start_date, end_type, end_date, max_occurrences,
			is_active, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.TemplateID, m.ProjectID, m.Description, m.Kind, m.Amount,
		m.CategoryID, m.SupplierID, m.PaymentMethod, m.Notes,
		m.Frequency, m.DayOfMonth, m.StartDate, m.EndType, m.EndDate, m.MaxOccurrences,
		m.IsActive, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return translateTemplateWriteError(err, "failed to save recurring template "+m.TemplateID)
	}
	return nil
}

func (r *PgxTemplateRepository) UpdateTemplate(ctx context.Context, template domain.RecurringTemplate) error {
	m := mapping.ToModelRecurringTemplate(template)
	query := `
		UPDATE recurring_transaction_templates
		SET description = $2, kind = $3, amount = $4,
			category_id = $5, supplier_id = $6, payment_method = $7, notes = $8,
			day_of_month = $9, start_date = $10, end_type = $11, end_date = $12, max_occurrences = $13,
			last_updated_at = $14, last_updated_by = $15
		WHERE template_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.TemplateID, m.Description, m.Kind, m.Amount,
		m.CategoryID, m.SupplierID, m.PaymentMethod, m.Notes,
		m.DayOfMonth, m.StartDate, m.EndType, m.EndDate, m.MaxOccurrences,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return translateTemplateWriteError(err, "failed to update recurring template "+m.TemplateID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("recurring template " + m.TemplateID + " not found")
	}
	return nil
}

func (r *PgxTemplateRepository) DeactivateTemplate(ctx context.Context, templateID string, userID string, at time.Time) error {
	query := `
		UPDATE recurring_transaction_templates
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE template_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, templateID, at, userID)
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to deactivate recurring template "+templateID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("recurring template " + templateID + " not found")
	}
	return nil
}

// DeleteTemplate removes a template. Tombstones cascade; generated transactions
// block the delete through their foreign key.
func (r *PgxTemplateRepository) DeleteTemplate(ctx context.Context, templateID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM recurring_transaction_templates WHERE template_id = $1;`, templateID)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return apperrors.NewConflictError("recurring template " + templateID + " still has transactions; deactivate it instead")
		}
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to delete recurring template "+templateID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("recurring template " + templateID + " not found")
	}
	return nil
}

func translateTemplateWriteError(err error, msg string) error {
	switch code, constraint := pgErrorCode(err); code {
	case pgUniqueViolation:
		return apperrors.NewDuplicateError(msg + ": already exists")
	case pgForeignKeyViolation:
		return apperrors.NewValidationFailedError(msg + ": referenced record does not exist (" + constraint + ")")
	case pgCheckViolation:
		return apperrors.NewValidationFailedError(msg + ": " + constraint)
	}
	return apperrors.NewAppError(http.StatusInternalServerError, msg, err)
}
