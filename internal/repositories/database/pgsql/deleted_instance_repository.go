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

// PgxDeletedInstanceRepository stores tombstones of manually deleted recurring instances.
type PgxDeletedInstanceRepository struct {
	BaseRepository
}

func newPgxDeletedInstanceRepository(pool *pgxpool.Pool) portsrepo.DeletedInstanceRepositoryFacade {
	return &PgxDeletedInstanceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.DeletedInstanceRepositoryFacade = (*PgxDeletedInstanceRepository)(nil)

func (r *PgxDeletedInstanceRepository) IsDeleted(ctx context.Context, templateID string, date time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM deleted_recurring_instances WHERE template_id = $1 AND tx_date = $2);`
	var deleted bool
	if err := r.Pool.QueryRow(ctx, query, templateID, domain.DateOf(date)).Scan(&deleted); err != nil {
		return false, apperrors.NewAppError(http.StatusInternalServerError, "failed to check deleted instance for template "+templateID, err)
	}
	return deleted, nil
}

func (r *PgxDeletedInstanceRepository) ListByTemplate(ctx context.Context, templateID string) ([]domain.DeletedRecurringInstance, error) {
	query := `
		SELECT template_id, tx_date, deleted_at, deleted_by
		FROM deleted_recurring_instances
		WHERE template_id = $1
		ORDER BY tx_date;
	`
	rows, err := r.Pool.Query(ctx, query, templateID)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query deleted instances", err)
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.DeletedRecurringInstance])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to collect deleted instance rows", err)
	}
	return mapping.ToDomainDeletedInstanceSlice(items), nil
}

// Record writes a tombstone; an existing tombstone for the same pair is kept as is.
func (r *PgxDeletedInstanceRepository) Record(ctx context.Context, instance domain.DeletedRecurringInstance) error {
	query := `
		INSERT INTO deleted_recurring_instances (template_id, tx_date, deleted_at, deleted_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (template_id, tx_date) DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, query, instance.TemplateID, domain.DateOf(instance.TxDate), instance.DeletedAt, instance.DeletedBy)
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to record deleted instance for template "+instance.TemplateID, err)
	}
	return nil
}

func (r *PgxDeletedInstanceRepository) Restore(ctx context.Context, templateID string, date time.Time) (bool, error) {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM deleted_recurring_instances WHERE template_id = $1 AND tx_date = $2;`, templateID, domain.DateOf(date))
	if err != nil {
		return false, apperrors.NewAppError(http.StatusInternalServerError, "failed to restore deleted instance for template "+templateID, err)
	}
	return tag.RowsAffected() > 0, nil
}
