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

type PgxProjectRepository struct {
	BaseRepository
}

func newPgxProjectRepository(pool *pgxpool.Pool) portsrepo.ProjectRepositoryFacade {
	return &PgxProjectRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ProjectRepositoryFacade = (*PgxProjectRepository)(nil)

var FULL_PROJECT_SELECT_QUERY = `
SELECT
	p.project_id, p.name, p.contract_start_date, p.contract_end_date, p.renewal_due_at, p.is_active,
	p.created_at, p.created_by, p.last_updated_at, p.last_updated_by
FROM projects p
`

func (r *PgxProjectRepository) getProjects(ctx context.Context, filterQuery string, args ...any) ([]domain.Project, error) {
	rows, err := r.Pool.Query(ctx, FULL_PROJECT_SELECT_QUERY+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query projects", err)
	}
	defer rows.Close()

	modelProjects, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Project])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to collect project rows", err)
	}
	return mapping.ToDomainProjectSlice(modelProjects), nil
}

func (r *PgxProjectRepository) FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	projects, err := r.getProjects(ctx, `WHERE p.project_id = $1`, projectID)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, apperrors.NewNotFoundError("project " + projectID + " not found")
	}
	return &projects[0], nil
}

func (r *PgxProjectRepository) GetContractStartDate(ctx context.Context, projectID string) (*time.Time, error) {
	var start *time.Time
	err := r.Pool.QueryRow(ctx, `SELECT contract_start_date FROM projects WHERE project_id = $1;`, projectID).Scan(&start)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("project " + projectID + " not found")
		}
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to load contract start date of project "+projectID, err)
	}
	if start != nil {
		d := domain.DateOf(*start)
		start = &d
	}
	return start, nil
}

func (r *PgxProjectRepository) ListProjectsWithContractEndingBy(ctx context.Context, date time.Time) ([]domain.Project, error) {
	filter := `
WHERE p.is_active
  AND p.contract_end_date IS NOT NULL
  AND p.contract_end_date <= $1
  AND p.renewal_due_at IS NULL
ORDER BY p.contract_end_date, p.project_id;`
	return r.getProjects(ctx, filter, domain.DateOf(date))
}

func (r *PgxProjectRepository) MarkRenewalDue(ctx context.Context, projectID string, at time.Time) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE projects SET renewal_due_at = $2 WHERE project_id = $1;`, projectID, at)
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to mark renewal due for project "+projectID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("project " + projectID + " not found")
	}
	return nil
}

type PgxCategoryRepository struct {
	BaseRepository
}

func newPgxCategoryRepository(pool *pgxpool.Pool) portsrepo.CategoryReader {
	return &PgxCategoryRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.CategoryReader = (*PgxCategoryRepository)(nil)

func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	query := `SELECT category_id, project_id, name, is_active FROM categories WHERE category_id = $1;`
	var m models.Category
	err := r.Pool.QueryRow(ctx, query, categoryID).Scan(&m.CategoryID, &m.ProjectID, &m.Name, &m.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("category " + categoryID + " not found")
		}
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to find category "+categoryID, err)
	}
	c := mapping.ToDomainCategory(m)
	return &c, nil
}
