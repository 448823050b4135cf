package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/core/domain"
)

// ProjectReader defines read operations for projects
type ProjectReader interface {
	FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error)

	// GetContractStartDate returns nil when the project has no contract start date.
	GetContractStartDate(ctx context.Context, projectID string) (*time.Time, error)

	// ListProjectsWithContractEndingBy lists active projects whose contract ends on or
	// before date and that are not yet flagged for renewal.
	ListProjectsWithContractEndingBy(ctx context.Context, date time.Time) ([]domain.Project, error)
}

// ProjectWriter defines write operations for projects
type ProjectWriter interface {
	MarkRenewalDue(ctx context.Context, projectID string, at time.Time) error
}

// ProjectRepositoryFacade combines all project repository interfaces
type ProjectRepositoryFacade interface {
	ProjectReader
	ProjectWriter
}

// CategoryReader defines read operations for categories
type CategoryReader interface {
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)
}
