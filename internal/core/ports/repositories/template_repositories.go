package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/core/domain"
)

// DueTemplateQuery selects the templates that may generate on Date.
type DueTemplateQuery struct {
	Date time.Time
	// ProjectID narrows the selection to one project when set.
	ProjectID *string
	// IncludeOverflow also selects templates whose day_of_month is past Date's day.
	// Only meaningful when Date is the last day of its month.
	IncludeOverflow bool
}

// TemplateReader defines read operations for recurring templates
type TemplateReader interface {
	// FindDueTemplates returns active templates whose day, start date and end date admit q.Date.
	// The occurrence limit is pre-filtered here but must be re-checked by the caller.
	FindDueTemplates(ctx context.Context, q DueTemplateQuery) ([]domain.RecurringTemplate, error)

	// FindTemplateByID retrieves a template by its ID.
	FindTemplateByID(ctx context.Context, templateID string) (*domain.RecurringTemplate, error)

	// ListTemplatesByProject lists templates of a project, optionally only active ones.
	ListTemplatesByProject(ctx context.Context, projectID string, activeOnly bool) ([]domain.RecurringTemplate, error)
}

// TemplateWriter defines write operations for recurring templates
type TemplateWriter interface {
	SaveTemplate(ctx context.Context, template domain.RecurringTemplate) error
	UpdateTemplate(ctx context.Context, template domain.RecurringTemplate) error
	DeactivateTemplate(ctx context.Context, templateID string, userID string, at time.Time) error
	DeleteTemplate(ctx context.Context, templateID string) error
}

// TemplateRepositoryFacade combines all template repository interfaces
type TemplateRepositoryFacade interface {
	TemplateReader
	TemplateWriter
}

// TemplateRepositoryWithTx extends TemplateRepositoryFacade with transaction capabilities
type TemplateRepositoryWithTx interface {
	TemplateRepositoryFacade
	TransactionManager
}
