package services

import (
	portsrepo "github.com/SscSPs/construction_budget_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/construction_budget_app/internal/core/ports/services"
	"github.com/SscSPs/construction_budget_app/internal/platform/config"
	"github.com/jonboulle/clockwork"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, clock clockwork.Clock) *portssvc.ServiceContainer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	container := &portssvc.ServiceContainer{Clock: clock}

	container.Generator = NewRecurringGeneratorService(
		repos.TemplateRepo,
		repos.TransactionRepo,
		repos.DeletedInstanceRepo,
		repos.ProjectRepo,
		WithGeneratorClock(clock),
	)

	container.Template = NewRecurringTemplateService(
		repos.TemplateRepo,
		repos.TransactionRepo,
		repos.ProjectRepo,
		repos.CategoryRepo,
		WithTemplateClock(clock),
	)

	container.Transaction = NewRecurringTransactionService(
		repos.TransactionRepo,
		repos.DeletedInstanceRepo,
		repos.TemplateRepo,
		clock,
	)

	container.Renewal = NewContractRenewalService(repos.ProjectRepo, cfg.RenewalLookaheadDays)

	return container
}
