package services

import "github.com/jonboulle/clockwork"

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used by the handlers, the scheduler jobs and the CLI.
type ServiceContainer struct {
	Generator   RecurringGeneratorSvc
	Template    RecurringTemplateSvcFacade
	Transaction RecurringTransactionSvc
	Renewal     ContractRenewalSvc

	// Clock is the time source the services were built with.
	Clock clockwork.Clock
}
