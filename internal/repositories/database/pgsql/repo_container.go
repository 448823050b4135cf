package pgsql

import (
	portsrepo "github.com/SscSPs/construction_budget_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every pgx repository onto one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TemplateRepo:        newPgxTemplateRepository(dbPool),
		TransactionRepo:     newPgxTransactionRepository(dbPool),
		DeletedInstanceRepo: newPgxDeletedInstanceRepository(dbPool),
		ProjectRepo:         newPgxProjectRepository(dbPool),
		CategoryRepo:        newPgxCategoryRepository(dbPool),
	}
}
