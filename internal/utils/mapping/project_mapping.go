package mapping

import (
	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	"github.com/SscSPs/construction_budget_app/internal/models"
)

// ToDomainProject converts a model Project to a domain Project
func ToDomainProject(m models.Project) domain.Project {
	return domain.Project{
		ProjectID:         m.ProjectID,
		Name:              m.Name,
		ContractStartDate: m.ContractStartDate,
		ContractEndDate:   m.ContractEndDate,
		RenewalDueAt:      m.RenewalDueAt,
		IsActive:          m.IsActive,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainProjectSlice converts a slice of model projects
func ToDomainProjectSlice(ms []models.Project) []domain.Project {
	ds := make([]domain.Project, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainProject(m)
	}
	return ds
}

// ToDomainCategory converts a model Category to a domain Category
func ToDomainCategory(m models.Category) domain.Category {
	return domain.Category{
		CategoryID: m.CategoryID,
		ProjectID:  m.ProjectID,
		Name:       m.Name,
		IsActive:   m.IsActive,
	}
}
