package mapping

import (
	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	"github.com/SscSPs/construction_budget_app/internal/models"
)

// ToModelRecurringTemplate converts a domain RecurringTemplate to a model RecurringTemplate
func ToModelRecurringTemplate(d domain.RecurringTemplate) models.RecurringTemplate {
	return models.RecurringTemplate{
		TemplateID:     d.TemplateID,
		ProjectID:      d.ProjectID,
		Description:    d.Description,
		Kind:           string(d.Kind),
		Amount:         d.Amount,
		CategoryID:     d.CategoryID,
		SupplierID:     d.SupplierID,
		PaymentMethod:  d.PaymentMethod,
		Notes:          d.Notes,
		Frequency:      string(d.Frequency),
		DayOfMonth:     d.DayOfMonth,
		StartDate:      domain.DateOf(d.StartDate),
		EndType:        string(d.EndType),
		EndDate:        d.EndDate,
		MaxOccurrences: d.MaxOccurrences,
		IsActive:       d.IsActive,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRecurringTemplate converts a model RecurringTemplate to a domain RecurringTemplate
func ToDomainRecurringTemplate(m models.RecurringTemplate) domain.RecurringTemplate {
	return domain.RecurringTemplate{
		TemplateID:     m.TemplateID,
		ProjectID:      m.ProjectID,
		Description:    m.Description,
		Kind:           domain.TransactionKind(m.Kind),
		Amount:         m.Amount,
		CategoryID:     m.CategoryID,
		SupplierID:     m.SupplierID,
		PaymentMethod:  m.PaymentMethod,
		Notes:          m.Notes,
		Frequency:      domain.Frequency(m.Frequency),
		DayOfMonth:     m.DayOfMonth,
		StartDate:      domain.DateOf(m.StartDate),
		EndType:        domain.EndType(m.EndType),
		EndDate:        m.EndDate,
		MaxOccurrences: m.MaxOccurrences,
		IsActive:       m.IsActive,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainRecurringTemplateSlice converts a slice of model templates to domain templates
func ToDomainRecurringTemplateSlice(ms []models.RecurringTemplate) []domain.RecurringTemplate {
	if ms == nil {
		return []domain.RecurringTemplate{}
	}
	ds := make([]domain.RecurringTemplate, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRecurringTemplate(m)
	}
	return ds
}

// ToDomainDeletedInstance converts a model tombstone to a domain tombstone
func ToDomainDeletedInstance(m models.DeletedRecurringInstance) domain.DeletedRecurringInstance {
	return domain.DeletedRecurringInstance{
		TemplateID: m.TemplateID,
		TxDate:     domain.DateOf(m.TxDate),
		DeletedAt:  m.DeletedAt,
		DeletedBy:  m.DeletedBy,
	}
}

// ToDomainDeletedInstanceSlice converts a slice of model tombstones
func ToDomainDeletedInstanceSlice(ms []models.DeletedRecurringInstance) []domain.DeletedRecurringInstance {
	ds := make([]domain.DeletedRecurringInstance, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainDeletedInstance(m)
	}
	return ds
}
