package mapping

import (
	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	"github.com/SscSPs/construction_budget_app/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:       d.TransactionID,
		ProjectID:           d.ProjectID,
		Kind:                string(d.Kind),
		Amount:              d.Amount,
		Description:         d.Description,
		CategoryID:          d.CategoryID,
		SupplierID:          d.SupplierID,
		PaymentMethod:       d.PaymentMethod,
		Notes:               d.Notes,
		TxDate:              domain.DateOf(d.TxDate),
		RecurringTemplateID: d.RecurringTemplateID,
		IsGenerated:         d.IsGenerated,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:       m.TransactionID,
		ProjectID:           m.ProjectID,
		Kind:                domain.TransactionKind(m.Kind),
		Amount:              m.Amount,
		Description:         m.Description,
		CategoryID:          m.CategoryID,
		SupplierID:          m.SupplierID,
		PaymentMethod:       m.PaymentMethod,
		Notes:               m.Notes,
		TxDate:              domain.DateOf(m.TxDate),
		RecurringTemplateID: m.RecurringTemplateID,
		IsGenerated:         m.IsGenerated,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of model transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
