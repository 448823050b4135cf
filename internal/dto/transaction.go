package dto

import (
	"time"

	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionResponse defines the data returned for a project transaction.
type TransactionResponse struct {
	TransactionID       string          `json:"transactionID"`
	ProjectID           string          `json:"projectID"`
	Kind                string          `json:"kind"`
	Amount              decimal.Decimal `json:"amount"`
	Description         string          `json:"description"`
	CategoryID          *string         `json:"categoryID,omitempty"`
	SupplierID          *string         `json:"supplierID,omitempty"`
	PaymentMethod       *string         `json:"paymentMethod,omitempty"`
	Notes               *string         `json:"notes,omitempty"`
	TxDate              string          `json:"txDate"`
	RecurringTemplateID *string         `json:"recurringTemplateID,omitempty"`
	IsGenerated         bool            `json:"isGenerated"`
	CreatedAt           time.Time       `json:"createdAt"`
	CreatedBy           string          `json:"createdBy"`
}

// ListGeneratedTransactionsParams holds pagination parameters for generated transactions.
type ListGeneratedTransactionsParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListGeneratedTransactionsResponse is one page of generated transactions.
type ListGeneratedTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// DeletedInstanceResponse describes a tombstoned (template, date) pair.
type DeletedInstanceResponse struct {
	TemplateID string    `json:"templateID"`
	TxDate     string    `json:"txDate"`
	DeletedAt  time.Time `json:"deletedAt"`
	DeletedBy  string    `json:"deletedBy"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:       txn.TransactionID,
		ProjectID:           txn.ProjectID,
		Kind:                string(txn.Kind),
		Amount:              txn.Amount,
		Description:         txn.Description,
		CategoryID:          txn.CategoryID,
		SupplierID:          txn.SupplierID,
		PaymentMethod:       txn.PaymentMethod,
		Notes:               txn.Notes,
		TxDate:              FormatDate(txn.TxDate),
		RecurringTemplateID: txn.RecurringTemplateID,
		IsGenerated:         txn.IsGenerated,
		CreatedAt:           txn.CreatedAt,
		CreatedBy:           txn.CreatedBy,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ToDeletedInstanceResponses converts tombstones to DTOs.
func ToDeletedInstanceResponses(items []domain.DeletedRecurringInstance) []DeletedInstanceResponse {
	responses := make([]DeletedInstanceResponse, len(items))
	for i, item := range items {
		responses[i] = DeletedInstanceResponse{
			TemplateID: item.TemplateID,
			TxDate:     FormatDate(item.TxDate),
			DeletedAt:  item.DeletedAt,
			DeletedBy:  item.DeletedBy,
		}
	}
	return responses
}
