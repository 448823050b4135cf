package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind indicates whether money comes into or leaves a project.
type TransactionKind string

const (
	Income  TransactionKind = "INCOME"
	Expense TransactionKind = "EXPENSE"
)

// IsValid reports whether k is a known kind.
func (k TransactionKind) IsValid() bool {
	return k == Income || k == Expense
}

// Transaction is a dated financial movement on a project.
// Generated transactions carry the template they were materialised from;
// at most one generated transaction exists per (RecurringTemplateID, TxDate).
type Transaction struct {
	TransactionID       string          `json:"transactionID"`
	ProjectID           string          `json:"projectID"`
	Kind                TransactionKind `json:"kind"`
	Amount              decimal.Decimal `json:"amount"`
	Description         string          `json:"description"`
	CategoryID          *string         `json:"categoryID,omitempty"`
	SupplierID          *string         `json:"supplierID,omitempty"`
	PaymentMethod       *string         `json:"paymentMethod,omitempty"`
	Notes               *string         `json:"notes,omitempty"`
	TxDate              time.Time       `json:"txDate"`
	RecurringTemplateID *string         `json:"recurringTemplateID,omitempty"`
	IsGenerated         bool            `json:"isGenerated"`
	AuditFields
}

// IsRecurringInstance reports whether the transaction came from a template.
func (t Transaction) IsRecurringInstance() bool {
	return t.IsGenerated || t.RecurringTemplateID != nil
}

// GeneratedFieldUpdate is the subset of template fields pushed onto
// already-generated transactions when a template changes.
type GeneratedFieldUpdate struct {
	Amount        decimal.Decimal
	Description   string
	CategoryID    *string
	SupplierID    *string
	PaymentMethod *string
	Notes         *string
	UpdatedBy     string
	UpdatedAt     time.Time
}
