package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringTemplate maps a row of recurring_transaction_templates.
type RecurringTemplate struct {
	TemplateID     string          `db:"template_id"`
	ProjectID      string          `db:"project_id"`
	Description    string          `db:"description"`
	Kind           string          `db:"kind"`
	Amount         decimal.Decimal `db:"amount"`
	CategoryID     *string         `db:"category_id"`
	SupplierID     *string         `db:"supplier_id"`
	PaymentMethod  *string         `db:"payment_method"`
	Notes          *string         `db:"notes"`
	Frequency      string          `db:"frequency"`
	DayOfMonth     int             `db:"day_of_month"`
	StartDate      time.Time       `db:"start_date"`
	EndType        string          `db:"end_type"`
	EndDate        *time.Time      `db:"end_date"`
	MaxOccurrences *int            `db:"max_occurrences"`
	IsActive       bool            `db:"is_active"`
	AuditFields
}

// DeletedRecurringInstance maps a row of deleted_recurring_instances.
type DeletedRecurringInstance struct {
	TemplateID string    `db:"template_id"`
	TxDate     time.Time `db:"tx_date"`
	DeletedAt  time.Time `db:"deleted_at"`
	DeletedBy  string    `db:"deleted_by"`
}
