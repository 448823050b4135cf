package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction maps a row of transactions.
type Transaction struct {
	TransactionID       string          `db:"transaction_id"`
	ProjectID           string          `db:"project_id"`
	Kind                string          `db:"kind"`
	Amount              decimal.Decimal `db:"amount"`
	Description         string          `db:"description"`
	CategoryID          *string         `db:"category_id"`
	SupplierID          *string         `db:"supplier_id"`
	PaymentMethod       *string         `db:"payment_method"`
	Notes               *string         `db:"notes"`
	TxDate              time.Time       `db:"tx_date"`
	RecurringTemplateID *string         `db:"recurring_template_id"`
	IsGenerated         bool            `db:"is_generated"`
	AuditFields
}
