package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency of a recurring template. Only monthly recurrence exists today.
type Frequency string

const (
	Monthly Frequency = "MONTHLY"
)

// EndType selects which end condition of a template is authoritative.
type EndType string

const (
	EndNever            EndType = "NEVER"
	EndOnDate           EndType = "ON_DATE"
	EndAfterOccurrences EndType = "AFTER_OCCURRENCES"
)

// IsValid reports whether e is a known end type.
func (e EndType) IsValid() bool {
	switch e {
	case EndNever, EndOnDate, EndAfterOccurrences:
		return true
	}
	return false
}

// RecurringTemplate describes a transaction that recurs on a day of every month.
type RecurringTemplate struct {
	TemplateID     string          `json:"templateID"`
	ProjectID      string          `json:"projectID"`
	Description    string          `json:"description"`
	Kind           TransactionKind `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	CategoryID     *string         `json:"categoryID,omitempty"` // Required at creation, can become NULL if the category is removed
	SupplierID     *string         `json:"supplierID,omitempty"`
	PaymentMethod  *string         `json:"paymentMethod,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
	Frequency      Frequency       `json:"frequency"`
	DayOfMonth     int             `json:"dayOfMonth"` // 1-31, clamped to the month's last day by month generation
	StartDate      time.Time       `json:"startDate"`
	EndType        EndType         `json:"endType"`
	EndDate        *time.Time      `json:"endDate,omitempty"`        // ON_DATE only
	MaxOccurrences *int            `json:"maxOccurrences,omitempty"` // AFTER_OCCURRENCES only
	IsActive       bool            `json:"isActive"`
	AuditFields
}

// HasCategory reports whether the template can produce a transaction.
func (t RecurringTemplate) HasCategory() bool {
	return t.CategoryID != nil && *t.CategoryID != ""
}

// EndedBy reports whether the template's end date excludes date.
// Occurrence limits need the store and are not evaluated here.
func (t RecurringTemplate) EndedBy(date time.Time) bool {
	if t.EndType != EndOnDate || t.EndDate == nil {
		return false
	}
	return DateOf(date).After(DateOf(*t.EndDate))
}

// NewInstance snapshots the template into a generated transaction for date,
// audited as createdBy.
func (t RecurringTemplate) NewInstance(transactionID, createdBy string, date, now time.Time) Transaction {
	templateID := t.TemplateID
	return Transaction{
		TransactionID:       transactionID,
		ProjectID:           t.ProjectID,
		Kind:                t.Kind,
		Amount:              t.Amount,
		Description:         t.Description,
		CategoryID:          copyString(t.CategoryID),
		SupplierID:          copyString(t.SupplierID),
		PaymentMethod:       copyString(t.PaymentMethod),
		Notes:               copyString(t.Notes),
		TxDate:              DateOf(date),
		RecurringTemplateID: &templateID,
		IsGenerated:         true,
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     createdBy,
			LastUpdatedAt: now,
			LastUpdatedBy: createdBy,
		},
	}
}

// FieldUpdate returns the propagated subset of the template's current values.
func (t RecurringTemplate) FieldUpdate(updatedBy string, now time.Time) GeneratedFieldUpdate {
	return GeneratedFieldUpdate{
		Amount:        t.Amount,
		Description:   t.Description,
		CategoryID:    copyString(t.CategoryID),
		SupplierID:    copyString(t.SupplierID),
		PaymentMethod: copyString(t.PaymentMethod),
		Notes:         copyString(t.Notes),
		UpdatedBy:     updatedBy,
		UpdatedAt:     now,
	}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// DeletedRecurringInstance is a tombstone: the instance of TemplateID on
// TxDate was removed by a user and must not be generated again.
type DeletedRecurringInstance struct {
	TemplateID string    `json:"templateID"`
	TxDate     time.Time `json:"txDate"`
	DeletedAt  time.Time `json:"deletedAt"`
	DeletedBy  string    `json:"deletedBy"`
}

// FutureOccurrence is a projected instance of a template. Nothing is persisted.
type FutureOccurrence struct {
	Date             time.Time       `json:"date"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	CategoryID       *string         `json:"categoryID,omitempty"`
	PaymentMethod    *string         `json:"paymentMethod,omitempty"`
	AlreadyGenerated bool            `json:"alreadyGenerated"`
}
