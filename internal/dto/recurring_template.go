package dto

import (
	"time"

	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Recurring template DTOs ---

// CreateRecurringTemplateRequest defines data for creating a recurring template.
// End-condition combinations are checked by a struct-level rule (see validation.go).
type CreateRecurringTemplateRequest struct {
	Description    string          `json:"description" binding:"required,max=255"`
	Kind           string          `json:"kind" binding:"required,oneof=INCOME EXPENSE"`
	Amount         decimal.Decimal `json:"amount"`
	CategoryID     string          `json:"categoryID" binding:"required"`
	SupplierID     *string         `json:"supplierID"`
	PaymentMethod  *string         `json:"paymentMethod" binding:"omitempty,max=50"`
	Notes          *string         `json:"notes"`
	Frequency      string          `json:"frequency" binding:"omitempty,oneof=MONTHLY"`
	DayOfMonth     int             `json:"dayOfMonth" binding:"required,min=1,max=31"`
	StartDate      string          `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndType        string          `json:"endType" binding:"required,oneof=NEVER ON_DATE AFTER_OCCURRENCES"`
	EndDate        *string         `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	MaxOccurrences *int            `json:"maxOccurrences" binding:"omitempty,min=1"`
}

// UpdateRecurringTemplateRequest defines a partial update. Nil fields are left unchanged.
// An empty string clears an optional reference; the category can never be cleared.
type UpdateRecurringTemplateRequest struct {
	Description    *string          `json:"description" binding:"omitempty,min=1,max=255"`
	Kind           *string          `json:"kind" binding:"omitempty,oneof=INCOME EXPENSE"`
	Amount         *decimal.Decimal `json:"amount"`
	CategoryID     *string          `json:"categoryID"`
	SupplierID     *string          `json:"supplierID"`
	PaymentMethod  *string          `json:"paymentMethod" binding:"omitempty,max=50"`
	Notes          *string          `json:"notes"`
	DayOfMonth     *int             `json:"dayOfMonth" binding:"omitempty,min=1,max=31"`
	StartDate      *string          `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndType        *string          `json:"endType" binding:"omitempty,oneof=NEVER ON_DATE AFTER_OCCURRENCES"`
	EndDate        *string          `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	MaxOccurrences *int             `json:"maxOccurrences" binding:"omitempty,min=1"`
}

// RecurringTemplateResponse defines data returned for a template.
type RecurringTemplateResponse struct {
	TemplateID     string          `json:"templateID"`
	ProjectID      string          `json:"projectID"`
	Description    string          `json:"description"`
	Kind           string          `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	CategoryID     *string         `json:"categoryID,omitempty"`
	SupplierID     *string         `json:"supplierID,omitempty"`
	PaymentMethod  *string         `json:"paymentMethod,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
	Frequency      string          `json:"frequency"`
	DayOfMonth     int             `json:"dayOfMonth"`
	StartDate      string          `json:"startDate"`
	EndType        string          `json:"endType"`
	EndDate        *string         `json:"endDate,omitempty"`
	MaxOccurrences *int            `json:"maxOccurrences,omitempty"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy  string          `json:"lastUpdatedBy"`
}

// UpdateRecurringTemplateResponse carries the updated template and any propagation warnings.
type UpdateRecurringTemplateResponse struct {
	Template RecurringTemplateResponse `json:"template"`
	Warnings []string                  `json:"warnings,omitempty"`
}

// ListRecurringTemplatesParams holds query parameters for listing templates.
type ListRecurringTemplatesParams struct {
	ActiveOnly bool `form:"activeOnly,default=false"`
}

// ListRecurringTemplatesResponse wraps a list of templates.
type ListRecurringTemplatesResponse struct {
	Templates []RecurringTemplateResponse `json:"templates"`
}

// ToRecurringTemplateResponse converts domain.RecurringTemplate to DTO.
func ToRecurringTemplateResponse(t *domain.RecurringTemplate) RecurringTemplateResponse {
	return RecurringTemplateResponse{
		TemplateID:     t.TemplateID,
		ProjectID:      t.ProjectID,
		Description:    t.Description,
		Kind:           string(t.Kind),
		Amount:         t.Amount,
		CategoryID:     t.CategoryID,
		SupplierID:     t.SupplierID,
		PaymentMethod:  t.PaymentMethod,
		Notes:          t.Notes,
		Frequency:      string(t.Frequency),
		DayOfMonth:     t.DayOfMonth,
		StartDate:      FormatDate(t.StartDate),
		EndType:        string(t.EndType),
		EndDate:        formatDatePtr(t.EndDate),
		MaxOccurrences: t.MaxOccurrences,
		IsActive:       t.IsActive,
		CreatedAt:      t.CreatedAt,
		CreatedBy:      t.CreatedBy,
		LastUpdatedAt:  t.LastUpdatedAt,
		LastUpdatedBy:  t.LastUpdatedBy,
	}
}

// ToListRecurringTemplatesResponse converts a slice of templates to DTO.
func ToListRecurringTemplatesResponse(ts []domain.RecurringTemplate) ListRecurringTemplatesResponse {
	list := make([]RecurringTemplateResponse, len(ts))
	for i := range ts {
		list[i] = ToRecurringTemplateResponse(&ts[i])
	}
	return ListRecurringTemplatesResponse{Templates: list}
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatDate(*t)
	return &s
}
