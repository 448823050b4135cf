package dto

import (
	"time"

	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations installs the struct-level rules used by request binding.
func RegisterValidations(v *validator.Validate) {
	v.RegisterStructValidation(createTemplateRule, CreateRecurringTemplateRequest{})
	v.RegisterStructValidation(generateRequestRule, GenerateRequest{})
}

// createTemplateRule enforces a positive amount and a consistent end condition.
func createTemplateRule(sl validator.StructLevel) {
	req := sl.Current().Interface().(CreateRecurringTemplateRequest)

	if !req.Amount.IsPositive() {
		sl.ReportError(req.Amount, "amount", "Amount", "gt", "0")
	}

	switch domain.EndType(req.EndType) {
	case domain.EndNever:
		if req.EndDate != nil {
			sl.ReportError(req.EndDate, "endDate", "EndDate", "excluded_with_never", "")
		}
		if req.MaxOccurrences != nil {
			sl.ReportError(req.MaxOccurrences, "maxOccurrences", "MaxOccurrences", "excluded_with_never", "")
		}
	case domain.EndOnDate:
		if req.EndDate == nil {
			sl.ReportError(req.EndDate, "endDate", "EndDate", "required_with_on_date", "")
		} else if !dateNotBefore(*req.EndDate, req.StartDate) {
			sl.ReportError(req.EndDate, "endDate", "EndDate", "gtefield", "startDate")
		}
		if req.MaxOccurrences != nil {
			sl.ReportError(req.MaxOccurrences, "maxOccurrences", "MaxOccurrences", "excluded_with_on_date", "")
		}
	case domain.EndAfterOccurrences:
		if req.MaxOccurrences == nil {
			sl.ReportError(req.MaxOccurrences, "maxOccurrences", "MaxOccurrences", "required_with_after_occurrences", "")
		}
		if req.EndDate != nil {
			sl.ReportError(req.EndDate, "endDate", "EndDate", "excluded_with_after_occurrences", "")
		}
	}
}

// generateRequestRule requires the fields each mode needs.
func generateRequestRule(sl validator.StructLevel) {
	req := sl.Current().Interface().(GenerateRequest)

	switch req.Mode {
	case GenerateModeDate:
		if req.Date == nil {
			sl.ReportError(req.Date, "date", "Date", "required_with_mode", req.Mode)
		}
	case GenerateModeMonth:
		if req.Month == nil {
			sl.ReportError(req.Month, "month", "Month", "required_with_mode", req.Mode)
		}
	case GenerateModeBacklog:
		if req.From == nil {
			sl.ReportError(req.From, "from", "From", "required_with_mode", req.Mode)
		}
		if req.To == nil {
			sl.ReportError(req.To, "to", "To", "required_with_mode", req.Mode)
		}
		if req.From != nil && req.To != nil && !dateNotBefore(*req.To, *req.From) {
			sl.ReportError(req.To, "to", "To", "gtefield", "from")
		}
	case GenerateModeUpcoming:
		if req.Days == nil {
			sl.ReportError(req.Days, "days", "Days", "required_with_mode", req.Mode)
		}
	}
}

// dateNotBefore reports whether a >= b. Unparseable input is left to the field tags.
func dateNotBefore(a, b string) bool {
	at, errA := time.Parse(domain.DateLayout, a)
	bt, errB := time.Parse(domain.DateLayout, b)
	if errA != nil || errB != nil {
		return true
	}
	return !at.Before(bt)
}
