package dto

import (
	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Generation modes accepted by the manual trigger.
const (
	GenerateModeToday    = "today"
	GenerateModeDate     = "date"
	GenerateModeMonth    = "month"
	GenerateModeBacklog  = "backlog"
	GenerateModeUpcoming = "upcoming"
)

// GenerateRequest triggers a manual generation pass.
// Which of the optional fields is required depends on Mode.
type GenerateRequest struct {
	Mode  string  `json:"mode" binding:"required,oneof=today date month backlog upcoming"`
	Date  *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Month *string `json:"month" binding:"omitempty,datetime=2006-01"`
	From  *string `json:"from" binding:"omitempty,datetime=2006-01-02"`
	To    *string `json:"to" binding:"omitempty,datetime=2006-01-02"`
	Days  *int    `json:"days" binding:"omitempty,min=0,max=366"`
}

// GenerationReportResponse summarises a generation pass.
type GenerationReportResponse struct {
	Created      int                   `json:"created"`
	Skipped      map[string]int        `json:"skipped"`
	Failed       int                   `json:"failed"`
	Transactions []TransactionResponse `json:"transactions"`
}

// ToGenerationReportResponse converts a domain.GenerationReport to DTO.
func ToGenerationReportResponse(r *domain.GenerationReport) GenerationReportResponse {
	skipped := make(map[string]int, len(r.Skipped))
	for reason, n := range r.Skipped {
		skipped[string(reason)] = n
	}
	return GenerationReportResponse{
		Created:      len(r.Created),
		Skipped:      skipped,
		Failed:       r.Failed,
		Transactions: ToTransactionResponses(r.Created),
	}
}

// CatchUpResponse reports how many transactions a project catch-up created.
type CatchUpResponse struct {
	ProjectID string `json:"projectID"`
	Generated int    `json:"generated"`
}

// FutureOccurrencesParams holds query parameters for occurrence projection.
type FutureOccurrencesParams struct {
	Start  string `form:"start" binding:"omitempty,datetime=2006-01-02"`
	Months int    `form:"months,default=12" binding:"min=1,max=60"`
}

// FutureOccurrenceResponse is one projected instance of a template.
type FutureOccurrenceResponse struct {
	Date             string          `json:"date"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	CategoryID       *string         `json:"categoryID,omitempty"`
	PaymentMethod    *string         `json:"paymentMethod,omitempty"`
	AlreadyGenerated bool            `json:"alreadyGenerated"`
}

// ToFutureOccurrenceResponses converts projections to DTOs.
func ToFutureOccurrenceResponses(items []domain.FutureOccurrence) []FutureOccurrenceResponse {
	responses := make([]FutureOccurrenceResponse, len(items))
	for i, item := range items {
		responses[i] = FutureOccurrenceResponse{
			Date:             FormatDate(item.Date),
			Amount:           item.Amount,
			Description:      item.Description,
			CategoryID:       item.CategoryID,
			PaymentMethod:    item.PaymentMethod,
			AlreadyGenerated: item.AlreadyGenerated,
		}
	}
	return responses
}
