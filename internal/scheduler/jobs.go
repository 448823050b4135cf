package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/core/ports/services"
	"github.com/SscSPs/construction_budget_app/internal/middleware"
)

// RecurringGenerationJob generates the current month up to today.
type RecurringGenerationJob struct {
	Generator services.RecurringGeneratorSvc
}

func (j RecurringGenerationJob) Name() string { return "recurring_generation" }

func (j RecurringGenerationJob) Run(ctx context.Context, now time.Time) error {
	report, err := j.Generator.GenerateMonthToDate(ctx, now)
	if report != nil {
		middleware.GetLoggerFromCtx(ctx).Info("Recurring generation pass complete",
			slog.Int("created", len(report.Created)),
			slog.Int("skipped", report.SkippedTotal()),
			slog.Int("failed", report.Failed))
	}
	return err
}

// ContractRenewalJob flags projects whose contract is about to end.
type ContractRenewalJob struct {
	Renewal services.ContractRenewalSvc
}

func (j ContractRenewalJob) Name() string { return "contract_renewal" }

func (j ContractRenewalJob) Run(ctx context.Context, now time.Time) error {
	_, err := j.Renewal.CheckRenewals(ctx, now)
	return err
}
