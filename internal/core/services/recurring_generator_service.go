package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/apperrors"
	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	portsrepo "github.com/SscSPs/construction_budget_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/construction_budget_app/internal/core/ports/services"
	"github.com/SscSPs/construction_budget_app/internal/utils/recurrence"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// recurringGeneratorService materialises generated transactions from templates.
// It keeps no state between calls; the stores are the only source of truth.
type recurringGeneratorService struct {
	BaseService
	templateRepo    portsrepo.TemplateReader
	transactionRepo portsrepo.TransactionRepositoryFacade
	deletedRepo     portsrepo.DeletedInstanceReader
	projectRepo     portsrepo.ProjectReader
	clock           clockwork.Clock
	newID           func() string
}

// GeneratorOption is a functional option for configuring the generator service
type GeneratorOption func(*recurringGeneratorService)

// WithGeneratorClock sets the clock used for "today" and audit timestamps.
func WithGeneratorClock(clock clockwork.Clock) GeneratorOption {
	return func(s *recurringGeneratorService) {
		s.clock = clock
	}
}

// WithIDGenerator overrides how transaction IDs are minted.
func WithIDGenerator(newID func() string) GeneratorOption {
	return func(s *recurringGeneratorService) {
		s.newID = newID
	}
}

// NewRecurringGeneratorService creates the generation engine.
func NewRecurringGeneratorService(
	templateRepo portsrepo.TemplateReader,
	transactionRepo portsrepo.TransactionRepositoryFacade,
	deletedRepo portsrepo.DeletedInstanceReader,
	projectRepo portsrepo.ProjectReader,
	options ...GeneratorOption,
) portssvc.RecurringGeneratorSvc {
	svc := &recurringGeneratorService{
		templateRepo:    templateRepo,
		transactionRepo: transactionRepo,
		deletedRepo:     deletedRepo,
		projectRepo:     projectRepo,
		clock:           clockwork.NewRealClock(),
		newID:           uuid.NewString,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.RecurringGeneratorSvc = (*recurringGeneratorService)(nil)

// generationScope narrows a pass to one project and/or caps it at a date.
type generationScope struct {
	projectID *string
	until     *time.Time
}

// contractStarts caches project contract start dates for the length of one call.
type contractStarts map[string]*time.Time

func (s *recurringGeneratorService) contractStart(ctx context.Context, cache contractStarts, projectID string) (*time.Time, error) {
	if start, ok := cache[projectID]; ok {
		return start, nil
	}
	start, err := s.projectRepo.GetContractStartDate(ctx, projectID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	cache[projectID] = start
	return start, nil
}

func (s *recurringGeneratorService) GenerateForDate(ctx context.Context, date time.Time) (*domain.GenerationReport, error) {
	report := domain.NewGenerationReport()
	err := s.generateDate(ctx, domain.DateOf(date), false, generationScope{}, contractStarts{}, report)
	s.logReport(ctx, "Generated recurring transactions for date", report, slog.String("date", domain.DateOf(date).Format(domain.DateLayout)))
	return report, err
}

func (s *recurringGeneratorService) GenerateForMonth(ctx context.Context, year int, month time.Month) (*domain.GenerationReport, error) {
	if month < time.January || month > time.December {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("month %d out of range", month))
	}
	report := domain.NewGenerationReport()
	err := s.generateMonth(ctx, year, month, generationScope{}, contractStarts{}, report)
	s.logReport(ctx, "Generated recurring transactions for month", report, slog.String("month", recurrence.MonthKey{Year: year, Month: month}.String()))
	return report, err
}

func (s *recurringGeneratorService) GenerateMonthToDate(ctx context.Context, now time.Time) (*domain.GenerationReport, error) {
	today := domain.DateOf(now)
	report := domain.NewGenerationReport()
	err := s.generateMonth(ctx, today.Year(), today.Month(), generationScope{until: &today}, contractStarts{}, report)
	s.logReport(ctx, "Generated recurring transactions for month to date", report, slog.String("today", today.Format(domain.DateLayout)))
	return report, err
}

func (s *recurringGeneratorService) GenerateBacklog(ctx context.Context, start, end time.Time) (*domain.GenerationReport, error) {
	start, end = domain.DateOf(start), domain.DateOf(end)
	if end.Before(start) {
		return nil, apperrors.NewValidationFailedError("backlog end date must not be before start date")
	}
	report := domain.NewGenerationReport()
	err := s.generateRange(ctx, start, end, contractStarts{}, report)
	s.logReport(ctx, "Generated recurring backlog", report,
		slog.String("from", start.Format(domain.DateLayout)),
		slog.String("to", end.Format(domain.DateLayout)))
	return report, err
}

func (s *recurringGeneratorService) GenerateUpcoming(ctx context.Context, days int) (*domain.GenerationReport, error) {
	if days < 0 {
		return nil, apperrors.NewValidationFailedError("days ahead must not be negative")
	}
	today := domain.DateOf(s.clock.Now())
	report := domain.NewGenerationReport()
	err := s.generateRange(ctx, today, today.AddDate(0, 0, days), contractStarts{}, report)
	s.logReport(ctx, "Generated upcoming recurring transactions", report, slog.Int("days", days))
	return report, err
}

// EnsureCaughtUp walks every month touched by the project's active templates, once
// per month, up to today.
func (s *recurringGeneratorService) EnsureCaughtUp(ctx context.Context, projectID string) (int, error) {
	templates, err := s.templateRepo.ListTemplatesByProject(ctx, projectID, true)
	if err != nil {
		s.LogError(ctx, err, "Failed to list templates for catch-up", slog.String("project_id", projectID))
		return 0, err
	}

	today := domain.DateOf(s.clock.Now())
	seen := make(map[recurrence.MonthKey]struct{})
	var months []recurrence.MonthKey
	for _, t := range templates {
		to := today
		if t.EndType == domain.EndOnDate && t.EndDate != nil && t.EndDate.Before(to) {
			to = domain.DateOf(*t.EndDate)
		}
		for _, key := range recurrence.MonthsBetween(t.StartDate, to) {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			months = append(months, key)
		}
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	report := domain.NewGenerationReport()
	scope := generationScope{projectID: &projectID, until: &today}
	cache := contractStarts{}
	var errs []error
	for _, key := range months {
		if err := s.generateMonth(ctx, key.Year, key.Month, scope, cache, report); err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
	}

	s.logReport(ctx, "Project caught up", report,
		slog.String("project_id", projectID),
		slog.Int("months", len(months)))
	return len(report.Created), errors.Join(errs...)
}

// generateMonth runs every day of the month (up to scope.until); the last day also
// picks up templates whose day_of_month is past the end of the month.
func (s *recurringGeneratorService) generateMonth(ctx context.Context, year int, month time.Month, scope generationScope, cache contractStarts, report *domain.GenerationReport) error {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := recurrence.LastDayOfMonth(year, month)
	var errs []error
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if scope.until != nil && d.After(*scope.until) {
			break
		}
		if err := s.generateDate(ctx, d, d.Equal(last), scope, cache, report); err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
	}
	return errors.Join(errs...)
}

// generateRange runs every day in [start, end], including overflow on month ends.
func (s *recurringGeneratorService) generateRange(ctx context.Context, start, end time.Time, cache contractStarts, report *domain.GenerationReport) error {
	var errs []error
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if err := s.generateDate(ctx, d, recurrence.IsLastDayOfMonth(d), generationScope{}, cache, report); err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
	}
	return errors.Join(errs...)
}

// generateDate evaluates every due template for date and saves the resulting
// batch. Per-template problems are counted in the report, never returned.
func (s *recurringGeneratorService) generateDate(ctx context.Context, date time.Time, includeOverflow bool, scope generationScope, cache contractStarts, report *domain.GenerationReport) error {
	templates, err := s.templateRepo.FindDueTemplates(ctx, portsrepo.DueTemplateQuery{
		Date:            date,
		ProjectID:       scope.projectID,
		IncludeOverflow: includeOverflow,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to select due templates", slog.String("date", date.Format(domain.DateLayout)))
		return fmt.Errorf("select due templates for %s: %w", date.Format(domain.DateLayout), err)
	}

	now := s.clock.Now().UTC()
	pending := make([]domain.Transaction, 0, len(templates))
	for _, t := range templates {
		reason, err := s.evaluate(ctx, t, date, cache)
		if err != nil {
			report.Failed++
			s.LogError(ctx, err, "Failed to evaluate recurring template",
				slog.String("template_id", t.TemplateID),
				slog.String("project_id", t.ProjectID),
				slog.String("date", date.Format(domain.DateLayout)))
			continue
		}
		if reason != "" {
			report.Skip(reason)
			s.LogDebug(ctx, "Skipped recurring template",
				slog.String("template_id", t.TemplateID),
				slog.String("date", date.Format(domain.DateLayout)),
				slog.String("reason", string(reason)))
			continue
		}
		pending = append(pending, t.NewInstance(s.newID(), s.AuditUser(ctx, t.CreatedBy), date, now))
	}
	if len(pending) == 0 {
		return nil
	}

	results, err := s.transactionRepo.SaveGeneratedTransactions(ctx, pending)
	if err != nil {
		report.Failed += len(pending)
		s.LogError(ctx, err, "Failed to save generated transactions",
			slog.String("date", date.Format(domain.DateLayout)),
			slog.Int("count", len(pending)))
		return fmt.Errorf("save generated transactions for %s: %w", date.Format(domain.DateLayout), err)
	}

	for i, txn := range pending {
		var itemErr error
		if i < len(results) {
			itemErr = results[i]
		}
		switch {
		case itemErr == nil:
			report.Created = append(report.Created, txn)
		case errors.Is(itemErr, apperrors.ErrDuplicate):
			// Lost a race with a concurrent pass; the other insert won.
			report.Skip(domain.SkipAlreadyGenerated)
		default:
			report.Failed++
			s.LogError(ctx, itemErr, "Failed to persist generated transaction",
				slog.String("template_id", *txn.RecurringTemplateID),
				slog.String("project_id", txn.ProjectID),
				slog.String("date", date.Format(domain.DateLayout)))
		}
	}
	return nil
}

// evaluate decides whether t must be materialised on date. An empty reason means generate.
func (s *recurringGeneratorService) evaluate(ctx context.Context, t domain.RecurringTemplate, date time.Time, cache contractStarts) (domain.SkipReason, error) {
	if !t.IsActive {
		return domain.SkipInactive, nil
	}
	if date.Before(domain.DateOf(t.StartDate)) {
		return domain.SkipBeforeStartDate, nil
	}

	exists, err := s.transactionRepo.GeneratedExists(ctx, t.TemplateID, date)
	if err != nil {
		return "", err
	}
	if exists {
		return domain.SkipAlreadyGenerated, nil
	}

	deleted, err := s.deletedRepo.IsDeleted(ctx, t.TemplateID, date)
	if err != nil {
		return "", err
	}
	if deleted {
		return domain.SkipTombstoned, nil
	}

	if t.EndedBy(date) {
		return domain.SkipEnded, nil
	}
	if t.EndType == domain.EndAfterOccurrences {
		if t.MaxOccurrences == nil {
			return domain.SkipEnded, nil
		}
		count, err := s.transactionRepo.CountGenerated(ctx, t.TemplateID)
		if err != nil {
			return "", err
		}
		if count >= *t.MaxOccurrences {
			return domain.SkipOccurrenceLimit, nil
		}
	}

	if !t.HasCategory() {
		s.LogWarn(ctx, "Recurring template has no category, not generating",
			slog.String("template_id", t.TemplateID),
			slog.String("project_id", t.ProjectID),
			slog.String("date", date.Format(domain.DateLayout)))
		return domain.SkipMissingCategory, nil
	}

	start, err := s.contractStart(ctx, cache, t.ProjectID)
	if err != nil {
		return "", err
	}
	if start != nil && date.Before(*start) {
		return domain.SkipBeforeContractStart, nil
	}
	return "", nil
}

// FutureOccurrences projects the template forward without writing anything.
// The occurrence count is re-read at every projected date.
func (s *recurringGeneratorService) FutureOccurrences(ctx context.Context, templateID string, start time.Time, monthsAhead int) ([]domain.FutureOccurrence, error) {
	if monthsAhead < 1 {
		return nil, apperrors.NewValidationFailedError("monthsAhead must be at least 1")
	}
	t, err := s.templateRepo.FindTemplateByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	occurrences := []domain.FutureOccurrence{}
	if !t.IsActive || !t.HasCategory() {
		return occurrences, nil
	}

	from := domain.DateOf(start)
	// The window ends the day before the same day monthsAhead later, clamped to
	// short months so that a start on the 31st does not spill into the next month.
	target := time.Date(from.Year(), from.Month()+time.Month(monthsAhead), 1, 0, 0, 0, 0, time.UTC)
	to := recurrence.DayInMonth(from.Day(), target.Year(), target.Month()).AddDate(0, 0, -1)
	if contract, err := s.contractStart(ctx, contractStarts{}, t.ProjectID); err != nil {
		return nil, err
	} else if contract != nil && from.Before(*contract) {
		from = *contract
	}

	dates, err := recurrence.Occurrences(t.DayOfMonth, domain.DateOf(t.StartDate), from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to expand recurrence of template "+templateID, err)
	}

	projected := 0
	for _, d := range dates {
		d = domain.DateOf(d)
		if t.EndedBy(d) {
			break
		}
		generated, err := s.transactionRepo.GeneratedExists(ctx, t.TemplateID, d)
		if err != nil {
			return nil, err
		}
		if !generated {
			deleted, err := s.deletedRepo.IsDeleted(ctx, t.TemplateID, d)
			if err != nil {
				return nil, err
			}
			if deleted {
				continue
			}
		}
		if t.EndType == domain.EndAfterOccurrences && !generated {
			count, err := s.transactionRepo.CountGenerated(ctx, t.TemplateID)
			if err != nil {
				return nil, err
			}
			if t.MaxOccurrences == nil || count+projected >= *t.MaxOccurrences {
				break
			}
		}

		occurrences = append(occurrences, domain.FutureOccurrence{
			Date:             d,
			Amount:           t.Amount,
			Description:      t.Description,
			CategoryID:       t.CategoryID,
			PaymentMethod:    t.PaymentMethod,
			AlreadyGenerated: generated,
		})
		if !generated {
			projected++
		}
	}
	return occurrences, nil
}

func (s *recurringGeneratorService) logReport(ctx context.Context, msg string, report *domain.GenerationReport, keyvals ...any) {
	args := append([]any{
		slog.Int("created", len(report.Created)),
		slog.Int("skipped", report.SkippedTotal()),
		slog.Int("failed", report.Failed),
	}, keyvals...)
	s.LogInfo(ctx, msg, args...)
}
