package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/apperrors"
	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	portsrepo "github.com/SscSPs/construction_budget_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/construction_budget_app/internal/core/ports/services"
	"github.com/SscSPs/construction_budget_app/internal/dto"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// recurringTemplateService implements portssvc.RecurringTemplateSvcFacade
type recurringTemplateService struct {
	BaseService
	templateRepo    portsrepo.TemplateRepositoryFacade
	transactionRepo portsrepo.TransactionRepositoryFacade
	projectRepo     portsrepo.ProjectReader
	categoryRepo    portsrepo.CategoryReader
	clock           clockwork.Clock
}

// TemplateServiceOption is a functional option for configuring the template service
type TemplateServiceOption func(*recurringTemplateService)

// WithTemplateClock sets the clock used for audit timestamps.
func WithTemplateClock(clock clockwork.Clock) TemplateServiceOption {
	return func(s *recurringTemplateService) {
		s.clock = clock
	}
}

// NewRecurringTemplateService creates a template service.
func NewRecurringTemplateService(
	templateRepo portsrepo.TemplateRepositoryFacade,
	transactionRepo portsrepo.TransactionRepositoryFacade,
	projectRepo portsrepo.ProjectReader,
	categoryRepo portsrepo.CategoryReader,
	options ...TemplateServiceOption,
) portssvc.RecurringTemplateSvcFacade {
	svc := &recurringTemplateService{
		templateRepo:    templateRepo,
		transactionRepo: transactionRepo,
		projectRepo:     projectRepo,
		categoryRepo:    categoryRepo,
		clock:           clockwork.NewRealClock(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.RecurringTemplateSvcFacade = (*recurringTemplateService)(nil)

func (s *recurringTemplateService) CreateTemplate(ctx context.Context, projectID string, req dto.CreateRecurringTemplateRequest, creatorUserID string) (*domain.RecurringTemplate, error) {
	if _, err := s.projectRepo.FindProjectByID(ctx, projectID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find project for template", slog.String("project_id", projectID))
		}
		return nil, err
	}

	startDate, err := domain.ParseDate(req.StartDate)
	if err != nil {
		return nil, apperrors.NewValidationFailedError("invalid startDate: " + req.StartDate)
	}
	var endDate *time.Time
	if req.EndDate != nil {
		d, err := domain.ParseDate(*req.EndDate)
		if err != nil {
			return nil, apperrors.NewValidationFailedError("invalid endDate: " + *req.EndDate)
		}
		endDate = &d
	}

	frequency := domain.Monthly
	if req.Frequency != "" {
		frequency = domain.Frequency(req.Frequency)
	}

	now := s.clock.Now().UTC()
	categoryID := req.CategoryID
	template := domain.RecurringTemplate{
		TemplateID:     uuid.NewString(),
		ProjectID:      projectID,
		Description:    req.Description,
		Kind:           domain.TransactionKind(req.Kind),
		Amount:         req.Amount,
		CategoryID:     &categoryID,
		SupplierID:     nonEmpty(req.SupplierID),
		PaymentMethod:  nonEmpty(req.PaymentMethod),
		Notes:          nonEmpty(req.Notes),
		Frequency:      frequency,
		DayOfMonth:     req.DayOfMonth,
		StartDate:      startDate,
		EndType:        domain.EndType(req.EndType),
		EndDate:        endDate,
		MaxOccurrences: req.MaxOccurrences,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := validateTemplate(template); err != nil {
		return nil, err
	}
	if err := s.checkContractStart(ctx, projectID, startDate); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, projectID, categoryID); err != nil {
		return nil, err
	}

	if err := s.templateRepo.SaveTemplate(ctx, template); err != nil {
		s.LogError(ctx, err, "Failed to save recurring template", slog.String("project_id", projectID))
		return nil, err
	}

	s.LogInfo(ctx, "Recurring template created",
		slog.String("template_id", template.TemplateID),
		slog.String("project_id", projectID))
	return &template, nil
}

func (s *recurringTemplateService) GetTemplate(ctx context.Context, templateID string) (*domain.RecurringTemplate, error) {
	template, err := s.templateRepo.FindTemplateByID(ctx, templateID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find recurring template", slog.String("template_id", templateID))
		}
		return nil, err
	}
	return template, nil
}

func (s *recurringTemplateService) ListTemplates(ctx context.Context, projectID string, activeOnly bool) ([]domain.RecurringTemplate, error) {
	templates, err := s.templateRepo.ListTemplatesByProject(ctx, projectID, activeOnly)
	if err != nil {
		s.LogError(ctx, err, "Failed to list recurring templates", slog.String("project_id", projectID))
		return nil, fmt.Errorf("failed to list recurring templates: %w", err)
	}
	if templates == nil {
		return []domain.RecurringTemplate{}, nil
	}
	return templates, nil
}

// UpdateTemplate applies a partial update. The template is saved first; propagation to
// generated transactions follows and only ever produces warnings.
func (s *recurringTemplateService) UpdateTemplate(ctx context.Context, templateID string, req dto.UpdateRecurringTemplateRequest, userID string) (*domain.RecurringTemplate, []string, error) {
	current, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, nil, err
	}
	updated := *current

	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Kind != nil {
		updated.Kind = domain.TransactionKind(*req.Kind)
	}
	if req.Amount != nil {
		updated.Amount = *req.Amount
	}
	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			return nil, nil, apperrors.NewValidationFailedError("category cannot be cleared")
		}
		categoryID := *req.CategoryID
		updated.CategoryID = &categoryID
	}
	if req.SupplierID != nil {
		updated.SupplierID = nonEmpty(req.SupplierID)
	}
	if req.PaymentMethod != nil {
		updated.PaymentMethod = nonEmpty(req.PaymentMethod)
	}
	if req.Notes != nil {
		updated.Notes = nonEmpty(req.Notes)
	}
	if req.DayOfMonth != nil {
		updated.DayOfMonth = *req.DayOfMonth
	}
	if req.StartDate != nil {
		d, err := domain.ParseDate(*req.StartDate)
		if err != nil {
			return nil, nil, apperrors.NewValidationFailedError("invalid startDate: " + *req.StartDate)
		}
		updated.StartDate = d
	}
	if req.EndType != nil && domain.EndType(*req.EndType) != updated.EndType {
		updated.EndType = domain.EndType(*req.EndType)
		updated.EndDate = nil
		updated.MaxOccurrences = nil
	}
	if req.EndDate != nil {
		d, err := domain.ParseDate(*req.EndDate)
		if err != nil {
			return nil, nil, apperrors.NewValidationFailedError("invalid endDate: " + *req.EndDate)
		}
		updated.EndDate = &d
	}
	if req.MaxOccurrences != nil {
		n := *req.MaxOccurrences
		updated.MaxOccurrences = &n
	}

	if err := validateTemplate(updated); err != nil {
		return nil, nil, err
	}
	if !updated.StartDate.Equal(current.StartDate) {
		if err := s.checkContractStart(ctx, updated.ProjectID, updated.StartDate); err != nil {
			return nil, nil, err
		}
	}
	if !equalStringPtr(updated.CategoryID, current.CategoryID) {
		if err := s.checkCategory(ctx, updated.ProjectID, *updated.CategoryID); err != nil {
			return nil, nil, err
		}
	}

	now := s.clock.Now().UTC()
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = userID
	if err := s.templateRepo.UpdateTemplate(ctx, updated); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to update recurring template", slog.String("template_id", templateID))
		}
		return nil, nil, err
	}

	var warnings []string
	if propagatedFieldsChanged(*current, updated) {
		n, err := s.transactionRepo.BulkUpdateGenerated(ctx, templateID, updated.FieldUpdate(userID, now))
		if err != nil {
			s.LogError(ctx, err, "Failed to propagate template changes to generated transactions",
				slog.String("template_id", templateID))
			warnings = append(warnings, "template updated but changes could not be applied to already generated transactions")
		} else {
			s.LogInfo(ctx, "Propagated template changes to generated transactions",
				slog.String("template_id", templateID),
				slog.Int64("updated", n))
		}
	}

	s.LogInfo(ctx, "Recurring template updated", slog.String("template_id", templateID))
	return &updated, warnings, nil
}

func (s *recurringTemplateService) DeactivateTemplate(ctx context.Context, templateID string, userID string) error {
	if err := s.templateRepo.DeactivateTemplate(ctx, templateID, userID, s.clock.Now().UTC()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to deactivate recurring template", slog.String("template_id", templateID))
		}
		return err
	}
	s.LogInfo(ctx, "Recurring template deactivated", slog.String("template_id", templateID))
	return nil
}

// DeleteTemplate refuses to remove a template with generated history; deactivate it instead.
func (s *recurringTemplateService) DeleteTemplate(ctx context.Context, templateID string) error {
	if _, err := s.GetTemplate(ctx, templateID); err != nil {
		return err
	}
	count, err := s.transactionRepo.CountGenerated(ctx, templateID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count generated transactions", slog.String("template_id", templateID))
		return err
	}
	if count > 0 {
		return apperrors.NewConflictError(fmt.Sprintf(
			"template %s has %d generated transactions; deactivate it instead", templateID, count))
	}
	if err := s.templateRepo.DeleteTemplate(ctx, templateID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to delete recurring template", slog.String("template_id", templateID))
		}
		return err
	}
	s.LogInfo(ctx, "Recurring template deleted", slog.String("template_id", templateID))
	return nil
}

// checkContractStart rejects a start date earlier than the project's contract start.
func (s *recurringTemplateService) checkContractStart(ctx context.Context, projectID string, startDate time.Time) error {
	contractStart, err := s.projectRepo.GetContractStartDate(ctx, projectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		s.LogError(ctx, err, "Failed to read project contract start date", slog.String("project_id", projectID))
		return err
	}
	if contractStart != nil && domain.DateOf(startDate).Before(domain.DateOf(*contractStart)) {
		return apperrors.NewValidationFailedError(fmt.Sprintf(
			"start date %s is before the project contract start date %s",
			startDate.Format(domain.DateLayout), contractStart.Format(domain.DateLayout)))
	}
	return nil
}

// checkCategory requires an existing, active category of the same project.
func (s *recurringTemplateService) checkCategory(ctx context.Context, projectID, categoryID string) error {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationFailedError("category " + categoryID + " does not exist")
		}
		s.LogError(ctx, err, "Failed to find category", slog.String("category_id", categoryID))
		return err
	}
	if !category.IsActive {
		return apperrors.NewValidationFailedError("category " + categoryID + " is not active")
	}
	if category.ProjectID != projectID {
		return apperrors.NewValidationFailedError("category " + categoryID + " belongs to another project")
	}
	return nil
}

// validateTemplate checks the parts of a definition that do not need a store.
func validateTemplate(t domain.RecurringTemplate) error {
	if !t.Kind.IsValid() {
		return apperrors.NewValidationFailedError("invalid kind: " + string(t.Kind))
	}
	if !t.Amount.IsPositive() {
		return apperrors.NewValidationFailedError("amount must be positive")
	}
	if t.Frequency != domain.Monthly {
		return apperrors.NewValidationFailedError("unsupported frequency: " + string(t.Frequency))
	}
	if t.DayOfMonth < 1 || t.DayOfMonth > 31 {
		return apperrors.NewValidationFailedError("dayOfMonth must be between 1 and 31")
	}
	if !t.HasCategory() {
		return apperrors.NewValidationFailedError("category is required")
	}

	switch t.EndType {
	case domain.EndNever:
		if t.EndDate != nil || t.MaxOccurrences != nil {
			return apperrors.NewValidationFailedError("endDate and maxOccurrences must be empty when endType is NEVER")
		}
	case domain.EndOnDate:
		if t.EndDate == nil {
			return apperrors.NewValidationFailedError("endDate is required when endType is ON_DATE")
		}
		if t.MaxOccurrences != nil {
			return apperrors.NewValidationFailedError("maxOccurrences must be empty when endType is ON_DATE")
		}
		if t.EndDate.Before(t.StartDate) {
			return apperrors.NewValidationFailedError("endDate must not be before startDate")
		}
	case domain.EndAfterOccurrences:
		if t.MaxOccurrences == nil {
			return apperrors.NewValidationFailedError("maxOccurrences is required when endType is AFTER_OCCURRENCES")
		}
		if *t.MaxOccurrences < 1 {
			return apperrors.NewValidationFailedError("maxOccurrences must be positive")
		}
		if t.EndDate != nil {
			return apperrors.NewValidationFailedError("endDate must be empty when endType is AFTER_OCCURRENCES")
		}
	default:
		return apperrors.NewValidationFailedError("invalid endType: " + string(t.EndType))
	}
	return nil
}

func propagatedFieldsChanged(before, after domain.RecurringTemplate) bool {
	return !before.Amount.Equal(after.Amount) ||
		before.Description != after.Description ||
		!equalStringPtr(before.CategoryID, after.CategoryID) ||
		!equalStringPtr(before.SupplierID, after.SupplierID) ||
		!equalStringPtr(before.PaymentMethod, after.PaymentMethod) ||
		!equalStringPtr(before.Notes, after.Notes)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// nonEmpty turns an empty optional string into nil.
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
