package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	portsrepo "github.com/SscSPs/construction_budget_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/construction_budget_app/internal/core/ports/services"
)

type contractRenewalService struct {
	BaseService
	projectRepo   portsrepo.ProjectRepositoryFacade
	lookaheadDays int
}

// NewContractRenewalService flags projects whose contract ends within lookaheadDays.
func NewContractRenewalService(projectRepo portsrepo.ProjectRepositoryFacade, lookaheadDays int) portssvc.ContractRenewalSvc {
	return &contractRenewalService{projectRepo: projectRepo, lookaheadDays: lookaheadDays}
}

var _ portssvc.ContractRenewalSvc = (*contractRenewalService)(nil)

func (s *contractRenewalService) CheckRenewals(ctx context.Context, now time.Time) (int, error) {
	horizon := domain.DateOf(now).AddDate(0, 0, s.lookaheadDays)
	projects, err := s.projectRepo.ListProjectsWithContractEndingBy(ctx, horizon)
	if err != nil {
		s.LogError(ctx, err, "Failed to list projects due for renewal", slog.String("horizon", horizon.Format(domain.DateLayout)))
		return 0, err
	}

	marked := 0
	var errs []error
	for _, p := range projects {
		if err := s.projectRepo.MarkRenewalDue(ctx, p.ProjectID, now.UTC()); err != nil {
			s.LogError(ctx, err, "Failed to mark project renewal due", slog.String("project_id", p.ProjectID))
			errs = append(errs, fmt.Errorf("project %s: %w", p.ProjectID, err))
			continue
		}
		marked++
		s.LogInfo(ctx, "Project contract renewal due", slog.String("project_id", p.ProjectID), slog.String("name", p.Name))
	}

	s.LogInfo(ctx, "Contract renewal check complete", slog.Int("marked", marked), slog.Int("candidates", len(projects)))
	return marked, errors.Join(errs...)
}
