package services_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/apperrors"
	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	portsrepo "github.com/SscSPs/construction_budget_app/internal/core/ports/repositories"
)

// memStore is an in-memory stand-in for the postgres repositories. It keeps the
// same contracts, including the (template, date) uniqueness of generated rows.
type memStore struct {
	mu           sync.Mutex
	projects     map[string]domain.Project
	categories   map[string]domain.Category
	templates    map[string]domain.RecurringTemplate
	transactions map[string]domain.Transaction
	tombstones   map[string]domain.DeletedRecurringInstance

	// failInsertFor makes inserts of the given template fail with the mapped error.
	failInsertFor map[string]error
	// failTombstones makes Record fail.
	failTombstones bool
	// failBulkUpdate makes BulkUpdateGenerated fail.
	failBulkUpdate bool
}

var (
	_ portsrepo.TemplateRepositoryFacade        = (*memStore)(nil)
	_ portsrepo.TransactionRepositoryFacade     = (*memStore)(nil)
	_ portsrepo.DeletedInstanceRepositoryFacade = (*memStore)(nil)
	_ portsrepo.ProjectRepositoryFacade         = (*memStore)(nil)
	_ portsrepo.CategoryReader                  = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		projects:      map[string]domain.Project{},
		categories:    map[string]domain.Category{},
		templates:     map[string]domain.RecurringTemplate{},
		transactions:  map[string]domain.Transaction{},
		tombstones:    map[string]domain.DeletedRecurringInstance{},
		failInsertFor: map[string]error{},
	}
}

func tombstoneKey(templateID string, date time.Time) string {
	return templateID + "|" + domain.DateOf(date).Format(domain.DateLayout)
}

func (m *memStore) repos() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TemplateRepo:        m,
		TransactionRepo:     m,
		DeletedInstanceRepo: m,
		ProjectRepo:         m,
		CategoryRepo:        m,
	}
}

// generated returns the generated transactions of templateID ordered by date.
func (m *memStore) generated(templateID string) []domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, t := range m.transactions {
		if t.IsGenerated && t.RecurringTemplateID != nil && *t.RecurringTemplateID == templateID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TxDate.Before(out[j].TxDate) })
	return out
}

// --- templates ---

func (m *memStore) FindDueTemplates(ctx context.Context, q portsrepo.DueTemplateQuery) ([]domain.RecurringTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	date := domain.DateOf(q.Date)
	var out []domain.RecurringTemplate
	for _, t := range m.templates {
		if !t.IsActive || t.StartDate.After(date) {
			continue
		}
		if q.ProjectID != nil && t.ProjectID != *q.ProjectID {
			continue
		}
		if t.DayOfMonth != date.Day() && !(q.IncludeOverflow && t.DayOfMonth > date.Day()) {
			continue
		}
		if t.EndType == domain.EndOnDate && t.EndDate != nil && t.EndDate.Before(date) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TemplateID < out[j].TemplateID })
	return out, nil
}

func (m *memStore) FindTemplateByID(ctx context.Context, templateID string) (*domain.RecurringTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[templateID]
	if !ok {
		return nil, apperrors.NewNotFoundError("recurring template " + templateID)
	}
	return &t, nil
}

func (m *memStore) ListTemplatesByProject(ctx context.Context, projectID string, activeOnly bool) ([]domain.RecurringTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.RecurringTemplate
	for _, t := range m.templates {
		if t.ProjectID == projectID && (!activeOnly || t.IsActive) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TemplateID < out[j].TemplateID })
	return out, nil
}

func (m *memStore) SaveTemplate(ctx context.Context, t domain.RecurringTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.TemplateID] = t
	return nil
}

func (m *memStore) UpdateTemplate(ctx context.Context, t domain.RecurringTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[t.TemplateID]; !ok {
		return apperrors.NewNotFoundError("recurring template " + t.TemplateID)
	}
	m.templates[t.TemplateID] = t
	return nil
}

func (m *memStore) DeactivateTemplate(ctx context.Context, templateID string, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[templateID]
	if !ok {
		return apperrors.NewNotFoundError("recurring template " + templateID)
	}
	t.IsActive = false
	t.LastUpdatedBy = userID
	t.LastUpdatedAt = at
	m.templates[templateID] = t
	return nil
}

func (m *memStore) DeleteTemplate(ctx context.Context, templateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[templateID]; !ok {
		return apperrors.NewNotFoundError("recurring template " + templateID)
	}
	delete(m.templates, templateID)
	return nil
}

// --- transactions ---

func (m *memStore) GeneratedExists(ctx context.Context, templateID string, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generatedExistsLocked(templateID, date), nil
}

func (m *memStore) generatedExistsLocked(templateID string, date time.Time) bool {
	for _, t := range m.transactions {
		if t.IsGenerated && t.RecurringTemplateID != nil && *t.RecurringTemplateID == templateID && t.TxDate.Equal(domain.DateOf(date)) {
			return true
		}
	}
	return false
}

func (m *memStore) CountGenerated(ctx context.Context, templateID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.transactions {
		if t.IsGenerated && t.RecurringTemplateID != nil && *t.RecurringTemplateID == templateID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[transactionID]
	if !ok {
		return nil, apperrors.NewNotFoundError("transaction " + transactionID)
	}
	return &t, nil
}

func (m *memStore) ListGeneratedByTemplate(ctx context.Context, templateID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	all := m.generated(templateID)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil, nil
}

func (m *memStore) SaveGeneratedTransactions(ctx context.Context, txns []domain.Transaction) ([]error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]error, len(txns))
	for i, txn := range txns {
		templateID := *txn.RecurringTemplateID
		if err, ok := m.failInsertFor[templateID]; ok {
			results[i] = err
			continue
		}
		if m.generatedExistsLocked(templateID, txn.TxDate) {
			results[i] = apperrors.NewDuplicateError("generated transaction already exists")
			continue
		}
		m.transactions[txn.TransactionID] = txn
	}
	return results, nil
}

func (m *memStore) BulkUpdateGenerated(ctx context.Context, templateID string, update domain.GeneratedFieldUpdate) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failBulkUpdate {
		return 0, errors.New("bulk update unavailable")
	}
	var n int64
	for id, t := range m.transactions {
		if !t.IsGenerated || t.RecurringTemplateID == nil || *t.RecurringTemplateID != templateID {
			continue
		}
		t.Amount = update.Amount
		t.Description = update.Description
		t.CategoryID = update.CategoryID
		t.SupplierID = update.SupplierID
		t.PaymentMethod = update.PaymentMethod
		t.Notes = update.Notes
		t.LastUpdatedBy = update.UpdatedBy
		t.LastUpdatedAt = update.UpdatedAt
		m.transactions[id] = t
		n++
	}
	return n, nil
}

func (m *memStore) DeleteTransaction(ctx context.Context, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[transactionID]; !ok {
		return apperrors.NewNotFoundError("transaction " + transactionID)
	}
	delete(m.transactions, transactionID)
	return nil
}

// --- deleted instances ---

func (m *memStore) IsDeleted(ctx context.Context, templateID string, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tombstones[tombstoneKey(templateID, date)]
	return ok, nil
}

func (m *memStore) ListByTemplate(ctx context.Context, templateID string) ([]domain.DeletedRecurringInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.DeletedRecurringInstance
	for _, d := range m.tombstones {
		if d.TemplateID == templateID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TxDate.Before(out[j].TxDate) })
	return out, nil
}

func (m *memStore) Record(ctx context.Context, instance domain.DeletedRecurringInstance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTombstones {
		return errors.New("ledger unavailable")
	}
	key := tombstoneKey(instance.TemplateID, instance.TxDate)
	if _, ok := m.tombstones[key]; !ok {
		m.tombstones[key] = instance
	}
	return nil
}

func (m *memStore) Restore(ctx context.Context, templateID string, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := tombstoneKey(templateID, date)
	if _, ok := m.tombstones[key]; !ok {
		return false, nil
	}
	delete(m.tombstones, key)
	return true, nil
}

// --- projects & categories ---

func (m *memStore) FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[projectID]
	if !ok {
		return nil, apperrors.NewNotFoundError("project " + projectID)
	}
	return &p, nil
}

func (m *memStore) GetContractStartDate(ctx context.Context, projectID string) (*time.Time, error) {
	p, err := m.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return p.ContractStartDate, nil
}

func (m *memStore) ListProjectsWithContractEndingBy(ctx context.Context, date time.Time) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Project
	for _, p := range m.projects {
		if p.IsActive && p.ContractEndDate != nil && !p.ContractEndDate.After(date) && p.RenewalDueAt == nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out, nil
}

func (m *memStore) MarkRenewalDue(ctx context.Context, projectID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[projectID]
	if !ok {
		return apperrors.NewNotFoundError("project " + projectID)
	}
	p.RenewalDueAt = &at
	m.projects[projectID] = p
	return nil
}

func (m *memStore) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[categoryID]
	if !ok {
		return nil, apperrors.NewNotFoundError("category " + categoryID)
	}
	return &c, nil
}
