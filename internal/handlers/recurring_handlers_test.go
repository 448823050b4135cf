package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/construction_budget_app/internal/apperrors"
	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	portssvc "github.com/SscSPs/construction_budget_app/internal/core/ports/services"
	"github.com/SscSPs/construction_budget_app/internal/dto"
	"github.com/SscSPs/construction_budget_app/internal/handlers"
	"github.com/SscSPs/construction_budget_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock RecurringGeneratorSvc ---
type MockGeneratorService struct {
	mock.Mock
}

func (m *MockGeneratorService) report(args mock.Arguments) (*domain.GenerationReport, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GenerationReport), args.Error(1)
}
func (m *MockGeneratorService) GenerateForDate(ctx context.Context, date time.Time) (*domain.GenerationReport, error) {
	return m.report(m.Called(ctx, date))
}
func (m *MockGeneratorService) GenerateForMonth(ctx context.Context, year int, month time.Month) (*domain.GenerationReport, error) {
	return m.report(m.Called(ctx, year, month))
}
func (m *MockGeneratorService) GenerateMonthToDate(ctx context.Context, now time.Time) (*domain.GenerationReport, error) {
	return m.report(m.Called(ctx, now))
}
func (m *MockGeneratorService) GenerateBacklog(ctx context.Context, start, end time.Time) (*domain.GenerationReport, error) {
	return m.report(m.Called(ctx, start, end))
}
func (m *MockGeneratorService) GenerateUpcoming(ctx context.Context, days int) (*domain.GenerationReport, error) {
	return m.report(m.Called(ctx, days))
}
func (m *MockGeneratorService) EnsureCaughtUp(ctx context.Context, projectID string) (int, error) {
	args := m.Called(ctx, projectID)
	return args.Int(0), args.Error(1)
}
func (m *MockGeneratorService) FutureOccurrences(ctx context.Context, templateID string, start time.Time, monthsAhead int) ([]domain.FutureOccurrence, error) {
	args := m.Called(ctx, templateID, start, monthsAhead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FutureOccurrence), args.Error(1)
}

var _ portssvc.RecurringGeneratorSvc = (*MockGeneratorService)(nil)

// --- Mock RecurringTemplateSvcFacade ---
type MockTemplateService struct {
	mock.Mock
}

func (m *MockTemplateService) CreateTemplate(ctx context.Context, projectID string, req dto.CreateRecurringTemplateRequest, creatorUserID string) (*domain.RecurringTemplate, error) {
	args := m.Called(ctx, projectID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringTemplate), args.Error(1)
}
func (m *MockTemplateService) GetTemplate(ctx context.Context, templateID string) (*domain.RecurringTemplate, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringTemplate), args.Error(1)
}
func (m *MockTemplateService) ListTemplates(ctx context.Context, projectID string, activeOnly bool) ([]domain.RecurringTemplate, error) {
	args := m.Called(ctx, projectID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringTemplate), args.Error(1)
}
func (m *MockTemplateService) UpdateTemplate(ctx context.Context, templateID string, req dto.UpdateRecurringTemplateRequest, userID string) (*domain.RecurringTemplate, []string, error) {
	args := m.Called(ctx, templateID, req, userID)
	var warnings []string
	if w := args.Get(1); w != nil {
		warnings = w.([]string)
	}
	if args.Get(0) == nil {
		return nil, warnings, args.Error(2)
	}
	return args.Get(0).(*domain.RecurringTemplate), warnings, args.Error(2)
}
func (m *MockTemplateService) DeactivateTemplate(ctx context.Context, templateID string, userID string) error {
	return m.Called(ctx, templateID, userID).Error(0)
}
func (m *MockTemplateService) DeleteTemplate(ctx context.Context, templateID string) error {
	return m.Called(ctx, templateID).Error(0)
}

var _ portssvc.RecurringTemplateSvcFacade = (*MockTemplateService)(nil)

// --- Mock RecurringTransactionSvc ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) DeleteTransaction(ctx context.Context, transactionID string, userID string) error {
	return m.Called(ctx, transactionID, userID).Error(0)
}
func (m *MockTransactionService) RestoreInstance(ctx context.Context, templateID string, date time.Time) (bool, error) {
	args := m.Called(ctx, templateID, date)
	return args.Bool(0), args.Error(1)
}
func (m *MockTransactionService) ListDeletedInstances(ctx context.Context, templateID string) ([]domain.DeletedRecurringInstance, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DeletedRecurringInstance), args.Error(1)
}
func (m *MockTransactionService) ListGeneratedTransactions(ctx context.Context, templateID string, params dto.ListGeneratedTransactionsParams) (*dto.ListGeneratedTransactionsResponse, error) {
	args := m.Called(ctx, templateID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListGeneratedTransactionsResponse), args.Error(1)
}

var _ portssvc.RecurringTransactionSvc = (*MockTransactionService)(nil)

// capturedEvent is one analytics event recorded by eventRecorder.
type capturedEvent struct {
	userID string
	event  string
	props  map[string]any
}

// eventRecorder is an in-memory middleware.EventTracker.
type eventRecorder struct {
	events []capturedEvent
}

func (r *eventRecorder) IsInitialized() bool { return true }
func (r *eventRecorder) Enqueue(distinctID string, event string, properties map[string]any) {
	r.events = append(r.events, capturedEvent{userID: distinctID, event: event, props: properties})
}

// --- Test Suite ---
type RecurringHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	clock           *clockwork.FakeClock
	events          *eventRecorder
	mockGenerator   *MockGeneratorService
	mockTemplate    *MockTemplateService
	mockTransaction *MockTransactionService
	jwtSecret       string
	userID          string
}

func (suite *RecurringHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "cba-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *RecurringHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.userID = uuid.NewString()

	suite.clock = clockwork.NewFakeClockAt(time.Date(2024, 7, 15, 9, 30, 0, 0, time.UTC))
	suite.events = &eventRecorder{}

	suite.mockGenerator = new(MockGeneratorService)
	suite.mockTemplate = new(MockTemplateService)
	suite.mockTransaction = new(MockTransactionService)

	v1 := suite.router.Group("/api/v1", middleware.AuthMiddleware(suite.jwtSecret), middleware.PosthogMiddleware(suite.events))
	handlers.RegisterRecurringRoutes(v1, &portssvc.ServiceContainer{
		Generator:   suite.mockGenerator,
		Template:    suite.mockTemplate,
		Transaction: suite.mockTransaction,
		Clock:       suite.clock,
	}, nil)
}

func (suite *RecurringHandlerTestSuite) TearDownTest() {
	suite.mockGenerator.AssertExpectations(suite.T())
	suite.mockTemplate.AssertExpectations(suite.T())
	suite.mockTransaction.AssertExpectations(suite.T())
}

// do sends an authenticated request and returns the recorder.
func (suite *RecurringHandlerTestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func sampleTemplate(templateID, projectID string) *domain.RecurringTemplate {
	category := "cat-rent"
	return &domain.RecurringTemplate{
		TemplateID:  templateID,
		ProjectID:   projectID,
		Description: "Site office rent",
		Kind:        domain.Expense,
		Amount:      decimal.NewFromInt(1200),
		CategoryID:  &category,
		Frequency:   domain.Monthly,
		DayOfMonth:  5,
		StartDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndType:     domain.EndNever,
		IsActive:    true,
	}
}

// --- Template routes ---

func (suite *RecurringHandlerTestSuite) TestCreateTemplate_Success() {
	projectID := uuid.NewString()
	templateID := uuid.NewString()

	suite.mockTemplate.On("CreateTemplate",
		mock.AnythingOfType("*context.valueCtx"),
		projectID,
		mock.MatchedBy(func(r dto.CreateRecurringTemplateRequest) bool {
			return r.DayOfMonth == 5 && r.Amount.Equal(decimal.NewFromInt(1200)) && r.EndType == "NEVER"
		}),
		suite.userID,
	).Return(sampleTemplate(templateID, projectID), nil).Once()

	w := suite.do(http.MethodPost, fmt.Sprintf("/api/v1/projects/%s/recurring-templates", projectID), map[string]any{
		"description": "Site office rent",
		"kind":        "EXPENSE",
		"amount":      "1200",
		"categoryID":  "cat-rent",
		"dayOfMonth":  5,
		"startDate":   "2024-03-01",
		"endType":     "NEVER",
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.RecurringTemplateResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(templateID, resp.TemplateID)
	suite.Equal("2024-03-01", resp.StartDate)
	suite.Equal("MONTHLY", resp.Frequency)
}

func (suite *RecurringHandlerTestSuite) TestCreateTemplate_EndConditionMismatchIsRejected() {
	projectID := uuid.NewString()

	w := suite.do(http.MethodPost, fmt.Sprintf("/api/v1/projects/%s/recurring-templates", projectID), map[string]any{
		"description": "Crane hire",
		"kind":        "EXPENSE",
		"amount":      "800",
		"categoryID":  "cat-equipment",
		"dayOfMonth":  10,
		"startDate":   "2024-03-01",
		"endType":     "ON_DATE",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockTemplate.AssertNotCalled(suite.T(), "CreateTemplate")
}

func (suite *RecurringHandlerTestSuite) TestCreateTemplate_NonPositiveAmountIsRejected() {
	w := suite.do(http.MethodPost, "/api/v1/projects/p1/recurring-templates", map[string]any{
		"description": "Refund",
		"kind":        "INCOME",
		"amount":      "0",
		"categoryID":  "cat-misc",
		"dayOfMonth":  1,
		"startDate":   "2024-03-01",
		"endType":     "NEVER",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockTemplate.AssertNotCalled(suite.T(), "CreateTemplate")
}

func (suite *RecurringHandlerTestSuite) TestCreateTemplate_ServiceValidationMapsTo400() {
	suite.mockTemplate.On("CreateTemplate", mock.Anything, "p1", mock.Anything, suite.userID).
		Return(nil, apperrors.NewValidationFailedError("start date 2023-12-01 is before contract start 2024-01-01")).Once()

	w := suite.do(http.MethodPost, "/api/v1/projects/p1/recurring-templates", map[string]any{
		"description": "Security",
		"kind":        "EXPENSE",
		"amount":      "300",
		"categoryID":  "cat-security",
		"dayOfMonth":  1,
		"startDate":   "2023-12-01",
		"endType":     "NEVER",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "contract start")
}

func (suite *RecurringHandlerTestSuite) TestCreateTemplate_RequiresToken() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/projects/p1/recurring-templates", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *RecurringHandlerTestSuite) TestListTemplates_ActiveOnly() {
	suite.mockTemplate.On("ListTemplates", mock.AnythingOfType("*context.valueCtx"), "p1", true).
		Return([]domain.RecurringTemplate{*sampleTemplate("t1", "p1")}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/projects/p1/recurring-templates?activeOnly=true", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListRecurringTemplatesResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Templates, 1)
}

func (suite *RecurringHandlerTestSuite) TestGetTemplate_NotFound() {
	suite.mockTemplate.On("GetTemplate", mock.Anything, "missing").
		Return(nil, apperrors.NewNotFoundError("recurring template missing")).Once()

	w := suite.do(http.MethodGet, "/api/v1/recurring-templates/missing", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *RecurringHandlerTestSuite) TestGetTemplate_InternalErrorHidesDetail() {
	suite.mockTemplate.On("GetTemplate", mock.Anything, "t1").
		Return(nil, errors.New("connection reset by peer")).Once()

	w := suite.do(http.MethodGet, "/api/v1/recurring-templates/t1", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.NotContains(w.Body.String(), "connection reset")
}

func (suite *RecurringHandlerTestSuite) TestUpdateTemplate_ReturnsWarnings() {
	updated := sampleTemplate("t1", "p1")
	updated.Amount = decimal.NewFromInt(1500)
	warning := "template updated but changes could not be applied to already generated transactions"

	suite.mockTemplate.On("UpdateTemplate",
		mock.AnythingOfType("*context.valueCtx"),
		"t1",
		mock.MatchedBy(func(r dto.UpdateRecurringTemplateRequest) bool {
			return r.Amount != nil && r.Amount.Equal(decimal.NewFromInt(1500))
		}),
		suite.userID,
	).Return(updated, []string{warning}, nil).Once()

	w := suite.do(http.MethodPatch, "/api/v1/recurring-templates/t1", map[string]any{"amount": "1500"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.UpdateRecurringTemplateResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Template.Amount.Equal(decimal.NewFromInt(1500)))
	suite.Equal([]string{warning}, resp.Warnings)
}

func (suite *RecurringHandlerTestSuite) TestDeactivateTemplate() {
	suite.mockTemplate.On("DeactivateTemplate", mock.Anything, "t1", suite.userID).Return(nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/recurring-templates/t1/deactivate", nil)

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *RecurringHandlerTestSuite) TestDeleteTemplate_WithHistoryConflicts() {
	suite.mockTemplate.On("DeleteTemplate", mock.Anything, "t1").
		Return(apperrors.NewConflictError("template has 4 generated transactions; deactivate it instead")).Once()

	w := suite.do(http.MethodDelete, "/api/v1/recurring-templates/t1", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *RecurringHandlerTestSuite) TestFutureOccurrences() {
	category := "cat-rent"
	items := []domain.FutureOccurrence{
		{Date: time.Date(2024, 8, 5, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(1200), Description: "Site office rent", CategoryID: &category},
		{Date: time.Date(2024, 9, 5, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(1200), Description: "Site office rent", CategoryID: &category},
	}
	suite.mockGenerator.On("FutureOccurrences", mock.Anything, "t1", time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), 2).
		Return(items, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/recurring-templates/t1/occurrences?start=2024-08-01&months=2", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.FutureOccurrenceResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp, 2)
	suite.Equal("2024-08-05", resp[0].Date)
	suite.Equal("2024-09-05", resp[1].Date)
}

func (suite *RecurringHandlerTestSuite) TestFutureOccurrences_DefaultsStartToToday() {
	suite.mockGenerator.On("FutureOccurrences", mock.Anything, "t1", time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), 12).
		Return([]domain.FutureOccurrence{}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/recurring-templates/t1/occurrences", nil)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *RecurringHandlerTestSuite) TestFutureOccurrences_InvalidMonths() {
	w := suite.do(http.MethodGet, "/api/v1/recurring-templates/t1/occurrences?months=0", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *RecurringHandlerTestSuite) TestCatchUpProject() {
	suite.mockGenerator.On("EnsureCaughtUp", mock.AnythingOfType("*context.valueCtx"), "p1").Return(7, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/projects/p1/recurring-templates/catch-up", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CatchUpResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(7, resp.Generated)
}

// --- Generated transaction routes ---

func (suite *RecurringHandlerTestSuite) TestListGeneratedTransactions_DefaultLimit() {
	page := &dto.ListGeneratedTransactionsResponse{Transactions: []dto.TransactionResponse{}}
	suite.mockTransaction.On("ListGeneratedTransactions", mock.Anything, "t1",
		mock.MatchedBy(func(p dto.ListGeneratedTransactionsParams) bool { return p.Limit == 20 && p.NextToken == nil }),
	).Return(page, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/recurring-templates/t1/transactions", nil)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *RecurringHandlerTestSuite) TestListDeletedInstances() {
	suite.mockTransaction.On("ListDeletedInstances", mock.Anything, "t1").Return([]domain.DeletedRecurringInstance{
		{TemplateID: "t1", TxDate: time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), DeletedBy: "u1"},
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/recurring-templates/t1/deleted-instances", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.DeletedInstanceResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp, 1)
	suite.Equal("2024-05-05", resp[0].TxDate)
}

func (suite *RecurringHandlerTestSuite) TestRestoreInstance() {
	date := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)
	suite.mockTransaction.On("RestoreInstance", mock.Anything, "t1", date).Return(true, nil).Once()
	suite.mockTransaction.On("RestoreInstance", mock.Anything, "t2", date).Return(false, nil).Once()

	suite.Equal(http.StatusNoContent, suite.do(http.MethodDelete, "/api/v1/recurring-templates/t1/deleted-instances/2024-05-05", nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodDelete, "/api/v1/recurring-templates/t2/deleted-instances/2024-05-05", nil).Code)
}

func (suite *RecurringHandlerTestSuite) TestRestoreInstance_InvalidDate() {
	w := suite.do(http.MethodDelete, "/api/v1/recurring-templates/t1/deleted-instances/2024-13-01", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *RecurringHandlerTestSuite) TestDeleteTransaction() {
	suite.mockTransaction.On("DeleteTransaction", mock.Anything, "tx1", suite.userID).Return(nil).Once()
	suite.mockTransaction.On("DeleteTransaction", mock.Anything, "tx-missing", suite.userID).
		Return(apperrors.NewNotFoundError("transaction tx-missing")).Once()

	suite.Equal(http.StatusNoContent, suite.do(http.MethodDelete, "/api/v1/transactions/tx1", nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodDelete, "/api/v1/transactions/tx-missing", nil).Code)
}

// --- Generation trigger ---

func (suite *RecurringHandlerTestSuite) TestGenerate_Month() {
	report := domain.NewGenerationReport()
	report.Created = append(report.Created, domain.Transaction{TransactionID: "tx1", TxDate: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)})
	report.Skip(domain.SkipAlreadyGenerated)
	suite.mockGenerator.On("GenerateForMonth", mock.AnythingOfType("*context.valueCtx"), 2024, time.February).Return(report, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/recurring/generate", map[string]any{"mode": "month", "month": "2024-02"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.GenerationReportResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(1, resp.Created)
	suite.Equal(1, resp.Skipped["already_generated"])
	suite.Equal("2024-02-29", resp.Transactions[0].TxDate)
}

func (suite *RecurringHandlerTestSuite) TestGenerate_TodayUsesServiceClock() {
	suite.mockGenerator.On("GenerateMonthToDate", mock.Anything, suite.clock.Now()).
		Return(domain.NewGenerationReport(), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/recurring/generate", map[string]any{"mode": "today"})

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *RecurringHandlerTestSuite) TestGenerate_TracksModeAndOutcome() {
	report := domain.NewGenerationReport()
	report.Created = append(report.Created, domain.Transaction{TransactionID: "tx1", TxDate: time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)})
	suite.mockGenerator.On("GenerateForMonth", mock.Anything, 2024, time.February).Return(report, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/recurring/generate", map[string]any{"mode": "month", "month": "2024-02"})

	suite.Equal(http.StatusOK, w.Code)
	suite.Require().Len(suite.events.events, 1)
	ev := suite.events.events[0]
	suite.Equal("recurring_generation_triggered", ev.event)
	suite.Equal(suite.userID, ev.userID)
	suite.Equal("month", ev.props["mode"])
	suite.Equal(1, ev.props["created"])
	suite.Equal(0, ev.props["failed"])
}

func (suite *RecurringHandlerTestSuite) TestGenerate_Backlog() {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	suite.mockGenerator.On("GenerateBacklog", mock.Anything, from, to).Return(domain.NewGenerationReport(), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/recurring/generate", map[string]any{"mode": "backlog", "from": "2024-01-01", "to": "2024-03-31"})

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *RecurringHandlerTestSuite) TestGenerate_MissingModeParameter() {
	cases := []map[string]any{
		{"mode": "date"},
		{"mode": "month"},
		{"mode": "backlog", "from": "2024-03-01"},
		{"mode": "backlog", "from": "2024-03-01", "to": "2024-02-01"},
		{"mode": "upcoming"},
		{"mode": "weekly"},
	}
	for _, body := range cases {
		w := suite.do(http.MethodPost, "/api/v1/recurring/generate", body)
		suite.Equal(http.StatusBadRequest, w.Code, "body %v", body)
	}
}

func (suite *RecurringHandlerTestSuite) TestGenerate_PartialFailureReturnsReport() {
	report := domain.NewGenerationReport()
	report.Created = append(report.Created, domain.Transaction{TransactionID: "tx1", TxDate: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)})
	report.Failed = 1
	suite.mockGenerator.On("GenerateUpcoming", mock.Anything, 3).Return(report, errors.New("insert failed")).Once()

	w := suite.do(http.MethodPost, "/api/v1/recurring/generate", map[string]any{"mode": "upcoming", "days": 3})

	suite.Equal(http.StatusInternalServerError, w.Code)
	var resp struct {
		Error  string                       `json:"error"`
		Report dto.GenerationReportResponse `json:"report"`
	}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Generation completed with errors", resp.Error)
	suite.Equal(1, resp.Report.Created)
	suite.Equal(1, resp.Report.Failed)
}

func TestRecurringHandler(t *testing.T) {
	suite.Run(t, new(RecurringHandlerTestSuite))
}

func TestGenerate_RateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "test-secret-key-that-is-long-enough"
	router := gin.New()
	router.Use(middleware.AuthMiddleware(secret))

	generationLimiter, err := middleware.NewMemoryRateLimiter("1-M")
	if err != nil {
		t.Fatalf("limiter: %v", err)
	}
	generator := new(MockGeneratorService)
	generator.On("GenerateUpcoming", mock.Anything, 0).Return(domain.NewGenerationReport(), nil).Once()
	handlers.RegisterRecurringRoutes(router.Group("/api/v1"), &portssvc.ServiceContainer{Generator: generator}, generationLimiter)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/recurring/generate", bytes.NewReader([]byte(`{"mode":"upcoming","days":0}`)))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected [200 429], got %v", codes)
	}
	generator.AssertExpectations(t)
}
