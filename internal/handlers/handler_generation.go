package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/construction_budget_app/internal/apperrors"
	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	portssvc "github.com/SscSPs/construction_budget_app/internal/core/ports/services"
	"github.com/SscSPs/construction_budget_app/internal/dto"
	"github.com/SscSPs/construction_budget_app/internal/middleware"
	"github.com/SscSPs/construction_budget_app/internal/utils/recurrence"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/ulule/limiter/v3"
)

// generationHandler exposes the manual generation trigger.
type generationHandler struct {
	generatorService portssvc.RecurringGeneratorSvc
	clock            clockwork.Clock
}

func newGenerationHandler(gs portssvc.RecurringGeneratorSvc, clock clockwork.Clock) *generationHandler {
	return &generationHandler{
		generatorService: gs,
		clock:            clock,
	}
}

// registerGenerationRoutes registers the trigger. A nil limiter disables rate limiting.
func registerGenerationRoutes(rg *gin.RouterGroup, gs portssvc.RecurringGeneratorSvc, clock clockwork.Clock, generationLimiter *limiter.Limiter) {
	h := newGenerationHandler(gs, clock)

	handlers := []gin.HandlerFunc{}
	if generationLimiter != nil {
		handlers = append(handlers, middleware.RateLimit(generationLimiter))
	}
	handlers = append(handlers, h.generate)

	rg.POST("/recurring/generate", handlers...)
}

// generate godoc
// @Summary Trigger recurring transaction generation
// @Description Runs a generation pass. Modes: today (current month up to today), date, month (YYYY-MM), backlog (from..to) and upcoming (next N days). Safe to repeat; already generated instances are skipped.
// @Tags recurring-generation
// @Accept  json
// @Produce  json
// @Param   request body dto.GenerateRequest true "Generation mode and its parameters"
// @Success 200 {object} dto.GenerationReportResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 429 {object} map[string]string "Too many requests"
// @Failure 500 {object} map[string]any "Generation completed with errors"
// @Security BearerAuth
// @Router /recurring/generate [post]
func (h *generationHandler) generate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for GenerateRecurring", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("mode", req.Mode))
	report, err := h.run(c, req)
	if err != nil && report == nil {
		respondError(c, logger, err, "Failed to generate recurring transactions")
		return
	}

	middleware.SetEventProperty(c, "mode", req.Mode)
	middleware.SetEventProperty(c, "created", len(report.Created))
	middleware.SetEventProperty(c, "skipped", report.SkippedTotal())
	middleware.SetEventProperty(c, "failed", report.Failed)

	if err != nil {
		logger.Error("Generation completed with errors", slog.String("error", err.Error()), slog.Int("failed", report.Failed))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Generation completed with errors",
			"report": dto.ToGenerationReportResponse(report),
		})
		return
	}

	logger.Info("Manual generation finished", slog.Int("created", len(report.Created)), slog.Int("skipped", report.SkippedTotal()))
	c.JSON(http.StatusOK, dto.ToGenerationReportResponse(report))
}

func (h *generationHandler) run(c *gin.Context, req dto.GenerateRequest) (*domain.GenerationReport, error) {
	ctx := c.Request.Context()

	switch req.Mode {
	case dto.GenerateModeToday:
		return h.generatorService.GenerateMonthToDate(ctx, h.clock.Now())
	case dto.GenerateModeDate:
		date, err := domain.ParseDate(*req.Date)
		if err != nil {
			return nil, apperrors.NewValidationFailedError("invalid date: " + *req.Date)
		}
		return h.generatorService.GenerateForDate(ctx, date)
	case dto.GenerateModeMonth:
		month, err := recurrence.ParseMonth(*req.Month)
		if err != nil {
			return nil, apperrors.NewValidationFailedError(err.Error())
		}
		return h.generatorService.GenerateForMonth(ctx, month.Year, month.Month)
	case dto.GenerateModeBacklog:
		from, errFrom := domain.ParseDate(*req.From)
		to, errTo := domain.ParseDate(*req.To)
		if err := errors.Join(errFrom, errTo); err != nil {
			return nil, apperrors.NewValidationFailedError("invalid backlog range")
		}
		return h.generatorService.GenerateBacklog(ctx, from, to)
	case dto.GenerateModeUpcoming:
		return h.generatorService.GenerateUpcoming(ctx, *req.Days)
	}
	return nil, apperrors.NewValidationFailedError("unknown generation mode: " + req.Mode)
}
