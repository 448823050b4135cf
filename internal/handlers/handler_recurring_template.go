package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	portssvc "github.com/SscSPs/construction_budget_app/internal/core/ports/services"
	"github.com/SscSPs/construction_budget_app/internal/dto"
	"github.com/SscSPs/construction_budget_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

// recurringTemplateHandler handles HTTP requests related to recurring templates.
type recurringTemplateHandler struct {
	templateService  portssvc.RecurringTemplateSvcFacade
	generatorService portssvc.RecurringGeneratorSvc
	clock            clockwork.Clock
}

// newRecurringTemplateHandler creates a new recurringTemplateHandler.
func newRecurringTemplateHandler(ts portssvc.RecurringTemplateSvcFacade, gs portssvc.RecurringGeneratorSvc, clock clockwork.Clock) *recurringTemplateHandler {
	return &recurringTemplateHandler{
		templateService:  ts,
		generatorService: gs,
		clock:            clock,
	}
}

// registerRecurringTemplateRoutes registers template routes under projects and at the top level.
func registerRecurringTemplateRoutes(rg *gin.RouterGroup, ts portssvc.RecurringTemplateSvcFacade, gs portssvc.RecurringGeneratorSvc, clock clockwork.Clock) {
	h := newRecurringTemplateHandler(ts, gs, clock)

	projectTemplates := rg.Group("/projects/:projectID/recurring-templates")
	{
		projectTemplates.POST("", h.createTemplate)
		projectTemplates.GET("", h.listTemplates)
		projectTemplates.POST("/catch-up", h.catchUpProject)
	}

	templates := rg.Group("/recurring-templates/:templateID")
	{
		templates.GET("", h.getTemplate)
		templates.PATCH("", h.updateTemplate)
		templates.POST("/deactivate", h.deactivateTemplate)
		templates.DELETE("", h.deleteTemplate)
		templates.GET("/occurrences", h.futureOccurrences)
	}
}

// createTemplate godoc
// @Summary Create a recurring template
// @Description Creates a monthly recurring income or expense template for a project
// @Tags recurring-templates
// @Accept  json
// @Produce  json
// @Param   projectID path string true "Project ID"
// @Param   template body dto.CreateRecurringTemplateRequest true "Template definition"
// @Success 201 {object} dto.RecurringTemplateResponse
// @Failure 400 {object} map[string]string "Invalid input or definition rejected"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Project not found"
// @Failure 500 {object} map[string]string "Failed to create template"
// @Security BearerAuth
// @Router /projects/{projectID}/recurring-templates [post]
func (h *recurringTemplateHandler) createTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID := c.Param("projectID")

	var req dto.CreateRecurringTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateRecurringTemplate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("project_id", projectID), slog.String("creator_user_id", creatorUserID))
	template, err := h.templateService.CreateTemplate(c.Request.Context(), projectID, req, creatorUserID)
	if err != nil {
		respondError(c, logger, err, "Failed to create recurring template")
		return
	}

	logger.Info("Recurring template created", slog.String("template_id", template.TemplateID))
	c.JSON(http.StatusCreated, dto.ToRecurringTemplateResponse(template))
}

// listTemplates godoc
// @Summary List recurring templates of a project
// @Tags recurring-templates
// @Produce  json
// @Param   projectID path string true "Project ID"
// @Param   activeOnly query bool false "Only active templates"
// @Success 200 {object} dto.ListRecurringTemplatesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list templates"
// @Security BearerAuth
// @Router /projects/{projectID}/recurring-templates [get]
func (h *recurringTemplateHandler) listTemplates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID := c.Param("projectID")

	var params dto.ListRecurringTemplatesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters for ListRecurringTemplates", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	templates, err := h.templateService.ListTemplates(c.Request.Context(), projectID, params.ActiveOnly)
	if err != nil {
		respondError(c, logger.With(slog.String("project_id", projectID)), err, "Failed to list recurring templates")
		return
	}
	c.JSON(http.StatusOK, dto.ToListRecurringTemplatesResponse(templates))
}

// catchUpProject godoc
// @Summary Catch up a project's recurring transactions
// @Description Generates every missing instance of the project's active templates up to today
// @Tags recurring-templates
// @Produce  json
// @Param   projectID path string true "Project ID"
// @Success 200 {object} dto.CatchUpResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Catch-up failed"
// @Security BearerAuth
// @Router /projects/{projectID}/recurring-templates/catch-up [post]
func (h *recurringTemplateHandler) catchUpProject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID := c.Param("projectID")

	generated, err := h.generatorService.EnsureCaughtUp(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, logger.With(slog.String("project_id", projectID)), err, "Failed to catch up project")
		return
	}
	c.JSON(http.StatusOK, dto.CatchUpResponse{ProjectID: projectID, Generated: generated})
}

// getTemplate godoc
// @Summary Get a recurring template
// @Tags recurring-templates
// @Produce  json
// @Param   templateID path string true "Template ID"
// @Success 200 {object} dto.RecurringTemplateResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Template not found"
// @Failure 500 {object} map[string]string "Failed to retrieve template"
// @Security BearerAuth
// @Router /recurring-templates/{templateID} [get]
func (h *recurringTemplateHandler) getTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templateID := c.Param("templateID")

	template, err := h.templateService.GetTemplate(c.Request.Context(), templateID)
	if err != nil {
		respondError(c, logger.With(slog.String("template_id", templateID)), err, "Failed to retrieve recurring template")
		return
	}
	c.JSON(http.StatusOK, dto.ToRecurringTemplateResponse(template))
}

// updateTemplate godoc
// @Summary Update a recurring template
// @Description Applies a partial update. Changes to amount, description, category, supplier, payment method or notes are propagated to already generated transactions; propagation problems are returned as warnings.
// @Tags recurring-templates
// @Accept  json
// @Produce  json
// @Param   templateID path string true "Template ID"
// @Param   template body dto.UpdateRecurringTemplateRequest true "Fields to update"
// @Success 200 {object} dto.UpdateRecurringTemplateResponse
// @Failure 400 {object} map[string]string "Invalid input or update rejected"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Template not found"
// @Failure 500 {object} map[string]string "Failed to update template"
// @Security BearerAuth
// @Router /recurring-templates/{templateID} [patch]
func (h *recurringTemplateHandler) updateTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templateID := c.Param("templateID")

	var req dto.UpdateRecurringTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateRecurringTemplate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("template_id", templateID), slog.String("user_id", userID))
	template, warnings, err := h.templateService.UpdateTemplate(c.Request.Context(), templateID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update recurring template")
		return
	}
	if len(warnings) > 0 {
		logger.Warn("Recurring template updated with warnings", slog.Any("warnings", warnings))
	}

	c.JSON(http.StatusOK, dto.UpdateRecurringTemplateResponse{
		Template: dto.ToRecurringTemplateResponse(template),
		Warnings: warnings,
	})
}

// deactivateTemplate godoc
// @Summary Deactivate a recurring template
// @Description Stops future generation; generated history is kept
// @Tags recurring-templates
// @Param   templateID path string true "Template ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Template not found"
// @Failure 500 {object} map[string]string "Failed to deactivate template"
// @Security BearerAuth
// @Router /recurring-templates/{templateID}/deactivate [post]
func (h *recurringTemplateHandler) deactivateTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templateID := c.Param("templateID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.templateService.DeactivateTemplate(c.Request.Context(), templateID, userID); err != nil {
		respondError(c, logger.With(slog.String("template_id", templateID)), err, "Failed to deactivate recurring template")
		return
	}
	c.Status(http.StatusNoContent)
}

// deleteTemplate godoc
// @Summary Delete a recurring template
// @Description Only templates that never generated a transaction can be deleted; deactivate the others
// @Tags recurring-templates
// @Param   templateID path string true "Template ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Template not found"
// @Failure 409 {object} map[string]string "Template has generated transactions"
// @Failure 500 {object} map[string]string "Failed to delete template"
// @Security BearerAuth
// @Router /recurring-templates/{templateID} [delete]
func (h *recurringTemplateHandler) deleteTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templateID := c.Param("templateID")

	if err := h.templateService.DeleteTemplate(c.Request.Context(), templateID); err != nil {
		respondError(c, logger.With(slog.String("template_id", templateID)), err, "Failed to delete recurring template")
		return
	}
	c.Status(http.StatusNoContent)
}

// futureOccurrences godoc
// @Summary Project future occurrences of a template
// @Description Lists the dates the template would generate on, without persisting anything
// @Tags recurring-templates
// @Produce  json
// @Param   templateID path string true "Template ID"
// @Param   start query string false "First date to consider (YYYY-MM-DD), defaults to today"
// @Param   months query int false "Months to look ahead (1-60)" default(12)
// @Success 200 {array} dto.FutureOccurrenceResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Template not found"
// @Failure 500 {object} map[string]string "Failed to project occurrences"
// @Security BearerAuth
// @Router /recurring-templates/{templateID}/occurrences [get]
func (h *recurringTemplateHandler) futureOccurrences(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templateID := c.Param("templateID")

	var params dto.FutureOccurrencesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters for FutureOccurrences", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	start := domain.DateOf(h.clock.Now())
	if params.Start != "" {
		parsed, err := domain.ParseDate(params.Start)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date: " + params.Start})
			return
		}
		start = parsed
	}

	items, err := h.generatorService.FutureOccurrences(c.Request.Context(), templateID, start, params.Months)
	if err != nil {
		respondError(c, logger.With(slog.String("template_id", templateID)), err, "Failed to project future occurrences")
		return
	}
	c.JSON(http.StatusOK, dto.ToFutureOccurrenceResponses(items))
}
