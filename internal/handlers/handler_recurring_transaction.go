package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/construction_budget_app/internal/core/domain"
	portssvc "github.com/SscSPs/construction_budget_app/internal/core/ports/services"
	"github.com/SscSPs/construction_budget_app/internal/dto"
	"github.com/SscSPs/construction_budget_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// recurringTransactionHandler handles generated transactions and their tombstones.
type recurringTransactionHandler struct {
	transactionService portssvc.RecurringTransactionSvc
}

func newRecurringTransactionHandler(ts portssvc.RecurringTransactionSvc) *recurringTransactionHandler {
	return &recurringTransactionHandler{transactionService: ts}
}

func registerRecurringTransactionRoutes(rg *gin.RouterGroup, ts portssvc.RecurringTransactionSvc) {
	h := newRecurringTransactionHandler(ts)

	templates := rg.Group("/recurring-templates/:templateID")
	{
		templates.GET("/transactions", h.listGeneratedTransactions)
		templates.GET("/deleted-instances", h.listDeletedInstances)
		templates.DELETE("/deleted-instances/:date", h.restoreInstance)
	}

	rg.DELETE("/transactions/:transactionID", h.deleteTransaction)
}

// listGeneratedTransactions godoc
// @Summary List a template's generated transactions
// @Description Newest first, paginated with an opaque next token
// @Tags recurring-transactions
// @Produce  json
// @Param   templateID path string true "Template ID"
// @Param   limit query int false "Page size (1-100)" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListGeneratedTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Template not found"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /recurring-templates/{templateID}/transactions [get]
func (h *recurringTransactionHandler) listGeneratedTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templateID := c.Param("templateID")

	var params dto.ListGeneratedTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters for ListGeneratedTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.transactionService.ListGeneratedTransactions(c.Request.Context(), templateID, params)
	if err != nil {
		respondError(c, logger.With(slog.String("template_id", templateID)), err, "Failed to list generated transactions")
		return
	}
	c.JSON(http.StatusOK, page)
}

// listDeletedInstances godoc
// @Summary List deleted instances of a template
// @Description Dates that will not be generated again until restored
// @Tags recurring-transactions
// @Produce  json
// @Param   templateID path string true "Template ID"
// @Success 200 {array} dto.DeletedInstanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Template not found"
// @Failure 500 {object} map[string]string "Failed to list deleted instances"
// @Security BearerAuth
// @Router /recurring-templates/{templateID}/deleted-instances [get]
func (h *recurringTransactionHandler) listDeletedInstances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templateID := c.Param("templateID")

	items, err := h.transactionService.ListDeletedInstances(c.Request.Context(), templateID)
	if err != nil {
		respondError(c, logger.With(slog.String("template_id", templateID)), err, "Failed to list deleted instances")
		return
	}
	c.JSON(http.StatusOK, dto.ToDeletedInstanceResponses(items))
}

// restoreInstance godoc
// @Summary Restore a deleted instance
// @Description Removes the tombstone so the date can be generated again
// @Tags recurring-transactions
// @Param   templateID path string true "Template ID"
// @Param   date path string true "Instance date (YYYY-MM-DD)"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No deleted instance for this date"
// @Failure 500 {object} map[string]string "Failed to restore"
// @Security BearerAuth
// @Router /recurring-templates/{templateID}/deleted-instances/{date} [delete]
func (h *recurringTransactionHandler) restoreInstance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templateID := c.Param("templateID")

	date, err := domain.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date: " + c.Param("date")})
		return
	}

	restored, err := h.transactionService.RestoreInstance(c.Request.Context(), templateID, date)
	if err != nil {
		respondError(c, logger.With(slog.String("template_id", templateID)), err, "Failed to restore deleted instance")
		return
	}
	if !restored {
		c.JSON(http.StatusNotFound, gin.H{"error": "No deleted instance for this date"})
		return
	}
	c.Status(http.StatusNoContent)
}

// deleteTransaction godoc
// @Summary Delete a transaction
// @Description Deleting a generated instance also prevents it from being generated again
// @Tags recurring-transactions
// @Param   transactionID path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to delete transaction"
// @Security BearerAuth
// @Router /transactions/{transactionID} [delete]
func (h *recurringTransactionHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), transactionID, userID); err != nil {
		respondError(c, logger.With(slog.String("transaction_id", transactionID)), err, "Failed to delete transaction")
		return
	}
	c.Status(http.StatusNoContent)
}
