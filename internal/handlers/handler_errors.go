package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/construction_budget_app/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// respondError writes err with the status apperrors.StatusCode picks. Client errors
// carry the error text; server errors only carry fallbackMsg.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallbackMsg string) {
	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": fallbackMsg})
		return
	}
	logger.Warn(fallbackMsg, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, gin.H{"error": err.Error()})
}
