package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// respondError writes err with the status apperrors.HTTPStatus assigns it.
// Server-side failures are logged and hidden behind fallback.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error(), "kind": apperrors.Kind(err)})
}
