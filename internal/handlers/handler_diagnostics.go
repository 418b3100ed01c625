package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/tally_ledger_store/internal/core/ports/services"
	"github.com/SscSPs/tally_ledger_store/internal/dto"
	"github.com/SscSPs/tally_ledger_store/internal/middleware"
	"github.com/gin-gonic/gin"
)

type diagnosticsHandler struct {
	diagnosticsService portssvc.DiagnosticsSvc
}

func registerDiagnosticsRoutes(rg *gin.RouterGroup, diagnosticsService portssvc.DiagnosticsSvc) {
	h := &diagnosticsHandler{diagnosticsService: diagnosticsService}
	rg.POST("/diagnostics", h.diagnose)
}

// diagnose runs the hierarchy and ledger checks for a tenant. Findings are
// part of a 200 response; only failures to run the checks are errors.
func (h *diagnosticsHandler) diagnose(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for diagnostics", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	middleware.SetTenant(c, req.Tenant())
	logger = middleware.GetLoggerFromContext(c)

	report, err := h.diagnosticsService.Diagnose(c.Request.Context(), req.Tenant())
	if err != nil {
		respondError(c, logger, err, "Failed to run diagnostics")
		return
	}
	logger.Info("Diagnostics completed", slog.Bool("clean", report.Clean()))
	c.JSON(http.StatusOK, report)
}
