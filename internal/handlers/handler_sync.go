package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portssvc "github.com/SscSPs/tally_ledger_store/internal/core/ports/services"
	"github.com/SscSPs/tally_ledger_store/internal/dto"
	"github.com/SscSPs/tally_ledger_store/internal/middleware"
	"github.com/gin-gonic/gin"
)

// syncHandler accepts producer batches.
type syncHandler struct {
	syncService portssvc.SyncSvc
}

func newSyncHandler(ss portssvc.SyncSvc) *syncHandler {
	return &syncHandler{syncService: ss}
}

// registerSyncRoutes registers routes that load batches.
func registerSyncRoutes(rg *gin.RouterGroup, syncService portssvc.SyncSvc) {
	h := newSyncHandler(syncService)

	sync := rg.Group("/sync")
	{
		sync.POST("", h.run)
		sync.POST("/all", h.runAll)
	}
}

// run loads one tenant's batch and returns its report. A run that stops
// early still returns the partial report next to the error.
func (h *syncHandler) run(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var batch domain.SyncBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		logger.Warn("Failed to bind JSON for sync", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	middleware.SetTenant(c, batch.Tenant)
	logger = middleware.GetLoggerFromContext(c)
	logger.Info("Received sync batch",
		slog.Int("masters", len(batch.Masters)),
		slog.Int("vouchers", len(batch.Vouchers)))

	report, err := h.syncService.Run(c.Request.Context(), batch)
	if err != nil {
		if report == nil {
			respondError(c, logger, err, "Failed to run sync")
			return
		}
		logger.Warn("Sync run stopped early", slog.String("error", err.Error()))
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error":  err.Error(),
			"kind":   apperrors.Kind(err),
			"report": dto.ToSyncReportResponse(report),
		})
		return
	}

	logger.Info("Sync run completed", slog.String("run_id", report.RunID), slog.Int("failed_records", report.Failed()))
	c.JSON(http.StatusOK, dto.ToSyncReportResponse(report))
}

// runAll loads one batch per tenant in parallel.
func (h *syncHandler) runAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SyncAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for multi-tenant sync", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	logger.Info("Received multi-tenant sync", slog.Int("tenants", len(req.Batches)))

	reports, err := h.syncService.RunAll(c.Request.Context(), req.Batches)
	if err != nil && reports == nil {
		respondError(c, logger, err, "Failed to run sync")
		return
	}

	status := http.StatusOK
	if err != nil {
		// some tenants failed; the reports of the others still stand
		status = http.StatusMultiStatus
		logger.Warn("Multi-tenant sync finished with errors", slog.String("error", err.Error()))
	}
	c.JSON(status, dto.ToSyncAllResponse(reports, err))
}
