package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/tally_ledger_store/internal/core/ports/services"
	"github.com/SscSPs/tally_ledger_store/internal/dto"
	"github.com/SscSPs/tally_ledger_store/internal/middleware"
	"github.com/gin-gonic/gin"
)

type closingStockHandler struct {
	closingStockService portssvc.ClosingStockSvcFacade
}

func registerClosingStockRoutes(rg *gin.RouterGroup, closingStockService portssvc.ClosingStockSvcFacade) {
	h := &closingStockHandler{closingStockService: closingStockService}

	stock := rg.Group("/closing-stock")
	{
		stock.GET("", h.listClosingStock)
		stock.PUT("", h.replaceClosingStock)
	}
}

func (h *closingStockHandler) listClosingStock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var q dto.TenantRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	middleware.SetTenant(c, q.Tenant())
	logger = middleware.GetLoggerFromContext(c)

	stock, err := h.closingStockService.ListClosingStock(c.Request.Context(), q.Tenant())
	if err != nil {
		respondError(c, logger, err, "Failed to list closing stock")
		return
	}
	c.JSON(http.StatusOK, dto.ListClosingStockResponse{Stock: stock})
}

func (h *closingStockHandler) replaceClosingStock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReplaceClosingStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for closing stock", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	middleware.SetTenant(c, req.Tenant())
	logger = middleware.GetLoggerFromContext(c)

	if err := h.closingStockService.ReplaceClosingStock(c.Request.Context(), req.Tenant(), req.Stock); err != nil {
		respondError(c, logger, err, "Failed to replace closing stock")
		return
	}
	logger.Info("Closing stock replaced", slog.Int("rows", len(req.Stock)))
	c.Status(http.StatusNoContent)
}
