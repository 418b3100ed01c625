package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portssvc "github.com/SscSPs/tally_ledger_store/internal/core/ports/services"
	"github.com/SscSPs/tally_ledger_store/internal/dto"
	"github.com/SscSPs/tally_ledger_store/internal/middleware"
	"github.com/gin-gonic/gin"
)

type rateHandler struct {
	rateService portssvc.RateReaderSvc
}

func registerRateRoutes(rg *gin.RouterGroup, rateService portssvc.RateReaderSvc) {
	h := &rateHandler{rateService: rateService}

	rates := rg.Group("/rates")
	{
		rates.GET("/effective", h.effectiveRate)
	}
}

// effectiveRate returns the rate in force for an item on as_of.
func (h *rateHandler) effectiveRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var q dto.EffectiveRateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		logger.Warn("Failed to bind query for effective rate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	asOf, err := domain.ParseDate(q.AsOf)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid as_of: " + err.Error()})
		return
	}
	middleware.SetTenant(c, q.Tenant())
	logger = middleware.GetLoggerFromContext(c).With(slog.String("kind", q.Kind), slog.String("item", q.Item))

	fact, found, err := h.rateService.EffectiveRate(c.Request.Context(), q.Tenant(), domain.RateKind(q.Kind), q.Item, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to look up rate")
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no " + q.Kind + " for " + q.Item + " on or before " + asOf.String()})
		return
	}
	c.JSON(http.StatusOK, dto.ToRateResponse(fact))
}
