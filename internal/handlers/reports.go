package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/numtrack/numtrack/internal/service"
	"github.com/numtrack/numtrack/pkg/logger"
)

type ReportsHandler struct {
	stats   *service.StatsService
	exports *service.ExportService
	logger  logger.Logger
}

func NewReportsHandler(stats *service.StatsService, exports *service.ExportService, log logger.Logger) *ReportsHandler {
	return &ReportsHandler{stats: stats, exports: exports, logger: log}
}

func (h *ReportsHandler) Summary(c *gin.Context) {
	summary, err := h.stats.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *ReportsHandler) ExportNumbers(c *gin.Context) {
	data, err := h.exports.ExportNumbers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	serveCSV(c, "numbers.csv", data)
}

func (h *ReportsHandler) ExportSales(c *gin.Context) {
	data, err := h.exports.ExportSales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	serveCSV(c, "sales.csv", data)
}

func (h *ReportsHandler) ExportPurchases(c *gin.Context) {
	data, err := h.exports.ExportPurchases(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	serveCSV(c, "purchases.csv", data)
}

func (h *ReportsHandler) ExportDealerPurchases(c *gin.Context) {
	data, err := h.exports.ExportDealerPurchases(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	serveCSV(c, "dealer_purchases.csv", data)
}

func (h *ReportsHandler) ExportReminders(c *gin.Context) {
	data, err := h.exports.ExportReminders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	serveCSV(c, "reminders.csv", data)
}
