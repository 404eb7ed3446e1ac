package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/numtrack/numtrack/internal/listing"
	"github.com/numtrack/numtrack/internal/models"
	"github.com/numtrack/numtrack/internal/service"
	"github.com/numtrack/numtrack/pkg/logger"
)

type SalesHandler struct {
	sales  *service.SalesService
	logger logger.Logger
}

func NewSalesHandler(sales *service.SalesService, log logger.Logger) *SalesHandler {
	return &SalesHandler{sales: sales, logger: log}
}

var saleSortKeys = map[string]listing.Key[*models.Sale]{
	"mobile":       func(s *models.Sale) interface{} { return s.Mobile },
	"buyer":        func(s *models.Sale) interface{} { return s.Buyer },
	"sale_price":   func(s *models.Sale) interface{} { return s.SalePrice },
	"sale_date":    func(s *models.Sale) interface{} { return s.SaleDate },
	"portout_date": func(s *models.Sale) interface{} { return s.PortOutDate },
}

func (h *SalesHandler) AddSale(c *gin.Context) {
	var req struct {
		Mobile    string    `json:"mobile" binding:"required"`
		Buyer     string    `json:"buyer" binding:"required"`
		SalePrice float64   `json:"sale_price"`
		SaleDate  time.Time `json:"sale_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sale, err := h.sales.AddSale(c.Request.Context(), actor(c), service.AddSaleInput{
		Mobile:    req.Mobile,
		Buyer:     req.Buyer,
		SalePrice: req.SalePrice,
		SaleDate:  req.SaleDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sale)
}

func (h *SalesHandler) ListSales(c *gin.Context) {
	sales, err := h.sales.ListSales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	filtered := listing.Filter(sales,
		listing.Exact(func(s *models.Sale) string { return string(s.PaymentStatus) }, c.Query("payment_status")),
		listing.Exact(func(s *models.Sale) string { return string(s.PortOutStatus) }, c.Query("portout_status")),
		listing.Contains(func(s *models.Sale) string { return s.Mobile }, c.Query("q")),
		listing.Contains(func(s *models.Sale) string { return s.Buyer }, c.Query("buyer")),
	)

	q := parseListQuery(c)
	if key, ok := saleSortKeys[q.SortKey]; ok {
		filtered = listing.Sort(filtered, key, q.SortDir)
	} else {
		filtered = listing.Sort(filtered, saleSortKeys["sale_date"], listing.Descending)
	}

	c.JSON(http.StatusOK, pageResponse(filtered, q))
}

func (h *SalesHandler) TogglePayment(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	status, err := h.sales.TogglePaymentStatus(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_status": status})
}

func (h *SalesHandler) CompletePortOut(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	var req struct {
		Date *time.Time `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	if err := h.sales.CompletePortOut(c.Request.Context(), actor(c), id, date); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SalesHandler) ListPortOuts(c *gin.Context) {
	sales, err := h.sales.ListPortOuts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	filtered := listing.Filter(sales,
		listing.Contains(func(s *models.Sale) string { return s.Mobile }, c.Query("q")),
	)

	q := parseListQuery(c)
	filtered = listing.Sort(filtered, saleSortKeys["portout_date"], listing.Descending)

	c.JSON(http.StatusOK, pageResponse(filtered, q))
}
