package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/numtrack/numtrack/internal/listing"
	"github.com/numtrack/numtrack/internal/models"
	"github.com/numtrack/numtrack/internal/service"
	"github.com/numtrack/numtrack/pkg/logger"
)

type InventoryHandler struct {
	inventory *service.InventoryService
	logger    logger.Logger
}

func NewInventoryHandler(inventory *service.InventoryService, log logger.Logger) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, logger: log}
}

// numberSortKeys maps the sort query values the dashboard sends to
// record fields.
var numberSortKeys = map[string]listing.Key[*models.Number]{
	"serial":         func(n *models.Number) interface{} { return n.Serial },
	"mobile":         func(n *models.Number) interface{} { return n.Mobile },
	"sum":            func(n *models.Number) interface{} { return n.Sum },
	"status":         func(n *models.Number) interface{} { return string(n.Status) },
	"category":       func(n *models.Number) interface{} { return string(n.Category) },
	"purchase_price": func(n *models.Number) interface{} { return n.PurchasePrice },
	"purchase_date":  func(n *models.Number) interface{} { return n.PurchaseDate },
	"sale_price":     func(n *models.Number) interface{} { return n.SalePrice },
	"rts_date":       func(n *models.Number) interface{} { return n.RTSDate },
	"assignee":       func(n *models.Number) interface{} { return n.Assignee },
}

func (h *InventoryHandler) ListNumbers(c *gin.Context) {
	numbers, err := h.inventory.ListNumbers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	filtered := listing.Filter(numbers,
		listing.Exact(func(n *models.Number) string { return string(n.Status) }, c.Query("status")),
		listing.Exact(func(n *models.Number) string { return string(n.Category) }, c.Query("category")),
		listing.Exact(func(n *models.Number) string { return n.Assignee }, c.Query("assignee")),
		listing.Contains(func(n *models.Number) string { return n.Mobile }, c.Query("q")),
	)

	q := parseListQuery(c)
	if key, ok := numberSortKeys[q.SortKey]; ok {
		filtered = listing.Sort(filtered, key, q.SortDir)
	} else {
		filtered = listing.Sort(filtered, numberSortKeys["serial"], listing.Ascending)
	}

	c.JSON(http.StatusOK, pageResponse(filtered, q))
}

func (h *InventoryHandler) GetNumber(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	number, err := h.inventory.GetNumber(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if number == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "number not found"})
		return
	}

	c.JSON(http.StatusOK, number)
}

func (h *InventoryHandler) UpdateRTSStatus(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	var req struct {
		Status  string     `json:"status" binding:"required"`
		RTSDate *time.Time `json:"rts_date"`
		Note    string     `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	number, err := h.inventory.UpdateRTSStatus(c.Request.Context(), actor(c), id, service.UpdateRTSStatusInput{
		Status:  models.NumberStatus(req.Status),
		RTSDate: req.RTSDate,
		Note:    req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, number)
}

func (h *InventoryHandler) SetActivationStatus(c *gin.Context) {
	h.setSubStatus(c, h.inventory.SetActivationStatus)
}

func (h *InventoryHandler) SetUploadStatus(c *gin.Context) {
	h.setSubStatus(c, h.inventory.SetUploadStatus)
}

func (h *InventoryHandler) setSubStatus(c *gin.Context, apply func(context.Context, string, primitive.ObjectID, models.SubStatus) error) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := apply(c.Request.Context(), actor(c), id, models.SubStatus(req.Status)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *InventoryHandler) SetCOCPDates(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	var req struct {
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.inventory.SetCOCPDates(c.Request.Context(), actor(c), id, req.StartDate, req.EndDate); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *InventoryHandler) SetSafeCustodyDate(c *gin.Context) {
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

	if err := h.inventory.SetSafeCustodyDate(c.Request.Context(), actor(c), id, req.Date); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *InventoryHandler) UpdateAssignment(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	var req struct {
		Assignee     *string `json:"assignee"`
		Location     *string `json:"location"`
		LocationType *string `json:"location_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.inventory.UpdateAssignment(c.Request.Context(), actor(c), id, service.AssignmentInput{
		Assignee:     req.Assignee,
		Location:     req.Location,
		LocationType: req.LocationType,
	}); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *InventoryHandler) AddPurchase(c *gin.Context) {
	var req struct {
		Mobile       string    `json:"mobile" binding:"required"`
		Vendor       string    `json:"vendor" binding:"required"`
		Price        float64   `json:"price"`
		PurchaseDate time.Time `json:"purchase_date" binding:"required"`
		Category     string    `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purchase, number, err := h.inventory.AddPurchase(c.Request.Context(), actor(c), service.AddPurchaseInput{
		Mobile:       req.Mobile,
		Vendor:       req.Vendor,
		Price:        req.Price,
		PurchaseDate: req.PurchaseDate,
		Category:     models.Category(req.Category),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"purchase": purchase, "number": number})
}

func (h *InventoryHandler) ListPurchases(c *gin.Context) {
	purchases, err := h.inventory.ListPurchases(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	filtered := listing.Filter(purchases,
		listing.Contains(func(p *models.Purchase) string { return p.Mobile }, c.Query("q")),
		listing.Exact(func(p *models.Purchase) string { return p.Vendor }, c.Query("vendor")),
	)

	q := parseListQuery(c)
	filtered = listing.Sort(filtered,
		func(p *models.Purchase) interface{} { return p.PurchaseDate }, q.SortDir)

	c.JSON(http.StatusOK, pageResponse(filtered, q))
}

func (h *InventoryHandler) AddDealerPurchase(c *gin.Context) {
	var req struct {
		Mobile       string    `json:"mobile" binding:"required"`
		Dealer       string    `json:"dealer" binding:"required"`
		Price        float64   `json:"price"`
		PurchaseDate time.Time `json:"purchase_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purchase, err := h.inventory.AddDealerPurchase(c.Request.Context(), actor(c), service.AddDealerPurchaseInput{
		Mobile:       req.Mobile,
		Dealer:       req.Dealer,
		Price:        req.Price,
		PurchaseDate: req.PurchaseDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, purchase)
}

func (h *InventoryHandler) UpdateDealerPurchase(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	var req struct {
		Dealer        *string  `json:"dealer"`
		Price         *float64 `json:"price"`
		PaymentStatus *string  `json:"payment_status"`
		PortOutStatus *string  `json:"portout_status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.UpdateDealerPurchaseInput{
		Dealer: req.Dealer,
		Price:  req.Price,
	}
	if req.PaymentStatus != nil {
		status := models.PaymentStatus(*req.PaymentStatus)
		input.PaymentStatus = &status
	}
	if req.PortOutStatus != nil {
		status := models.PortOutStatus(*req.PortOutStatus)
		input.PortOutStatus = &status
	}

	if err := h.inventory.UpdateDealerPurchase(c.Request.Context(), actor(c), id, input); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *InventoryHandler) ListDealerPurchases(c *gin.Context) {
	purchases, err := h.inventory.ListDealerPurchases(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	filtered := listing.Filter(purchases,
		listing.Contains(func(p *models.DealerPurchase) string { return p.Mobile }, c.Query("q")),
		listing.Exact(func(p *models.DealerPurchase) string { return p.Dealer }, c.Query("dealer")),
		listing.Exact(func(p *models.DealerPurchase) string { return string(p.PaymentStatus) }, c.Query("payment_status")),
	)

	q := parseListQuery(c)
	filtered = listing.Sort(filtered,
		func(p *models.DealerPurchase) interface{} { return p.PurchaseDate }, q.SortDir)

	c.JSON(http.StatusOK, pageResponse(filtered, q))
}

func (h *InventoryHandler) AddReminder(c *gin.Context) {
	var req struct {
		Mobile   string    `json:"mobile" binding:"required"`
		Task     string    `json:"task" binding:"required"`
		Assignee string    `json:"assignee"`
		DueDate  time.Time `json:"due_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reminder, err := h.inventory.AddReminder(c.Request.Context(), actor(c), service.AddReminderInput{
		Mobile:   req.Mobile,
		Task:     req.Task,
		Assignee: req.Assignee,
		DueDate:  req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

func (h *InventoryHandler) MarkReminderDone(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	if err := h.inventory.MarkReminderDone(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *InventoryHandler) ListReminders(c *gin.Context) {
	reminders, err := h.inventory.ListReminders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	filtered := listing.Filter(reminders,
		listing.Exact(func(r *models.Reminder) string { return string(r.Status) }, c.Query("status")),
		listing.Exact(func(r *models.Reminder) string { return r.Assignee }, c.Query("assignee")),
		listing.Contains(func(r *models.Reminder) string { return r.Mobile }, c.Query("q")),
	)

	q := parseListQuery(c)
	filtered = listing.Sort(filtered,
		func(r *models.Reminder) interface{} { return r.DueDate }, q.SortDir)

	c.JSON(http.StatusOK, pageResponse(filtered, q))
}

func (h *InventoryHandler) ListActivities(c *gin.Context) {
	limit := int64(100)
	if v, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && v > 0 {
		limit = v
	}

	activities, err := h.inventory.ListActivities(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": activities, "total": len(activities)})
}
