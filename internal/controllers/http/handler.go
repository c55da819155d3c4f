package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"agrilink-core/internal/domain"
	"agrilink-core/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

type Handler struct {
	orders    *services.OrderService
	devices   *services.DeviceService
	telemetry *services.TelemetryService
	alerts    *services.AlertService
	rdb       *redis.Client
}

func NewHandler(orders *services.OrderService, devices *services.DeviceService, telemetry *services.TelemetryService, alerts *services.AlertService, rdb *redis.Client) *Handler {
	return &Handler{
		orders:    orders,
		devices:   devices,
		telemetry: telemetry,
		alerts:    alerts,
		rdb:       rdb,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	r.POST("/orders", h.CreateOrder)
	r.GET("/orders/my", h.ListBuyerOrders)
	r.GET("/orders/seller", h.ListSellerOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	r.POST("/orders/:id/cancel", h.CancelOrder)

	r.GET("/devices", h.ListDevices)
	r.POST("/devices", h.RegisterDevice)
	r.GET("/devices/:id", h.GetDevice)
	r.PUT("/devices/:id", h.UpdateDevice)
	r.DELETE("/devices/:id", h.DeleteDevice)
	r.POST("/devices/:id/rules", h.CreateAlertRule)

	r.POST("/telemetry", h.IngestTelemetry)
	r.POST("/telemetry/batch", h.IngestTelemetryBatch)

	r.GET("/alerts", h.ListAlerts)
	r.GET("/alerts/count", h.CountAlerts)
	r.POST("/alerts/:id/acknowledge", h.AcknowledgeAlert)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), caller, req.ListingID, req.Quantity, req.ShippingAddress)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateOrderLists(order.BuyerID, order.SellerID)
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListBuyerOrders(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	page, size := pageParams(c)

	result, err := h.orders.ListOrdersForBuyer(c.Request.Context(), caller, page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListSellerOrders(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	page, size := pageParams(c)

	result, err := h.orders.ListOrdersForSeller(c.Request.Context(), caller, page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), orderID, caller, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateOrderLists(order.BuyerID, order.SellerID)
	c.JSON(http.StatusOK, order)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orders.CancelOrder(c.Request.Context(), orderID, caller)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateOrderLists(order.BuyerID, order.SellerID)
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListDevices(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	page, size := pageParams(c)

	var farmID *uuid.UUID
	if raw := c.Query("farmId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid farmId"})
			return
		}
		farmID = &id
	}

	// First dashboard page is hot, cache it briefly.
	cacheKey := ""
	if h.rdb != nil && farmID == nil && page == 0 {
		cacheKey = "devices:farmer:" + caller.String() + ":" + strconv.Itoa(size)
		if b, err := h.rdb.Get(c.Request.Context(), cacheKey).Result(); err == nil {
			var cached json.RawMessage = []byte(b)
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	result, err := h.devices.ListDevices(c.Request.Context(), caller, farmID, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	if cacheKey != "" {
		if data, err := json.Marshal(result); err == nil {
			h.rdb.Set(c.Request.Context(), cacheKey, data, 10*time.Second)
		}
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) RegisterDevice(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device, err := h.devices.RegisterDevice(c.Request.Context(), caller, req.Name, req.Type, req.FarmID, req.SerialNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateDeviceLists(caller)
	c.JSON(http.StatusCreated, device)
}

func (h *Handler) GetDevice(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	deviceID, ok := pathID(c)
	if !ok {
		return
	}

	device, err := h.devices.GetDevice(c.Request.Context(), caller, deviceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

func (h *Handler) UpdateDevice(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	deviceID, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device, err := h.devices.UpdateDevice(c.Request.Context(), caller, deviceID, services.DevicePatch{
		Name:         req.Name,
		Type:         req.Type,
		SerialNumber: req.SerialNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateDeviceLists(caller)
	c.JSON(http.StatusOK, device)
}

func (h *Handler) DeleteDevice(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	deviceID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.devices.DeleteDevice(c.Request.Context(), caller, deviceID); err != nil {
		respondError(c, err)
		return
	}

	h.invalidateDeviceLists(caller)
	c.JSON(http.StatusOK, gin.H{"deleted": deviceID})
}

func (h *Handler) CreateAlertRule(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	deviceID, ok := pathID(c)
	if !ok {
		return
	}
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := h.alerts.CreateRule(c.Request.Context(), caller, deviceID, req.Condition, req.Threshold, req.Severity, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// IngestTelemetry is called by the device gateway, not by end users, so
// there is no caller header on this path.
func (h *Handler) IngestTelemetry(c *gin.Context) {
	var req IngestTelemetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device, err := h.telemetry.Ingest(c.Request.Context(), req.DeviceID, services.TelemetryReading{
		Value:     req.Value,
		Unit:      req.Unit,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateDeviceLists(device.FarmerID)
	c.JSON(http.StatusOK, device)
}

func (h *Handler) IngestTelemetryBatch(c *gin.Context) {
	var req BatchTelemetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	readings := make([]services.TelemetryReading, 0, len(req.Readings))
	for _, r := range req.Readings {
		readings = append(readings, services.TelemetryReading{
			Value:     r.Value,
			Unit:      r.Unit,
			Timestamp: r.Timestamp,
		})
	}

	accepted, err := h.telemetry.IngestBatch(c.Request.Context(), req.DeviceID, readings)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accepted": accepted, "rejected": len(readings) - accepted})
}

func (h *Handler) ListAlerts(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	page, size := pageParams(c)

	var acknowledged *bool
	if raw := c.Query("acknowledged"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid acknowledged"})
			return
		}
		acknowledged = &v
	}

	result, err := h.alerts.ListAlerts(c.Request.Context(), caller, acknowledged, page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) CountAlerts(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	n, err := h.alerts.CountUnacknowledged(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unacknowledged": n})
}

func (h *Handler) AcknowledgeAlert(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	alertID, ok := pathID(c)
	if !ok {
		return
	}

	alert, err := h.alerts.AcknowledgeAlert(c.Request.Context(), caller, alertID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (h *Handler) invalidateOrderLists(buyerID, sellerID uuid.UUID) {
	if h.rdb == nil {
		return
	}
	ctx := context.Background()
	h.rdb.Del(ctx, "orders:buyer:"+buyerID.String())
	h.rdb.Del(ctx, "orders:seller:"+sellerID.String())
}

func (h *Handler) invalidateDeviceLists(farmerID uuid.UUID) {
	if h.rdb == nil {
		return
	}
	// Sizes are clamped; drop the hot first-page entries for common sizes.
	ctx := context.Background()
	for _, size := range []int{10, 20, 50, 100} {
		h.rdb.Del(ctx, "devices:farmer:"+farmerID.String()+":"+strconv.Itoa(size))
	}
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid X-User-ID"})
		return uuid.Nil, false
	}
	return id, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	return page, size
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrIllegalTransition), errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrDuplicateSerialNumber),
		errors.Is(err, domain.ErrOutOfOrderTelemetry),
		errors.Is(err, domain.ErrInvalidDeviceType),
		errors.Is(err, domain.ErrInvalidRuleCondition):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrListingUnavailable):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
