package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/FanzeeApp/sotvolbackend/internal/middleware"
	"github.com/FanzeeApp/sotvolbackend/internal/service"
)

type BookingHandler struct {
	Service *service.BookingService
	Auth    *service.AuthService
}

func (h *BookingHandler) RegisterRoutes(public, admin *gin.RouterGroup) {
	public.POST("/bookings", h.Create)
	public.GET("/bookings/:orderCode", h.GetByOrderCode)

	admin.PATCH("/bookings/:orderCode/status", h.UpdateStatus)
}

type createBookingRequest struct {
	ListingCode int    `json:"listing_code" binding:"required"`
	FullName    string `json:"full_name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Months      int    `json:"months" binding:"required"`

	// Accepts a number or a string; anything unparseable is treated as
	// absent and the 30% minimum applies.
	DownPayment json.RawMessage `json:"down_payment"`
}

// POST /api/bookings — open to customers. A signed identity payload, when
// present and valid, is recorded as the requester; its absence never
// blocks creation.
func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var down decimal.Decimal
	if len(req.DownPayment) > 0 {
		if err := json.Unmarshal(req.DownPayment, &down); err != nil {
			down = decimal.Zero
		}
	}

	var requesterID int64
	if id, ok := h.Auth.VerifyInitData(c.GetHeader(middleware.HeaderInitData)); ok {
		requesterID = id
	}

	booking, err := h.Service.Create(c.Request.Context(), service.CreateBookingInput{
		ListingCode: req.ListingCode,
		FullName:    req.FullName,
		Phone:       req.Phone,
		DownPayment: down,
		Months:      req.Months,
		RequesterID: requesterID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GET /api/bookings/:orderCode
func (h *BookingHandler) GetByOrderCode(c *gin.Context) {
	booking, err := h.Service.Get(c.Request.Context(), c.Param("orderCode"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// PATCH /api/bookings/:orderCode/status
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	booking, err := h.Service.UpdateStatus(c.Request.Context(), c.Param("orderCode"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
