package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pos/internal/domain"
	"pos/internal/gateway"
	internalRedis "pos/internal/redis"
	"pos/internal/repository"
	"pos/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
	reconciler     *service.ReconcilerService
	cache          internalRedis.CacheStoreInterface
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService, reconciler *service.ReconcilerService, cache internalRedis.CacheStoreInterface) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		reconciler:     reconciler,
		cache:          cache,
	}
}

// InitiatePaymentRequest is the HTTP request body for initiating a payment.
type InitiatePaymentRequest struct {
	OrderID       string  `json:"order_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	PhoneNumber   string  `json:"phone_number"`
	ProcessedBy   string  `json:"processed_by"`
	LocationID    string  `json:"location_id"`
}

// InitiatePaymentResponse is the HTTP response for a successful initiation.
type InitiatePaymentResponse struct {
	Success    bool   `json:"success"`
	PaymentID  string `json:"payment_id"`
	Method     string `json:"method"`
	Status     string `json:"status"`
	TrackingID string `json:"tracking_id,omitempty"`
	Message    string `json:"message"`
}

// PaymentResponse is the HTTP response for payment reads.
type PaymentResponse struct {
	ID               string  `json:"id"`
	OrderID          string  `json:"order_id"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	Method           string  `json:"method"`
	Status           string  `json:"status"`
	PhoneNumber      string  `json:"phone_number,omitempty"`
	TrackingID       string  `json:"tracking_id,omitempty"`
	ConfirmationCode string  `json:"confirmation_code,omitempty"`
	ReferenceNumber  string  `json:"reference_number,omitempty"`
	ProcessedBy      string  `json:"processed_by"`
}

// InitiatePayment handles POST /v1/payments
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.paymentService.InitiatePayment(c.Request.Context(), service.InitiatePaymentRequest{
		OrderID:     req.OrderID,
		Amount:      req.Amount,
		Method:      domain.PaymentMethod(req.PaymentMethod),
		PhoneNumber: req.PhoneNumber,
		ProcessedBy: req.ProcessedBy,
		LocationID:  req.LocationID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, InitiatePaymentResponse{
		Success:    true,
		PaymentID:  result.Payment.ID,
		Method:     string(result.Payment.Method),
		Status:     string(result.Payment.Status),
		TrackingID: result.Payment.TrackingID,
		Message:    result.Message,
	})
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// StatusResponse is the response for the idempotent status read.
type StatusResponse struct {
	Status           string `json:"status"`
	ConfirmationCode string `json:"confirmation_code,omitempty"`
}

// GetStatus handles GET /v1/payments/:id/status
//
// Terminals poll this while a push payment is pending. Reads go
// through a short-TTL cache; misses fall through to a reconciler
// check, which queries the gateway for pending payments.
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()
	paymentID := c.Param("id")

	if h.cache != nil {
		if cached, err := h.cache.GetPaymentStatus(ctx, paymentID); err == nil && cached != nil {
			respondJSON(c, http.StatusOK, StatusResponse{
				Status:           cached.Status,
				ConfirmationCode: cached.ConfirmationCode,
			})
			return
		}
	}

	payment, err := h.reconciler.CheckPayment(ctx, paymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.cache != nil {
		_ = h.cache.SetPaymentStatus(ctx, &internalRedis.CachedPaymentStatus{
			PaymentID:        payment.ID,
			Status:           string(payment.Status),
			ConfirmationCode: payment.ConfirmationCode,
		})
	}

	respondJSON(c, http.StatusOK, StatusResponse{
		Status:           string(payment.Status),
		ConfirmationCode: payment.ConfirmationCode,
	})
}

// RefundPayment handles POST /v1/payments/:id/refund
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	payment, err := h.paymentService.RefundPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// WebhookRequest is the gateway's callback body.
type WebhookRequest struct {
	TrackingID  string `json:"tracking_id"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// Webhook handles POST /v1/payments/webhook
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	var state gateway.TransactionState
	switch req.Status {
	case "completed", "successful":
		state = gateway.StateCompleted
	case "failed", "rejected", "expired":
		state = gateway.StateFailed
	case "pending", "processing":
		state = gateway.StatePending
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown status"})
		return
	}

	payment, err := h.reconciler.ApplyGatewayStatus(c.Request.Context(), req.TrackingID, state, req.Description)
	if err != nil {
		if err == repository.ErrNotFound {
			// Unknown tracking ID: acknowledge so the provider stops
			// retrying, but flag it.
			c.JSON(http.StatusOK, gin.H{"received": true, "matched": false})
			return
		}
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"received": true,
		"matched":  true,
		"status":   string(payment.Status),
	})
}

func toPaymentResponse(payment *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               payment.ID,
		OrderID:          payment.OrderID,
		Amount:           payment.Amount,
		Currency:         payment.Currency,
		Method:           string(payment.Method),
		Status:           string(payment.Status),
		PhoneNumber:      payment.PhoneNumber,
		TrackingID:       payment.TrackingID,
		ConfirmationCode: payment.ConfirmationCode,
		ReferenceNumber:  payment.ReferenceNumber,
		ProcessedBy:      payment.ProcessedBy,
	}
}
