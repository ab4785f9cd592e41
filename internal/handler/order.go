package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pos/internal/domain"
	"pos/internal/service"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService   *service.OrderService
	paymentService *service.PaymentService
	receiptService *service.ReceiptService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *service.OrderService, paymentService *service.PaymentService, receiptService *service.ReceiptService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		paymentService: paymentService,
		receiptService: receiptService,
	}
}

// SubmitOrderRequest is the HTTP request body for submitting a cart.
type SubmitOrderRequest struct {
	LocationID string             `json:"location_id"`
	TableID    string             `json:"table_id"`
	Items      []OrderItemRequest `json:"items"`
}

// OrderItemRequest is one cart line in the request body.
type OrderItemRequest struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// OrderResponse is the HTTP response for order operations.
type OrderResponse struct {
	ID            string              `json:"id"`
	LocationID    string              `json:"location_id"`
	TableID       string              `json:"table_id,omitempty"`
	Subtotal      float64             `json:"subtotal"`
	TaxAmount     float64             `json:"tax_amount"`
	TotalAmount   float64             `json:"total_amount"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	Items         []OrderItemResponse `json:"items,omitempty"`
}

// OrderItemResponse is one order line in the response.
type OrderItemResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// SubmitOrder handles POST /v1/orders
func (h *OrderHandler) SubmitOrder(c *gin.Context) {
	var req SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	items := make([]service.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CartItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order, err := h.orderService.SubmitOrder(c.Request.Context(), service.SubmitOrderRequest{
		LocationID: req.LocationID,
		TableID:    req.TableID,
		Items:      items,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toOrderResponse(order))
}

// GetOrder handles GET /v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toOrderResponse(order))
}

// GetAll handles GET /v1/orders
func (h *OrderHandler) GetAll(c *gin.Context) {
	orders, err := h.orderService.GetAllOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}

	respondJSON(c, http.StatusOK, resp)
}

// GetReceipt handles GET /v1/orders/:id/receipt
func (h *OrderHandler) GetReceipt(c *gin.Context) {
	ctx := c.Request.Context()

	order, err := h.orderService.GetOrder(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	payment := h.completedPayment(c, order.ID)
	if payment == nil {
		respondError(c, service.ErrReceiptUnavailable)
		return
	}

	receipt, err := h.receiptService.GenerateReceipt(ctx, service.GenerateReceiptRequest{
		Order:   order,
		Payment: payment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"receipt_id":        receipt.ID,
		"order_id":          receipt.OrderID,
		"total_amount":      receipt.TotalAmount,
		"confirmation_code": receipt.ConfirmationCode,
		"printable":         h.receiptService.FormatReceipt(receipt),
	})
}

// completedPayment finds the order's completed payment, if any.
func (h *OrderHandler) completedPayment(c *gin.Context, orderID string) *domain.Payment {
	payments, err := h.paymentService.GetPaymentsForOrder(c.Request.Context(), orderID)
	if err != nil {
		return nil
	}
	for _, p := range payments {
		if p.Status == domain.PaymentStatusCompleted {
			return p
		}
	}
	return nil
}

func toOrderResponse(order *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:            order.ID,
		LocationID:    order.LocationID,
		TableID:       order.TableID,
		Subtotal:      order.Subtotal,
		TaxAmount:     order.TaxAmount,
		TotalAmount:   order.TotalAmount,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return resp
}
