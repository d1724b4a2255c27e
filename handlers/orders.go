package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"academy-svc/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type orderLifecycle interface {
	CreateOrder(ctx context.Context, customer models.Customer, items []models.OrderItem, totalAmount float64, method models.PaymentMethod) (*models.Order, error)
	AdminTransition(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error)
}

type orderStore interface {
	List(ctx context.Context, limit int) ([]models.Order, error)
	SetStatus(ctx context.Context, orderID string, status models.OrderStatus) (int64, error)
	UpdateCustomer(ctx context.Context, orderID string, customer models.Customer) (int64, error)
	Delete(ctx context.Context, orderID string) error
}

type OrderHandler struct {
	lifecycle orderLifecycle
	store     orderStore
	logger    *zap.Logger
}

func NewOrderHandler(lifecycle orderLifecycle, store orderStore, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{lifecycle: lifecycle, store: store, logger: logger}
}

type createOrderRequest struct {
	Customer    models.Customer    `json:"customer"`
	Items       []models.OrderItem `json:"items"`
	TotalAmount float64            `json:"totalAmount"`
	Payment     struct {
		Method models.PaymentMethod `json:"method"`
	} `json:"payment"`
}

// CreateOrder handles POST /orders.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.lifecycle.CreateOrder(c.Request.Context(), req.Customer, req.Items, req.TotalAmount, req.Payment.Method)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to create order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"orderId": order.OrderID})
}

// ListOrders handles GET /orders?limit=N, newest first.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	orders, err := h.store.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

type updateOrderRequest struct {
	Status   models.OrderStatus `json:"status"`
	Customer *models.Customer   `json:"customer"`
}

// UpdateOrder handles PATCH /orders/:id. Approve and reject run
// through the lifecycle service (and its notification side effect); any
// other valid status is an unconstrained administrative override. A
// customer object in the body rewrites the contact fields.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	orderID := c.Param("id")

	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Status == "" && req.Customer == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}
	if req.Status != "" && !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	if req.Customer != nil {
		rows, err := h.store.UpdateCustomer(c.Request.Context(), orderID, *req.Customer)
		if err != nil {
			h.logger.Error("Failed to update order", zap.String("orderId", orderID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order"})
			return
		}
		if rows == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if req.Status == "" {
			c.JSON(http.StatusOK, gin.H{"orderId": orderID})
			return
		}
	}

	if req.Status == models.StatusApproved || req.Status == models.StatusRejected {
		order, err := h.lifecycle.AdminTransition(c.Request.Context(), orderID, req.Status)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			h.logger.Error("Failed to update order", zap.String("orderId", orderID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order"})
			return
		}
		c.JSON(http.StatusOK, order)
		return
	}

	rows, err := h.store.SetStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		h.logger.Error("Failed to update order", zap.String("orderId", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order"})
		return
	}
	if rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": orderID, "status": req.Status})
}

// DeleteOrder handles DELETE /orders/:id.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID := c.Param("id")

	if err := h.store.Delete(c.Request.Context(), orderID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		h.logger.Error("Failed to delete order", zap.String("orderId", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orderId": orderID, "deleted": true})
}
