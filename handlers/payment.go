package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"academy-svc/gateway"
	"academy-svc/lifecycle"
	"academy-svc/middleware"
	"academy-svc/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type paymentGateway interface {
	InitPayment(ctx context.Context, orderID string) (string, error)
	ValidatePayment(ctx context.Context, validationID, orderID string) (bool, error)
	ValidationEnabled() bool
}

type orderTransitioner interface {
	Transition(ctx context.Context, orderID string, event lifecycle.CallbackEvent, validationID string) (*models.Order, error)
}

// PaymentHandler owns the gateway init endpoint and the three provider
// callbacks. Callbacks always answer with a 303 redirect; internal errors
// are logged, never surfaced to the provider.
type PaymentHandler struct {
	gateway     paymentGateway
	lifecycle   orderTransitioner
	frontendURL string
	logger      *zap.Logger
}

func NewPaymentHandler(gw paymentGateway, lc orderTransitioner, frontendURL string, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{gateway: gw, lifecycle: lc, frontendURL: frontendURL, logger: logger}
}

type initPaymentRequest struct {
	OrderID string `json:"orderId"`
}

// InitPayment handles POST /payment/init.
func (h *PaymentHandler) InitPayment(c *gin.Context) {
	var req initPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderId is required"})
		return
	}

	gatewayURL, err := h.gateway.InitPayment(c.Request.Context(), req.OrderID)
	if err != nil {
		var gwErr *gateway.Error
		switch {
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.As(err, &gwErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "payment gateway rejected the request",
				"status": gwErr.Status,
				"reason": gwErr.Reason,
			})
		default:
			h.logger.Error("Gateway init failed", zap.String("orderId", req.OrderID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable, please retry"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"gatewayUrl": gatewayURL})
}

// Success handles the provider's success callback. The order completes
// and the browser lands on the confirmation page with a flag telling the
// client to clear its cart.
func (h *PaymentHandler) Success(c *gin.Context) {
	tranID := c.PostForm("tran_id")
	valID := c.PostForm("val_id")
	if tranID == "" {
		h.redirect(c, h.frontendURL)
		return
	}

	if h.gateway.ValidationEnabled() {
		ok, err := h.gateway.ValidatePayment(c.Request.Context(), valID, tranID)
		if err != nil || !ok {
			h.logger.Warn("Success callback failed validation, ignoring",
				zap.String("tranId", tranID), zap.Error(err))
			middleware.RecordPaymentOutcome("invalid")
			h.redirect(c, h.frontendURL+"/?payment=failed")
			return
		}
	}

	if _, err := h.lifecycle.Transition(c.Request.Context(), tranID, lifecycle.CallbackSuccess, valID); err != nil {
		h.logger.Error("Success transition failed", zap.String("tranId", tranID), zap.Error(err))
	}

	middleware.RecordPaymentOutcome("completed")
	h.redirect(c, fmt.Sprintf("%s/order-confirmation/%s?clear_cart=1", h.frontendURL, url.PathEscape(tranID)))
}

// Fail handles the provider's failure callback.
func (h *PaymentHandler) Fail(c *gin.Context) {
	h.reject(c, lifecycle.CallbackFail, "failed")
}

// Cancel handles the provider's cancellation callback.
func (h *PaymentHandler) Cancel(c *gin.Context) {
	h.reject(c, lifecycle.CallbackCancel, "cancelled")
}

func (h *PaymentHandler) reject(c *gin.Context, event lifecycle.CallbackEvent, indicator string) {
	tranID := c.PostForm("tran_id")
	if tranID != "" {
		if _, err := h.lifecycle.Transition(c.Request.Context(), tranID, event, ""); err != nil {
			h.logger.Error("Callback transition failed",
				zap.String("tranId", tranID),
				zap.String("event", string(event)),
				zap.Error(err))
		}
	}
	middleware.RecordPaymentOutcome(indicator)
	h.redirect(c, h.frontendURL+"/?payment="+indicator)
}

func (h *PaymentHandler) redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}
