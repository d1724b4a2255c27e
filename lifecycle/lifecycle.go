// Package lifecycle owns order creation and every status transition.
// Nothing else writes the status or payment fields.
package lifecycle

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"academy-svc/kafka"
	"academy-svc/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CallbackEvent is a payment outcome reported by the gateway.
type CallbackEvent string

const (
	CallbackSuccess CallbackEvent = "success"
	CallbackFail    CallbackEvent = "fail"
	CallbackCancel  CallbackEvent = "cancel"
)

// OrderStore is the persistence surface the service needs. Transition
// methods return rows affected so a missing order is detectable without a
// prior read.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	MarkCompleted(ctx context.Context, orderID, transactionID string) (int64, error)
	MarkRejected(ctx context.Context, orderID string) (int64, error)
	SetStatus(ctx context.Context, orderID string, status models.OrderStatus) (int64, error)
}

// Publisher emits order lifecycle events. Publishing is best-effort
// everywhere: a broker outage must not fail checkout or a callback.
type Publisher interface {
	Publish(evt kafka.Event) error
}

type Service struct {
	store  OrderStore
	events Publisher
	logger *zap.Logger
}

func NewService(store OrderStore, events Publisher, logger *zap.Logger) *Service {
	return &Service{store: store, events: events, logger: logger}
}

// CreateOrder validates the checkout payload, recomputes the total from
// the items snapshot and persists a pending order. The claimed total must
// match the recomputed one; the stored value is what later goes to the
// gateway.
func (s *Service) CreateOrder(ctx context.Context, customer models.Customer, items []models.OrderItem, totalAmount float64, method models.PaymentMethod) (*models.Order, error) {
	if err := validateOrderInput(customer, items, totalAmount, method); err != nil {
		return nil, err
	}

	computed := 0.0
	for _, item := range items {
		computed += item.Price * float64(item.Quantity)
	}
	if math.Abs(computed-totalAmount) > 0.01 {
		return nil, fmt.Errorf("totalAmount %.2f does not match items total %.2f: %w",
			totalAmount, computed, models.ErrValidation)
	}

	order := &models.Order{
		OrderID:     NewOrderID(),
		Customer:    customer,
		Items:       items,
		TotalAmount: computed,
		Payment:     models.PaymentInfo{Method: method},
		Status:      models.StatusPending,
	}
	if err := s.store.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("orderId", order.OrderID),
		zap.Float64("totalAmount", order.TotalAmount),
		zap.String("method", string(method)))

	s.publish(kafka.EventOrderCreated, order)
	return order, nil
}

// Transition applies a gateway callback. An unknown order id is a no-op
// returning (nil, nil): the provider still gets its redirect. Re-delivery
// of the same callback re-applies the same single-statement update, so the
// order converges to the same terminal state.
func (s *Service) Transition(ctx context.Context, orderID string, event CallbackEvent, validationID string) (*models.Order, error) {
	var (
		rows int64
		err  error
	)
	switch event {
	case CallbackSuccess:
		transactionID := validationID
		if transactionID == "" {
			transactionID = orderID
		}
		rows, err = s.store.MarkCompleted(ctx, orderID, transactionID)
	case CallbackFail, CallbackCancel:
		rows, err = s.store.MarkRejected(ctx, orderID)
	default:
		return nil, fmt.Errorf("unknown callback event %q: %w", event, models.ErrValidation)
	}
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		s.logger.Info("Callback for unknown order ignored",
			zap.String("orderId", orderID),
			zap.String("event", string(event)))
		return nil, nil
	}

	order, err := s.store.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order transitioned",
		zap.String("orderId", orderID),
		zap.String("event", string(event)),
		zap.String("status", string(order.Status)))

	if event == CallbackSuccess {
		s.publish(kafka.EventOrderCompleted, order)
	} else {
		s.publish(kafka.EventOrderRejected, order)
	}
	return order, nil
}

// AdminTransition applies a back-office decision. Only approved and
// rejected are reachable this way; approval triggers a best-effort
// notification whose failure never fails the transition.
func (s *Service) AdminTransition(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if status != models.StatusApproved && status != models.StatusRejected {
		return nil, fmt.Errorf("admin transition to %q not allowed: %w", status, models.ErrValidation)
	}

	rows, err := s.store.SetStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("order %s: %w", orderID, models.ErrNotFound)
	}

	order, err := s.store.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status set by admin",
		zap.String("orderId", orderID),
		zap.String("status", string(status)))

	if status == models.StatusApproved {
		s.publish(kafka.EventOrderApproved, order)
	} else {
		s.publish(kafka.EventOrderRejected, order)
	}
	return order, nil
}

func (s *Service) publish(eventType string, order *models.Order) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(kafka.Event{
		Type:          eventType,
		OrderID:       order.OrderID,
		CustomerName:  order.Customer.FullName,
		CustomerEmail: order.Customer.Email,
		TotalAmount:   order.TotalAmount,
		At:            time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("Failed to publish order event",
			zap.String("type", eventType),
			zap.String("orderId", order.OrderID),
			zap.Error(err))
	}
}

// NewOrderID builds a human-referenceable id from a UTC timestamp and a
// uuid-derived suffix, so two orders in the same millisecond cannot
// collide. It doubles as the gateway's tran_id.
func NewOrderID() string {
	u := uuid.New()
	suffix := strings.ToUpper(hex.EncodeToString(u[:4]))
	return "AC" + time.Now().UTC().Format("060102150405") + "-" + suffix
}

func validateOrderInput(customer models.Customer, items []models.OrderItem, totalAmount float64, method models.PaymentMethod) error {
	switch {
	case customer.FullName == "":
		return fmt.Errorf("customer fullName is required: %w", models.ErrValidation)
	case customer.Email == "":
		return fmt.Errorf("customer email is required: %w", models.ErrValidation)
	case customer.Phone == "":
		return fmt.Errorf("customer phone is required: %w", models.ErrValidation)
	case customer.Country == "":
		return fmt.Errorf("customer country is required: %w", models.ErrValidation)
	case len(items) == 0:
		return fmt.Errorf("at least one item is required: %w", models.ErrValidation)
	case totalAmount <= 0:
		return fmt.Errorf("totalAmount must be positive: %w", models.ErrValidation)
	case !method.Valid():
		return fmt.Errorf("unknown payment method %q: %w", method, models.ErrValidation)
	}
	for _, item := range items {
		if item.ID == "" || item.Name == "" {
			return fmt.Errorf("item id and name are required: %w", models.ErrValidation)
		}
		if item.Price < 0 || item.Quantity <= 0 {
			return fmt.Errorf("item %s has invalid price or quantity: %w", item.ID, models.ErrValidation)
		}
	}
	return nil
}
