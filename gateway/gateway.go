// Package gateway talks to the hosted payment provider. It prepares the
// checkout handoff only; order state is never touched here.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"academy-svc/config"
	"academy-svc/models"

	"go.uber.org/zap"
)

const (
	ModeSandbox = "sandbox"
	ModeLive    = "live"

	sandboxInitURL       = "https://sandbox.sslcommerz.com/gwprocess/v4/api.php"
	liveInitURL          = "https://securepay.sslcommerz.com/gwprocess/v4/api.php"
	sandboxValidationURL = "https://sandbox.sslcommerz.com/validator/api/validationserverAPI.php"
	liveValidationURL    = "https://securepay.sslcommerz.com/validator/api/validationserverAPI.php"
)

// Error is returned when the provider rejects an init request. Raw keeps
// the provider's payload for diagnostics.
type Error struct {
	Status string
	Reason string
	Raw    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway rejected request: status=%s reason=%s", e.Status, e.Reason)
}

// OrderGetter is the read-only order lookup the adapter needs.
type OrderGetter interface {
	GetByOrderID(ctx context.Context, orderID string) (*models.Order, error)
}

type Adapter struct {
	cfg           config.Gateway
	orders        OrderGetter
	client        *http.Client
	logger        *zap.Logger
	initURL       string
	validationURL string
	publicBaseURL string
}

// New resolves the provider endpoints once. Resolution order: explicit
// URL, explicit mode, then the store-id substring heuristic. The
// heuristic is a known-fragile default and logs a warning every startup
// it is relied on.
func New(cfg config.Gateway, publicBaseURL string, orders OrderGetter, logger *zap.Logger) *Adapter {
	mode := cfg.Mode
	if cfg.InitURL == "" && mode != ModeSandbox && mode != ModeLive {
		if strings.Contains(strings.ToLower(cfg.StoreID), "test") {
			mode = ModeSandbox
		} else {
			mode = ModeLive
		}
		logger.Warn("Gateway mode not configured, inferred from store id; set GATEWAY_MODE explicitly",
			zap.String("inferredMode", mode))
	}

	initURL := cfg.InitURL
	validationURL := cfg.ValidationURL
	if initURL == "" {
		initURL = liveInitURL
		if mode == ModeSandbox {
			initURL = sandboxInitURL
		}
	}
	if validationURL == "" {
		validationURL = liveValidationURL
		if mode == ModeSandbox {
			validationURL = sandboxValidationURL
		}
	}

	return &Adapter{
		cfg:           cfg,
		orders:        orders,
		client:        &http.Client{Timeout: cfg.Timeout},
		logger:        logger,
		initURL:       initURL,
		validationURL: validationURL,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

type initResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// InitPayment builds the provider's flat form payload for the stored
// order and returns the hosted checkout URL. The stored total is sent
// verbatim; it was verified against the items snapshot at creation.
func (a *Adapter) InitPayment(ctx context.Context, orderID string) (string, error) {
	order, err := a.orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("store_id", a.cfg.StoreID)
	form.Set("store_passwd", a.cfg.StorePassword)
	form.Set("total_amount", strconv.FormatFloat(order.TotalAmount, 'f', 2, 64))
	form.Set("currency", a.cfg.Currency)
	form.Set("tran_id", order.OrderID)
	form.Set("success_url", a.callbackURL("success", order.OrderID))
	form.Set("fail_url", a.callbackURL("fail", order.OrderID))
	form.Set("cancel_url", a.callbackURL("cancel", order.OrderID))
	form.Set("emi_option", "0")
	form.Set("cus_name", order.Customer.FullName)
	form.Set("cus_email", order.Customer.Email)
	form.Set("cus_phone", order.Customer.Phone)
	form.Set("cus_country", order.Customer.Country)
	// City and address are not collected at checkout.
	form.Set("cus_city", "Dhaka")
	form.Set("cus_add1", "Dhaka")
	form.Set("shipping_method", "NO")
	form.Set("num_of_item", strconv.Itoa(len(order.Items)))
	form.Set("product_name", productSummary(order.Items))
	form.Set("product_category", "Course")
	form.Set("product_profile", "non-physical-goods")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.initURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build init request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read init response: %w", err)
	}

	var parsed initResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Error{Status: "INVALID_RESPONSE", Reason: err.Error(), Raw: string(body)}
	}

	if !strings.EqualFold(parsed.Status, "SUCCESS") || parsed.GatewayPageURL == "" {
		a.logger.Warn("Gateway rejected init request",
			zap.String("orderId", orderID),
			zap.String("status", parsed.Status),
			zap.String("reason", parsed.FailedReason))
		return "", &Error{Status: parsed.Status, Reason: parsed.FailedReason, Raw: string(body)}
	}

	a.logger.Info("Gateway session initialized", zap.String("orderId", orderID))
	return parsed.GatewayPageURL, nil
}

type validationResponse struct {
	Status string `json:"status"`
	TranID string `json:"tran_id"`
	Amount string `json:"amount"`
}

// ValidatePayment re-checks a success callback's val_id with the
// provider. The validator's tran_id and amount must match the order the
// callback claims to complete; a VALID response for some other
// transaction does not authorize this one.
func (a *Adapter) ValidatePayment(ctx context.Context, validationID, orderID string) (bool, error) {
	order, err := a.orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return false, err
	}

	q := url.Values{}
	q.Set("val_id", validationID)
	q.Set("store_id", a.cfg.StoreID)
	q.Set("store_passwd", a.cfg.StorePassword)
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.validationURL+"?"+q.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("build validation request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	var parsed validationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, fmt.Errorf("decode validation response: %w", err)
	}

	if parsed.Status != "VALID" && parsed.Status != "VALIDATED" {
		return false, nil
	}
	if parsed.TranID != order.OrderID {
		a.logger.Warn("Validator tran_id does not match callback order",
			zap.String("orderId", order.OrderID),
			zap.String("validatorTranId", parsed.TranID))
		return false, nil
	}
	amount, err := strconv.ParseFloat(parsed.Amount, 64)
	if err != nil || math.Abs(amount-order.TotalAmount) > 0.01 {
		a.logger.Warn("Validator amount does not match order",
			zap.String("orderId", order.OrderID),
			zap.String("validatorAmount", parsed.Amount),
			zap.Float64("orderAmount", order.TotalAmount))
		return false, nil
	}
	return true, nil
}

// ValidationEnabled reports whether success callbacks must be re-checked.
func (a *Adapter) ValidationEnabled() bool {
	return a.cfg.ValidateCallbacks
}

func (a *Adapter) callbackURL(event, orderID string) string {
	return fmt.Sprintf("%s/payment/%s?orderId=%s", a.publicBaseURL, event, url.QueryEscape(orderID))
}

func productSummary(items []models.OrderItem) string {
	if len(items) == 0 {
		return "Order"
	}
	if len(items) == 1 {
		return items[0].Name
	}
	return fmt.Sprintf("%s and %d more", items[0].Name, len(items)-1)
}
