package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"academy-svc/gateway"
	"academy-svc/lifecycle"
	"academy-svc/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGateway struct {
	initURL          string
	initErr          error
	validate         bool
	validateOK       bool
	validateErr      error
	validatedOrderID string
}

func (f *fakeGateway) InitPayment(_ context.Context, orderID string) (string, error) {
	if f.initErr != nil {
		return "", f.initErr
	}
	return f.initURL, nil
}

func (f *fakeGateway) ValidatePayment(_ context.Context, _, orderID string) (bool, error) {
	f.validatedOrderID = orderID
	return f.validateOK, f.validateErr
}

func (f *fakeGateway) ValidationEnabled() bool { return f.validate }

type recordedTransition struct {
	orderID string
	event   lifecycle.CallbackEvent
	valID   string
}

type fakeTransitioner struct {
	calls []recordedTransition
	err   error
}

func (f *fakeTransitioner) Transition(_ context.Context, orderID string, event lifecycle.CallbackEvent, valID string) (*models.Order, error) {
	f.calls = append(f.calls, recordedTransition{orderID, event, valID})
	if f.err != nil {
		return nil, f.err
	}
	return &models.Order{OrderID: orderID, Status: models.StatusCompleted}, nil
}

const frontend = "https://academy.example"

func paymentRouter(gw *fakeGateway, tr *fakeTransitioner) *gin.Engine {
	h := NewPaymentHandler(gw, tr, frontend, zap.NewNop())
	r := gin.New()
	r.POST("/payment/init", h.InitPayment)
	r.POST("/payment/success", h.Success)
	r.POST("/payment/fail", h.Fail)
	r.POST("/payment/cancel", h.Cancel)
	return r
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestInitPaymentReturnsGatewayURL(t *testing.T) {
	gw := &fakeGateway{initURL: "https://sandbox.sslcommerz.com/EasyCheckOut/x"}
	r := paymentRouter(gw, &fakeTransitioner{})

	req := httptest.NewRequest(http.MethodPost, "/payment/init", strings.NewReader(`{"orderId":"AC1-X"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "EasyCheckOut")
}

func TestInitPaymentMissingOrderID(t *testing.T) {
	r := paymentRouter(&fakeGateway{}, &fakeTransitioner{})

	req := httptest.NewRequest(http.MethodPost, "/payment/init", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInitPaymentErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"unknown order", fmt.Errorf("order x: %w", models.ErrNotFound), http.StatusNotFound},
		{"provider rejection", &gateway.Error{Status: "FAILED", Reason: "bad credential"}, http.StatusBadRequest},
		{"provider unreachable", errors.New("gateway unreachable: dial tcp"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := paymentRouter(&fakeGateway{initErr: tt.err}, &fakeTransitioner{})

			req := httptest.NewRequest(http.MethodPost, "/payment/init", strings.NewReader(`{"orderId":"AC1-X"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestInitPaymentRejectionCarriesDiagnostics(t *testing.T) {
	gw := &fakeGateway{initErr: &gateway.Error{Status: "FAILED", Reason: "Store Credential Error"}}
	r := paymentRouter(gw, &fakeTransitioner{})

	req := httptest.NewRequest(http.MethodPost, "/payment/init", strings.NewReader(`{"orderId":"AC1-X"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Store Credential Error")
}

func TestSuccessCallbackRedirectsToConfirmation(t *testing.T) {
	tr := &fakeTransitioner{}
	r := paymentRouter(&fakeGateway{}, tr)

	w := postForm(r, "/payment/success", url.Values{"tran_id": {"AC1-X"}, "val_id": {"V123"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, frontend+"/order-confirmation/AC1-X?clear_cart=1", w.Header().Get("Location"))
	require.Len(t, tr.calls, 1)
	assert.Equal(t, recordedTransition{"AC1-X", lifecycle.CallbackSuccess, "V123"}, tr.calls[0])
}

func TestSuccessCallbackWithoutTranID(t *testing.T) {
	tr := &fakeTransitioner{}
	r := paymentRouter(&fakeGateway{}, tr)

	w := postForm(r, "/payment/success", url.Values{})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, frontend, w.Header().Get("Location"))
	assert.Empty(t, tr.calls, "no transition without tran_id")
}

func TestSuccessCallbackTransitionErrorStillRedirects(t *testing.T) {
	tr := &fakeTransitioner{err: errors.New("db down")}
	r := paymentRouter(&fakeGateway{}, tr)

	w := postForm(r, "/payment/success", url.Values{"tran_id": {"AC1-X"}})

	// The provider only expects a redirect, never an error payload.
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestSuccessCallbackValidationRejected(t *testing.T) {
	tr := &fakeTransitioner{}
	gw := &fakeGateway{validate: true, validateOK: false}
	r := paymentRouter(gw, tr)

	w := postForm(r, "/payment/success", url.Values{"tran_id": {"AC1-X"}, "val_id": {"FORGED"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, frontend+"/?payment=failed", w.Header().Get("Location"))
	assert.Empty(t, tr.calls, "unvalidated callback must not transition the order")
}

func TestSuccessCallbackValidationAccepted(t *testing.T) {
	tr := &fakeTransitioner{}
	gw := &fakeGateway{validate: true, validateOK: true}
	r := paymentRouter(gw, tr)

	w := postForm(r, "/payment/success", url.Values{"tran_id": {"AC1-X"}, "val_id": {"V123"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	require.Len(t, tr.calls, 1)
	assert.Equal(t, "AC1-X", gw.validatedOrderID, "validation must be checked against the callback's own order")
}

func TestFailCallback(t *testing.T) {
	tr := &fakeTransitioner{}
	r := paymentRouter(&fakeGateway{}, tr)

	w := postForm(r, "/payment/fail", url.Values{"tran_id": {"AC1-X"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, frontend+"/?payment=failed", w.Header().Get("Location"))
	require.Len(t, tr.calls, 1)
	assert.Equal(t, lifecycle.CallbackFail, tr.calls[0].event)
}

func TestCancelCallback(t *testing.T) {
	tr := &fakeTransitioner{}
	r := paymentRouter(&fakeGateway{}, tr)

	w := postForm(r, "/payment/cancel", url.Values{"tran_id": {"AC1-X"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, frontend+"/?payment=cancelled", w.Header().Get("Location"))
	require.Len(t, tr.calls, 1)
	assert.Equal(t, lifecycle.CallbackCancel, tr.calls[0].event)
}

func TestFailCallbackWithoutTranIDStillRedirects(t *testing.T) {
	tr := &fakeTransitioner{}
	r := paymentRouter(&fakeGateway{}, tr)

	w := postForm(r, "/payment/fail", url.Values{})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Empty(t, tr.calls)
}
