package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketbay/storefront/internal/domain"
	"github.com/marketbay/storefront/internal/repository"
	"github.com/marketbay/storefront/internal/service"
)

// --- Mocks ---

type committerMock struct {
	result  *service.CheckoutResult
	err     error
	lastReq *service.CheckoutRequest
}

func (m *committerMock) Commit(_ context.Context, req *service.CheckoutRequest) (*service.CheckoutResult, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type orderReaderMock struct {
	order  *domain.Order
	orders []domain.Order
	err    error
}

func (m *orderReaderMock) GetOrderForBuyer(_ context.Context, orderID, buyerEmail string) (*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

func (m *orderReaderMock) ListOrders(_ context.Context, buyerEmail string) ([]domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.orders, nil
}

func (m *orderReaderMock) UpdateStatus(_ context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.order.Status = status
	return m.order, nil
}

// --- helpers ---

func withIdentity(r *http.Request, email string) *http.Request {
	ctx := context.WithValue(r.Context(), identityKey, email)
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func validCheckoutBody() map[string]interface{} {
	return map[string]interface{}{
		"razorpay_order_id":   "order_gw1",
		"razorpay_payment_id": "pay_gw1",
		"razorpay_signature":  "deadbeef",
		"guestUser":           map[string]string{"name": "Alice", "email": "alice@example.com"},
		"shippingInfo": map[string]string{
			"name":  "Alice",
			"email": "alice@example.com",
			"phone": "555-0100",
		},
		"orderItems": []map[string]interface{}{
			{"product_id": "A", "name": "Widget", "category": "widgets", "price": 10.0, "quantity": 2},
		},
		"itemsPrice":    20.0,
		"shippingPrice": 5.0,
		"totalPrice":    25.0,
		"businessName":  "MarketBay",
	}
}

func postCheckout(t *testing.T, handler *OrderHandler, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/order/handler", bytes.NewReader(raw))
	handler.HandleCheckout(recorder, request)
	return recorder
}

// --- HandleCheckout tests ---

func TestHandleCheckout_Success(t *testing.T) {
	committer := &committerMock{
		result: &service.CheckoutResult{
			OrderID:   "ORD-0001",
			PaymentID: "pay_gw1",
			Amount:    25,
			Status:    "confirmed",
		},
	}
	handler := NewOrderHandler(committer, &orderReaderMock{}, 5*time.Second)

	recorder := postCheckout(t, handler, validCheckoutBody())
	require.Equal(t, http.StatusCreated, recorder.Code)

	var response CheckoutResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.Equal(t, "ORD-0001", response.Data.OrderID)
	assert.Equal(t, "confirmed", response.Data.Status)

	// Guest user carried through
	require.NotNil(t, committer.lastReq)
	assert.Equal(t, "alice@example.com", committer.lastReq.Buyer.Email)
	assert.True(t, committer.lastReq.Buyer.Guest)
}

func TestHandleCheckout_MissingPaymentFields(t *testing.T) {
	handler := NewOrderHandler(&committerMock{}, &orderReaderMock{}, 5*time.Second)

	for _, field := range []string{"razorpay_order_id", "razorpay_payment_id", "razorpay_signature"} {
		body := validCheckoutBody()
		delete(body, field)

		recorder := postCheckout(t, handler, body)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "missing %s must be rejected", field)
	}
}

func TestHandleCheckout_EmptyOrderItems(t *testing.T) {
	handler := NewOrderHandler(&committerMock{}, &orderReaderMock{}, 5*time.Second)

	body := validCheckoutBody()
	body["orderItems"] = []map[string]interface{}{}

	recorder := postCheckout(t, handler, body)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandleCheckout_IncompleteShippingInfo(t *testing.T) {
	handler := NewOrderHandler(&committerMock{}, &orderReaderMock{}, 5*time.Second)

	body := validCheckoutBody()
	body["shippingInfo"] = map[string]string{"name": "Alice", "email": "alice@example.com"} // no phone

	recorder := postCheckout(t, handler, body)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandleCheckout_MissingBuyer(t *testing.T) {
	handler := NewOrderHandler(&committerMock{}, &orderReaderMock{}, 5*time.Second)

	body := validCheckoutBody()
	delete(body, "guestUser")

	recorder := postCheckout(t, handler, body)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandleCheckout_SignatureMismatch(t *testing.T) {
	committer := &committerMock{err: service.ErrPaymentVerification}
	handler := NewOrderHandler(committer, &orderReaderMock{}, 5*time.Second)

	recorder := postCheckout(t, handler, validCheckoutBody())
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var response ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, "payment_verification_failed", response.Code)
}

func TestHandleCheckout_PersistenceFailure(t *testing.T) {
	committer := &committerMock{err: fmt.Errorf("failed to persist order: connection reset")}
	handler := NewOrderHandler(committer, &orderReaderMock{}, 5*time.Second)

	recorder := postCheckout(t, handler, validCheckoutBody())
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

// --- order query tests ---

func TestMyOrders_RequiresIdentity(t *testing.T) {
	handler := NewOrderHandler(&committerMock{}, &orderReaderMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.MyOrders(recorder, httptest.NewRequest("GET", "/order/me", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestMyOrders_Success(t *testing.T) {
	reader := &orderReaderMock{orders: []domain.Order{{ID: "ORD-0001"}}}
	handler := NewOrderHandler(&committerMock{}, reader, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withIdentity(httptest.NewRequest("GET", "/order/me", nil), "alice@example.com")
	handler.MyOrders(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var orders []domain.Order
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-0001", orders[0].ID)
}

func TestGetOrder_WrongBuyer(t *testing.T) {
	reader := &orderReaderMock{err: service.ErrNotOwner}
	handler := NewOrderHandler(&committerMock{}, reader, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withIdentity(httptest.NewRequest("GET", "/order/ORD-0001", nil), "mallory@example.com")
	request = withURLParam(request, "id", "ORD-0001")
	handler.GetOrder(recorder, request)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	reader := &orderReaderMock{err: repository.ErrOrderNotFound}
	handler := NewOrderHandler(&committerMock{}, reader, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withIdentity(httptest.NewRequest("GET", "/order/ORD-9999", nil), "alice@example.com")
	request = withURLParam(request, "id", "ORD-9999")
	handler.GetOrder(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

// --- admin status tests ---

func TestUpdateStatus_Success(t *testing.T) {
	reader := &orderReaderMock{order: &domain.Order{ID: "ORD-0001", Status: domain.OrderStatusProcessing}}
	handler := NewOrderHandler(&committerMock{}, reader, 5*time.Second)

	body := bytes.NewReader([]byte(`{"status":"Shipped"}`))
	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("PUT", "/admin/orders/ORD-0001", body), "orderId", "ORD-0001")
	handler.UpdateStatus(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var order domain.Order
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&order))
	assert.Equal(t, domain.OrderStatusShipped, order.Status)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	handler := NewOrderHandler(&committerMock{}, &orderReaderMock{}, 5*time.Second)

	body := bytes.NewReader([]byte(`{"status":"Teleported"}`))
	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("PUT", "/admin/orders/ORD-0001", body), "orderId", "ORD-0001")
	handler.UpdateStatus(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUpdateStatus_FinalizedOrderConflicts(t *testing.T) {
	reader := &orderReaderMock{err: service.ErrOrderFinalized}
	handler := NewOrderHandler(&committerMock{}, reader, 5*time.Second)

	body := bytes.NewReader([]byte(`{"status":"Processing"}`))
	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("PUT", "/admin/orders/ORD-0001", body), "orderId", "ORD-0001")
	handler.UpdateStatus(recorder, request)

	assert.Equal(t, http.StatusConflict, recorder.Code)
}
