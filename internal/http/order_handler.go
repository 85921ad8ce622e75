package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marketbay/storefront/internal/domain"
	"github.com/marketbay/storefront/internal/repository"
	"github.com/marketbay/storefront/internal/service"
)

// Committer is the slice of the checkout service the handler needs.
type Committer interface {
	Commit(ctx context.Context, req *service.CheckoutRequest) (*service.CheckoutResult, error)
}

// OrderReader answers buyer-facing order queries and admin transitions.
type OrderReader interface {
	GetOrderForBuyer(ctx context.Context, orderID, buyerEmail string) (*domain.Order, error)
	ListOrders(ctx context.Context, buyerEmail string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
}

type OrderHandler struct {
	checkout Committer
	orders   OrderReader
	timeout  time.Duration
}

func NewOrderHandler(checkout Committer, orders OrderReader, timeout time.Duration) *OrderHandler {
	return &OrderHandler{
		checkout: checkout,
		orders:   orders,
		timeout:  timeout,
	}
}

type UserDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ShippingInfoDTO struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type OrderItemDTO struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type CheckoutRequestDTO struct {
	RazorpayOrderID   string          `json:"razorpay_order_id"`
	RazorpayPaymentID string          `json:"razorpay_payment_id"`
	RazorpaySignature string          `json:"razorpay_signature"`
	User              *UserDTO        `json:"user"`
	GuestUser         *UserDTO        `json:"guestUser"`
	ShippingInfo      ShippingInfoDTO `json:"shippingInfo"`
	OrderItems        []OrderItemDTO  `json:"orderItems"`
	ItemsPrice        float64         `json:"itemsPrice"`
	ShippingPrice     float64         `json:"shippingPrice"`
	TotalPrice        float64         `json:"totalPrice"`
	BusinessName      string          `json:"businessName"`
	PaymentMethod     string          `json:"paymentMethod"`
}

type CheckoutResponseDTO struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Data    *service.CheckoutResult `json:"data"`
}

// HandleCheckout is the commit endpoint. Everything is validated before any
// side effect; after a 201 the order stands regardless of downstream work.
func (h *OrderHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		respondError(w, http.StatusBadRequest, "missing_payment_fields", "payment verification fields are required")
		return
	}
	if len(req.OrderItems) == 0 {
		respondError(w, http.StatusBadRequest, "empty_order", "orderItems must not be empty")
		return
	}
	for _, item := range req.OrderItems {
		if item.ProductID == "" || item.Quantity < 1 {
			respondError(w, http.StatusBadRequest, "invalid_order_item", "every order item needs a product_id and quantity >= 1")
			return
		}
	}
	if req.ShippingInfo.Email == "" || req.ShippingInfo.Phone == "" {
		respondError(w, http.StatusBadRequest, "incomplete_shipping_info", "shippingInfo must include email and phone")
		return
	}

	buyer, ok := resolveBuyer(r.Context(), &req)
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_buyer", "either user or guestUser is required")
		return
	}

	items := make([]domain.OrderLine, len(req.OrderItems))
	for i, item := range req.OrderItems {
		items[i] = domain.OrderLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Category:  item.Category,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
		}
	}

	result, err := h.checkout.Commit(ctx, &service.CheckoutRequest{
		GatewayOrderID:   req.RazorpayOrderID,
		GatewayPaymentID: req.RazorpayPaymentID,
		Signature:        req.RazorpaySignature,
		PaymentMethod:    req.PaymentMethod,
		Buyer:            buyer,
		ShippingInfo: domain.ShippingInfo{
			Name:       req.ShippingInfo.Name,
			Email:      req.ShippingInfo.Email,
			Phone:      req.ShippingInfo.Phone,
			Address:    req.ShippingInfo.Address,
			City:       req.ShippingInfo.City,
			PostalCode: req.ShippingInfo.PostalCode,
			Country:    req.ShippingInfo.Country,
		},
		Items:         items,
		ItemsPrice:    req.ItemsPrice,
		ShippingPrice: req.ShippingPrice,
		TotalPrice:    req.TotalPrice,
	})
	if err != nil {
		if errors.Is(err, service.ErrPaymentVerification) {
			respondError(w, http.StatusBadRequest, "payment_verification_failed", "payment signature could not be verified")
			return
		}
		respondError(w, http.StatusInternalServerError, "order_commit_failed", "failed to create order")
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		Success: true,
		Message: "order confirmed",
		Data:    result,
	})
}

// resolveBuyer prefers the authenticated identity, then the signed-in user
// from the body, then the guest user.
func resolveBuyer(ctx context.Context, req *CheckoutRequestDTO) (domain.Buyer, bool) {
	if email := identityFromContext(ctx); email != "" {
		name := ""
		if req.User != nil {
			name = req.User.Name
		}
		return domain.Buyer{Name: name, Email: email}, true
	}
	if req.User != nil && req.User.Email != "" {
		return domain.Buyer{Name: req.User.Name, Email: req.User.Email}, true
	}
	if req.GuestUser != nil && req.GuestUser.Email != "" {
		return domain.Buyer{Name: req.GuestUser.Name, Email: req.GuestUser.Email, Guest: true}, true
	}
	return domain.Buyer{}, false
}

func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := identityFromContext(r.Context())
	if email == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer credential")
		return
	}

	orders, err := h.orders.ListOrders(ctx, email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := identityFromContext(r.Context())
	if email == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer credential")
		return
	}

	orderID := chi.URLParam(r, "id")
	order, err := h.orders.GetOrderForBuyer(ctx, orderID, email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "not_found", "order not found")
		case errors.Is(err, service.ErrNotOwner):
			respondError(w, http.StatusForbidden, "forbidden", "order belongs to a different buyer")
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to load order")
		}
		return
	}

	respondJSON(w, http.StatusOK, order)
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

// UpdateStatus applies an admin status transition. Orders already Delivered
// or Cancelled reject further changes with 409.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	status, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status")
		return
	}

	orderID := chi.URLParam(r, "orderId")
	order, err := h.orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "not_found", "order not found")
		case errors.Is(err, service.ErrOrderFinalized):
			respondError(w, http.StatusConflict, "order_finalized", "order is already delivered or cancelled")
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to update order")
		}
		return
	}

	respondJSON(w, http.StatusOK, order)
}
