package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/marketbay/storefront/internal/cache"
	"github.com/marketbay/storefront/internal/domain"
	"github.com/marketbay/storefront/internal/reconcile"
)

// StockReader is the authoritative stock lookup shared with the committer.
type StockReader interface {
	GetStock(ctx context.Context, productIDs []string) ([]domain.StockRecord, error)
	ReconcileCart(ctx context.Context, lines []domain.CartLine) (reconcile.Result, error)
}

type ProductHandler struct {
	stock            StockReader
	invalidator      cache.Invalidator
	revalidateSecret string
	timeout          time.Duration
}

func NewProductHandler(stock StockReader, invalidator cache.Invalidator, revalidateSecret string, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		stock:            stock,
		invalidator:      invalidator,
		revalidateSecret: revalidateSecret,
		timeout:          timeout,
	}
}

type StockRequestDTO struct {
	ProductIDs []string `json:"productIds"`
}

func (h *ProductHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req StockRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.ProductIDs) == 0 {
		respondError(w, http.StatusBadRequest, "missing_product_ids", "productIds must not be empty")
		return
	}

	records, err := h.stock.GetStock(ctx, req.ProductIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to look up stock")
		return
	}
	if records == nil {
		records = []domain.StockRecord{}
	}

	respondJSON(w, http.StatusOK, records)
}

type ReconcileRequestDTO struct {
	Items []domain.CartLine `json:"items"`
}

// Reconcile is the pre-checkout cart screen: it refreshes the client cart
// against the same stock lookup the committer reads.
func (h *ProductHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ReconcileRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.Items) == 0 {
		respondJSON(w, http.StatusOK, reconcile.Result{Lines: []domain.CartLine{}, Issues: []reconcile.Issue{}})
		return
	}

	result, err := h.stock.ReconcileCart(ctx, req.Items)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to reconcile cart")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type RevalidateRequestDTO struct {
	Secret string   `json:"secret"`
	Tags   []string `json:"tags"`
}

// Revalidate lets operators invalidate catalog views by tag, gated by a
// shared secret.
func (h *ProductHandler) Revalidate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RevalidateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.revalidateSecret)) != 1 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "invalid revalidation secret")
		return
	}

	if err := h.invalidator.Invalidate(ctx, req.Tags); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to invalidate tags")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"revalidated": true})
}
