package service

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/marketbay/storefront/internal/domain"
	"github.com/marketbay/storefront/internal/reconcile"
	"github.com/marketbay/storefront/internal/repository"
)

// StockService is the single authoritative stock lookup behind both the
// cart screen and the committer, so their views cannot diverge.
type StockService struct {
	products repository.ProductRepository
	sfg      singleflight.Group // collapses identical concurrent lookups
}

func NewStockService(products repository.ProductRepository) *StockService {
	return &StockService{products: products}
}

func (s *StockService) GetStock(ctx context.Context, productIDs []string) ([]domain.StockRecord, error) {
	v, err, _ := s.sfg.Do(lookupKey(productIDs), func() (interface{}, error) {
		return s.products.GetStock(ctx, productIDs)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.StockRecord), nil
}

// ReconcileCart refreshes a client cart against authoritative stock.
func (s *StockService) ReconcileCart(ctx context.Context, lines []domain.CartLine) (reconcile.Result, error) {
	ids := make([]string, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}

	records, err := s.GetStock(ctx, ids)
	if err != nil {
		return reconcile.Result{}, err
	}

	return reconcile.Reconcile(lines, reconcile.StockMap(records)), nil
}

func lookupKey(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
