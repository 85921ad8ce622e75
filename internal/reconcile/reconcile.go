// Package reconcile compares a client-held cart against authoritative stock
// and produces the minimal set of corrections to make the cart truthful.
package reconcile

import (
	"fmt"

	"github.com/marketbay/storefront/internal/domain"
)

type IssueType string

const (
	IssueRemoved         IssueType = "removed"
	IssueOutOfStock      IssueType = "out_of_stock"
	IssueQuantityReduced IssueType = "quantity_reduced"
	IssueError           IssueType = "error"
)

// Issue describes one corrective action taken against a cart line. Consumed
// once to drive user-facing notices, never persisted.
type Issue struct {
	Type        IssueType `json:"type"`
	ProductID   string    `json:"product_id,omitempty"`
	Message     string    `json:"message"`
	OldQuantity int       `json:"old_quantity,omitempty"`
	NewQuantity int       `json:"new_quantity,omitempty"`
}

type Result struct {
	Lines  []domain.CartLine `json:"lines"`
	Issues []Issue           `json:"issues"`
}

// Reconcile is pure and idempotent: applying it to its own output yields no
// further issues. The stock map is the authoritative lookup; a product absent
// from it is treated as removed from the catalog.
func Reconcile(lines []domain.CartLine, stock map[string]int) Result {
	result := Result{
		Lines:  make([]domain.CartLine, 0, len(lines)),
		Issues: []Issue{},
	}

	for _, line := range lines {
		available, exists := stock[line.ProductID]

		switch {
		case line.Quantity <= 0:
			// A non-positive quantity cannot come from a well-formed
			// cart; drop the line rather than carry it through.
			result.Issues = append(result.Issues, Issue{
				Type:      IssueRemoved,
				ProductID: line.ProductID,
				Message:   fmt.Sprintf("%s had an invalid quantity and was removed from your cart", line.Name),
			})

		case !exists:
			result.Issues = append(result.Issues, Issue{
				Type:      IssueRemoved,
				ProductID: line.ProductID,
				Message:   fmt.Sprintf("%s is no longer available and was removed from your cart", line.Name),
			})

		case available == 0:
			result.Issues = append(result.Issues, Issue{
				Type:      IssueOutOfStock,
				ProductID: line.ProductID,
				Message:   fmt.Sprintf("%s is out of stock and was removed from your cart", line.Name),
			})

		case line.Quantity > available:
			result.Issues = append(result.Issues, Issue{
				Type:        IssueQuantityReduced,
				ProductID:   line.ProductID,
				Message:     fmt.Sprintf("only %d of %s left, quantity reduced", available, line.Name),
				OldQuantity: line.Quantity,
				NewQuantity: available,
			})
			line.Quantity = available
			line.CachedStock = available
			result.Lines = append(result.Lines, line)

		default:
			line.CachedStock = available
			result.Lines = append(result.Lines, line)
		}
	}

	return result
}

// StockMap flattens authoritative stock records into the lookup Reconcile
// consumes. The committer and the cart screen both build their view here so
// the two cannot diverge.
func StockMap(records []domain.StockRecord) map[string]int {
	m := make(map[string]int, len(records))
	for _, r := range records {
		m[r.ProductID] = r.Stock
	}
	return m
}
