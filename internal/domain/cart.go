package domain

// CartLine is a client-held cart entry. CachedStock is the client's last
// known availability and may drift from the authoritative stock.
type CartLine struct {
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	CachedStock int     `json:"cached_stock"`
}
