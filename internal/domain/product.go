package domain

// Product carries the slice of the catalog document the checkout pipeline
// touches. Catalog browsing owns the rest of the document.
type Product struct {
	ID       string  `bson:"_id" json:"_id"`
	Name     string  `bson:"name" json:"name"`
	Category string  `bson:"category" json:"category"`
	Price    float64 `bson:"price" json:"price"`
	Stock    int     `bson:"stock" json:"stock"`
}

// StockRecord is the authoritative availability answer for one product.
type StockRecord struct {
	ProductID string `bson:"_id" json:"_id"`
	Stock     int    `bson:"stock" json:"stock"`
}
