package repository

import (
	"context"
	"fmt"

	"github.com/marketbay/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{
		collection: db.Collection("products"),
	}
}

func (m *mongoProductRepository) GetStock(ctx context.Context, productIDs []string) ([]domain.StockRecord, error) {
	filter := bson.M{"_id": bson.M{"$in": productIDs}}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "stock": 1})

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock: %w", err)
	}
	defer cursor.Close(ctx)

	var records []domain.StockRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode stock records: %w", err)
	}

	return records, nil
}

func (m *mongoProductRepository) DecrementStock(ctx context.Context, productID string, qty int) error {
	// Conditional decrement: the stock >= qty guard and the $inc run as one
	// atomic document update, so concurrent commits cannot drive stock
	// below zero.
	filter := bson.M{
		"_id":   productID,
		"stock": bson.M{"$gte": qty},
	}
	update := bson.M{"$inc": bson.M{"stock": -qty}}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}
