package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marketbay/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{
		collection: db.Collection("orders"),
	}
}

func (m *mongoOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}

	_, err := m.collection.InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

func (m *mongoOrderRepository) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order

	filter := bson.M{"_id": orderID}
	err := m.collection.FindOne(ctx, filter).Decode(&order)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

func (m *mongoOrderRepository) ListOrdersByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	filter := bson.M{"buyer.email": email}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, nil
}

func (m *mongoOrderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, deliveredAt *time.Time) error {
	set := bson.M{"status": status}
	if deliveredAt != nil {
		set["delivered_at"] = deliveredAt
	}

	// The finality guard lives in the filter so two concurrent transitions
	// cannot both pass a read-side check and overwrite a finalized order.
	filter := bson.M{
		"_id":    orderID,
		"status": bson.M{"$nin": bson.A{domain.OrderStatusDelivered, domain.OrderStatusCancelled}},
	}
	result, err := m.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if result.MatchedCount == 0 {
		findErr := m.collection.FindOne(ctx, bson.M{"_id": orderID},
			options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
		if errors.Is(findErr, mongo.ErrNoDocuments) {
			return ErrOrderNotFound
		}
		if findErr != nil {
			return fmt.Errorf("failed to update order status: %w", findErr)
		}
		return ErrOrderFinalized
	}
	return nil
}

// EnsureOrderIndexes creates the secondary indexes the order queries rely on.
func EnsureOrderIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "buyer.email", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "payment_info.payment_id", Value: 1}},
		},
	}

	_, err := db.Collection("orders").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
