package sequence

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAllocator struct {
	collection *mongo.Collection
}

// NewMongoAllocator backs the allocator with a counters collection, one
// document per named sequence.
func NewMongoAllocator(db *mongo.Database) Allocator {
	return &mongoAllocator{
		collection: db.Collection("counters"),
	}
}

func (m *mongoAllocator) Next(ctx context.Context, name string) (int64, error) {
	// $inc with upsert is a single store-side atomic operation. Never split
	// this into a read followed by a write.
	filter := bson.M{"_id": name}
	update := bson.M{"$inc": bson.M{"value": int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Value int64 `bson:"value"`
	}
	if err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return counter.Value, nil
}
