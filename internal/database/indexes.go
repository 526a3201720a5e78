package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes declares every index the application relies on. It runs at
// startup and is idempotent; Mongo treats re-creating an existing index as a
// no-op.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	specs := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{c.users(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{c.brands(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{c.categories(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "parent_id", Value: 1}}},
		}},
		{c.products(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "category_id", Value: 1}}},
			{Keys: bson.D{{Key: "brand_id", Value: 1}}},
		}},
		{c.orders(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "payment_status", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "items.product_id", Value: 1}}},
		}},
		{c.reviews(), []mongo.IndexModel{
			// One review per (product, order, customer); duplicate creates
			// surface as a duplicate-key error.
			{
				Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "order_id", Value: 1}, {Key: "customer_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		}},
		{c.serviceRequests(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		}},
	}

	for _, spec := range specs {
		if _, err := spec.coll.Indexes().CreateMany(ctx, spec.models); err != nil {
			return fmt.Errorf("failed to ensure indexes on %s: %w", spec.coll.Name(), err)
		}
	}

	return nil
}
