package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marketplace-backend/internal/models"
)

func (c *Client) OrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := c.orders().FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// PaidOrderStats returns the (created_at, total, profit) projection of every
// Paid order in [start, end]. The analytics service reduces these in memory.
func (c *Client) PaidOrderStats(ctx context.Context, start, end time.Time) ([]models.OrderStat, error) {
	filter := bson.M{
		"payment_status": models.PaymentStatusPaid,
		"created_at":     bson.M{"$gte": start, "$lte": end},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetProjection(bson.M{"created_at": 1, "total": 1, "total_profit": 1})

	cur, err := c.orders().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list paid order stats: %w", err)
	}
	return decodeAll[models.OrderStat](ctx, cur, "order stats")
}

// OrderStatusCounts groups all orders in the range by status.
func (c *Client) OrderStatusCounts(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": start, "$lte": end}}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}

	cur, err := c.orders().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate order status counts: %w", err)
	}

	rows, err := decodeAll[struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}](ctx, cur, "status counts")
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func orderReportMatch(f models.OrderReportFilter) bson.M {
	match := bson.M{}
	if f.Start != nil || f.End != nil {
		created := bson.M{}
		if f.Start != nil {
			created["$gte"] = *f.Start
		}
		if f.End != nil {
			created["$lte"] = *f.End
		}
		match["created_at"] = created
	}
	if f.Status != "" {
		match["status"] = f.Status
	}
	if f.PaymentStatus != "" {
		match["payment_status"] = f.PaymentStatus
	}
	return match
}

// OrderReport returns one page of per-order report rows with the customer
// denormalized, plus the total match count unaffected by pagination.
// Unresolvable customer references yield empty name/email; the service
// substitutes the fallback.
func (c *Client) OrderReport(ctx context.Context, f models.OrderReportFilter) ([]models.OrderReportRow, int64, error) {
	match := orderReportMatch(f)

	total, err := c.orders().CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count report orders: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$skip", Value: f.Skip}},
		{{Key: "$limit", Value: f.Limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "customer_id",
			"foreignField": "_id",
			"as":           "customer",
		}}},
		{{Key: "$project", Value: bson.M{
			"customer_name":  bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$customer.name", 0}}, ""}},
			"customer_email": bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$customer.email", 0}}, ""}},
			"item_count":     bson.M{"$size": bson.M{"$ifNull": bson.A{"$items", bson.A{}}}},
			"revenue":        "$total",
			"profit":         "$total_profit",
			"status":         1,
			"payment_status": 1,
			"created_at":     1,
		}}},
	}

	cur, err := c.orders().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to aggregate order report: %w", err)
	}
	rows, err := decodeAll[models.OrderReportRow](ctx, cur, "report rows")
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// RecentOrdersForCustomer returns the customer's most recent orders, newest
// first.
func (c *Client) RecentOrdersForCustomer(ctx context.Context, customerID primitive.ObjectID, limit int64) ([]models.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := c.orders().Find(ctx, bson.M{"customer_id": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	return decodeAll[models.Order](ctx, cur, "orders")
}

// ProductOrderStats ranks products by order activity since the given time,
// skipping cancelled and rejected orders. This is the trending pipeline.
func (c *Client) ProductOrderStats(ctx context.Context, since time.Time, limit int64) ([]models.ProductOrderStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"created_at": bson.M{"$gte": since},
			"status":     bson.M{"$nin": bson.A{models.OrderStatusCancelled, models.OrderStatusRejected}},
		}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$items.product_id",
			"order_count":    bson.M{"$sum": 1},
			"total_quantity": bson.M{"$sum": "$items.quantity"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "order_count", Value: -1}, {Key: "total_quantity", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cur, err := c.orders().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate trending products: %w", err)
	}
	return decodeAll[models.ProductOrderStat](ctx, cur, "product order stats")
}

// DeliveredOrdersContaining returns DELIVERED orders with a line item for
// the given product. The co-purchase reduction runs over their items.
func (c *Client) DeliveredOrdersContaining(ctx context.Context, productID primitive.ObjectID) ([]models.Order, error) {
	filter := bson.M{
		"status":           models.OrderStatusDelivered,
		"items.product_id": productID,
	}

	cur, err := c.orders().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivered orders: %w", err)
	}
	return decodeAll[models.Order](ctx, cur, "orders")
}
