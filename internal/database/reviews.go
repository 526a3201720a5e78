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

func (c *Client) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now

	res, err := c.reviews().InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	review.ID = res.InsertedID.(primitive.ObjectID)
	return review, nil
}

func (c *Client) ReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := c.reviews().FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

func (c *Client) ReviewExists(ctx context.Context, productID, orderID, customerID primitive.ObjectID) (bool, error) {
	count, err := c.reviews().CountDocuments(ctx, bson.M{
		"product_id":  productID,
		"order_id":    orderID,
		"customer_id": customerID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}
	return count > 0, nil
}

// ReviewsByProduct returns one page of approved reviews for a product,
// newest first, plus the total approved count.
func (c *Client) ReviewsByProduct(ctx context.Context, productID primitive.ObjectID, limit, skip int64) ([]models.Review, int64, error) {
	filter := bson.M{"product_id": productID, "status": models.ReviewStatusApproved}

	total, err := c.reviews().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := c.reviews().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	reviews, err := decodeAll[models.Review](ctx, cur, "reviews")
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (c *Client) ReviewsByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := c.reviews().Find(ctx, bson.M{"customer_id": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer reviews: %w", err)
	}
	return decodeAll[models.Review](ctx, cur, "reviews")
}

func (c *Client) UpdateReview(ctx context.Context, id primitive.ObjectID, req *models.UpdateReviewRequest) (*models.Review, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if req.Rating != nil {
		set["rating"] = *req.Rating
	}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Comment != nil {
		set["comment"] = *req.Comment
	}
	if req.Images != nil {
		set["images"] = *req.Images
	}

	res := c.reviews().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, findOneAndUpdateReturnAfter())

	var review models.Review
	if err := res.Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return &review, nil
}

func (c *Client) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.reviews().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

// IncrementHelpful bumps helpful_count by one atomically.
func (c *Client) IncrementHelpful(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	res := c.reviews().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"helpful_count": 1}},
		findOneAndUpdateReturnAfter(),
	)

	var review models.Review
	if err := res.Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("failed to increment helpful count: %w", err)
	}
	return &review, nil
}

func (c *Client) SetVendorResponse(ctx context.Context, id primitive.ObjectID, response models.VendorResponse) (*models.Review, error) {
	res := c.reviews().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"vendor_response": response, "updated_at": time.Now().UTC()}},
		findOneAndUpdateReturnAfter(),
	)

	var review models.Review
	if err := res.Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("failed to set vendor response: %w", err)
	}
	return &review, nil
}

// RatingSummaries aggregates approved reviews for the given products. The
// result map has no entry for products without approved reviews.
func (c *Client) RatingSummaries(ctx context.Context, productIDs []primitive.ObjectID) (map[primitive.ObjectID]models.RatingSummary, error) {
	if len(productIDs) == 0 {
		return map[primitive.ObjectID]models.RatingSummary{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"product_id": bson.M{"$in": productIDs},
			"status":     models.ReviewStatusApproved,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$product_id",
			"average_rating": bson.M{"$avg": "$rating"},
			"review_count":   bson.M{"$sum": 1},
		}}},
	}

	cur, err := c.reviews().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate rating summaries: %w", err)
	}

	rows, err := decodeAll[struct {
		ProductID     primitive.ObjectID `bson:"_id"`
		AverageRating float64            `bson:"average_rating"`
		ReviewCount   int                `bson:"review_count"`
	}](ctx, cur, "rating summaries")
	if err != nil {
		return nil, err
	}

	summaries := make(map[primitive.ObjectID]models.RatingSummary, len(rows))
	for _, row := range rows {
		summaries[row.ProductID] = models.RatingSummary{
			AverageRating: row.AverageRating,
			ReviewCount:   row.ReviewCount,
		}
	}
	return summaries, nil
}

// TopRatedStats ranks products by approved reviews, requiring at least
// minReviews of them.
func (c *Client) TopRatedStats(ctx context.Context, minReviews int, limit int64) ([]models.ProductRatingStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.ReviewStatusApproved}}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$product_id",
			"average_rating": bson.M{"$avg": "$rating"},
			"review_count":   bson.M{"$sum": 1},
		}}},
		{{Key: "$match", Value: bson.M{"review_count": bson.M{"$gte": minReviews}}}},
		{{Key: "$sort", Value: bson.D{{Key: "average_rating", Value: -1}, {Key: "review_count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cur, err := c.reviews().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top rated products: %w", err)
	}
	return decodeAll[models.ProductRatingStat](ctx, cur, "top rated stats")
}

// RatingHistogram buckets all approved reviews by rating. The slice is
// indexed 0..5; approved reviews always land in 1..5, bucket 0 stays for the
// fixed histogram shape.
func (c *Client) RatingHistogram(ctx context.Context) ([6]int64, error) {
	var histogram [6]int64

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.ReviewStatusApproved}}},
		{{Key: "$group", Value: bson.M{"_id": "$rating", "count": bson.M{"$sum": 1}}}},
	}

	cur, err := c.reviews().Aggregate(ctx, pipeline)
	if err != nil {
		return histogram, fmt.Errorf("failed to aggregate rating histogram: %w", err)
	}

	rows, err := decodeAll[struct {
		Rating int   `bson:"_id"`
		Count  int64 `bson:"count"`
	}](ctx, cur, "histogram")
	if err != nil {
		return histogram, err
	}

	for _, row := range rows {
		if row.Rating >= 0 && row.Rating <= 5 {
			histogram[row.Rating] = row.Count
		}
	}
	return histogram, nil
}

// ProductRatingHistogram buckets a single product's approved reviews by star
// rating, 1..5.
func (c *Client) ProductRatingHistogram(ctx context.Context, productID primitive.ObjectID) (map[int]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"product_id": productID,
			"status":     models.ReviewStatusApproved,
		}}},
		{{Key: "$group", Value: bson.M{"_id": "$rating", "count": bson.M{"$sum": 1}}}},
	}

	cur, err := c.reviews().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate product histogram: %w", err)
	}

	rows, err := decodeAll[struct {
		Rating int   `bson:"_id"`
		Count  int64 `bson:"count"`
	}](ctx, cur, "histogram")
	if err != nil {
		return nil, err
	}

	histogram := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, row := range rows {
		if row.Rating >= 1 && row.Rating <= 5 {
			histogram[row.Rating] = row.Count
		}
	}
	return histogram, nil
}
