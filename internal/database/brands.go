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

func (c *Client) CreateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	now := time.Now().UTC()
	brand.IsActive = true
	brand.CreatedAt = now
	brand.UpdatedAt = now

	res, err := c.brands().InsertOne(ctx, brand)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}

	brand.ID = res.InsertedID.(primitive.ObjectID)
	return brand, nil
}

// ListBrands returns active brands by default; includeInactive widens the
// listing to soft-deleted ones.
func (c *Client) ListBrands(ctx context.Context, includeInactive bool) ([]models.Brand, error) {
	filter := bson.M{}
	if !includeInactive {
		filter["is_active"] = true
	}

	cur, err := c.brands().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	return decodeAll[models.Brand](ctx, cur, "brands")
}

func (c *Client) BrandByID(ctx context.Context, id primitive.ObjectID) (*models.Brand, error) {
	var brand models.Brand
	err := c.brands().FindOne(ctx, bson.M{"_id": id}).Decode(&brand)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return &brand, nil
}

func (c *Client) UpdateBrand(ctx context.Context, id primitive.ObjectID, req *models.UpdateBrandRequest) (*models.Brand, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Image != nil {
		set["image"] = *req.Image
	}
	if req.IsActive != nil {
		set["is_active"] = *req.IsActive
	}

	res := c.brands().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, findOneAndUpdateReturnAfter())

	var brand models.Brand
	if err := res.Decode(&brand); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to update brand: %w", err)
	}
	return &brand, nil
}

// SoftDeleteBrand marks the brand inactive; the document is retained.
func (c *Client) SoftDeleteBrand(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.brands().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to soft delete brand: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}
