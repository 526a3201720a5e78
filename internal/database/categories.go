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

func (c *Client) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	now := time.Now().UTC()
	category.IsActive = true
	category.CreatedAt = now
	category.UpdatedAt = now

	res, err := c.categories().InsertOne(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	category.ID = res.InsertedID.(primitive.ObjectID)
	return category, nil
}

func (c *Client) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	filter := bson.M{}
	if !includeInactive {
		filter["is_active"] = true
	}

	cur, err := c.categories().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return decodeAll[models.Category](ctx, cur, "categories")
}

func (c *Client) CategoryByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var category models.Category
	err := c.categories().FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id primitive.ObjectID, req *models.UpdateCategoryRequest) (*models.Category, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
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
	if req.ParentID != nil {
		if *req.ParentID == "" {
			unset["parent_id"] = ""
		} else {
			parentID, err := primitive.ObjectIDFromHex(*req.ParentID)
			if err != nil {
				return nil, fmt.Errorf("invalid parent category id: %w", err)
			}
			set["parent_id"] = parentID
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res := c.categories().FindOneAndUpdate(ctx, bson.M{"_id": id}, update, findOneAndUpdateReturnAfter())

	var category models.Category
	if err := res.Decode(&category); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return &category, nil
}

func (c *Client) SoftDeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.categories().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to soft delete category: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

// TopCategoriesPipeline ranks categories by active-product count. The limit
// is applied only after soft-deleted categories have been filtered out, so a
// deactivated top category never shrinks the result below limit.
func TopCategoriesPipeline(limit int64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_active": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$category_id",
			"product_count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "product_count", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "categories",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "category",
		}}},
		{{Key: "$unwind", Value: "$category"}},
		{{Key: "$match", Value: bson.M{"category.is_active": true}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{
			"_id":           1,
			"name":          "$category.name",
			"product_count": 1,
		}}},
	}
}

// TopCategoriesByProductCount ranks active categories by the number of
// active products they contain. Used as the popular-searches proxy.
func (c *Client) TopCategoriesByProductCount(ctx context.Context, limit int64) ([]models.PopularCategory, error) {
	cur, err := c.products().Aggregate(ctx, TopCategoriesPipeline(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate popular categories: %w", err)
	}
	return decodeAll[models.PopularCategory](ctx, cur, "popular categories")
}
