package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marketplace-backend/internal/models"
)

func (c *Client) ProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := c.products().FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// ProductsByIDs fetches the given products in the order of ids, skipping any
// that no longer exist.
func (c *Client) ProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cur, err := c.products().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get products by ids: %w", err)
	}
	found, err := decodeAll[models.Product](ctx, cur, "products")
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	ordered := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// NewestActive returns the newest active products (the "featured" fallback).
func (c *Client) NewestActive(ctx context.Context, limit int64) ([]models.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := c.products().Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list newest products: %w", err)
	}
	return decodeAll[models.Product](ctx, cur, "products")
}

// ActiveMatchingTaxonomy returns active products whose category or brand is
// in the given sets, excluding the listed ids, newest first.
func (c *Client) ActiveMatchingTaxonomy(ctx context.Context, categoryIDs, brandIDs, exclude []primitive.ObjectID, limit int64) ([]models.Product, error) {
	or := bson.A{}
	if len(categoryIDs) > 0 {
		or = append(or, bson.M{"category_id": bson.M{"$in": categoryIDs}})
	}
	if len(brandIDs) > 0 {
		or = append(or, bson.M{"brand_id": bson.M{"$in": brandIDs}})
	}
	if len(or) == 0 {
		return nil, nil
	}

	filter := bson.M{"is_active": true, "$or": or}
	if len(exclude) > 0 {
		filter["_id"] = bson.M{"$nin": exclude}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := c.products().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by taxonomy: %w", err)
	}
	return decodeAll[models.Product](ctx, cur, "products")
}

// BuildSearchFilter translates a SearchQuery into the conjunctive Mongo
// filter for the primary query. Rating constraints are intentionally absent;
// they are applied post-fetch on the enriched page.
func BuildSearchFilter(q models.SearchQuery) bson.M {
	filter := bson.M{"is_active": true}

	if q.Text != "" {
		quoted := regexp.QuoteMeta(q.Text)
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": quoted, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": quoted, "$options": "i"}},
		}
	}
	if q.CategoryID != nil {
		filter["category_id"] = *q.CategoryID
	}
	switch len(q.BrandIDs) {
	case 0:
	case 1:
		filter["brand_id"] = q.BrandIDs[0]
	default:
		filter["brand_id"] = bson.M{"$in": q.BrandIDs}
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["selling_price"] = price
	}
	if q.IsPrime != nil {
		filter["is_prime"] = *q.IsPrime
	}

	return filter
}

func searchSort(sort models.SortOrder) bson.D {
	switch sort {
	case models.SortPriceAsc:
		return bson.D{{Key: "selling_price", Value: 1}}
	case models.SortPriceDesc:
		return bson.D{{Key: "selling_price", Value: -1}}
	case models.SortDiscountDesc:
		return bson.D{{Key: "discount", Value: -1}}
	default:
		// relevance, newest and rating all fetch newest-first; the rating
		// order is re-applied after enrichment.
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

// SearchProducts runs the primary search query and returns one page plus the
// full match count.
func (c *Client) SearchProducts(ctx context.Context, q models.SearchQuery) ([]models.Product, int64, error) {
	filter := BuildSearchFilter(q)

	total, err := c.products().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	opts := options.Find().
		SetSort(searchSort(q.Sort)).
		SetSkip((q.Page - 1) * q.Limit).
		SetLimit(q.Limit)

	cur, err := c.products().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	products, err := decodeAll[models.Product](ctx, cur, "products")
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// SuggestProducts matches the query as a case-insensitive substring of the
// product name and returns the trimmed suggestion shape, alphabetically.
func (c *Client) SuggestProducts(ctx context.Context, text string, limit int64) ([]models.ProductSuggestion, error) {
	filter := bson.M{
		"is_active": true,
		"name":      bson.M{"$regex": regexp.QuoteMeta(text), "$options": "i"},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(limit).
		SetProjection(bson.M{"name": 1, "image": bson.M{"$arrayElemAt": bson.A{"$images", 0}}})

	cur, err := c.products().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest products: %w", err)
	}
	return decodeAll[models.ProductSuggestion](ctx, cur, "suggestions")
}

// BrandFacets returns the distinct brands present in the set matched by the
// base search predicate.
func (c *Client) BrandFacets(ctx context.Context, q models.SearchQuery) ([]models.BrandFacet, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: BuildSearchFilter(q)}},
		{{Key: "$group", Value: bson.M{"_id": "$brand_id"}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "brands",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "brand",
		}}},
		{{Key: "$unwind", Value: "$brand"}},
		{{Key: "$project", Value: bson.M{
			"_id":   1,
			"name":  "$brand.name",
			"image": "$brand.image",
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}}}},
	}

	cur, err := c.products().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate brand facets: %w", err)
	}
	return decodeAll[models.BrandFacet](ctx, cur, "brand facets")
}

// PriceRange returns the min and max selling price among products matched by
// the base search predicate. Zeroes mean an empty match set.
func (c *Client) PriceRange(ctx context.Context, q models.SearchQuery) (float64, float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: BuildSearchFilter(q)}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"min": bson.M{"$min": "$selling_price"},
			"max": bson.M{"$max": "$selling_price"},
		}}},
	}

	cur, err := c.products().Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate price range: %w", err)
	}

	rows, err := decodeAll[struct {
		Min float64 `bson:"min"`
		Max float64 `bson:"max"`
	}](ctx, cur, "price range")
	if err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Min, rows[0].Max, nil
}
