package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CategoryID   primitive.ObjectID `bson:"category_id" json:"category_id"`
	BrandID      primitive.ObjectID `bson:"brand_id" json:"brand_id"`
	VendorID     primitive.ObjectID `bson:"vendor_id,omitempty" json:"vendor_id,omitempty"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	SellingPrice float64            `bson:"selling_price" json:"selling_price"`
	Discount     float64            `bson:"discount" json:"discount"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	IsPrime      bool               `bson:"is_prime" json:"is_prime"`
	Images       []string           `bson:"images" json:"images"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// RatedProduct is a Product carrying review aggregates computed on the fly.
// The rating fields are never persisted.
type RatedProduct struct {
	Product
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// ProductSuggestion is the trimmed shape returned by search suggestions.
type ProductSuggestion struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Image string             `bson:"image,omitempty" json:"image,omitempty"`
}

type SortOrder string

const (
	SortRelevance    SortOrder = "relevance"
	SortPriceAsc     SortOrder = "price_asc"
	SortPriceDesc    SortOrder = "price_desc"
	SortNewest       SortOrder = "newest"
	SortDiscountDesc SortOrder = "discount"
	SortRatingDesc   SortOrder = "rating"
)

// SearchQuery is the parsed form of the advanced search parameters. Nil
// pointer fields mean "not constrained".
type SearchQuery struct {
	Text       string
	CategoryID *primitive.ObjectID
	BrandIDs   []primitive.ObjectID
	MinPrice   *float64
	MaxPrice   *float64
	IsPrime    *bool
	MinRating  *float64
	Sort       SortOrder
	Page       int64
	Limit      int64
}
