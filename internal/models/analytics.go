package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AnalyticsPeriod string

const (
	PeriodDaily   AnalyticsPeriod = "daily"
	PeriodWeekly  AnalyticsPeriod = "weekly"
	PeriodMonthly AnalyticsPeriod = "monthly"
	PeriodYearly  AnalyticsPeriod = "yearly"
)

func (p AnalyticsPeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// OrderStat is the projection of a Paid order used by the analytics
// reductions.
type OrderStat struct {
	CreatedAt time.Time `bson:"created_at"`
	Total     float64   `bson:"total"`
	Profit    float64   `bson:"total_profit"`
}

// PeriodBucket is one entry of the analytics series. Buckets with no orders
// are emitted zero-valued.
type PeriodBucket struct {
	Period            string  `json:"period"`
	Revenue           float64 `json:"revenue"`
	Profit            float64 `json:"profit"`
	OrderCount        int     `json:"order_count"`
	AverageOrderValue float64 `json:"average_order_value"`
}

type OrderReportFilter struct {
	Start         *time.Time
	End           *time.Time
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Limit         int64
	Skip          int64
}

type OrderReportRow struct {
	OrderID       primitive.ObjectID `bson:"_id" json:"order_id"`
	CustomerName  string             `bson:"customer_name" json:"customer_name"`
	CustomerEmail string             `bson:"customer_email" json:"customer_email"`
	ItemCount     int                `bson:"item_count" json:"item_count"`
	Revenue       float64            `bson:"revenue" json:"revenue"`
	Profit        float64            `bson:"profit" json:"profit"`
	Status        OrderStatus        `bson:"status" json:"status"`
	PaymentStatus PaymentStatus      `bson:"payment_status" json:"payment_status"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

type OrderReport struct {
	Rows  []OrderReportRow `json:"rows"`
	Total int64            `json:"total"`
}

type AnalyticsSummary struct {
	TotalRevenue      float64          `json:"total_revenue"`
	TotalProfit       float64          `json:"total_profit"`
	TotalOrders       int              `json:"total_orders"`
	AverageOrderValue float64          `json:"average_order_value"`
	StatusBreakdown   map[string]int64 `json:"status_breakdown"`
}

// ProductOrderStat ranks a product by order activity (trending pipeline).
type ProductOrderStat struct {
	ProductID     primitive.ObjectID `bson:"_id"`
	OrderCount    int64              `bson:"order_count"`
	TotalQuantity int64              `bson:"total_quantity"`
}

// RatingSummary carries the approved-review aggregates for one product.
type RatingSummary struct {
	AverageRating float64 `bson:"average_rating"`
	ReviewCount   int     `bson:"review_count"`
}

// ProductRatingStat ranks a product by its approved reviews (top-rated
// pipeline).
type ProductRatingStat struct {
	ProductID     primitive.ObjectID `bson:"_id"`
	AverageRating float64            `bson:"average_rating"`
	ReviewCount   int64              `bson:"review_count"`
}

type BrandFacet struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Image string             `bson:"image,omitempty" json:"image,omitempty"`
}

type FilterOptions struct {
	Brands          []BrandFacet  `json:"brands"`
	MinPrice        float64       `json:"min_price"`
	MaxPrice        float64       `json:"max_price"`
	RatingHistogram map[int]int64 `json:"rating_histogram"`
}

type PopularCategory struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Name         string             `bson:"name" json:"name"`
	ProductCount int64              `bson:"product_count" json:"product_count"`
}
