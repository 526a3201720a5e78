package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

const MaxReviewImages = 5

type VendorResponse struct {
	Comment     string             `bson:"comment" json:"comment"`
	ResponderID primitive.ObjectID `bson:"responder_id" json:"responder_id"`
	RespondedAt time.Time          `bson:"responded_at" json:"responded_at"`
}

// Review records a purchase-verified product review. At most one review may
// exist per (product, order, customer) triple; the store enforces this with
// a unique index.
type Review struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID          primitive.ObjectID `bson:"product_id" json:"product_id"`
	CustomerID         primitive.ObjectID `bson:"customer_id" json:"customer_id"`
	OrderID            primitive.ObjectID `bson:"order_id" json:"order_id"`
	Rating             int                `bson:"rating" json:"rating"`
	Title              string             `bson:"title" json:"title"`
	Comment            string             `bson:"comment" json:"comment"`
	Images             []string           `bson:"images,omitempty" json:"images,omitempty"`
	IsVerifiedPurchase bool               `bson:"is_verified_purchase" json:"is_verified_purchase"`
	HelpfulCount       int                `bson:"helpful_count" json:"helpful_count"`
	Status             ReviewStatus       `bson:"status" json:"status"`
	VendorResponse     *VendorResponse    `bson:"vendor_response,omitempty" json:"vendor_response,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}
