package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ServiceType string

const ServiceTypeBirdDNA ServiceType = "bird_dna"

type ServiceRequestStatus string

const (
	ServiceStatusPending         ServiceRequestStatus = "pending"
	ServiceStatusPickupScheduled ServiceRequestStatus = "pickup_scheduled"
	ServiceStatusPickedUp        ServiceRequestStatus = "picked_up"
	ServiceStatusDelivered       ServiceRequestStatus = "delivered"
	ServiceStatusCompleted       ServiceRequestStatus = "completed"
)

// ServiceStatusRank orders the lifecycle; transitions may only move forward.
var ServiceStatusRank = map[ServiceRequestStatus]int{
	ServiceStatusPending:         0,
	ServiceStatusPickupScheduled: 1,
	ServiceStatusPickedUp:        2,
	ServiceStatusDelivered:       3,
	ServiceStatusCompleted:       4,
}

type Address struct {
	Line1   string `bson:"line1" json:"line1"`
	Line2   string `bson:"line2,omitempty" json:"line2,omitempty"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	Pincode string `bson:"pincode" json:"pincode"`
	Phone   string `bson:"phone" json:"phone"`
}

type Bird struct {
	Name    string `bson:"name" json:"name"`
	Species string `bson:"species" json:"species"`
	Age     string `bson:"age,omitempty" json:"age,omitempty"`
}

type ServiceRequest struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CustomerID     primitive.ObjectID   `bson:"customer_id" json:"customer_id"`
	ServiceType    ServiceType          `bson:"service_type" json:"service_type"`
	PickupAddress  Address              `bson:"pickup_address" json:"pickup_address"`
	DropAddress    Address              `bson:"drop_address,omitempty" json:"drop_address,omitempty"`
	Birds          []Bird               `bson:"birds" json:"birds"`
	Status         ServiceRequestStatus `bson:"status" json:"status"`
	PaymentMethod  string               `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	PaymentStatus  PaymentStatus        `bson:"payment_status" json:"payment_status"`
	TransactionID  string               `bson:"transaction_id,omitempty" json:"transaction_id,omitempty"`
	TotalAmount    float64              `bson:"total_amount" json:"total_amount"`
	TrackingNumber string               `bson:"tracking_number" json:"tracking_number"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
}
