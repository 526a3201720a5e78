package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

type VendorType string

const (
	// VendorTypeShop is the self-serve vendor type; registrations with it
	// are approved automatically.
	VendorTypeShop         VendorType = "shop"
	VendorTypeBirdServices VendorType = "bird_services"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	VendorType   VendorType         `bson:"vendor_type,omitempty" json:"vendor_type,omitempty"`
	IsApproved   bool               `bson:"is_approved" json:"is_approved"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
