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

func (c *Client) CreateServiceRequest(ctx context.Context, sr *models.ServiceRequest) (*models.ServiceRequest, error) {
	now := time.Now().UTC()
	sr.CreatedAt = now
	sr.UpdatedAt = now

	res, err := c.serviceRequests().InsertOne(ctx, sr)
	if err != nil {
		return nil, fmt.Errorf("failed to create service request: %w", err)
	}

	sr.ID = res.InsertedID.(primitive.ObjectID)
	return sr, nil
}

func (c *Client) ServiceRequestByID(ctx context.Context, id primitive.ObjectID) (*models.ServiceRequest, error) {
	var sr models.ServiceRequest
	err := c.serviceRequests().FindOne(ctx, bson.M{"_id": id}).Decode(&sr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("failed to get service request: %w", err)
	}
	return &sr, nil
}

func (c *Client) ServiceRequestsByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.ServiceRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := c.serviceRequests().Find(ctx, bson.M{"customer_id": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list service requests: %w", err)
	}
	return decodeAll[models.ServiceRequest](ctx, cur, "service requests")
}

func (c *Client) UpdateServiceRequestStatus(ctx context.Context, id primitive.ObjectID, status models.ServiceRequestStatus) (*models.ServiceRequest, error) {
	res := c.serviceRequests().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		findOneAndUpdateReturnAfter(),
	)

	var sr models.ServiceRequest
	if err := res.Decode(&sr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("failed to update service request status: %w", err)
	}
	return &sr, nil
}
