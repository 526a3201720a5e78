package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

// Client wraps the Mongo database handle and exposes one method per store
// operation, mirroring how handlers and services consume it.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewClient(uri, dbName string) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Client{client: client, db: client.Database(dbName)}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *Client) users() *mongo.Collection           { return c.db.Collection("users") }
func (c *Client) products() *mongo.Collection        { return c.db.Collection("products") }
func (c *Client) orders() *mongo.Collection          { return c.db.Collection("orders") }
func (c *Client) reviews() *mongo.Collection         { return c.db.Collection("reviews") }
func (c *Client) brands() *mongo.Collection          { return c.db.Collection("brands") }
func (c *Client) categories() *mongo.Collection      { return c.db.Collection("categories") }
func (c *Client) serviceRequests() *mongo.Collection { return c.db.Collection("service_requests") }
