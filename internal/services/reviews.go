package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace-backend/internal/database"
	"marketplace-backend/internal/models"
)

const defaultReviewPageSize = 10

type ReviewStore interface {
	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
	ReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	ReviewExists(ctx context.Context, productID, orderID, customerID primitive.ObjectID) (bool, error)
	ReviewsByProduct(ctx context.Context, productID primitive.ObjectID, limit, skip int64) ([]models.Review, int64, error)
	ReviewsByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Review, error)
	UpdateReview(ctx context.Context, id primitive.ObjectID, req *models.UpdateReviewRequest) (*models.Review, error)
	DeleteReview(ctx context.Context, id primitive.ObjectID) error
	IncrementHelpful(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	SetVendorResponse(ctx context.Context, id primitive.ObjectID, response models.VendorResponse) (*models.Review, error)
	ProductRatingHistogram(ctx context.Context, productID primitive.ObjectID) (map[int]int64, error)
}

type ReviewOrderStore interface {
	OrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
}

type ReviewProductStore interface {
	ProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

// ReviewService enforces the purchase-verification rules around the review
// collection. Creation requires a DELIVERED order, owned by the caller,
// containing the reviewed product; the unique (product, order, customer)
// index backs the duplicate check.
type ReviewService struct {
	reviews  ReviewStore
	orders   ReviewOrderStore
	products ReviewProductStore
}

func NewReviewService(reviews ReviewStore, orders ReviewOrderStore, products ReviewProductStore) *ReviewService {
	return &ReviewService{reviews: reviews, orders: orders, products: products}
}

func (s *ReviewService) Create(ctx context.Context, customerID primitive.ObjectID, req *models.CreateReviewRequest) (*models.Review, error) {
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid product id", ErrInvalidInput)
	}
	orderID, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id", ErrInvalidInput)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	if len(req.Images) > models.MaxReviewImages {
		return nil, fmt.Errorf("%w: at most %d images allowed", ErrInvalidInput, models.MaxReviewImages)
	}

	order, err := s.orders.OrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return nil, fmt.Errorf("%w: order", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order.CustomerID != customerID {
		return nil, fmt.Errorf("%w: order belongs to another customer", ErrForbidden)
	}
	if order.Status != models.OrderStatusDelivered {
		return nil, fmt.Errorf("%w: reviews are allowed only after delivery", ErrInvalidInput)
	}
	if !order.ContainsProduct(productID) {
		return nil, fmt.Errorf("%w: product is not part of this order", ErrInvalidInput)
	}

	exists, err := s.reviews.ReviewExists(ctx, productID, orderID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing review: %w", err)
	}
	if exists {
		return nil, ErrDuplicateReview
	}

	review := &models.Review{
		ProductID:          productID,
		CustomerID:         customerID,
		OrderID:            orderID,
		Rating:             req.Rating,
		Title:              req.Title,
		Comment:            req.Comment,
		Images:             req.Images,
		IsVerifiedPurchase: true,
		Status:             models.ReviewStatusApproved,
	}

	created, err := s.reviews.CreateReview(ctx, review)
	if err != nil {
		// The unique index closes the race between the existence check and
		// the insert.
		if errors.Is(err, database.ErrDuplicateKey) {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}
	return created, nil
}

// ListByProduct returns one page of approved reviews plus the 1-5 star
// histogram for the product.
func (s *ReviewService) ListByProduct(ctx context.Context, productID primitive.ObjectID, page, limit int64) (*models.PagedReviews, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultReviewPageSize
	}

	reviews, total, err := s.reviews.ReviewsByProduct(ctx, productID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	histogram, err := s.reviews.ProductRatingHistogram(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating histogram: %w", err)
	}

	return &models.PagedReviews{
		Reviews:   reviews,
		Total:     total,
		Page:      page,
		Limit:     limit,
		Histogram: histogram,
	}, nil
}

func (s *ReviewService) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Review, error) {
	reviews, err := s.reviews.ReviewsByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer reviews: %w", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// Update modifies a review; only the owning customer or an admin may do so.
func (s *ReviewService) Update(ctx context.Context, id, callerID primitive.ObjectID, callerRole models.Role, req *models.UpdateReviewRequest) (*models.Review, error) {
	review, err := s.loadOwned(ctx, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	if req.Images != nil && len(*req.Images) > models.MaxReviewImages {
		return nil, fmt.Errorf("%w: at most %d images allowed", ErrInvalidInput, models.MaxReviewImages)
	}

	updated, err := s.reviews.UpdateReview(ctx, review.ID, req)
	if err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return nil, fmt.Errorf("%w: review", ErrNotFound)
		}
		return nil, err
	}
	return updated, nil
}

func (s *ReviewService) Delete(ctx context.Context, id, callerID primitive.ObjectID, callerRole models.Role) error {
	if _, err := s.loadOwned(ctx, id, callerID, callerRole); err != nil {
		return err
	}
	if err := s.reviews.DeleteReview(ctx, id); err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return fmt.Errorf("%w: review", ErrNotFound)
		}
		return err
	}
	return nil
}

// MarkHelpful increments helpful_count by exactly one. The store uses an
// atomic increment, so concurrent calls each count.
func (s *ReviewService) MarkHelpful(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	review, err := s.reviews.IncrementHelpful(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return nil, fmt.Errorf("%w: review", ErrNotFound)
		}
		return nil, err
	}
	return review, nil
}

// RespondAsVendor attaches a vendor response; the responder must be the
// vendor designated on the reviewed product.
func (s *ReviewService) RespondAsVendor(ctx context.Context, id, responderID primitive.ObjectID, comment string) (*models.Review, error) {
	review, err := s.reviews.ReviewByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return nil, fmt.Errorf("%w: review", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load review: %w", err)
	}

	product, err := s.products.ProductByID(ctx, review.ProductID)
	if err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return nil, fmt.Errorf("%w: product", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product.VendorID != responderID {
		return nil, fmt.Errorf("%w: only the product's vendor may respond", ErrForbidden)
	}

	return s.reviews.SetVendorResponse(ctx, id, models.VendorResponse{
		Comment:     comment,
		ResponderID: responderID,
		RespondedAt: time.Now().UTC(),
	})
}

func (s *ReviewService) loadOwned(ctx context.Context, id, callerID primitive.ObjectID, callerRole models.Role) (*models.Review, error) {
	review, err := s.reviews.ReviewByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return nil, fmt.Errorf("%w: review", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	if review.CustomerID != callerID && callerRole != models.RoleAdmin {
		return nil, fmt.Errorf("%w: not the review owner", ErrForbidden)
	}
	return review, nil
}
