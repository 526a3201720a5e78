package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace-backend/internal/models"
)

type ReviewProvider interface {
	Create(ctx context.Context, customerID primitive.ObjectID, req *models.CreateReviewRequest) (*models.Review, error)
	ListByProduct(ctx context.Context, productID primitive.ObjectID, page, limit int64) (*models.PagedReviews, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Review, error)
	Update(ctx context.Context, id, callerID primitive.ObjectID, callerRole models.Role, req *models.UpdateReviewRequest) (*models.Review, error)
	Delete(ctx context.Context, id, callerID primitive.ObjectID, callerRole models.Role) error
	MarkHelpful(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	RespondAsVendor(ctx context.Context, id, responderID primitive.ObjectID, comment string) (*models.Review, error)
}

type ReviewsHandler struct {
	reviews ReviewProvider
	*Responder
}

func NewReviewsHandler(reviews ReviewProvider, responder *Responder) *ReviewsHandler {
	return &ReviewsHandler{reviews: reviews, Responder: responder}
}

func (h *ReviewsHandler) Create(c *gin.Context) {
	customerID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "authentication required"})
		return
	}

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid review payload: "+err.Error())
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), customerID, &req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, review)
}

func (h *ReviewsHandler) ListByProduct(c *gin.Context) {
	productID, err := objectIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid product id")
		return
	}

	page, err := h.reviews.ListByProduct(c.Request.Context(), productID, queryInt(c, "page", 1), queryInt(c, "limit", 0))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, page)
}

func (h *ReviewsHandler) Mine(c *gin.Context) {
	customerID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "authentication required"})
		return
	}

	reviews, err := h.reviews.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, reviews)
}

func (h *ReviewsHandler) Update(c *gin.Context) {
	id, err := objectIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid review id")
		return
	}
	customerID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "authentication required"})
		return
	}

	var req models.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid review payload: "+err.Error())
		return
	}

	review, err := h.reviews.Update(c.Request.Context(), id, customerID, callerRole(c), &req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, review)
}

func (h *ReviewsHandler) Delete(c *gin.Context) {
	id, err := objectIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid review id")
		return
	}
	customerID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "authentication required"})
		return
	}

	if err := h.reviews.Delete(c.Request.Context(), id, customerID, callerRole(c)); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"message": "review deleted"})
}

func (h *ReviewsHandler) MarkHelpful(c *gin.Context) {
	id, err := objectIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid review id")
		return
	}

	review, err := h.reviews.MarkHelpful(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, review)
}

func (h *ReviewsHandler) VendorResponse(c *gin.Context) {
	id, err := objectIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid review id")
		return
	}
	responderID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "authentication required"})
		return
	}

	var req models.VendorResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid response payload: "+err.Error())
		return
	}

	review, err := h.reviews.RespondAsVendor(c.Request.Context(), id, responderID, req.Comment)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, review)
}
