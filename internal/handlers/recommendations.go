package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
)

const defaultRecommendations = 10

type RecommendationProvider interface {
	Personalized(ctx context.Context, customerID primitive.ObjectID, limit int64) ([]models.RatedProduct, error)
	Similar(ctx context.Context, productID primitive.ObjectID, limit int64) ([]models.RatedProduct, error)
	Trending(ctx context.Context, limit int64) ([]models.RatedProduct, error)
	TopRated(ctx context.Context, limit int64) ([]models.RatedProduct, error)
	FrequentlyBoughtTogether(ctx context.Context, productID primitive.ObjectID, limit int64) ([]models.RatedProduct, error)
	Homepage(ctx context.Context, customerID *primitive.ObjectID) (*services.HomepageSections, error)
}

type RecommendationsHandler struct {
	recommendations RecommendationProvider
	*Responder
}

func NewRecommendationsHandler(recommendations RecommendationProvider, responder *Responder) *RecommendationsHandler {
	return &RecommendationsHandler{recommendations: recommendations, Responder: responder}
}

func (h *RecommendationsHandler) Trending(c *gin.Context) {
	products, err := h.recommendations.Trending(c.Request.Context(), h.limit(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, products)
}

func (h *RecommendationsHandler) TopRated(c *gin.Context) {
	products, err := h.recommendations.TopRated(c.Request.Context(), h.limit(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, products)
}

func (h *RecommendationsHandler) Similar(c *gin.Context) {
	productID, err := objectIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid product id")
		return
	}

	products, err := h.recommendations.Similar(c.Request.Context(), productID, h.limit(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, products)
}

func (h *RecommendationsHandler) FrequentlyBought(c *gin.Context) {
	productID, err := objectIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid product id")
		return
	}

	products, err := h.recommendations.FrequentlyBoughtTogether(c.Request.Context(), productID, h.limit(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, products)
}

func (h *RecommendationsHandler) Personalized(c *gin.Context) {
	customerID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "authentication required"})
		return
	}

	products, err := h.recommendations.Personalized(c.Request.Context(), customerID, h.limit(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, products)
}

// Homepage personalizes the third section when the optional auth middleware
// resolved an identity.
func (h *RecommendationsHandler) Homepage(c *gin.Context) {
	var customerID *primitive.ObjectID
	if id, ok := callerID(c); ok {
		customerID = &id
	}

	sections, err := h.recommendations.Homepage(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sections)
}

func (h *RecommendationsHandler) limit(c *gin.Context) int64 {
	limit := queryInt(c, "limit", defaultRecommendations)
	if limit < 1 || limit > 50 {
		limit = defaultRecommendations
	}
	return limit
}
