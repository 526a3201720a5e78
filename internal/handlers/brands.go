package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace-backend/internal/database"
	"marketplace-backend/internal/models"
)

// BrandStore is what this handler needs from the brand collection.
type BrandStore interface {
	ListBrands(ctx context.Context, includeInactive bool) ([]models.Brand, error)
	BrandByID(ctx context.Context, id primitive.ObjectID) (*models.Brand, error)
	CreateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error)
	UpdateBrand(ctx context.Context, id primitive.ObjectID, req *models.UpdateBrandRequest) (*models.Brand, error)
	SoftDeleteBrand(ctx context.Context, id primitive.ObjectID) error
}

type BrandsHandler struct {
	brands BrandStore
	*Responder
}

func NewBrandsHandler(brands BrandStore, responder *Responder) *BrandsHandler {
	return &BrandsHandler{brands: brands, Responder: responder}
}

func (h *BrandsHandler) List(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true" && callerRole(c) == models.RoleAdmin

	brands, err := h.brands.ListBrands(c.Request.Context(), includeInactive)
	if err != nil {
		h.Error(c, err)
		return
	}
	if brands == nil {
		brands = []models.Brand{}
	}
	h.OK(c, brands)
}

func (h *BrandsHandler) Get(c *gin.Context) {
	id, err := objectIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid brand id")
		return
	}

	brand, err := h.brands.BrandByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, brand)
}

func (h *BrandsHandler) Create(c *gin.Context) {
	var req models.CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid brand payload: "+err.Error())
		return
	}

	brand, err := h.brands.CreateBrand(c.Request.Context(), &models.Brand{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			h.BadRequest(c, "a brand with this name already exists")
			return
		}
		h.Error(c, err)
		return
	}
	h.Created(c, brand)
}

func (h *BrandsHandler) Update(c *gin.Context) {
	id, err := objectIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid brand id")
		return
	}

	var req models.UpdateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid brand payload: "+err.Error())
		return
	}

	brand, err := h.brands.UpdateBrand(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			h.BadRequest(c, "a brand with this name already exists")
			return
		}
		h.Error(c, err)
		return
	}
	h.OK(c, brand)
}

// Delete soft-deletes: the brand stays retrievable by id with
// is_active=false and drops out of default listings.
func (h *BrandsHandler) Delete(c *gin.Context) {
	id, err := objectIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid brand id")
		return
	}

	if err := h.brands.SoftDeleteBrand(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"message": "brand deactivated"})
}
