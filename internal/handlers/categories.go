package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace-backend/internal/database"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
)

type CategoriesHandler struct {
	db *database.Client
	*Responder
}

func NewCategoriesHandler(db *database.Client, responder *Responder) *CategoriesHandler {
	return &CategoriesHandler{db: db, Responder: responder}
}

func (h *CategoriesHandler) List(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true" && callerRole(c) == models.RoleAdmin

	categories, err := h.db.ListCategories(c.Request.Context(), includeInactive)
	if err != nil {
		h.Error(c, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	h.OK(c, categories)
}

// Tree returns the nested category forest built from the flat listing.
func (h *CategoriesHandler) Tree(c *gin.Context) {
	categories, err := h.db.ListCategories(c.Request.Context(), false)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, services.BuildCategoryTree(categories))
}

func (h *CategoriesHandler) Get(c *gin.Context) {
	id, err := objectIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid category id")
		return
	}

	category, err := h.db.CategoryByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, category)
}

func (h *CategoriesHandler) Create(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid category payload: "+err.Error())
		return
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
	}
	if req.ParentID != "" {
		parentID, err := primitive.ObjectIDFromHex(req.ParentID)
		if err != nil {
			h.BadRequest(c, "invalid parent category id")
			return
		}
		category.ParentID = &parentID
	}

	created, err := h.db.CreateCategory(c.Request.Context(), category)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, created)
}

func (h *CategoriesHandler) Update(c *gin.Context) {
	id, err := objectIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid category id")
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid category payload: "+err.Error())
		return
	}

	category, err := h.db.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, category)
}

func (h *CategoriesHandler) Delete(c *gin.Context) {
	id, err := objectIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid category id")
		return
	}

	if err := h.db.SoftDeleteCategory(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"message": "category deactivated"})
}
