package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace-backend/internal/database"
	"marketplace-backend/internal/handlers"
	"marketplace-backend/internal/middleware"
	"marketplace-backend/internal/models"
)

type brandStoreStub struct {
	brands map[primitive.ObjectID]*models.Brand
}

func (s *brandStoreStub) ListBrands(_ context.Context, includeInactive bool) ([]models.Brand, error) {
	var out []models.Brand
	for _, b := range s.brands {
		if !includeInactive && !b.IsActive {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (s *brandStoreStub) BrandByID(_ context.Context, id primitive.ObjectID) (*models.Brand, error) {
	b, ok := s.brands[id]
	if !ok {
		return nil, database.ErrNoDocument
	}
	copied := *b
	return &copied, nil
}

func (s *brandStoreStub) CreateBrand(_ context.Context, brand *models.Brand) (*models.Brand, error) {
	brand.ID = primitive.NewObjectID()
	brand.IsActive = true
	s.brands[brand.ID] = brand
	return brand, nil
}

func (s *brandStoreStub) UpdateBrand(_ context.Context, id primitive.ObjectID, req *models.UpdateBrandRequest) (*models.Brand, error) {
	b, ok := s.brands[id]
	if !ok {
		return nil, database.ErrNoDocument
	}
	if req.Name != nil {
		b.Name = *req.Name
	}
	copied := *b
	return &copied, nil
}

func (s *brandStoreStub) SoftDeleteBrand(_ context.Context, id primitive.ObjectID) error {
	b, ok := s.brands[id]
	if !ok {
		return database.ErrNoDocument
	}
	b.IsActive = false
	return nil
}

func seededBrandStore(brands ...*models.Brand) *brandStoreStub {
	store := &brandStoreStub{brands: map[primitive.ObjectID]*models.Brand{}}
	for _, b := range brands {
		store.brands[b.ID] = b
	}
	return store
}

func brandsRouter(store handlers.BrandStore, role models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewBrandsHandler(store, handlers.NewResponder(zerolog.Nop(), false))

	router := gin.New()
	if role != "" {
		router.Use(func(c *gin.Context) { c.Set(middleware.UserRoleKey, string(role)) })
	}
	router.GET("/brands", handler.List)
	router.GET("/brands/:id", handler.Get)
	router.DELETE("/brands/:id", handler.Delete)
	return router
}

func decodeBrandList(t *testing.T, w *httptest.ResponseRecorder) []models.Brand {
	t.Helper()
	var body struct {
		Success bool           `json:"success"`
		Data    []models.Brand `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func TestDeleteBrand_SoftDeleteKeepsDocumentRetrievable(t *testing.T) {
	brand := &models.Brand{ID: primitive.NewObjectID(), Name: "Acme", IsActive: true}
	store := seededBrandStore(brand)
	router := brandsRouter(store, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/brands/"+brand.ID.Hex(), nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deactivated")

	// Still retrievable by id, now inactive.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/brands/"+brand.ID.Hex(), nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_active":false`)

	// Excluded from the default listing.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/brands", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBrandList(t, w))
}

func TestDeleteBrand_MissingBrandIsNotFound(t *testing.T) {
	router := brandsRouter(seededBrandStore(), "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/brands/"+primitive.NewObjectID().Hex(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBrands_IncludeInactiveIsAdminOnly(t *testing.T) {
	active := &models.Brand{ID: primitive.NewObjectID(), Name: "Up", IsActive: true}
	inactive := &models.Brand{ID: primitive.NewObjectID(), Name: "Gone", IsActive: false}
	store := seededBrandStore(active, inactive)

	// A customer asking for inactive brands still gets only active ones.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/brands?includeInactive=true", nil)
	brandsRouter(store, models.RoleCustomer).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	brands := decodeBrandList(t, w)
	require.Len(t, brands, 1)
	assert.Equal(t, "Up", brands[0].Name)

	// An admin sees both.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/brands?includeInactive=true", nil)
	brandsRouter(store, models.RoleAdmin).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBrandList(t, w), 2)
}
