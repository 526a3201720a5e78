package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace-backend/internal/models"
)

type SearchProvider interface {
	AdvancedSearch(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error)
	Suggestions(ctx context.Context, text string, limit int64) ([]models.ProductSuggestion, error)
	FilterOptions(ctx context.Context, q models.SearchQuery) (*models.FilterOptions, error)
	PopularSearches(ctx context.Context) ([]models.PopularCategory, error)
}

type SearchHandler struct {
	search SearchProvider
	*Responder
}

func NewSearchHandler(search SearchProvider, responder *Responder) *SearchHandler {
	return &SearchHandler{search: search, Responder: responder}
}

func (h *SearchHandler) Search(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.search.AdvancedSearch(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

func (h *SearchHandler) Suggestions(c *gin.Context) {
	suggestions, err := h.search.Suggestions(c.Request.Context(), c.Query("q"), queryInt(c, "limit", 0))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, suggestions)
}

func (h *SearchHandler) FilterOptions(c *gin.Context) {
	// The facet base predicate takes only the category and free-text parts
	// of the search query.
	q := models.SearchQuery{Text: c.Query("q")}
	if raw := c.Query("category"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			h.BadRequest(c, "invalid category id")
			return
		}
		q.CategoryID = &id
	}

	opts, err := h.search.FilterOptions(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, opts)
}

func (h *SearchHandler) PopularSearches(c *gin.Context) {
	popular, err := h.search.PopularSearches(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, popular)
}

func (h *SearchHandler) parseQuery(c *gin.Context) (models.SearchQuery, error) {
	q := models.SearchQuery{
		Text:  c.Query("q"),
		Sort:  models.SortOrder(c.DefaultQuery("sort", string(models.SortRelevance))),
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 0),
	}

	if raw := c.Query("category"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return q, errInvalidQuery("invalid category id")
		}
		q.CategoryID = &id
	}

	// Brands arrive as one or many: ?brand=a&brand=b or ?brand=a,b.
	for _, raw := range c.QueryArray("brand") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := primitive.ObjectIDFromHex(part)
			if err != nil {
				return q, errInvalidQuery("invalid brand id")
			}
			q.BrandIDs = append(q.BrandIDs, id)
		}
	}

	var err error
	if q.MinPrice, err = queryFloat(c, "minPrice"); err != nil {
		return q, errInvalidQuery("minPrice must be a number")
	}
	if q.MaxPrice, err = queryFloat(c, "maxPrice"); err != nil {
		return q, errInvalidQuery("maxPrice must be a number")
	}
	if q.MinRating, err = queryFloat(c, "minRating"); err != nil {
		return q, errInvalidQuery("minRating must be a number")
	}

	if raw := c.Query("isPrime"); raw != "" {
		isPrime := raw == "true"
		q.IsPrime = &isPrime
	}

	return q, nil
}

type errInvalidQuery string

func (e errInvalidQuery) Error() string { return string(e) }

func queryFloat(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
