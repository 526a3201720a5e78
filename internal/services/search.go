package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace-backend/internal/models"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100

	minSuggestionQueryLen = 2
	defaultSuggestions    = 10
	maxSuggestions        = 25

	popularCategoryCount = 10
)

type SearchProductStore interface {
	SearchProducts(ctx context.Context, q models.SearchQuery) ([]models.Product, int64, error)
	SuggestProducts(ctx context.Context, text string, limit int64) ([]models.ProductSuggestion, error)
	BrandFacets(ctx context.Context, q models.SearchQuery) ([]models.BrandFacet, error)
	PriceRange(ctx context.Context, q models.SearchQuery) (float64, float64, error)
	TopCategoriesByProductCount(ctx context.Context, limit int64) ([]models.PopularCategory, error)
}

type SearchRatingStore interface {
	RatingSummaries(ctx context.Context, productIDs []primitive.ObjectID) (map[primitive.ObjectID]models.RatingSummary, error)
	RatingHistogram(ctx context.Context) ([6]int64, error)
}

// SearchService builds dynamic filters over the catalog and enriches results
// with on-the-fly rating aggregates. Failures degrade to empty results when
// the fail-soft policy is on.
type SearchService struct {
	products SearchProductStore
	ratings  SearchRatingStore
	logger   zerolog.Logger
	failSoft bool
}

func NewSearchService(products SearchProductStore, ratings SearchRatingStore, logger zerolog.Logger, failSoft bool) *SearchService {
	return &SearchService{products: products, ratings: ratings, logger: logger, failSoft: failSoft}
}

// AdvancedSearch runs the conjunctive catalog query, enriches the page with
// rating aggregates, then applies rating-based filtering and ordering.
//
// Known limitation, kept intentionally: MinRating is applied to the fetched
// page only, not pushed into the primary query. When set, Total becomes the
// post-filter in-page count and the result is flagged approximate.
func (s *SearchService) AdvancedSearch(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultSearchLimit
	}
	if q.Limit > maxSearchLimit {
		q.Limit = maxSearchLimit
	}

	products, total, err := s.products.SearchProducts(ctx, q)
	if err != nil {
		return s.softenSearch(q, fmt.Errorf("failed to search products: %w", err))
	}

	rated, err := s.enrich(ctx, products)
	if err != nil {
		return s.softenSearch(q, err)
	}

	result := &models.SearchResult{
		Products: rated,
		Total:    total,
		Page:     q.Page,
		Limit:    q.Limit,
	}

	if q.MinRating != nil {
		filtered := result.Products[:0]
		for _, p := range result.Products {
			if p.AverageRating >= *q.MinRating {
				filtered = append(filtered, p)
			}
		}
		result.Products = filtered
		result.Total = int64(len(filtered))
		result.ApproximateTotal = true
	}

	if q.Sort == models.SortRatingDesc {
		sort.SliceStable(result.Products, func(i, j int) bool {
			if result.Products[i].AverageRating != result.Products[j].AverageRating {
				return result.Products[i].AverageRating > result.Products[j].AverageRating
			}
			return result.Products[i].ReviewCount > result.Products[j].ReviewCount
		})
	}

	return result, nil
}

// Suggestions matches the query against product names. Queries shorter than
// two characters return nothing.
func (s *SearchService) Suggestions(ctx context.Context, text string, limit int64) ([]models.ProductSuggestion, error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minSuggestionQueryLen {
		return []models.ProductSuggestion{}, nil
	}
	if limit <= 0 {
		limit = defaultSuggestions
	}
	if limit > maxSuggestions {
		limit = maxSuggestions
	}

	suggestions, err := s.products.SuggestProducts(ctx, text, limit)
	if err != nil {
		if s.failSoft {
			s.logger.Warn().Err(err).Msg("suggestions degraded to empty result")
			return []models.ProductSuggestion{}, nil
		}
		return nil, fmt.Errorf("failed to load suggestions: %w", err)
	}
	if suggestions == nil {
		suggestions = []models.ProductSuggestion{}
	}
	return suggestions, nil
}

// FilterOptions returns the facets for the given base predicate: distinct
// brands and the price range are scoped to the matched set, while the rating
// histogram covers all approved reviews regardless of the filter. That
// corpus-wide histogram is a known inconsistency preserved for
// compatibility.
func (s *SearchService) FilterOptions(ctx context.Context, q models.SearchQuery) (*models.FilterOptions, error) {
	brands, err := s.products.BrandFacets(ctx, q)
	if err != nil {
		return s.softenFilters(fmt.Errorf("failed to load brand facets: %w", err))
	}
	if brands == nil {
		brands = []models.BrandFacet{}
	}

	minPrice, maxPrice, err := s.products.PriceRange(ctx, q)
	if err != nil {
		return s.softenFilters(fmt.Errorf("failed to load price range: %w", err))
	}

	histogram, err := s.ratings.RatingHistogram(ctx)
	if err != nil {
		return s.softenFilters(fmt.Errorf("failed to load rating histogram: %w", err))
	}

	opts := &models.FilterOptions{
		Brands:          brands,
		MinPrice:        minPrice,
		MaxPrice:        maxPrice,
		RatingHistogram: make(map[int]int64, len(histogram)),
	}
	for rating, count := range histogram {
		opts.RatingHistogram[rating] = count
	}
	return opts, nil
}

// PopularSearches returns the top categories by active-product count as a
// proxy for search popularity; no real search-term analytics exist.
func (s *SearchService) PopularSearches(ctx context.Context) ([]models.PopularCategory, error) {
	categories, err := s.products.TopCategoriesByProductCount(ctx, popularCategoryCount)
	if err != nil {
		if s.failSoft {
			s.logger.Warn().Err(err).Msg("popular searches degraded to empty result")
			return []models.PopularCategory{}, nil
		}
		return nil, fmt.Errorf("failed to load popular categories: %w", err)
	}
	if categories == nil {
		categories = []models.PopularCategory{}
	}
	return categories, nil
}

func (s *SearchService) enrich(ctx context.Context, products []models.Product) ([]models.RatedProduct, error) {
	if len(products) == 0 {
		return []models.RatedProduct{}, nil
	}

	ids := make([]primitive.ObjectID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	summaries, err := s.ratings.RatingSummaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating summaries: %w", err)
	}

	rated := make([]models.RatedProduct, len(products))
	for i, p := range products {
		rated[i] = models.RatedProduct{Product: p}
		if summary, ok := summaries[p.ID]; ok {
			rated[i].AverageRating = round2(summary.AverageRating)
			rated[i].ReviewCount = summary.ReviewCount
		}
	}
	return rated, nil
}

func (s *SearchService) softenSearch(q models.SearchQuery, err error) (*models.SearchResult, error) {
	if s.failSoft {
		s.logger.Warn().Err(err).Msg("search degraded to empty result")
		return &models.SearchResult{Products: []models.RatedProduct{}, Page: q.Page, Limit: q.Limit}, nil
	}
	return nil, err
}

func (s *SearchService) softenFilters(err error) (*models.FilterOptions, error) {
	if s.failSoft {
		s.logger.Warn().Err(err).Msg("filter options degraded to empty result")
		return &models.FilterOptions{
			Brands:          []models.BrandFacet{},
			RatingHistogram: map[int]int64{},
		}, nil
	}
	return nil, err
}
