package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"marketplace-backend/internal/models"
)

const (
	personalizedOrderWindow = 10
	trendingLookback        = 30 * 24 * time.Hour
	topRatedMinReviews      = 3
	homepageSectionSize     = 8
)

type RecommendationProductStore interface {
	ProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	NewestActive(ctx context.Context, limit int64) ([]models.Product, error)
	ActiveMatchingTaxonomy(ctx context.Context, categoryIDs, brandIDs, exclude []primitive.ObjectID, limit int64) ([]models.Product, error)
}

type RecommendationOrderStore interface {
	RecentOrdersForCustomer(ctx context.Context, customerID primitive.ObjectID, limit int64) ([]models.Order, error)
	ProductOrderStats(ctx context.Context, since time.Time, limit int64) ([]models.ProductOrderStat, error)
	DeliveredOrdersContaining(ctx context.Context, productID primitive.ObjectID) ([]models.Order, error)
}

type RecommendationRatingStore interface {
	RatingSummaries(ctx context.Context, productIDs []primitive.ObjectID) (map[primitive.ObjectID]models.RatingSummary, error)
	TopRatedStats(ctx context.Context, minReviews int, limit int64) ([]models.ProductRatingStat, error)
}

// HomepageSections are the three labeled lists of the homepage composite.
type HomepageSections struct {
	Trending []models.RatedProduct `json:"trending"`
	TopRated []models.RatedProduct `json:"top_rated"`
	ForYou   []models.RatedProduct `json:"for_you"`
}

// RecommendationService derives product lists from order history, the
// catalog and review aggregates. All methods are read-only and, when the
// fail-soft policy is on (the default), degrade to an empty list instead of
// returning a store error: recommendations are non-critical.
type RecommendationService struct {
	products RecommendationProductStore
	orders   RecommendationOrderStore
	ratings  RecommendationRatingStore
	logger   zerolog.Logger
	failSoft bool
	now      func() time.Time
}

func NewRecommendationService(
	products RecommendationProductStore,
	orders RecommendationOrderStore,
	ratings RecommendationRatingStore,
	logger zerolog.Logger,
	failSoft bool,
) *RecommendationService {
	return &RecommendationService{
		products: products,
		orders:   orders,
		ratings:  ratings,
		logger:   logger,
		failSoft: failSoft,
		now:      time.Now,
	}
}

func (s *RecommendationService) soften(op string, err error) ([]models.RatedProduct, error) {
	if s.failSoft {
		s.logger.Warn().Err(err).Str("op", op).Msg("recommendation degraded to empty result")
		return []models.RatedProduct{}, nil
	}
	return nil, err
}

// Personalized recommends active products sharing a category or brand with
// the customer's recent purchases, excluding anything already bought,
// newest first.
func (s *RecommendationService) Personalized(ctx context.Context, customerID primitive.ObjectID, limit int64) ([]models.RatedProduct, error) {
	orders, err := s.orders.RecentOrdersForCustomer(ctx, customerID, personalizedOrderWindow)
	if err != nil {
		return s.soften("personalized", fmt.Errorf("failed to load order history: %w", err))
	}

	purchasedSet := make(map[primitive.ObjectID]struct{})
	var purchased []primitive.ObjectID
	for _, order := range orders {
		for _, item := range order.Items {
			if _, ok := purchasedSet[item.ProductID]; ok {
				continue
			}
			purchasedSet[item.ProductID] = struct{}{}
			purchased = append(purchased, item.ProductID)
		}
	}
	if len(purchased) == 0 {
		return s.Featured(ctx, limit)
	}

	bought, err := s.products.ProductsByIDs(ctx, purchased)
	if err != nil {
		return s.soften("personalized", fmt.Errorf("failed to load purchased products: %w", err))
	}

	categories := dedupeIDs(bought, func(p models.Product) primitive.ObjectID { return p.CategoryID })
	brands := dedupeIDs(bought, func(p models.Product) primitive.ObjectID { return p.BrandID })

	candidates, err := s.products.ActiveMatchingTaxonomy(ctx, categories, brands, purchased, limit)
	if err != nil {
		return s.soften("personalized", fmt.Errorf("failed to load candidates: %w", err))
	}
	return s.enrich(ctx, "personalized", candidates)
}

// Similar returns other active products sharing the product's category or
// brand, newest first.
func (s *RecommendationService) Similar(ctx context.Context, productID primitive.ObjectID, limit int64) ([]models.RatedProduct, error) {
	product, err := s.products.ProductByID(ctx, productID)
	if err != nil {
		return s.soften("similar", fmt.Errorf("failed to load product: %w", err))
	}

	candidates, err := s.products.ActiveMatchingTaxonomy(ctx,
		[]primitive.ObjectID{product.CategoryID},
		[]primitive.ObjectID{product.BrandID},
		[]primitive.ObjectID{product.ID},
		limit,
	)
	if err != nil {
		return s.soften("similar", fmt.Errorf("failed to load similar products: %w", err))
	}
	return s.enrich(ctx, "similar", candidates)
}

// Trending ranks products by order activity over the last 30 days, skipping
// cancelled and rejected orders. Falls back to Featured when the window has
// no orders.
func (s *RecommendationService) Trending(ctx context.Context, limit int64) ([]models.RatedProduct, error) {
	stats, err := s.orders.ProductOrderStats(ctx, s.now().Add(-trendingLookback), limit)
	if err != nil {
		return s.soften("trending", fmt.Errorf("failed to load order stats: %w", err))
	}
	if len(stats) == 0 {
		return s.Featured(ctx, limit)
	}

	ids := make([]primitive.ObjectID, len(stats))
	for i, stat := range stats {
		ids[i] = stat.ProductID
	}

	products, err := s.products.ProductsByIDs(ctx, ids)
	if err != nil {
		return s.soften("trending", fmt.Errorf("failed to load trending products: %w", err))
	}
	return s.enrich(ctx, "trending", products)
}

// TopRated ranks products by approved reviews, requiring at least three of
// them. Falls back to Featured when nothing qualifies.
func (s *RecommendationService) TopRated(ctx context.Context, limit int64) ([]models.RatedProduct, error) {
	stats, err := s.ratings.TopRatedStats(ctx, topRatedMinReviews, limit)
	if err != nil {
		return s.soften("top-rated", fmt.Errorf("failed to load rating stats: %w", err))
	}
	if len(stats) == 0 {
		return s.Featured(ctx, limit)
	}

	ids := make([]primitive.ObjectID, len(stats))
	byID := make(map[primitive.ObjectID]models.ProductRatingStat, len(stats))
	for i, stat := range stats {
		ids[i] = stat.ProductID
		byID[stat.ProductID] = stat
	}

	products, err := s.products.ProductsByIDs(ctx, ids)
	if err != nil {
		return s.soften("top-rated", fmt.Errorf("failed to load top rated products: %w", err))
	}

	rated := make([]models.RatedProduct, len(products))
	for i, p := range products {
		stat := byID[p.ID]
		rated[i] = models.RatedProduct{
			Product:       p,
			AverageRating: round2(stat.AverageRating),
			ReviewCount:   int(stat.ReviewCount),
		}
	}
	return rated, nil
}

// Featured is the shared fallback: newest active products.
func (s *RecommendationService) Featured(ctx context.Context, limit int64) ([]models.RatedProduct, error) {
	products, err := s.products.NewestActive(ctx, limit)
	if err != nil {
		return s.soften("featured", fmt.Errorf("failed to load featured products: %w", err))
	}
	return s.enrich(ctx, "featured", products)
}

// FrequentlyBoughtTogether counts co-occurring products across DELIVERED
// orders containing the target, most frequent first. Falls back to Similar
// when no co-purchases exist.
func (s *RecommendationService) FrequentlyBoughtTogether(ctx context.Context, productID primitive.ObjectID, limit int64) ([]models.RatedProduct, error) {
	orders, err := s.orders.DeliveredOrdersContaining(ctx, productID)
	if err != nil {
		return s.soften("frequently-bought", fmt.Errorf("failed to load delivered orders: %w", err))
	}

	counts := make(map[primitive.ObjectID]int)
	for _, order := range orders {
		for _, item := range order.Items {
			if item.ProductID == productID {
				continue
			}
			counts[item.ProductID]++
		}
	}
	if len(counts) == 0 {
		return s.Similar(ctx, productID, limit)
	}

	ids := make([]primitive.ObjectID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i].Hex() < ids[j].Hex()
	})
	if int64(len(ids)) > limit {
		ids = ids[:limit]
	}

	products, err := s.products.ProductsByIDs(ctx, ids)
	if err != nil {
		return s.soften("frequently-bought", fmt.Errorf("failed to load co-purchased products: %w", err))
	}
	return s.enrich(ctx, "frequently-bought", products)
}

// Homepage runs the three sections concurrently and joins them. An
// authenticated customer gets a personalized third section, anonymous
// visitors get Featured.
func (s *RecommendationService) Homepage(ctx context.Context, customerID *primitive.ObjectID) (*HomepageSections, error) {
	sections := &HomepageSections{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sections.Trending, err = s.Trending(gctx, homepageSectionSize)
		return err
	})
	g.Go(func() error {
		var err error
		sections.TopRated, err = s.TopRated(gctx, homepageSectionSize)
		return err
	})
	g.Go(func() error {
		var err error
		if customerID != nil {
			sections.ForYou, err = s.Personalized(gctx, *customerID, homepageSectionSize)
		} else {
			sections.ForYou, err = s.Featured(gctx, homepageSectionSize)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sections, nil
}

// enrich attaches approved-review aggregates to each product without
// touching stored documents. Products with no approved reviews carry zero
// values.
func (s *RecommendationService) enrich(ctx context.Context, op string, products []models.Product) ([]models.RatedProduct, error) {
	if len(products) == 0 {
		return []models.RatedProduct{}, nil
	}

	ids := make([]primitive.ObjectID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	summaries, err := s.ratings.RatingSummaries(ctx, ids)
	if err != nil {
		return s.soften(op, fmt.Errorf("failed to load rating summaries: %w", err))
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

func dedupeIDs(products []models.Product, key func(models.Product) primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(products))
	var ids []primitive.ObjectID
	for _, p := range products {
		id := key(p)
		if id.IsZero() {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
