package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
)

type productStoreStub struct {
	byID   map[primitive.ObjectID]models.Product
	newest []models.Product

	taxonomyResult     []models.Product
	taxonomyCategories []primitive.ObjectID
	taxonomyBrands     []primitive.ObjectID
	taxonomyExclude    []primitive.ObjectID
}

func (s *productStoreStub) ProductByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, errors.New("product not found")
	}
	return &p, nil
}

func (s *productStoreStub) ProductsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (s *productStoreStub) NewestActive(_ context.Context, limit int64) ([]models.Product, error) {
	if int64(len(s.newest)) > limit {
		return s.newest[:limit], nil
	}
	return s.newest, nil
}

func (s *productStoreStub) ActiveMatchingTaxonomy(_ context.Context, categoryIDs, brandIDs, exclude []primitive.ObjectID, _ int64) ([]models.Product, error) {
	s.taxonomyCategories = categoryIDs
	s.taxonomyBrands = brandIDs
	s.taxonomyExclude = exclude
	return s.taxonomyResult, nil
}

type recOrderStoreStub struct {
	recent    []models.Order
	stats     []models.ProductOrderStat
	statsErr  error
	delivered []models.Order
}

func (s *recOrderStoreStub) RecentOrdersForCustomer(_ context.Context, _ primitive.ObjectID, _ int64) ([]models.Order, error) {
	return s.recent, nil
}

func (s *recOrderStoreStub) ProductOrderStats(_ context.Context, _ time.Time, _ int64) ([]models.ProductOrderStat, error) {
	return s.stats, s.statsErr
}

func (s *recOrderStoreStub) DeliveredOrdersContaining(_ context.Context, _ primitive.ObjectID) ([]models.Order, error) {
	return s.delivered, nil
}

type ratingStoreStub struct {
	summaries map[primitive.ObjectID]models.RatingSummary
	topStats  []models.ProductRatingStat
}

func (s *ratingStoreStub) RatingSummaries(_ context.Context, _ []primitive.ObjectID) (map[primitive.ObjectID]models.RatingSummary, error) {
	return s.summaries, nil
}

func (s *ratingStoreStub) TopRatedStats(_ context.Context, _ int, _ int64) ([]models.ProductRatingStat, error) {
	return s.topStats, nil
}

func newRecService(products *productStoreStub, orders *recOrderStoreStub, ratings *ratingStoreStub) *services.RecommendationService {
	if ratings == nil {
		ratings = &ratingStoreStub{}
	}
	return services.NewRecommendationService(products, orders, ratings, zerolog.Nop(), false)
}

func catalog(products ...models.Product) map[primitive.ObjectID]models.Product {
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID
}

func TestTrending_PreservesOrderStatRanking(t *testing.T) {
	p1 := models.Product{ID: primitive.NewObjectID(), Name: "hot"}
	p2 := models.Product{ID: primitive.NewObjectID(), Name: "warm"}
	products := &productStoreStub{byID: catalog(p1, p2)}
	orders := &recOrderStoreStub{stats: []models.ProductOrderStat{
		{ProductID: p1.ID, OrderCount: 9},
		{ProductID: p2.ID, OrderCount: 4},
	}}
	svc := newRecService(products, orders, nil)

	got, err := svc.Trending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "hot", got[0].Name)
	assert.Equal(t, "warm", got[1].Name)
}

func TestTrending_FallsBackToFeaturedWhenQuiet(t *testing.T) {
	newest := models.Product{ID: primitive.NewObjectID(), Name: "fresh"}
	products := &productStoreStub{newest: []models.Product{newest}}
	svc := newRecService(products, &recOrderStoreStub{}, nil)

	got, err := svc.Trending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Name)
}

func TestTrending_FailSoftSwallowsStoreErrors(t *testing.T) {
	orders := &recOrderStoreStub{statsErr: errors.New("connection reset")}
	svc := services.NewRecommendationService(&productStoreStub{}, orders, &ratingStoreStub{}, zerolog.Nop(), true)

	got, err := svc.Trending(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTrending_FailHardPropagatesStoreErrors(t *testing.T) {
	orders := &recOrderStoreStub{statsErr: errors.New("connection reset")}
	svc := newRecService(&productStoreStub{}, orders, nil)

	_, err := svc.Trending(context.Background(), 10)
	assert.Error(t, err)
}

func TestTopRated_BuildsRatedProductsFromStats(t *testing.T) {
	p1 := models.Product{ID: primitive.NewObjectID(), Name: "best"}
	products := &productStoreStub{byID: catalog(p1)}
	ratings := &ratingStoreStub{topStats: []models.ProductRatingStat{
		{ProductID: p1.ID, AverageRating: 4.666666, ReviewCount: 12},
	}}
	svc := newRecService(products, &recOrderStoreStub{}, ratings)

	got, err := svc.TopRated(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4.67, got[0].AverageRating)
	assert.Equal(t, 12, got[0].ReviewCount)
}

func TestFeatured_EnrichesWithZeroDefaults(t *testing.T) {
	reviewed := models.Product{ID: primitive.NewObjectID(), Name: "reviewed"}
	unreviewed := models.Product{ID: primitive.NewObjectID(), Name: "unreviewed"}
	products := &productStoreStub{newest: []models.Product{reviewed, unreviewed}}
	ratings := &ratingStoreStub{summaries: map[primitive.ObjectID]models.RatingSummary{
		reviewed.ID: {AverageRating: 3.912, ReviewCount: 2},
	}}
	svc := newRecService(products, &recOrderStoreStub{}, ratings)

	got, err := svc.Featured(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3.91, got[0].AverageRating)
	assert.Equal(t, 2, got[0].ReviewCount)
	assert.Zero(t, got[1].AverageRating)
	assert.Zero(t, got[1].ReviewCount)
}

func TestPersonalized_ExcludesPurchasedAndMatchesTaxonomy(t *testing.T) {
	category := primitive.NewObjectID()
	brand := primitive.NewObjectID()
	bought := models.Product{ID: primitive.NewObjectID(), CategoryID: category, BrandID: brand}
	candidate := models.Product{ID: primitive.NewObjectID(), Name: "suggested", CategoryID: category}

	products := &productStoreStub{
		byID:           catalog(bought),
		taxonomyResult: []models.Product{candidate},
	}
	orders := &recOrderStoreStub{recent: []models.Order{
		{Items: []models.OrderItem{{ProductID: bought.ID, Quantity: 1}}},
	}}
	svc := newRecService(products, orders, nil)

	got, err := svc.Personalized(context.Background(), primitive.NewObjectID(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "suggested", got[0].Name)

	assert.Equal(t, []primitive.ObjectID{category}, products.taxonomyCategories)
	assert.Equal(t, []primitive.ObjectID{brand}, products.taxonomyBrands)
	assert.Equal(t, []primitive.ObjectID{bought.ID}, products.taxonomyExclude)
}

func TestPersonalized_NoHistoryFallsBackToFeatured(t *testing.T) {
	newest := models.Product{ID: primitive.NewObjectID(), Name: "fresh"}
	products := &productStoreStub{newest: []models.Product{newest}}
	svc := newRecService(products, &recOrderStoreStub{}, nil)

	got, err := svc.Personalized(context.Background(), primitive.NewObjectID(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Name)
}

func TestFrequentlyBoughtTogether_RanksByCoOccurrence(t *testing.T) {
	target := primitive.NewObjectID()
	often := models.Product{ID: primitive.NewObjectID(), Name: "often"}
	once := models.Product{ID: primitive.NewObjectID(), Name: "once"}

	products := &productStoreStub{byID: catalog(often, once)}
	orders := &recOrderStoreStub{delivered: []models.Order{
		{Items: []models.OrderItem{{ProductID: target}, {ProductID: often.ID}, {ProductID: once.ID}}},
		{Items: []models.OrderItem{{ProductID: target}, {ProductID: often.ID}}},
	}}
	svc := newRecService(products, orders, nil)

	got, err := svc.FrequentlyBoughtTogether(context.Background(), target, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "often", got[0].Name)
	assert.Equal(t, "once", got[1].Name)
}

func TestFrequentlyBoughtTogether_NoCoPurchasesFallsBackToSimilar(t *testing.T) {
	target := models.Product{ID: primitive.NewObjectID(), CategoryID: primitive.NewObjectID()}
	similar := models.Product{ID: primitive.NewObjectID(), Name: "neighbor"}
	products := &productStoreStub{
		byID:           catalog(target),
		taxonomyResult: []models.Product{similar},
	}
	svc := newRecService(products, &recOrderStoreStub{}, nil)

	got, err := svc.FrequentlyBoughtTogether(context.Background(), target.ID, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "neighbor", got[0].Name)
	assert.Equal(t, []primitive.ObjectID{target.ID}, products.taxonomyExclude)
}

func TestHomepage_AnonymousVisitorGetsFeaturedForYou(t *testing.T) {
	newest := models.Product{ID: primitive.NewObjectID(), Name: "fresh"}
	products := &productStoreStub{newest: []models.Product{newest}}
	svc := newRecService(products, &recOrderStoreStub{}, nil)

	sections, err := svc.Homepage(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, sections)
	require.Len(t, sections.ForYou, 1)
	assert.Equal(t, "fresh", sections.ForYou[0].Name)
	// Both ranking sections fall back to Featured on an empty store.
	assert.Len(t, sections.Trending, 1)
	assert.Len(t, sections.TopRated, 1)
}
