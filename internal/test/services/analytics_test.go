package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
)

type orderStoreStub struct {
	stats    []models.OrderStat
	statsErr error
	counts   map[string]int64

	reportRows  []models.OrderReportRow
	reportTotal int64
	gotFilter   models.OrderReportFilter
}

func (s *orderStoreStub) PaidOrderStats(_ context.Context, _, _ time.Time) ([]models.OrderStat, error) {
	return s.stats, s.statsErr
}

func (s *orderStoreStub) OrderStatusCounts(_ context.Context, _, _ time.Time) (map[string]int64, error) {
	return s.counts, nil
}

func (s *orderStoreStub) OrderReport(_ context.Context, f models.OrderReportFilter) ([]models.OrderReportRow, int64, error) {
	s.gotFilter = f
	return s.reportRows, s.reportTotal, nil
}

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestGetAnalytics_DailyWorkedExample(t *testing.T) {
	store := &orderStoreStub{
		stats: []models.OrderStat{
			{CreatedAt: time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC), Total: 100, Profit: 40},
		},
	}
	svc := services.NewAnalyticsService(store)

	end := time.Date(2024, 1, 3, 23, 59, 59, 0, time.UTC)
	buckets, err := svc.GetAnalytics(context.Background(), models.PeriodDaily, datePtr(2024, 1, 1), &end)
	require.NoError(t, err)
	require.Len(t, buckets, 3)

	assert.Equal(t, "2024-01-01", buckets[0].Period)
	assert.Zero(t, buckets[0].Revenue)
	assert.Zero(t, buckets[0].OrderCount)

	assert.Equal(t, "2024-01-02", buckets[1].Period)
	assert.Equal(t, 100.0, buckets[1].Revenue)
	assert.Equal(t, 40.0, buckets[1].Profit)
	assert.Equal(t, 1, buckets[1].OrderCount)
	assert.Equal(t, 100.0, buckets[1].AverageOrderValue)

	assert.Equal(t, "2024-01-03", buckets[2].Period)
	assert.Zero(t, buckets[2].Revenue)
	assert.Zero(t, buckets[2].AverageOrderValue)
}

func TestGetAnalytics_ZeroFillsEmptyRange(t *testing.T) {
	svc := services.NewAnalyticsService(&orderStoreStub{})

	buckets, err := svc.GetAnalytics(context.Background(), models.PeriodMonthly, datePtr(2024, 11, 15), datePtr(2025, 2, 3))
	require.NoError(t, err)

	periods := make([]string, len(buckets))
	for i, b := range buckets {
		periods[i] = b.Period
		assert.Zero(t, b.Revenue)
		assert.Zero(t, b.Profit)
		assert.Zero(t, b.OrderCount)
		assert.Zero(t, b.AverageOrderValue)
	}
	assert.Equal(t, []string{"2024-11", "2024-12", "2025-01", "2025-02"}, periods)
}

func TestGetAnalytics_WeeklyISOKeys(t *testing.T) {
	svc := services.NewAnalyticsService(&orderStoreStub{})

	// 2024-01-01 is a Monday, first ISO week of 2024.
	buckets, err := svc.GetAnalytics(context.Background(), models.PeriodWeekly, datePtr(2024, 1, 1), datePtr(2024, 1, 15))
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	assert.Equal(t, "2024-W01", buckets[0].Period)
	assert.Equal(t, "2024-W02", buckets[1].Period)
	assert.Equal(t, "2024-W03", buckets[2].Period)
}

func TestGetAnalytics_YearlyKeys(t *testing.T) {
	svc := services.NewAnalyticsService(&orderStoreStub{})

	buckets, err := svc.GetAnalytics(context.Background(), models.PeriodYearly, datePtr(2020, 6, 1), datePtr(2024, 2, 1))
	require.NoError(t, err)
	require.Len(t, buckets, 5)
	assert.Equal(t, "2020", buckets[0].Period)
	assert.Equal(t, "2024", buckets[4].Period)
}

func TestGetAnalytics_RoundsMonetaryValues(t *testing.T) {
	day := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &orderStoreStub{
		stats: []models.OrderStat{
			{CreatedAt: day, Total: 10.333, Profit: 1.111},
			{CreatedAt: day, Total: 10.333, Profit: 1.111},
			{CreatedAt: day, Total: 10.333, Profit: 1.111},
		},
	}
	svc := services.NewAnalyticsService(store)

	buckets, err := svc.GetAnalytics(context.Background(), models.PeriodDaily, datePtr(2024, 3, 10), datePtr(2024, 3, 10))
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, 31.0, buckets[0].Revenue)
	assert.Equal(t, 3.33, buckets[0].Profit)
	assert.Equal(t, 10.33, buckets[0].AverageOrderValue)
}

func TestGetAnalytics_DefaultMonthlyWindowAtMonthEnd(t *testing.T) {
	svc := services.NewAnalyticsService(&orderStoreStub{}).WithClock(func() time.Time {
		return time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC)
	})

	buckets, err := svc.GetAnalytics(context.Background(), models.PeriodMonthly, nil, nil)
	require.NoError(t, err)
	require.Len(t, buckets, 12)
	assert.Equal(t, "2023-04", buckets[0].Period)
	assert.Equal(t, "2024-03", buckets[11].Period)
}

func TestGetAnalytics_DefaultYearlyWindowSpansFiveYears(t *testing.T) {
	svc := services.NewAnalyticsService(&orderStoreStub{}).WithClock(func() time.Time {
		return time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)
	})

	buckets, err := svc.GetAnalytics(context.Background(), models.PeriodYearly, nil, nil)
	require.NoError(t, err)
	require.Len(t, buckets, 5)
	assert.Equal(t, "2020", buckets[0].Period)
	assert.Equal(t, "2024", buckets[4].Period)
}

func TestGetAnalytics_RejectsUnknownPeriod(t *testing.T) {
	svc := services.NewAnalyticsService(&orderStoreStub{})

	_, err := svc.GetAnalytics(context.Background(), models.AnalyticsPeriod("hourly"), nil, nil)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestGetAnalytics_RejectsInvertedRange(t *testing.T) {
	svc := services.NewAnalyticsService(&orderStoreStub{})

	_, err := svc.GetAnalytics(context.Background(), models.PeriodDaily, datePtr(2024, 2, 1), datePtr(2024, 1, 1))
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestGetSummary_EmptyRangeHasNoDivisionFault(t *testing.T) {
	store := &orderStoreStub{counts: map[string]int64{}}
	svc := services.NewAnalyticsService(store)

	summary, err := svc.GetSummary(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalOrders)
	assert.Zero(t, summary.TotalRevenue)
	assert.Zero(t, summary.AverageOrderValue)
}

func TestGetSummary_BucketsUnknownStatus(t *testing.T) {
	store := &orderStoreStub{
		stats: []models.OrderStat{
			{CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Total: 50, Profit: 10},
			{CreatedAt: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Total: 150, Profit: 30},
		},
		counts: map[string]int64{"DELIVERED": 2, "": 1},
	}
	svc := services.NewAnalyticsService(store)

	summary, err := svc.GetSummary(context.Background(), datePtr(2024, 1, 1), datePtr(2024, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalOrders)
	assert.Equal(t, 200.0, summary.TotalRevenue)
	assert.Equal(t, 100.0, summary.AverageOrderValue)
	assert.Equal(t, int64(2), summary.StatusBreakdown["DELIVERED"])
	assert.Equal(t, int64(1), summary.StatusBreakdown["UNKNOWN"])
}

func TestGetOrderReport_DefaultsAndFallbacks(t *testing.T) {
	store := &orderStoreStub{
		reportRows: []models.OrderReportRow{
			{CustomerName: "", CustomerEmail: "", Revenue: 99.999, Profit: 10.001},
			{CustomerName: "Jo", CustomerEmail: "jo@example.com", Revenue: 20, Profit: 5},
		},
		reportTotal: 42,
	}
	svc := services.NewAnalyticsService(store)

	report, err := svc.GetOrderReport(context.Background(), models.OrderReportFilter{})
	require.NoError(t, err)

	assert.Equal(t, int64(100), store.gotFilter.Limit)
	assert.Equal(t, int64(0), store.gotFilter.Skip)
	assert.Equal(t, int64(42), report.Total)

	assert.Equal(t, "N/A", report.Rows[0].CustomerName)
	assert.Equal(t, "N/A", report.Rows[0].CustomerEmail)
	assert.Equal(t, 100.0, report.Rows[0].Revenue)
	assert.Equal(t, 10.0, report.Rows[0].Profit)
	assert.Equal(t, "Jo", report.Rows[1].CustomerName)
}
