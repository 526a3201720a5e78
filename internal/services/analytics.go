package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"marketplace-backend/internal/models"
)

const (
	defaultReportLimit = 100

	fallbackCustomerField = "N/A"
)

// AnalyticsOrderStore is the slice of the order store the analytics engine
// reads from.
type AnalyticsOrderStore interface {
	PaidOrderStats(ctx context.Context, start, end time.Time) ([]models.OrderStat, error)
	OrderStatusCounts(ctx context.Context, start, end time.Time) (map[string]int64, error)
	OrderReport(ctx context.Context, f models.OrderReportFilter) ([]models.OrderReportRow, int64, error)
}

// AnalyticsService computes period-bucketed revenue/profit/order metrics and
// per-order reports. Only Paid orders count toward monetary aggregates.
type AnalyticsService struct {
	orders AnalyticsOrderStore
	now    func() time.Time
}

func NewAnalyticsService(orders AnalyticsOrderStore) *AnalyticsService {
	return &AnalyticsService{orders: orders, now: time.Now}
}

// WithClock overrides the time source used for default windows.
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

// GetAnalytics returns one zero-filled bucket per period unit from start to
// end inclusive, chronologically ordered. Nil dates select the default
// window for the period.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, period models.AnalyticsPeriod, start, end *time.Time) ([]models.PeriodBucket, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("%w: unknown period %q", ErrInvalidInput, period)
	}

	from, to := s.window(period, start, end)
	if from.After(to) {
		return nil, fmt.Errorf("%w: start date is after end date", ErrInvalidInput)
	}

	stats, err := s.orders.PaidOrderStats(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load paid orders: %w", err)
	}

	type accum struct {
		revenue float64
		profit  float64
		orders  int
	}
	byPeriod := make(map[string]*accum)
	for _, stat := range stats {
		key := periodKey(stat.CreatedAt, period)
		a, ok := byPeriod[key]
		if !ok {
			a = &accum{}
			byPeriod[key] = a
		}
		a.revenue += stat.Total
		a.profit += stat.Profit
		a.orders++
	}

	keys := periodKeys(from, to, period)
	buckets := make([]models.PeriodBucket, 0, len(keys))
	for _, key := range keys {
		bucket := models.PeriodBucket{Period: key}
		if a, ok := byPeriod[key]; ok {
			bucket.Revenue = round2(a.revenue)
			bucket.Profit = round2(a.profit)
			bucket.OrderCount = a.orders
			bucket.AverageOrderValue = round2(a.revenue / float64(a.orders))
		}
		buckets = append(buckets, bucket)
	}
	return buckets, nil
}

// GetOrderReport returns one page of denormalized order rows plus the total
// match count. Limit defaults to 100, skip to 0.
func (s *AnalyticsService) GetOrderReport(ctx context.Context, f models.OrderReportFilter) (*models.OrderReport, error) {
	if f.Limit <= 0 {
		f.Limit = defaultReportLimit
	}
	if f.Skip < 0 {
		f.Skip = 0
	}

	rows, total, err := s.orders.OrderReport(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to build order report: %w", err)
	}

	for i := range rows {
		if rows[i].CustomerName == "" {
			rows[i].CustomerName = fallbackCustomerField
		}
		if rows[i].CustomerEmail == "" {
			rows[i].CustomerEmail = fallbackCustomerField
		}
		rows[i].Revenue = round2(rows[i].Revenue)
		rows[i].Profit = round2(rows[i].Profit)
	}

	if rows == nil {
		rows = []models.OrderReportRow{}
	}
	return &models.OrderReport{Rows: rows, Total: total}, nil
}

// GetSummary aggregates all Paid orders in the range plus a status-keyed
// count breakdown over every order in the range. Nil dates leave the bound
// open.
func (s *AnalyticsService) GetSummary(ctx context.Context, start, end *time.Time) (*models.AnalyticsSummary, error) {
	from := time.Time{}
	to := s.now().UTC()
	if start != nil {
		from = *start
	}
	if end != nil {
		to = *end
	}

	stats, err := s.orders.PaidOrderStats(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load paid orders: %w", err)
	}

	summary := &models.AnalyticsSummary{StatusBreakdown: map[string]int64{}}
	for _, stat := range stats {
		summary.TotalRevenue += stat.Total
		summary.TotalProfit += stat.Profit
		summary.TotalOrders++
	}
	summary.TotalRevenue = round2(summary.TotalRevenue)
	summary.TotalProfit = round2(summary.TotalProfit)
	if summary.TotalOrders > 0 {
		summary.AverageOrderValue = round2(summary.TotalRevenue / float64(summary.TotalOrders))
	}

	counts, err := s.orders.OrderStatusCounts(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load status counts: %w", err)
	}
	for status, count := range counts {
		if status == "" {
			status = "UNKNOWN"
		}
		summary.StatusBreakdown[status] += count
	}

	return summary, nil
}

// window resolves the date range, falling back to the default lookback for
// the period: 30 days, 12 weeks, 12 months or 5 years. The monthly and
// yearly lookbacks are anchored to the first of the unit so AddDate's
// month-end normalization cannot swallow a bucket.
func (s *AnalyticsService) window(period models.AnalyticsPeriod, start, end *time.Time) (time.Time, time.Time) {
	to := s.now().UTC()
	if end != nil {
		to = *end
	}

	from := to
	if start != nil {
		from = *start
	} else {
		anchor := to.UTC()
		switch period {
		case models.PeriodDaily:
			from = anchor.AddDate(0, 0, -29)
		case models.PeriodWeekly:
			from = anchor.AddDate(0, 0, -7*11)
		case models.PeriodMonthly:
			firstOfMonth := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
			from = firstOfMonth.AddDate(0, -11, 0)
		case models.PeriodYearly:
			from = time.Date(anchor.Year()-4, time.January, 1, 0, 0, 0, 0, time.UTC)
		}
	}
	return from, to
}

// periodKey derives the bucket label for a point in time. Weekly keys use
// ISO-8601 week numbering (Thursday-anchored).
func periodKey(t time.Time, period models.AnalyticsPeriod) string {
	t = t.UTC()
	switch period {
	case models.PeriodWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case models.PeriodMonthly:
		return t.Format("2006-01")
	case models.PeriodYearly:
		return t.Format("2006")
	default:
		return t.Format("2006-01-02")
	}
}

// periodKeys enumerates every bucket label from start to end inclusive, one
// per unit step, in chronological order.
func periodKeys(start, end time.Time, period models.AnalyticsPeriod) []string {
	start = start.UTC()
	end = end.UTC()

	var keys []string
	seen := make(map[string]struct{})
	push := func(key string) {
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	switch period {
	case models.PeriodMonthly:
		cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
		for !cur.After(end) {
			push(cur.Format("2006-01"))
			cur = cur.AddDate(0, 1, 0)
		}
	case models.PeriodYearly:
		for year := start.Year(); year <= end.Year(); year++ {
			push(fmt.Sprintf("%d", year))
		}
	default:
		// Daily and weekly both step by day; weekly keys collapse into one
		// entry per ISO week.
		cur := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
		for !cur.After(last) {
			push(periodKey(cur, period))
			cur = cur.AddDate(0, 0, 1)
		}
	}
	return keys
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
