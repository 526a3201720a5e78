package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/models"
)

// AnalyticsProvider is what this handler needs from the analytics engine.
type AnalyticsProvider interface {
	GetAnalytics(ctx context.Context, period models.AnalyticsPeriod, start, end *time.Time) ([]models.PeriodBucket, error)
	GetOrderReport(ctx context.Context, f models.OrderReportFilter) (*models.OrderReport, error)
	GetSummary(ctx context.Context, start, end *time.Time) (*models.AnalyticsSummary, error)
}

type AnalyticsHandler struct {
	analytics AnalyticsProvider
	*Responder
}

func NewAnalyticsHandler(analytics AnalyticsProvider, responder *Responder) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, Responder: responder}
}

func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	period := models.AnalyticsPeriod(c.DefaultQuery("period", string(models.PeriodDaily)))
	if !period.Valid() {
		h.BadRequest(c, "period must be one of daily, weekly, monthly, yearly")
		return
	}

	start, end, ok := h.dateRange(c)
	if !ok {
		return
	}

	buckets, err := h.analytics.GetAnalytics(c.Request.Context(), period, start, end)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"period": period, "analytics": buckets})
}

func (h *AnalyticsHandler) GetOrderReport(c *gin.Context) {
	start, end, ok := h.dateRange(c)
	if !ok {
		return
	}

	filter := models.OrderReportFilter{
		Start:         start,
		End:           end,
		Status:        models.OrderStatus(c.Query("status")),
		PaymentStatus: models.PaymentStatus(c.Query("paymentStatus")),
		Limit:         queryInt(c, "limit", 0),
		Skip:          queryInt(c, "skip", 0),
	}

	report, err := h.analytics.GetOrderReport(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	start, end, ok := h.dateRange(c)
	if !ok {
		return
	}

	summary, err := h.analytics.GetSummary(c.Request.Context(), start, end)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// dateRange parses startDate/endDate, widening endDate to the end of its
// day so the range stays inclusive.
func (h *AnalyticsHandler) dateRange(c *gin.Context) (*time.Time, *time.Time, bool) {
	start, err := dateQuery(c, "startDate")
	if err != nil {
		h.BadRequest(c, "startDate must be formatted YYYY-MM-DD")
		return nil, nil, false
	}
	end, err := dateQuery(c, "endDate")
	if err != nil {
		h.BadRequest(c, "endDate must be formatted YYYY-MM-DD")
		return nil, nil, false
	}
	if end != nil {
		e := end.Add(24*time.Hour - time.Nanosecond)
		end = &e
	}
	return start, end, true
}

func queryInt(c *gin.Context, name string, fallback int64) int64 {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}
