package service

import (
	"context"
	"time"

	"github.com/leadtrack/server/internal/models"
)

// periodStart maps a named analytics window to its start instant. Unknown
// period names mean no restriction; the endpoint is deliberately lenient.
func periodStart(period string, now time.Time) *time.Time {
	var days int
	switch period {
	case "week":
		days = 7
	case "month":
		days = 30
	case "quarter":
		days = 90
	case "year":
		days = 365
	default:
		return nil
	}
	start := now.AddDate(0, 0, -days)
	return &start
}

// LeadsBySource groups the caller's leads by source, optionally restricted
// to a named rolling window.
func (s *DefaultService) LeadsBySource(ctx context.Context, userID, period string) ([]models.SourceCount, error) {
	from := periodStart(period, time.Now().UTC())

	counts, err := s.repo.CountLeadsBySource(ctx, userID, from, nil)
	if err != nil {
		return nil, storeErr("error aggregating leads by source", err)
	}

	return counts, nil
}

// LeadMetrics returns summary counts over the caller's lead set. An empty
// set yields a zero conversion rate, not a division error.
func (s *DefaultService) LeadMetrics(ctx context.Context, userID string) (*models.LeadMetrics, error) {
	byStatus, total, err := s.repo.CountLeadsByStatus(ctx, userID)
	if err != nil {
		return nil, storeErr("error aggregating lead metrics", err)
	}

	// Zero-fill so every status always appears in the response
	full := make(map[string]int, len(models.LeadStatuses))
	for _, status := range models.LeadStatuses {
		full[status] = byStatus[status]
	}

	rate := 0.0
	if total > 0 {
		rate = float64(full[models.StatusConverted]) / float64(total)
	}

	return &models.LeadMetrics{
		Total:          total,
		ByStatus:       full,
		ConversionRate: rate,
	}, nil
}
