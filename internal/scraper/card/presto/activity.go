package presto

import (
	"context"
	"log/slog"
	"time"

	"github.com/grez-lucas/presto/internal/scraper/card"
)

const (
	opActivityByMonth     = "ActivityByMonth"
	opActivityByDateRange = "ActivityByDateRange"
)

// ActivityByMonth returns the active card's activity for one calendar month,
// in page order. The month is addressed relative to the current date.
func (c *Client) ActivityByMonth(ctx context.Context, year int, month time.Month, pageSize int) ([]card.ActivityRecord, error) {
	selected := SelectedMonthValue(year, month, c.now().In(c.cfg.Location))
	return c.activity(ctx, opActivityByMonth, pageSize, selected)
}

// ActivityByDateRange returns the activity between from and to, both
// inclusive. A zero to means today.
func (c *Client) ActivityByDateRange(ctx context.Context, from, to time.Time, pageSize int) ([]card.ActivityRecord, error) {
	if to.IsZero() {
		to = c.now().In(c.cfg.Location)
	}
	return c.activity(ctx, opActivityByDateRange, pageSize, DateRangeValue(from, to))
}

func (c *Client) activity(ctx context.Context, op string, pageSize int, selectedMonth string) ([]card.ActivityRecord, error) {
	if pageSize <= 0 {
		pageSize = c.cfg.PageSize
	}

	res, err := c.postJSON(ctx, op, c.cfg.Paths.Activity, NewActivityBody(pageSize, selectedMonth))
	if err != nil {
		return nil, err
	}

	activities, err := ParseActivity(res.String())
	if err != nil {
		return nil, &card.ScraperError{Provider: card.ProviderPresto, Operation: op, Cause: err}
	}

	c.log.DebugContext(ctx, "activity fetched",
		slog.String("selected_month", selectedMonth),
		slog.Int("records", len(activities)),
	)
	return activities, nil
}
