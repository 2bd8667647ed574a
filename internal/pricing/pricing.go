// Package pricing analyzes a synth's price history for recent movement.
package pricing

import (
	"sort"
	"time"

	"synthlobby/internal/model"
)

// DefaultWindowDays is the recency window used for change detection.
const DefaultWindowDays = 5

const dateLayout = "2006-01-02"

// RecentHistory returns the price points observed within the trailing
// days-day window ending at now, using calendar-day granularity.
func RecentHistory(points []model.PricePoint, now time.Time, days int) []model.PricePoint {
	if len(points) == 0 {
		return nil
	}

	start := now.AddDate(0, 0, -days).Format(dateLayout)

	var recent []model.PricePoint
	for _, p := range points {
		if p.Date >= start {
			recent = append(recent, p)
		}
	}
	return recent
}

// RecentChange computes the most recent price movement within the trailing
// days-day window: the latest known price, the latest earlier price that
// differs from it, and the percentage change between the two.
//
// All three fields are nil when fewer than two observations fall inside the
// window or when no price in the window is known. PreviousPrice stays nil
// when every earlier known price equals the current one; a flat series is
// not a change. PercentChange is only set when both prices are set and the
// previous price is non-zero.
func RecentChange(points []model.PricePoint, now time.Time, days int) model.PriceChange {
	recent := RecentHistory(points, now, days)
	if len(recent) < 2 {
		return model.PriceChange{}
	}

	// Most recent first. The sort is stable, so observations sharing a
	// date keep their input order.
	sorted := make([]model.PricePoint, len(recent))
	copy(sorted, recent)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	var current *model.PricePoint
	for i := range sorted {
		if sorted[i].Price != nil {
			current = &sorted[i]
			break
		}
	}
	if current == nil {
		return model.PriceChange{}
	}

	var previous *float64
	for i := range sorted {
		p := &sorted[i]
		if p.Date < current.Date && p.Price != nil && *p.Price != *current.Price {
			previous = p.Price
			break
		}
	}

	change := model.PriceChange{
		CurrentPrice:  current.Price,
		PreviousPrice: previous,
	}
	if previous != nil && *previous != 0 {
		pct := (*current.Price - *previous) / *previous * 100
		change.PercentChange = &pct
	}
	return change
}

// HasRecentPrice reports whether the synth has at least one known price
// within the trailing days-day window. Used to suppress price display when
// today's data is missing, as distinct from "no change detected".
func HasRecentPrice(s model.Synth, now time.Time, days int) bool {
	for _, p := range RecentHistory(s.Prices, now, days) {
		if p.Price != nil {
			return true
		}
	}
	return false
}

// HasRecentChange reports whether the synth shows a non-zero price change
// within the trailing days-day window.
func HasRecentChange(s model.Synth, now time.Time, days int) bool {
	change := RecentChange(s.Prices, now, days)
	return change.PercentChange != nil && *change.PercentChange != 0
}
