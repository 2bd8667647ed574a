package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"synthlobby/internal/catalog"
	"synthlobby/internal/model"
	"synthlobby/internal/news"
	"synthlobby/internal/pricing"
)

// FormatPrice renders a price as euros with a dot as thousands separator,
// e.g. "€1.499". Unknown prices render as "price unknown".
func FormatPrice(price *float64) string {
	if price == nil {
		return "price unknown"
	}

	s := strconv.FormatFloat(*price, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-€" + b.String()
	}
	return "€" + b.String()
}

// FormatSynthName renders "Brand Name" with missing parts omitted.
func FormatSynthName(s model.Synth) string {
	return strings.TrimSpace(s.Brand + " " + s.Name)
}

// FormatPriceDrop formats a price-drop alert message.
func FormatPriceDrop(s model.Synth, change model.PriceChange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Price drop: %s\n\n", FormatSynthName(s))
	fmt.Fprintf(&b, "%s → %s", FormatPrice(change.PreviousPrice), FormatPrice(change.CurrentPrice))
	if change.PercentChange != nil {
		fmt.Fprintf(&b, " (%.1f%%)", *change.PercentChange)
	}
	fmt.Fprintf(&b, "\nat %s", s.Source)
	if s.URL != "" {
		b.WriteString("\n\n")
		b.WriteString(s.URL)
	}
	return b.String()
}

// FormatNewsItem formats a retailer announcement as a notification message.
func FormatNewsItem(feedTitle string, item news.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n\n", feedTitle)
	b.WriteString(item.Title)
	if item.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(item.Description)
	}
	if item.Link != "" {
		b.WriteString("\n\n")
		b.WriteString(item.Link)
	}
	return b.String()
}

// FormatSearchResults formats catalogue search matches, at most limit of them.
func FormatSearchResults(term string, matches []model.Synth, limit int) string {
	if len(matches) == 0 {
		return fmt.Sprintf("No synths matching %q.", term)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Synths matching %q:\n", term)
	for i, s := range matches {
		if i == limit {
			fmt.Fprintf(&b, "\n...and %d more. Narrow your search.", len(matches)-limit)
			break
		}
		fmt.Fprintf(&b, "\n%s — %s [%s]\n   id: %s\n", FormatSynthName(s), FormatPrice(s.Price), s.Availability, s.ID)
	}
	return b.String()
}

// FormatWishlist formats the user's wishlist with current prices and recent
// movement from the catalogue snapshot.
func FormatWishlist(watched []model.WatchedSynth, cat *catalog.Store, now time.Time) string {
	if len(watched) == 0 {
		return "Your wishlist is empty. Use /search and /watch to add synths."
	}

	var b strings.Builder
	b.WriteString("Your wishlist:\n")
	for _, w := range watched {
		s, ok := cat.Get(w.SynthID)
		if !ok {
			fmt.Fprintf(&b, "\n%s — no longer in the catalogue\n", w.SynthID)
			continue
		}

		fmt.Fprintf(&b, "\n%s — %s [%s]\n", FormatSynthName(s), FormatPrice(s.Price), s.Availability)
		if change := pricing.RecentChange(s.Prices, now, pricing.DefaultWindowDays); change.PercentChange != nil {
			fmt.Fprintf(&b, "   %.1f%% vs %s\n", *change.PercentChange, FormatPrice(change.PreviousPrice))
		}
		alerts := "alerts off"
		if w.NotificationsEnabled {
			alerts = "alerts on"
		}
		fmt.Fprintf(&b, "   id: %s [%s]\n", s.ID, alerts)
	}
	return b.String()
}

// FormatCompareList formats the user's compare list.
func FormatCompareList(compareList []string, cat *catalog.Store) string {
	if len(compareList) == 0 {
		return "Your compare list is empty. Use /compare <id> to add synths."
	}

	var b strings.Builder
	b.WriteString("Your compare list:\n")
	for _, id := range compareList {
		s, ok := cat.Get(id)
		if !ok {
			fmt.Fprintf(&b, "\n%s — no longer in the catalogue\n", id)
			continue
		}
		fmt.Fprintf(&b, "\n%s — %s [%s]\n   id: %s\n", FormatSynthName(s), FormatPrice(s.Price), s.Availability, s.ID)
	}
	return b.String()
}
