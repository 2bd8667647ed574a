// Package catalog implements the filter, sort, and pagination pipeline
// over a catalogue snapshot.
package catalog

import (
	"math"
	"sort"
	"strings"
	"time"

	"synthlobby/internal/model"
	"synthlobby/internal/pricing"
)

// PageSize is the fixed number of listings per page.
const PageSize = 24

// Sort selects the price ordering of filtered results.
type Sort string

// Supported sort modes.
const (
	SortNone       Sort = ""
	SortAscending  Sort = "asc"
	SortDescending Sort = "des"
)

// AvailabilityAll disables the availability filter.
const AvailabilityAll = "all"

// Query describes one view over the catalogue. Predicates are conjunctive:
// a listing must satisfy every active one.
type Query struct {
	Search       string
	MinPrice     float64
	MaxPrice     float64 // zero or NaN means unbounded
	Sort         Sort
	Availability string // normalized value or "all"

	LikedOnly    bool
	ComparedOnly bool
	ChangedOnly  bool

	// IncludeUnpriced keeps listings whose price is unknown. The default
	// drops them from every filtered view, matching the user-visible counts
	// of the reference data set.
	IncludeUnpriced bool

	LikedIDs    map[string]bool
	ComparedIDs map[string]bool
}

// Page is one page of filtered results together with its pagination state.
type Page struct {
	Items      []model.Synth `json:"items"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	Total      int           `json:"total"`
}

// FilterAndSort applies the query's predicates and sort order over the
// snapshot. It never fails: listings that cannot satisfy a predicate are
// excluded, whatever the reason.
func FilterAndSort(synths []model.Synth, q Query, now time.Time) []model.Synth {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	maxPrice := q.MaxPrice
	if maxPrice == 0 || math.IsNaN(maxPrice) {
		maxPrice = math.Inf(1)
	}

	var out []model.Synth
	for _, s := range synths {
		if s.Price == nil {
			if !q.IncludeUnpriced {
				continue
			}
		} else {
			price := *s.Price
			if price < q.MinPrice || price > maxPrice {
				continue
			}
		}

		if search != "" && !strings.Contains(strings.ToLower(s.Brand+" "+s.Name), search) {
			continue
		}

		if q.Availability != "" && q.Availability != AvailabilityAll &&
			!strings.EqualFold(q.Availability, string(s.Availability)) {
			continue
		}

		if q.LikedOnly && !q.LikedIDs[s.ID] {
			continue
		}
		if q.ComparedOnly && !q.ComparedIDs[s.ID] {
			continue
		}
		if q.ChangedOnly && !pricing.HasRecentChange(s, now, pricing.DefaultWindowDays) {
			continue
		}

		out = append(out, s)
	}

	switch q.Sort {
	case SortAscending:
		sort.SliceStable(out, func(i, j int) bool {
			return priceOf(out[i]) < priceOf(out[j])
		})
	case SortDescending:
		sort.SliceStable(out, func(i, j int) bool {
			return priceOf(out[i]) > priceOf(out[j])
		})
	}

	return out
}

// Paginate slices the filtered results into the requested page. A page
// beyond the end is clamped to the last valid page, and an empty result
// set yields page 1 of 0.
func Paginate(synths []model.Synth, page int) Page {
	totalPages := (len(synths) + PageSize - 1) / PageSize

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if start > len(synths) {
		start = len(synths)
	}
	if end > len(synths) {
		end = len(synths)
	}

	return Page{
		Items:      synths[start:end],
		Page:       page,
		TotalPages: totalPages,
		Total:      len(synths),
	}
}

// Unpriced listings sort after every priced one.
func priceOf(s model.Synth) float64 {
	if s.Price == nil {
		return math.Inf(1)
	}
	return *s.Price
}

// Brands returns the distinct brand names in the snapshot, optionally
// restricted to case-insensitive substring matches, sorted alphabetically.
func Brands(synths []model.Synth, search string) []string {
	search = strings.ToLower(strings.TrimSpace(search))

	seen := make(map[string]bool)
	var brands []string
	for _, s := range synths {
		if s.Brand == "" || seen[s.Brand] {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(s.Brand), search) {
			continue
		}
		seen[s.Brand] = true
		brands = append(brands, s.Brand)
	}
	sort.Strings(brands)
	return brands
}
