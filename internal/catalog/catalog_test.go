package catalog

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"synthlobby/internal/model"
)

func ptr(v float64) *float64 { return &v }

var testNow = time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

func synth(id, brand, name string, price *float64) model.Synth {
	return model.Synth{
		ID:           id,
		Brand:        brand,
		Name:         name,
		Price:        price,
		Availability: model.AvailabilityInStock,
	}
}

func ids(synths []model.Synth) []string {
	out := make([]string, 0, len(synths))
	for _, s := range synths {
		out = append(out, s.ID)
	}
	return out
}

func TestFilterAndSort(t *testing.T) {
	catalogue := []model.Synth{
		synth("1", "Moog", "Subsequent 37", ptr(1500)),
		synth("2", "Korg", "Minilogue XD", ptr(600)),
		synth("3", "Behringer", "Model D", ptr(250)),
		synth("4", "Moog", "Grandmother", ptr(900)),
		{ID: "5", Brand: "Sequential", Name: "Prophet-6", Price: nil, Availability: model.AvailabilitySoldOut},
	}

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{
			name: "no constraints drops unpriced",
			q:    Query{},
			want: []string{"1", "2", "3", "4"},
		},
		{
			name: "include unpriced keeps them",
			q:    Query{IncludeUnpriced: true},
			want: []string{"1", "2", "3", "4", "5"},
		},
		{
			name: "search matches brand and name concatenation",
			q:    Query{Search: "moog sub"},
			want: []string{"1"},
		},
		{
			name: "search is case insensitive",
			q:    Query{Search: "KORG"},
			want: []string{"2"},
		},
		{
			name: "price range is inclusive",
			q:    Query{MinPrice: 600, MaxPrice: 900},
			want: []string{"2", "4"},
		},
		{
			name: "zero max price means unbounded",
			q:    Query{MinPrice: 900},
			want: []string{"1", "4"},
		},
		{
			name: "explicit infinity max",
			q:    Query{MinPrice: 100, MaxPrice: math.Inf(1)},
			want: []string{"1", "2", "3", "4"},
		},
		{
			name: "availability filter",
			q:    Query{Availability: "sold out", IncludeUnpriced: true},
			want: []string{"5"},
		},
		{
			name: "availability all disables the filter",
			q:    Query{Availability: "all"},
			want: []string{"1", "2", "3", "4"},
		},
		{
			name: "liked only",
			q:    Query{LikedOnly: true, LikedIDs: map[string]bool{"2": true, "4": true}},
			want: []string{"2", "4"},
		},
		{
			name: "compared only",
			q:    Query{ComparedOnly: true, ComparedIDs: map[string]bool{"3": true}},
			want: []string{"3"},
		},
		{
			name: "ascending sort",
			q:    Query{Sort: SortAscending},
			want: []string{"3", "2", "4", "1"},
		},
		{
			name: "descending sort",
			q:    Query{Sort: SortDescending},
			want: []string{"1", "4", "2", "3"},
		},
		{
			name: "conjunction of predicates",
			q: Query{
				Search:    "moog",
				MinPrice:  1000,
				LikedOnly: true,
				LikedIDs:  map[string]bool{"1": true, "3": true},
			},
			want: []string{"1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterAndSort(catalogue, tt.q, testNow)
			if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
				t.Errorf("FilterAndSort() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterAndSortChangedOnly(t *testing.T) {
	changed := synth("changed", "Moog", "Matriarch", ptr(1800))
	changed.Prices = []model.PricePoint{
		{Date: "2024-01-03", Price: ptr(2000)},
		{Date: "2024-01-05", Price: ptr(1800)},
	}
	flat := synth("flat", "Korg", "Monologue", ptr(300))
	flat.Prices = []model.PricePoint{
		{Date: "2024-01-03", Price: ptr(300)},
		{Date: "2024-01-05", Price: ptr(300)},
	}

	got := FilterAndSort([]model.Synth{changed, flat}, Query{ChangedOnly: true}, testNow)
	if diff := cmp.Diff([]string{"changed"}, ids(got)); diff != "" {
		t.Errorf("changed-only filter mismatch (-want +got):\n%s", diff)
	}
}

func TestSortStability(t *testing.T) {
	catalogue := []model.Synth{
		synth("a", "Moog", "One", ptr(500)),
		synth("b", "Korg", "Two", ptr(500)),
		synth("c", "Roland", "Three", ptr(500)),
	}

	got := FilterAndSort(catalogue, Query{Sort: SortAscending}, testNow)
	if diff := cmp.Diff([]string{"a", "b", "c"}, ids(got)); diff != "" {
		t.Errorf("equal prices must keep input order (-want +got):\n%s", diff)
	}

	got = FilterAndSort(catalogue, Query{Sort: SortNone}, testNow)
	if diff := cmp.Diff([]string{"a", "b", "c"}, ids(got)); diff != "" {
		t.Errorf("no sorting must keep input order (-want +got):\n%s", diff)
	}
}

func TestPaginate(t *testing.T) {
	many := make([]model.Synth, 30)
	for i := range many {
		many[i] = synth(string(rune('A'+i)), "Brand", "Name", ptr(float64(i)))
	}

	tests := []struct {
		name           string
		count          int
		page           int
		wantPage       int
		wantTotalPages int
		wantItems      int
	}{
		{"first page full", 30, 1, 1, 2, 24},
		{"second page remainder", 30, 2, 2, 2, 6},
		{"page beyond end clamps to last", 30, 5, 2, 2, 6},
		{"zero page clamps to first", 30, 0, 1, 2, 24},
		{"empty result set", 0, 3, 1, 0, 0},
		{"exactly one page", 24, 1, 1, 1, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(many[:tt.count], tt.page)
			if got.Page != tt.wantPage || got.TotalPages != tt.wantTotalPages || len(got.Items) != tt.wantItems {
				t.Errorf("Paginate() = page %d/%d with %d items, want page %d/%d with %d items",
					got.Page, got.TotalPages, len(got.Items), tt.wantPage, tt.wantTotalPages, tt.wantItems)
			}
			if got.Total != tt.count {
				t.Errorf("Total = %d, want %d", got.Total, tt.count)
			}
		})
	}
}

func TestPaginateSecondPageContents(t *testing.T) {
	many := make([]model.Synth, 30)
	for i := range many {
		many[i] = synth(string(rune('A'+i)), "Brand", "Name", ptr(float64(i)))
	}

	got := Paginate(many, 2)
	if diff := cmp.Diff(ids(many[24:]), ids(got.Items)); diff != "" {
		t.Errorf("page 2 contents mismatch (-want +got):\n%s", diff)
	}
}

func TestBrands(t *testing.T) {
	catalogue := []model.Synth{
		synth("1", "Moog", "A", ptr(1)),
		synth("2", "Korg", "B", ptr(1)),
		synth("3", "Moog", "C", ptr(1)),
		synth("4", "", "D", ptr(1)),
	}

	if diff := cmp.Diff([]string{"Korg", "Moog"}, Brands(catalogue, "")); diff != "" {
		t.Errorf("Brands() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Korg"}, Brands(catalogue, "kor")); diff != "" {
		t.Errorf("Brands(search) mismatch (-want +got):\n%s", diff)
	}
}

func TestStore(t *testing.T) {
	store := NewStore()

	if got := store.Snapshot(); len(got) != 0 {
		t.Fatalf("empty store returned %d synths", len(got))
	}
	if !store.LastScrape().IsZero() {
		t.Fatal("empty store has a last scrape time")
	}

	snapshot := []model.Synth{synth("1", "Moog", "A", ptr(100))}
	scraped := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	store.Replace(snapshot, scraped)

	if diff := cmp.Diff(snapshot, store.Snapshot()); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
	if got := store.LastScrape(); !got.Equal(scraped) {
		t.Errorf("LastScrape() = %v, want %v", got, scraped)
	}

	got, ok := store.Get("1")
	if !ok || got.ID != "1" {
		t.Errorf("Get(1) = %+v, %v", got, ok)
	}
	if _, ok := store.Get("missing"); ok {
		t.Error("Get(missing) found a synth")
	}
}
