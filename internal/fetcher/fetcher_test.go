package fetcher

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"synthlobby/internal/model"
)

type mockTransport struct {
	body       string
	statusCode int
	err        error
}

func (m *mockTransport) Do(_ *http.Request) (*http.Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

func loadFixture(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test-only fixture loading
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return string(data)
}

func ptr(v float64) *float64 { return &v }

func TestFetch(t *testing.T) {
	body := loadFixture(t, "testdata/catalogue.json")

	f := New(&mockTransport{body: body, statusCode: 200})
	synths, err := f.Fetch(context.Background(), "https://example.com/data/synths")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	want := []model.Synth{
		{
			ID:           "moog-sub37-thomann",
			Name:         "Subsequent 37",
			Brand:        "Moog",
			Source:       "thomann",
			Availability: model.AvailabilityInStock,
			URL:          "https://example.com/moog-subsequent-37",
			Image:        "https://example.com/img/sub37.jpg",
			Price:        ptr(1499),
			Prices: []model.PricePoint{
				{Date: "2024-01-03", Price: ptr(1599)},
				{Date: "2024-01-04", Price: nil},
				{Date: "2024-01-05", Price: ptr(1499)},
			},
		},
		{
			ID:           "korg-minilogue-bax",
			Name:         "Minilogue XD",
			Brand:        "Korg",
			Source:       "bax",
			Availability: model.AvailabilityInStock,
			URL:          "https://example.com/korg-minilogue-xd",
			Image:        "https://example.com/img/minilogue.jpg",
			Price:        ptr(599),
			Prices: []model.PricePoint{
				{Date: "2024-01-05", Price: ptr(599)},
			},
		},
		{
			ID:           "sequential-prophet6",
			Name:         "Prophet-6",
			Brand:        "Sequential",
			Source:       "musicstore",
			Availability: model.AvailabilityUnknown,
			URL:          "https://example.com/prophet-6",
			Image:        "https://example.com/img/prophet6.jpg",
			Price:        nil,
			Prices:       []model.PricePoint{},
		},
	}

	if diff := cmp.Diff(want, synths); diff != "" {
		t.Errorf("Fetch() mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name      string
		transport *mockTransport
	}{
		{"http error status", &mockTransport{body: "not found", statusCode: 404}},
		{"network error", &mockTransport{err: io.ErrUnexpectedEOF}},
		{"invalid json", &mockTransport{body: "<html>nope</html>", statusCode: 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.transport)
			if _, err := f.Fetch(context.Background(), "https://example.com/data/synths"); err == nil {
				t.Error("Fetch() expected an error")
			}
		})
	}
}

func TestFetchLastScrape(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    time.Time
		wantErr bool
	}{
		{
			name: "json string",
			body: `"2024-01-05T08:30:00Z"`,
			want: time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC),
		},
		{
			name: "bare timestamp",
			body: "2024-01-05T08:30:00Z",
			want: time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC),
		},
		{
			name:    "garbage",
			body:    "yesterday-ish",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(&mockTransport{body: tt.body, statusCode: 200})
			got, err := f.FetchLastScrape(context.Background(), "https://example.com/data/last-scrape")
			if tt.wantErr {
				if err == nil {
					t.Error("FetchLastScrape() expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchLastScrape() error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("FetchLastScrape() = %v, want %v", got, tt.want)
			}
		})
	}
}
