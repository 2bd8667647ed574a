// Package fetcher downloads the catalogue from the ingestion service and
// normalizes it into the strict domain shapes.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"synthlobby/internal/model"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads catalogue snapshots.
type Fetcher struct {
	client  HTTPClient
	timeout time.Duration
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient) *Fetcher {
	return &Fetcher{
		client:  client,
		timeout: 30 * time.Second,
	}
}

// rawSynth is the loose remote shape. Historical data sources disagree on
// casing and on whether prices are numbers or strings, so everything is
// validated and normalized here, at the single boundary.
type rawSynth struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Brand        string     `json:"brand"`
	Merk         string     `json:"merk"` // older snapshots use the Dutch field name
	Source       string     `json:"source"`
	Availability string     `json:"availability"`
	Href         string     `json:"href"`
	Image        string     `json:"image"`
	Price        rawPrice   `json:"price"`
	Prices       []rawPoint `json:"prices"`
}

type rawPoint struct {
	Date  string   `json:"date"`
	Price rawPrice `json:"price"`
}

// rawPrice accepts a JSON number, a numeric string, or null.
type rawPrice struct {
	value *float64
}

func (p *rawPrice) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		p.value = nil
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Unparseable prices mean "price unknown", not a fetch failure.
		p.value = nil
		return nil
	}
	p.value = &v
	return nil
}

type catalogueResponse struct {
	Synths []rawSynth `json:"synths"`
}

// Fetch downloads the catalogue from url and returns the normalized
// listings. Entries without an ID are skipped.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]model.Synth, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var resp catalogueResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}

	synths := make([]model.Synth, 0, len(resp.Synths))
	for _, raw := range resp.Synths {
		if raw.ID == "" {
			continue
		}
		synths = append(synths, normalize(raw))
	}
	return synths, nil
}

// FetchLastScrape downloads the ingestion service's last-scrape timestamp.
func (f *Fetcher) FetchLastScrape(ctx context.Context, url string) (time.Time, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		return time.Time{}, err
	}

	var stamp string
	if err := json.Unmarshal(body, &stamp); err != nil {
		stamp = strings.TrimSpace(string(body))
	}

	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last scrape %q: %w", stamp, err)
	}
	return t, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "SynthLobby/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 50*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func normalize(raw rawSynth) model.Synth {
	brand := raw.Brand
	if brand == "" {
		brand = raw.Merk
	}

	points := make([]model.PricePoint, 0, len(raw.Prices))
	for _, p := range raw.Prices {
		if p.Date == "" {
			continue
		}
		points = append(points, model.PricePoint{Date: p.Date, Price: p.Price.value})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	return model.Synth{
		ID:           raw.ID,
		Name:         raw.Name,
		Brand:        brand,
		Source:       raw.Source,
		Availability: model.NormalizeAvailability(raw.Availability),
		URL:          raw.Href,
		Image:        raw.Image,
		Price:        raw.Price.value,
		Prices:       points,
	}
}
