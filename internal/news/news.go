// Package news polls retailer announcement feeds for new-arrival posts.
package news

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Item is one retailer announcement.
type Item struct {
	Title       string
	Description string
	Link        string
	GUID        string
}

// Watcher downloads and parses retailer RSS/Atom feeds.
type Watcher struct {
	client  HTTPClient
	timeout time.Duration
}

// New creates a Watcher with the given HTTP client.
func New(client HTTPClient) *Watcher {
	return &Watcher{
		client:  client,
		timeout: 30 * time.Second,
	}
}

// Fetch downloads and parses an announcement feed from the given URL.
func (w *Watcher) Fetch(ctx context.Context, url string) ([]Item, string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "SynthLobby/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, "", fmt.Errorf("parse feed: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		desc := it.Description
		if len(desc) > 300 {
			desc = desc[:300] + "..."
		}
		items = append(items, Item{
			Title:       it.Title,
			Description: desc,
			Link:        it.Link,
			GUID:        itemGUID(it),
		})
	}
	return items, feed.Title, nil
}

// itemGUID returns the GUID for a feed item. If the item has no GUID, a
// SHA-256 hash of title+link is used.
func itemGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	h := sha256.Sum256([]byte(item.Title + "|" + item.Link))
	return fmt.Sprintf("sha256:%x", h[:16])
}
