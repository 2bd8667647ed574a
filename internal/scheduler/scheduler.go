// Package scheduler drives the periodic catalogue refresh and fans out
// price-drop and new-arrival notifications.
package scheduler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"synthlobby/internal/bot"
	"synthlobby/internal/catalog"
	"synthlobby/internal/fetcher"
	"synthlobby/internal/news"
	"synthlobby/internal/pricing"
	"synthlobby/internal/storage"
)

// Sender is the interface for sending Telegram messages.
type Sender interface {
	SendMessage(chatID int64, text string)
}

// Config holds the scheduler's tunables.
type Config struct {
	CatalogURL    string
	LastScrapeURL string
	NewsFeeds     []string
	Interval      time.Duration
	WindowDays    int
}

// Scheduler refreshes the catalogue snapshot and sends notifications.
type Scheduler struct {
	cfg     Config
	store   storage.Storage
	catalog *catalog.Store
	fetcher *fetcher.Fetcher
	news    *news.Watcher
	sender  Sender
	log     *slog.Logger
	now     func() time.Time
}

// New creates a Scheduler with the default HTTP client. A nil sender
// disables notifications; the catalogue is still refreshed.
func New(cfg Config, store storage.Storage, cat *catalog.Store, sender Sender, log *slog.Logger) *Scheduler {
	s := &Scheduler{
		cfg:     cfg,
		store:   store,
		catalog: cat,
		fetcher: fetcher.New(http.DefaultClient),
		news:    news.New(http.DefaultClient),
		sender:  sender,
		log:     log,
		now:     time.Now,
	}
	if s.cfg.Interval <= 0 {
		s.cfg.Interval = time.Hour
	}
	if s.cfg.WindowDays <= 0 {
		s.cfg.WindowDays = pricing.DefaultWindowDays
	}
	return s
}

// Run starts the scheduler loop, blocking until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.tick(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	s.refresh(ctx)
	if s.sender != nil {
		s.alertPriceDrops(ctx)
		s.broadcastNews(ctx)
	}
}

func (s *Scheduler) refresh(ctx context.Context) {
	synths, err := s.fetcher.Fetch(ctx, s.cfg.CatalogURL)
	if err != nil {
		s.log.Error("fetch catalogue", "url", s.cfg.CatalogURL, "error", err)
		return
	}

	scrapedAt := s.now().UTC()
	if s.cfg.LastScrapeURL != "" {
		if t, err := s.fetcher.FetchLastScrape(ctx, s.cfg.LastScrapeURL); err != nil {
			s.log.Warn("fetch last scrape", "url", s.cfg.LastScrapeURL, "error", err)
		} else {
			scrapedAt = t
		}
	}

	s.catalog.Replace(synths, scrapedAt)
	s.log.Info("catalogue refreshed", "synths", len(synths), "scraped_at", scrapedAt)
}

func (s *Scheduler) alertPriceDrops(ctx context.Context) {
	subs, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		s.log.Error("list subscriptions", "error", err)
		return
	}

	now := s.now()
	today := now.UTC().Format("2006-01-02")
	sent := 0

	for _, sub := range subs {
		if ctx.Err() != nil {
			return
		}

		synth, ok := s.catalog.Get(sub.SynthID)
		if !ok {
			continue
		}
		change := pricing.RecentChange(synth.Prices, now, s.cfg.WindowDays)
		if change.PercentChange == nil || *change.PercentChange >= 0 {
			continue
		}

		alerted, err := s.store.WasAlerted(ctx, sub.UserID, sub.SynthID, today)
		if err != nil {
			s.log.Error("check alerted", "user_id", sub.UserID, "synth_id", sub.SynthID, "error", err)
			continue
		}
		if alerted {
			continue
		}

		s.sender.SendMessage(sub.ChatID, bot.FormatPriceDrop(synth, change))
		sent++

		if err := s.store.MarkAlerted(ctx, sub.UserID, sub.SynthID, today, *change.CurrentPrice); err != nil {
			s.log.Error("mark alerted", "user_id", sub.UserID, "synth_id", sub.SynthID, "error", err)
		}

		// Rate limit: ~20 messages/sec max for Telegram
		time.Sleep(50 * time.Millisecond)
	}

	if sent > 0 {
		s.log.Info("sent price-drop alerts", "count", sent)
	}
}

func (s *Scheduler) broadcastNews(ctx context.Context) {
	if len(s.cfg.NewsFeeds) == 0 {
		return
	}

	chats, err := s.store.ListChats(ctx)
	if err != nil {
		s.log.Error("list chats", "error", err)
		return
	}
	if len(chats) == 0 {
		return
	}

	for _, feedURL := range s.cfg.NewsFeeds {
		if ctx.Err() != nil {
			return
		}
		s.processFeed(ctx, feedURL, chats)
	}
}

func (s *Scheduler) processFeed(ctx context.Context, feedURL string, chats []int64) {
	items, title, err := s.news.Fetch(ctx, feedURL)
	if err != nil {
		s.log.Error("fetch news feed", "url", feedURL, "error", err)
		return
	}

	for _, item := range items {
		seen, err := s.store.IsNewsSeen(ctx, feedURL, item.GUID)
		if err != nil {
			s.log.Error("check news seen", "url", feedURL, "guid", item.GUID, "error", err)
			continue
		}
		if seen {
			continue
		}

		msg := bot.FormatNewsItem(title, item)
		for _, chatID := range chats {
			s.sender.SendMessage(chatID, msg)
			time.Sleep(50 * time.Millisecond)
		}

		if err := s.store.MarkNewsSeen(ctx, feedURL, item.GUID); err != nil {
			s.log.Error("mark news seen", "url", feedURL, "guid", item.GUID, "error", err)
		}
	}
}
