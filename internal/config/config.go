// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	CatalogURL       string
	LastScrapeURL    string
	DatabasePath     string
	HTTPAddr         string
	TelegramBotToken string
	RefreshMinutes   int
	WindowDays       int
	NewsFeeds        []string
	LogLevel         string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	catalogURL := os.Getenv("CATALOG_URL")
	if catalogURL == "" {
		return nil, fmt.Errorf("CATALOG_URL is required")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/synthlobby.db"
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	refresh, err := intEnv("REFRESH_INTERVAL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	window, err := intEnv("PRICE_WINDOW_DAYS", 5)
	if err != nil {
		return nil, err
	}

	var feeds []string
	if raw := os.Getenv("NEWS_FEEDS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			feeds = append(feeds, s)
		}
	}

	return &Config{
		CatalogURL:       catalogURL,
		LastScrapeURL:    os.Getenv("LAST_SCRAPE_URL"),
		DatabasePath:     dbPath,
		HTTPAddr:         addr,
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		RefreshMinutes:   refresh,
		WindowDays:       window,
		NewsFeeds:        feeds,
		LogLevel:         logLevel,
	}, nil
}

// NotificationsEnabled reports whether the Telegram side of the service is
// configured.
func (c *Config) NotificationsEnabled() bool {
	return c.TelegramBotToken != ""
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, v)
	}
	return v, nil
}
