// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"errors"

	"synthlobby/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Subscription is one (user, synth) pair that wants price-drop alerts
// delivered to a Telegram chat.
type Subscription struct {
	UserID  int64
	ChatID  int64
	SynthID string
}

// Storage is the interface for all persistence operations.
type Storage interface {
	GetOrCreateUser(ctx context.Context, authKey string) (*model.User, error)
	BindChat(ctx context.Context, userID, chatID int64) error
	UserByChat(ctx context.Context, chatID int64) (*model.User, error)

	GetProfile(ctx context.Context, userID int64) (*model.Profile, error)
	ToggleWatch(ctx context.Context, userID int64, synthID string) (*model.Profile, error)
	SetNotifications(ctx context.Context, userID int64, synthID string, enabled bool) (*model.Profile, error)
	ToggleCompare(ctx context.Context, userID int64, synthID string) (*model.Profile, error)

	ListSubscriptions(ctx context.Context) ([]Subscription, error)
	WasAlerted(ctx context.Context, userID int64, synthID, date string) (bool, error)
	MarkAlerted(ctx context.Context, userID int64, synthID, date string, price float64) error

	ListChats(ctx context.Context) ([]int64, error)
	IsNewsSeen(ctx context.Context, feedURL, guid string) (bool, error)
	MarkNewsSeen(ctx context.Context, feedURL, guid string) error

	Close() error
}
