// Package model defines the domain types used across the application.
package model

import (
	"strings"
	"time"
)

// Availability is the normalized stock status of a listing.
type Availability string

// Normalized availability values.
const (
	AvailabilityInStock       Availability = "in stock"
	AvailabilitySoldOut       Availability = "sold out"
	AvailabilityAvailableSoon Availability = "available soon"
	AvailabilityUnknown       Availability = "unknown"
)

// PricePoint is one retailer price reading for a synth.
// Date is an ISO yyyy-mm-dd string, so lexicographic order is
// chronological order. A nil Price means the price was unknown that day.
type PricePoint struct {
	Date  string   `json:"date"`
	Price *float64 `json:"price"`
}

// Synth is one catalogue listing. The ID comes from the ingestion source
// and is unique within a catalogue snapshot.
type Synth struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Brand        string       `json:"brand"`
	Source       string       `json:"source"`
	Availability Availability `json:"availability"`
	URL          string       `json:"href"`
	Image        string       `json:"image"`
	Price        *float64     `json:"price"`
	Prices       []PricePoint `json:"prices"`
}

// PriceChange describes the most recent price movement of a synth.
// PercentChange is only set when both prices are set and the previous
// price is non-zero.
type PriceChange struct {
	CurrentPrice  *float64 `json:"currentPrice"`
	PreviousPrice *float64 `json:"previousPrice"`
	PercentChange *float64 `json:"percentChange"`
}

// User is an account resolved from an opaque auth key. ChatID is set once
// the user has bound a Telegram chat with /start.
type User struct {
	ID        int64
	AuthKey   string
	ChatID    *int64
	CreatedAt time.Time
}

// WatchedSynth is a wishlist entry with its notification setting.
type WatchedSynth struct {
	SynthID              string `json:"synthId"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
}

// Profile holds a user's wishlist and compare list.
type Profile struct {
	WatchedSynths []WatchedSynth `json:"likedSynths"`
	CompareList   []string       `json:"compareList"`
}

// WatchedIDs returns the set of watched synth IDs.
func (p *Profile) WatchedIDs() map[string]bool {
	ids := make(map[string]bool, len(p.WatchedSynths))
	for _, w := range p.WatchedSynths {
		ids[w.SynthID] = true
	}
	return ids
}

// CompareIDs returns the set of compared synth IDs.
func (p *Profile) CompareIDs() map[string]bool {
	ids := make(map[string]bool, len(p.CompareList))
	for _, id := range p.CompareList {
		ids[id] = true
	}
	return ids
}

// NormalizeAvailability maps a free-form retailer status string onto the
// Availability enumeration. Unrecognized values become AvailabilityUnknown.
func NormalizeAvailability(raw string) Availability {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case string(AvailabilityInStock), string(AvailabilitySoldOut),
		string(AvailabilityAvailableSoon), string(AvailabilityUnknown):
		return Availability(s)
	}
	switch {
	case strings.Contains(s, "in stock") || strings.Contains(s, "instock") || s == "available":
		return AvailabilityInStock
	case strings.Contains(s, "sold out") || strings.Contains(s, "soldout") || strings.Contains(s, "out of stock"):
		return AvailabilitySoldOut
	case strings.Contains(s, "soon") || strings.Contains(s, "pre-order") || strings.Contains(s, "preorder") || strings.Contains(s, "backorder"):
		return AvailabilityAvailableSoon
	}
	return AvailabilityUnknown
}
