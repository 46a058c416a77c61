package models

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OddsEvent represents a sports event with betting odds from one or more bookmakers
type OddsEvent struct {
	ID           string      `json:"id"`
	Sport        string      `json:"sport"`
	HomeTeam     string      `json:"homeTeam"`
	AwayTeam     string      `json:"awayTeam"`
	CommenceTime time.Time   `json:"commenceTime"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker represents a bookmaker and the outcomes it prices for an event
type Bookmaker struct {
	Name     string    `json:"name"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome represents a single betting outcome priced in decimal odds
type Outcome struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"` // Decimal odds, e.g. 1.85
}

// KafkaOddsSnapshotMessage represents a full odds snapshot pushed on the feed topic
type KafkaOddsSnapshotMessage struct {
	Events    []OddsEvent `json:"events"`
	Timestamp time.Time   `json:"timestamp"`
	BatchID   string      `json:"batch_id"`
}

// DisplayTitle returns the "Home vs Away" title of the event
func (e OddsEvent) DisplayTitle() string {
	return e.HomeTeam + " vs " + e.AwayTeam
}

// IsLive reports whether the event has started at the given instant
func (e OddsEvent) IsLive(now time.Time) bool {
	return !e.CommenceTime.After(now)
}

// HasOutcome reports whether the bookmaker prices an outcome with the given name (case-insensitive)
func (b Bookmaker) HasOutcome(name string) bool {
	for _, o := range b.Outcomes {
		if strings.EqualFold(o.Name, name) {
			return true
		}
	}
	return false
}

// FilterBySport returns the events of the given sport, preserving order.
// An empty sport returns the input unchanged.
func FilterBySport(events []OddsEvent, sport string) []OddsEvent {
	if sport == "" {
		return events
	}

	filtered := make([]OddsEvent, 0, len(events))
	for _, e := range events {
		if e.Sport == sport {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// UniqueSports returns the sorted set of sports present in events
func UniqueSports(events []OddsEvent) []string {
	seen := make(map[string]struct{}, len(events))
	sports := make([]string, 0)
	for _, e := range events {
		if _, ok := seen[e.Sport]; ok {
			continue
		}
		seen[e.Sport] = struct{}{}
		sports = append(sports, e.Sport)
	}
	sort.Strings(sports)
	return sports
}

// FindEvent returns the event with the given ID
func FindEvent(events []OddsEvent, id string) (OddsEvent, bool) {
	for _, e := range events {
		if e.ID == id {
			return e, true
		}
	}
	return OddsEvent{}, false
}
