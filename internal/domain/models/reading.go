package models

import "time"

// ReadingKind tells the resolver how to turn a Reading into a dial value.
type ReadingKind string

const (
	// KindPercentage carries a direct 0-100 value.
	KindPercentage ReadingKind = "percentage"
	// KindOdds carries decimal odds for mutually exclusive outcomes.
	KindOdds ReadingKind = "odds"
)

// Reading is one successful fetch from a signal source.
type Reading struct {
	Source     string             `json:"source"`
	Kind       ReadingKind        `json:"kind"`
	Percentage float64            `json:"percentage,omitempty"`
	Odds       map[string]float64 `json:"odds,omitempty"`
	// Window is the interval the upstream data describes, when it reports one.
	WindowFrom time.Time `json:"window_from,omitempty"`
	WindowTo   time.Time `json:"window_to,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
	Cached     bool      `json:"cached,omitempty"`
}

// FuelShare is one row of a generation mix.
type FuelShare struct {
	Fuel string   `json:"fuel"`
	Perc *float64 `json:"perc"`
}
