package models

import "time"

// RawRate holds an unprocessed rate row as collected from a store's rate
// page or an upstream feed. It is written to the full data dump before any
// cleaning.
type RawRate struct {
	StoreID    string
	Size       string
	Features   string
	RawAsking  string
	RawInStore string
	ObservedAt time.Time
	SourceURL  string
	Source     string
}

// RateObservation is one posted price sample for a unit.
// Asking and InStore are independently optional; nil means no value.
type RateObservation struct {
	ID       int64     `json:"id,omitempty"`
	StoreID  string    `json:"store_id"`
	Size     string    `json:"size"`
	DriveUp  bool      `json:"drive_up"`
	Elevator bool      `json:"elevator"`
	Outdoor  bool      `json:"outdoor"`
	Climate  bool      `json:"climate_controlled"`
	Humidity bool      `json:"humidity_controlled"`
	Date     time.Time `json:"date"`
	Asking   *float64  `json:"asking,omitempty"`
	InStore  *float64  `json:"in_store,omitempty"`
}

// Store is a facility taking part in the comparison. Distance is in miles
// from the subject store (0 for the subject itself).
type Store struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Address  string  `json:"address,omitempty"`
	Distance float64 `json:"distance"`
	RatesURL string  `json:"rates_url,omitempty"`
}

// StoreMetadata is optional per-store enrichment.
type StoreMetadata struct {
	YearBuilt     *int `json:"year_built,omitempty"`
	SquareFootage *int `json:"square_footage,omitempty"`
}

// Ranking categories scored per store.
const (
	RankLocation      = "Location"
	RankAge           = "Age"
	RankAccessibility = "Accessibility"
	RankVPD           = "VPD"
	RankVisibility    = "Visibility & Signage"
	RankBrand         = "Brand"
	RankQuality       = "Quality"
	RankSize          = "Size"
)

// RankingCategories lists the eight fixed categories in display order.
var RankingCategories = []string{
	RankLocation, RankAge, RankAccessibility, RankVPD,
	RankVisibility, RankBrand, RankQuality, RankSize,
}

// DefaultRankingScore is used for any category without a recorded score.
const DefaultRankingScore = 5

// StoreRankings holds integer scores keyed by ranking category.
type StoreRankings map[string]int

// Score returns the category score, or DefaultRankingScore when unset.
func (r StoreRankings) Score(category string) int {
	if v, ok := r[category]; ok {
		return v
	}
	return DefaultRankingScore
}

// AdjustmentFactors are percentage components summed into the base
// adjustment applied to every non-subject store.
type AdjustmentFactors struct {
	CaptiveMarketPremium float64 `json:"captive_market_premium"`
	LossToLease          float64 `json:"loss_to_lease"`
	CCAdjustment         float64 `json:"cc_adjustment"`
}

// Total returns the summed percentage.
func (a AdjustmentFactors) Total() float64 {
	return a.CaptiveMarketPremium + a.LossToLease + a.CCAdjustment
}

// FeatureCode maps a derived feature tag such as
// "Drive-Up / Climate Controlled" to a short code such as "DUCC".
type FeatureCode struct {
	OriginalTag string `json:"original_tag"`
	Code        string `json:"code"`
}
