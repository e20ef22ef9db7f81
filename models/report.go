package models

import "time"

// Window is a trailing period of whole calendar months.
type Window struct {
	Label  string
	Months int
}

// WindowCount is the number of trailing windows in a report.
const WindowCount = 4

// Windows are the report windows in display order.
var Windows = [WindowCount]Window{
	{Label: "T-12", Months: 12},
	{Label: "T-6", Months: 6},
	{Label: "T-3", Months: 3},
	{Label: "T-1", Months: 1},
}

// WindowFigures are the mean prices for one window. A nil field means the
// window had no qualifying samples.
type WindowFigures struct {
	AdjustedAsking *float64 `json:"adjusted_asking"`
	Asking         *float64 `json:"asking"`
	InStore        *float64 `json:"in_store"`
}

// StoreRow is one store's figures inside a report group.
type StoreRow struct {
	StoreID       string                     `json:"store_id"`
	Name          string                     `json:"name"`
	IsSubject     bool                       `json:"is_subject"`
	Distance      *float64                   `json:"distance"`
	YearBuilt     *int                       `json:"year_built"`
	SquareFootage *int                       `json:"square_footage"`
	Adjustment    float64                    `json:"adjustment"`
	Observations  int                        `json:"observations"`
	Windows       [WindowCount]WindowFigures `json:"windows"`
}

// GroupAverage is the pooled baseline row of a group. AdjustedAsking is
// always nil in its windows.
type GroupAverage struct {
	Observations int                        `json:"observations"`
	Windows      [WindowCount]WindowFigures `json:"windows"`
}

// ReportGroup collects the rows for one (size, feature code) pair.
type ReportGroup struct {
	Size        string       `json:"size"`
	FeatureCode string       `json:"feature_code"`
	Area        float64      `json:"area"`
	Rows        []StoreRow   `json:"rows"`
	Average     GroupAverage `json:"average"`
	MarketShare float64      `json:"market_share"`
}

// GroupedReport is the output of the rate aggregation.
type GroupedReport struct {
	GeneratedAt       time.Time     `json:"generated_at"`
	SubjectStoreID    string        `json:"subject_store_id"`
	TotalObservations int           `json:"total_observations"`
	Groups            []ReportGroup `json:"groups"`
}
