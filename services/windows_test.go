package services

import (
	"testing"
	"time"

	"rate-comparison/models"
)

func TestMonthsBack(t *testing.T) {
	tests := []struct {
		now  time.Time
		n    int
		want time.Time
	}{
		{time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC), 1, time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)},
		{time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC), 12, time.Date(2023, 6, 15, 10, 0, 0, 0, time.UTC)},
		{time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 3, time.Date(2023, 10, 31, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), 6, time.Date(2023, 8, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := MonthsBack(tt.now, tt.n); !got.Equal(tt.want) {
			t.Errorf("MonthsBack(%s, %d) = %s; want %s", tt.now.Format(time.DateOnly), tt.n, got, tt.want)
		}
	}
}

func TestWindowMeansEmptyIsNil(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	obs := []models.RateObservation{
		{Date: start.AddDate(0, -1, 0), Asking: ptr(100)},
		{Date: start.AddDate(0, 0, 1)},
	}
	asking, inStore := windowMeans(obs, start)
	if asking != nil || inStore != nil {
		t.Errorf("expected nil means, got %v / %v", asking, inStore)
	}
	if asking, _ := windowMeans(nil, start); asking != nil {
		t.Errorf("nil input: got %v, want nil", *asking)
	}
}

func TestWindowMeansIncludesStartAndSkipsMissing(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	obs := []models.RateObservation{
		{Date: start, Asking: ptr(100), InStore: ptr(90)},
		{Date: start.AddDate(0, 0, 3), Asking: ptr(120)},
		{Date: start.AddDate(0, 0, 5), InStore: ptr(110)},
	}
	asking, inStore := windowMeans(obs, start)
	if asking == nil || !approx(*asking, 110) {
		t.Errorf("asking: got %v, want 110", asking)
	}
	if inStore == nil || !approx(*inStore, 100) {
		t.Errorf("in-store: got %v, want 100", inStore)
	}
}

func TestAdjustedPropagatesNil(t *testing.T) {
	if Adjusted(nil, 0.05) != nil {
		t.Error("Adjusted(nil) should be nil")
	}
	if got := Adjusted(ptr(200), 0.1); got == nil || !approx(*got, 220) {
		t.Errorf("Adjusted(200, 0.1): got %v, want 220", got)
	}
}

func ptr(v float64) *float64 { return &v }
