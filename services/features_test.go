package services

import (
	"testing"

	"rate-comparison/models"
)

func TestFeatureTagPriority(t *testing.T) {
	tests := []struct {
		name string
		obs  models.RateObservation
		want string
	}{
		{"none", models.RateObservation{}, "Ground Level / Non-Climate"},
		{"drive-up beats all", models.RateObservation{DriveUp: true, Elevator: true, Outdoor: true}, "Drive-Up / Non-Climate"},
		{"elevator beats outdoor", models.RateObservation{Elevator: true, Outdoor: true}, "Elevator / Non-Climate"},
		{"outdoor", models.RateObservation{Outdoor: true}, "Outdoor / Non-Climate"},
		{"climate beats humidity", models.RateObservation{Climate: true, Humidity: true}, "Ground Level / Climate Controlled"},
		{"humidity", models.RateObservation{Elevator: true, Humidity: true}, "Elevator / Humidity Controlled"},
	}
	for _, tt := range tests {
		if got := FeatureTag(tt.obs); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFeatureCodeFallback(t *testing.T) {
	tests := []struct {
		obs  models.RateObservation
		want string
	}{
		{models.RateObservation{DriveUp: true, Climate: true}, "DUCC"},
		{models.RateObservation{DriveUp: true}, "DU"},
		{models.RateObservation{DriveUp: true, Humidity: true}, "DU"},
		{models.RateObservation{Elevator: true, Climate: true}, "ECC"},
		{models.RateObservation{Elevator: true}, "ENCC"},
		{models.RateObservation{Outdoor: true, Climate: true}, "GLCC"},
		{models.RateObservation{Outdoor: true}, "GNCC"},
		{models.RateObservation{Climate: true}, "GLCC"},
		{models.RateObservation{Humidity: true}, "GNCC"},
	}
	for _, tt := range tests {
		if got := FeatureCodeFor(tt.obs, nil); got != tt.want {
			t.Errorf("FeatureCodeFor(%s): got %q, want %q", FeatureTag(tt.obs), got, tt.want)
		}
	}
}

func TestFeatureCodeCuratedLookup(t *testing.T) {
	codes := []models.FeatureCode{
		{OriginalTag: "Outdoor / Non-Climate", Code: "OUT"},
		{OriginalTag: "drive-up / climate controlled", Code: "lower"},
	}

	if got := FeatureCodeFor(models.RateObservation{Outdoor: true}, codes); got != "OUT" {
		t.Errorf("curated code: got %q, want %q", got, "OUT")
	}
	// lookup is an exact match on the stored tag
	if got := FeatureCodeFor(models.RateObservation{DriveUp: true, Climate: true}, codes); got != "DUCC" {
		t.Errorf("case-mismatched tag: got %q, want %q", got, "DUCC")
	}
}
