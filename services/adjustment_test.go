package services

import (
	"math"
	"testing"

	"rate-comparison/models"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

var testFactors = models.AdjustmentFactors{CaptiveMarketPremium: 2, LossToLease: 2, CCAdjustment: 1}

func TestStoreAdjustmentSubjectIsZero(t *testing.T) {
	rankings := map[string]models.StoreRankings{"S": {models.RankLocation: 10}}
	if got := StoreAdjustment("S", "S", testFactors, rankings); got != 0 {
		t.Errorf("subject adjustment: got %v, want 0", got)
	}
}

func TestStoreAdjustmentBaseWithoutRankings(t *testing.T) {
	tests := []struct {
		name     string
		rankings map[string]models.StoreRankings
	}{
		{"no rankings", nil},
		{"subject missing", map[string]models.StoreRankings{"A": {models.RankAge: 1}}},
		{"store missing", map[string]models.StoreRankings{"S": {models.RankAge: 9}}},
	}
	for _, tt := range tests {
		if got := StoreAdjustment("A", "S", testFactors, tt.rankings); !approx(got, 0.05) {
			t.Errorf("%s: got %v, want 0.05", tt.name, got)
		}
	}
}

func TestStoreAdjustmentRankingRefinement(t *testing.T) {
	subject := models.StoreRankings{}
	store := models.StoreRankings{}
	for _, cat := range models.RankingCategories {
		subject[cat] = 7
		store[cat] = 3
	}
	rankings := map[string]models.StoreRankings{"S": subject, "A": store}

	// uniform 4 point gap -> +0.04 on top of the 5% base
	if got := StoreAdjustment("A", "S", testFactors, rankings); !approx(got, 0.09) {
		t.Errorf("lower-ranked store: got %v, want 0.09", got)
	}
	if got := StoreAdjustment("A", "S", models.AdjustmentFactors{}, map[string]models.StoreRankings{"S": store, "A": subject}); !approx(got, -0.04) {
		t.Errorf("higher-ranked store: got %v, want -0.04", got)
	}
}

func TestStoreAdjustmentMissingCategoriesDefaultToMidpoint(t *testing.T) {
	rankings := map[string]models.StoreRankings{
		"S": {models.RankLocation: 9},
		"A": {},
	}
	// only Location differs: (9-5)/8 * 0.01
	if got := StoreAdjustment("A", "S", models.AdjustmentFactors{}, rankings); !approx(got, 0.005) {
		t.Errorf("partial rankings: got %v, want 0.005", got)
	}
}

func TestStoreAdjustmentEmptySubjectAdjustsEveryStore(t *testing.T) {
	if got := StoreAdjustment("", "", testFactors, nil); !approx(got, 0.05) {
		t.Errorf("empty store with no subject: got %v, want 0.05", got)
	}
}
