package services

import "rate-comparison/models"

// rankingPointWeight is the multiplier added per point of average ranking
// difference between the subject and a comparison store.
const rankingPointWeight = 0.01

// BaseAdjustment converts the summed percentage factors into a multiplier.
func BaseAdjustment(f models.AdjustmentFactors) float64 {
	return f.Total() / 100
}

// StoreAdjustment returns the adjustment multiplier for storeID. The subject
// is never adjusted; an empty subjectID designates no subject. Without rankings for both stores only the base applies.
func StoreAdjustment(storeID, subjectID string, factors models.AdjustmentFactors, rankings map[string]models.StoreRankings) float64 {
	if isSubject(storeID, subjectID) {
		return 0
	}
	base := BaseAdjustment(factors)

	subject, okSubject := rankings[subjectID]
	store, okStore := rankings[storeID]
	if !okSubject || !okStore {
		return base
	}

	var diff float64
	for _, cat := range models.RankingCategories {
		diff += float64(subject.Score(cat) - store.Score(cat))
	}
	avg := diff / float64(len(models.RankingCategories))
	return base + avg*rankingPointWeight
}

func isSubject(storeID, subjectID string) bool {
	return subjectID != "" && storeID == subjectID
}
