package models

import "time"

// ReportInput is everything the rate aggregation reads. It is passed by
// value and never retained.
type ReportInput struct {
	Observations   []RateObservation
	SelectedSizes  []string
	SubjectStoreID string
	Stores         []Store
	Metadata       map[string]StoreMetadata
	Rankings       map[string]StoreRankings
	Adjustments    AdjustmentFactors
	FeatureCodes   []FeatureCode
	CustomNames    map[string]string
	Now            time.Time
}

// WizardState is the full state of one rate comparison analysis as the
// user builds it step by step.
type WizardState struct {
	Step                int                      `json:"step"`
	SearchQuery         string                   `json:"search_query,omitempty"`
	SubjectStoreID      string                   `json:"subject_store_id"`
	SelectedCompetitors []string                 `json:"selected_competitors,omitempty"`
	Stores              []Store                  `json:"stores"`
	Metadata            map[string]StoreMetadata `json:"metadata,omitempty"`
	Rankings            map[string]StoreRankings `json:"rankings,omitempty"`
	Adjustments         AdjustmentFactors        `json:"adjustments"`
	FeatureCodes        []FeatureCode            `json:"feature_codes,omitempty"`
	CustomNames         map[string]string        `json:"custom_names,omitempty"`
	SelectedSizes       []string                 `json:"selected_sizes,omitempty"`
}

// StoreIDs returns the subject plus selected competitors. When no
// competitors are selected every known store is returned.
func (w WizardState) StoreIDs() []string {
	if len(w.SelectedCompetitors) == 0 {
		ids := make([]string, 0, len(w.Stores))
		for _, s := range w.Stores {
			ids = append(ids, s.ID)
		}
		return ids
	}
	ids := make([]string, 0, len(w.SelectedCompetitors)+1)
	if w.SubjectStoreID != "" {
		ids = append(ids, w.SubjectStoreID)
	}
	for _, id := range w.SelectedCompetitors {
		if id != w.SubjectStoreID {
			ids = append(ids, id)
		}
	}
	return ids
}

// ReportInput builds the aggregation input from the wizard state. When a
// competitor selection exists, observations of other stores are dropped.
func (w WizardState) ReportInput(observations []RateObservation, now time.Time) ReportInput {
	if len(w.SelectedCompetitors) > 0 {
		keep := make(map[string]struct{})
		for _, id := range w.StoreIDs() {
			keep[id] = struct{}{}
		}
		filtered := make([]RateObservation, 0, len(observations))
		for _, o := range observations {
			if _, ok := keep[o.StoreID]; ok {
				filtered = append(filtered, o)
			}
		}
		observations = filtered
	}

	return ReportInput{
		Observations:   observations,
		SelectedSizes:  w.SelectedSizes,
		SubjectStoreID: w.SubjectStoreID,
		Stores:         w.Stores,
		Metadata:       w.Metadata,
		Rankings:       w.Rankings,
		Adjustments:    w.Adjustments,
		FeatureCodes:   w.FeatureCodes,
		CustomNames:    w.CustomNames,
		Now:            now,
	}
}
