package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"rate-comparison/models"
	"rate-comparison/utils"
)

var (
	// priceRegexp captures numeric price values
	priceRegexp = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
	// nonClimateRegexp matches explicit "no climate control" wording
	nonClimateRegexp = regexp.MustCompile(`\b(non|no|not)[\s-]*climate`)
)

// Cleaner transforms RawRates into validated RateObservations.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger.With("cleaner")}
}

// Clean processes raw rates and returns observations. Rows without a store
// or size are dropped, as are exact duplicates.
func (c *Cleaner) Clean(raw []*models.RawRate) []models.RateObservation {
	seen := make(map[string]struct{})
	result := make([]models.RateObservation, 0, len(raw))

	for _, r := range raw {
		storeID := strings.TrimSpace(r.StoreID)
		size := normaliseText(r.Size)
		if storeID == "" || size == "" {
			c.logger.Warn("Dropping rate row without store or size: %q/%q", r.StoreID, r.Size)
			continue
		}

		obs := models.RateObservation{
			StoreID: storeID,
			Size:    size,
			Date:    r.ObservedAt,
			Asking:  c.parsePrice(r.RawAsking),
			InStore: c.parsePrice(r.RawInStore),
		}
		applyFeatures(&obs, r.Features)

		key := dedupKey(obs)
		if _, dup := seen[key]; dup {
			c.logger.Debug("Duplicate rate row skipped: %s", key)
			continue
		}
		seen[key] = struct{}{}

		result = append(result, obs)
	}

	c.logger.Info("Cleaned %d → %d rate rows (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// parsePrice extracts the first numeric amount, e.g. "$1,200.50/mo" → 1200.50.
// Empty or non-numeric text ("Call for rate") yields nil.
func (c *Cleaner) parsePrice(raw string) *float64 {
	cleaned := strings.ReplaceAll(strings.ToLower(raw), ",", "")
	match := priceRegexp.FindString(cleaned)
	if match == "" {
		return nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

// applyFeatures sets the feature flags from free text such as
// "Drive-up access, Climate controlled".
func applyFeatures(o *models.RateObservation, text string) {
	t := strings.ToLower(text)
	o.DriveUp = strings.Contains(t, "drive")
	o.Elevator = strings.Contains(t, "elevator")
	o.Outdoor = strings.Contains(t, "outdoor") || strings.Contains(t, "exterior")
	o.Humidity = strings.Contains(t, "humidity")
	o.Climate = strings.Contains(t, "climate") && !nonClimateRegexp.MatchString(t)
}

func dedupKey(o models.RateObservation) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s", o.StoreID, NormalizeSize(o.Size), FeatureTag(o),
		o.Date.Format("2006-01-02"), priceKey(o.Asking), priceKey(o.InStore))
}

// priceKey keeps the exact amount so rates differing only in cents stay distinct.
func priceKey(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
