package services

import "rate-comparison/models"

// Access and climate parts of a feature tag.
const (
	AccessDriveUp  = "Drive-Up"
	AccessElevator = "Elevator"
	AccessOutdoor  = "Outdoor"
	AccessGround   = "Ground Level"

	ClimateControlled = "Climate Controlled"
	ClimateHumidity   = "Humidity Controlled"
	ClimateNone       = "Non-Climate"
)

// AccessType picks the single highest-priority access flag:
// drive-up, then elevator, then outdoor, else ground level.
func AccessType(o models.RateObservation) string {
	switch {
	case o.DriveUp:
		return AccessDriveUp
	case o.Elevator:
		return AccessElevator
	case o.Outdoor:
		return AccessOutdoor
	default:
		return AccessGround
	}
}

// ClimateType picks climate control over humidity control over none.
func ClimateType(o models.RateObservation) string {
	switch {
	case o.Climate:
		return ClimateControlled
	case o.Humidity:
		return ClimateHumidity
	default:
		return ClimateNone
	}
}

// FeatureTag is the human-readable tag, e.g. "Drive-Up / Climate Controlled".
func FeatureTag(o models.RateObservation) string {
	return AccessType(o) + " / " + ClimateType(o)
}

// FeatureCodeFor resolves the observation's code through the curated list,
// falling back to the fixed table. The fallback does not distinguish outdoor
// from ground level and has no humidity-specific code.
func FeatureCodeFor(o models.RateObservation, codes []models.FeatureCode) string {
	tag := FeatureTag(o)
	for _, fc := range codes {
		if fc.OriginalTag == tag {
			return fc.Code
		}
	}
	return fallbackFeatureCode(AccessType(o), o.Climate)
}

func fallbackFeatureCode(access string, climate bool) string {
	switch access {
	case AccessDriveUp:
		if climate {
			return "DUCC"
		}
		return "DU"
	case AccessElevator:
		if climate {
			return "ECC"
		}
		return "ENCC"
	default:
		if climate {
			return "GLCC"
		}
		return "GNCC"
	}
}
