package forecast

// Risk thresholds on outbreak probability. This mapping is the primary
// externally visible contract of the service and must not drift between
// serving paths.
const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"

	lowThreshold  = 0.30
	highThreshold = 0.60
)

// FallbackProbability is substituted when prediction fails for a week.
const FallbackProbability = 0.45

// RiskLevel converts an outbreak probability to a discrete risk category.
func RiskLevel(probability float64) string {
	switch {
	case probability < lowThreshold:
		return RiskLow
	case probability < highThreshold:
		return RiskModerate
	default:
		return RiskHigh
	}
}
