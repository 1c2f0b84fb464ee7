package prediction

// Risk levels, ordered. The four brackets partition [0,100] exactly; the
// boundary values 30, 50 and 70 belong to the upper bracket.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskVeryHigh = "very_high"
)

// Classify maps a risk score in [0,100] to its ordinal level.
func Classify(score float64) string {
	switch {
	case score < 30:
		return RiskLow
	case score < 50:
		return RiskMedium
	case score < 70:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}
