package predict

import "fmt"

// Risk level messages returned to clients
const (
	LowRisk      = "LOW RISK - Keep up the healthy lifestyle!"
	ModerateRisk = "MODERATE RISK - Consider regular checkups."
	HighRisk     = "HIGH RISK - Please consult a doctor immediately."
)

// Band boundaries. Each band includes its lower bound.
const (
	ModerateThreshold = 0.3
	HighThreshold     = 0.7
)

// RiskLevel buckets a positive-class probability into one of three messages
func RiskLevel(p float64) string {
	switch {
	case p < ModerateThreshold:
		return LowRisk
	case p < HighThreshold:
		return ModerateRisk
	default:
		return HighRisk
	}
}

// FormatProbability renders p as a percentage with one decimal, e.g. "74.2%"
func FormatProbability(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}
