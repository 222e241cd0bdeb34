package model

const analysisNotAvailable = "Analysis not available."

// Insights is the private-equity style commentary produced for a business.
type Insights struct {
	Summary         string `json:"summary"`
	GrowthPotential string `json:"growth_potential"`
	MarketPosition  string `json:"market_position"`
	ValueCreation   string `json:"value_creation"`
	RiskFactors     string `json:"risk_factors"`
	NextSteps       string `json:"next_steps"`
}

// FallbackInsights returns the fixed structure used when no analysis could
// be produced, with the given summary line.
func FallbackInsights(summary string) Insights {
	return Insights{
		Summary:         summary,
		GrowthPotential: analysisNotAvailable,
		MarketPosition:  analysisNotAvailable,
		ValueCreation:   analysisNotAvailable,
		RiskFactors:     analysisNotAvailable,
		NextSteps:       analysisNotAvailable,
	}
}
