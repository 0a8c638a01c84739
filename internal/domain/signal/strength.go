package signal

// Strength conventions used by upstream collectors. Exposed so the ingest
// path can assign sensible defaults when a collector reports only the raw
// action that occurred.

// EngagementStrength maps a content-engagement action to its strength.
// Unknown actions fall back to the package default of 0.5.
func EngagementStrength(action string) float64 {
	switch action {
	case "like":
		return 0.3
	case "comment":
		return 0.7
	case "share":
		return 0.9
	default:
		return defaultStrength
	}
}

// FundingStrength maps a normalized funding round to its strength; larger
// rounds are stronger budget signals.
func FundingStrength(round string) float64 {
	strengths := map[string]float64{
		"pre_seed": 0.4,
		"seed":     0.5,
		"series_a": 0.7,
		"series_b": 0.8,
		"series_c": 0.9,
		"series_d": 0.95,
		"ipo":      1.0,
	}
	if s, ok := strengths[round]; ok {
		return s
	}
	return defaultStrength
}

// VisitStrength scales profile-visit strength with repeat visits, capped at
// 1.0.
func VisitStrength(visitCount int) float64 {
	s := 0.3 + float64(visitCount)*0.15
	if s > 1.0 {
		return 1.0
	}
	return s
}
