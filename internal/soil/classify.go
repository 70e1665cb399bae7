package soil

// Qualitative bands shown at the diagnostics stage. Band edges match the
// agronomic guidance the portal presents alongside the raw figures.

// OrganicMatterBand classifies soil organic matter content.
type OrganicMatterBand string

const (
	OrganicMatterLow      OrganicMatterBand = "Low"
	OrganicMatterModerate OrganicMatterBand = "Moderate"
	OrganicMatterGood     OrganicMatterBand = "Good"
)

// PHBand classifies soil pH.
type PHBand string

const (
	PHExtremelyLow  PHBand = "Extremely Low"
	PHLow           PHBand = "Low pH"
	PHGood          PHBand = "Good pH"
	PHHigh          PHBand = "High pH"
	PHExtremelyHigh PHBand = "Extremely High"
)

// DepthBand classifies soil depth.
type DepthBand string

const (
	DepthVeryLow  DepthBand = "Very Low Depth"
	DepthAdequate DepthBand = "Adequate Depth"
	DepthVeryHigh DepthBand = "Very High Depth"
)

// ClassifyOrganicMatter bands an organic-matter percentage.
func ClassifyOrganicMatter(somPct float64) OrganicMatterBand {
	switch {
	case somPct < 40:
		return OrganicMatterLow
	case somPct <= 70:
		return OrganicMatterModerate
	default:
		return OrganicMatterGood
	}
}

// ClassifyPH bands a pH value.
func ClassifyPH(ph float64) PHBand {
	switch {
	case ph < 5.5:
		return PHExtremelyLow
	case ph < 6.5:
		return PHLow
	case ph <= 7.5:
		return PHGood
	case ph <= 8.5:
		return PHHigh
	default:
		return PHExtremelyHigh
	}
}

// ClassifyDepth bands a soil depth in centimeters.
func ClassifyDepth(depthCM int) DepthBand {
	switch {
	case depthCM < 30:
		return DepthVeryLow
	case depthCM <= 100:
		return DepthAdequate
	default:
		return DepthVeryHigh
	}
}

// NeedsAttention reports whether the profile warrants a management alert:
// limited depth or low organic matter calls for building practices rather
// than maintenance rotations.
func NeedsAttention(depthCM int, somPct float64) bool {
	return depthCM < 30 || somPct < 40
}
