// Package carbon holds the carbon-impact model applied at the results
// stage. Credits scale linearly with farm size and base crop coefficient,
// damped by saturating depth and organic-matter factors.
package carbon

// Model thresholds. Depth beyond 30 cm and organic matter beyond 60% add
// no further multiplier gain, encoding diminishing returns.
const (
	depthSaturationCM          = 30.0
	organicMatterSaturationPct = 60.0

	// CarEmissionTonsPerYear is the reference average combustion-vehicle
	// emission, used for the cars-offset equivalency figure.
	CarEmissionTonsPerYear = 4.6
)

// AdjustedCredits computes total tradable carbon credits (tons) for a farm.
// Inputs are assumed already validated by the workflow: size >= 1,
// depth >= 0, som >= 0.
func AdjustedCredits(baseCreditsPerHaYr, farmSizeHa float64, depthCM int, somPct float64) float64 {
	depthFactor := min(float64(depthCM)/depthSaturationCM, 1.0)
	somFactor := min(somPct/organicMatterSaturationPct, 1.0)
	return baseCreditsPerHaYr * farmSizeHa * depthFactor * somFactor
}

// CarsOffsetPerHectare converts adjusted credits into the equivalent number
// of cars taken off the road per hectare per year. A zero farm size yields
// zero rather than a division error.
func CarsOffsetPerHectare(adjustedCredits, farmSizeHa float64) float64 {
	if farmSizeHa == 0 {
		return 0
	}
	return adjustedCredits / farmSizeHa / CarEmissionTonsPerYear
}
