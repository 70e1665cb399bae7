package soil

import (
	"math"
	"math/rand"
)

// Sampled value domains for the spatial model. Depth categories follow the
// regional survey distribution: 40% shallow, 50% adequate, 10% deep.
const (
	minOrganicMatterPct = 25.0
	maxOrganicMatterPct = 85.0

	shallowDepthMinCM  = 15
	adequateDepthMinCM = 30
	deepDepthMinCM     = 101
	depthMaxCM         = 151

	shallowProbability  = 0.40
	adequateProbability = 0.50
)

// Estimate holds the modeled baseline for one coordinate.
type Estimate struct {
	OrganicMatterPct float64 `json:"organic_matter_pct"`
	DepthCM          int     `json:"depth_cm"`
}

// Estimator is the spatial soil model. It stands in for a live soil-survey
// feed: estimates are synthetic but deterministic per coordinate, so
// revisiting a location always reproduces the same baseline.
type Estimator struct{}

// NewEstimator creates the spatial soil estimator.
func NewEstimator() *Estimator { return &Estimator{} }

// Estimate derives organic matter and soil depth for a coordinate. Pure:
// identical inputs always yield identical outputs.
func (e *Estimator) Estimate(lat, lon float64) Estimate {
	rng := rand.New(rand.NewSource(coordinateSeed(lat, lon)))

	span := maxOrganicMatterPct - minOrganicMatterPct
	som := math.Round((minOrganicMatterPct+rng.Float64()*span)*10) / 10

	var depth int
	switch draw := rng.Float64(); {
	case draw < shallowProbability:
		depth = shallowDepthMinCM + rng.Intn(adequateDepthMinCM-shallowDepthMinCM)
	case draw < shallowProbability+adequateProbability:
		depth = adequateDepthMinCM + rng.Intn(deepDepthMinCM-adequateDepthMinCM)
	default:
		depth = deepDepthMinCM + rng.Intn(depthMaxCM-deepDepthMinCM)
	}

	return Estimate{OrganicMatterPct: som, DepthCM: depth}
}

// coordinateSeed reduces a coordinate to a non-negative 31-bit seed.
func coordinateSeed(lat, lon float64) int64 {
	seed := int64((lat+lon)*10000) % (1 << 31)
	if seed < 0 {
		seed += 1 << 31
	}
	return seed
}
