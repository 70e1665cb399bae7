package catalog

import (
	"gorm.io/gorm/clause"
)

// Reference data for the eight supported crops. Coefficients are tons of
// CO2 per hectare per year.
var seedCrops = []CropProfile{
	{Name: "Sugarcane", CreditsTonsPerHaYear: 6.75, ReleasedTonsPerHaYear: 3.42, RecommendationGroup: "sugarcane"},
	{Name: "Flooded Rice", CreditsTonsPerHaYear: 9.12, ReleasedTonsPerHaYear: 0.40, RecommendationGroup: "flooded-rice"},
	{Name: "Sweet Corn", CreditsTonsPerHaYear: 4.89, ReleasedTonsPerHaYear: 2.65, RecommendationGroup: "sweet-corn"},
	{Name: "Lettuce", CreditsTonsPerHaYear: 3.21, ReleasedTonsPerHaYear: 1.92, RecommendationGroup: "lettuce"},
	{Name: "Turf Grass", CreditsTonsPerHaYear: 7.43, ReleasedTonsPerHaYear: 2.87, RecommendationGroup: GroupDefault},
	{Name: "Legume Mix", CreditsTonsPerHaYear: 5.38, ReleasedTonsPerHaYear: 1.75, RecommendationGroup: GroupCoverCrop},
	{Name: "Sunn Hemp", CreditsTonsPerHaYear: 8.27, ReleasedTonsPerHaYear: 1.48, RecommendationGroup: GroupCoverCrop},
	{Name: "Cowpea", CreditsTonsPerHaYear: 6.12, ReleasedTonsPerHaYear: 1.95, RecommendationGroup: GroupCoverCrop},
}

var seedRecommendations = map[string][]string{
	"sugarcane": {
		"Rotate with Flooded Rice: rice as a cover crop retains soil moisture and organic matter, reducing emissions by ~2.5 tons CO2/ha per year.",
		"Use fallow periods: keeping fields submerged for 3-4 months before replanting slows organic matter breakdown.",
		"Limit ratoon cycles to 2: more ratoons accelerate soil organic matter depletion.",
		"Mulch with sugarcane residue: incorporating trash adds ~1.2 tons of carbon/ha per year.",
	},
	"flooded-rice": {
		"Rotate with Sugarcane: maintains soil health and reduces subsidence by ~3.2 tons CO2/ha per year.",
		"Limit sugarcane ratoon cycles to 2: prolonged ratooning leads to excessive soil depletion.",
		"Mulch with sugarcane residue: leftover biomass adds ~1.5 tons of carbon/ha.",
	},
	"sweet-corn": {
		"Rotate with legume cover crops: Sunn Hemp or Cowpea fixes nitrogen, saving ~1.5 tons CO2/ha.",
		"Use minimum tillage: reducing disturbance preserves organic matter.",
		"Incorporate crop residue: leaving corn stalks improves structure and adds ~0.9 tons of carbon/ha.",
	},
	"lettuce": {
		"Rotate with Flooded Rice: stabilizes soil moisture and reduces CO2 loss by ~1 ton/ha.",
		"Use cover crops: Sunn Hemp or Ryegrass adds ~1.1 tons of carbon/ha.",
		"Drip irrigation: reduces water loss and lowers emissions by ~15%.",
		"Minimize tillage: prevents carbon loss and slows organic matter breakdown.",
	},
	GroupCoverCrop: {
		"Use before Sugarcane: fixes nitrogen, reducing synthetic fertilizer need by ~30%.",
		"Incorporate before flowering: maximizes nitrogen release into soil.",
		"Manage water table: high moisture levels further slow CO2 loss.",
		"Increase organic matter: boosts microbial activity and reduces fertilizer dependency.",
	},
	GroupDefault: {
		"Manage water table: keeping soil moisture levels high slows organic matter oxidation.",
	},
}

// seed writes the reference rows, skipping any that already exist so
// reopening the same database file stays idempotent.
func (s *Store) seed() error {
	onConflict := clause.OnConflict{DoNothing: true}

	crops := make([]CropProfile, len(seedCrops))
	copy(crops, seedCrops)
	if err := s.db.Clauses(onConflict).Create(&crops).Error; err != nil {
		return err
	}
	for group, lines := range seedRecommendations {
		rows := make([]Recommendation, 0, len(lines))
		for i, line := range lines {
			rows = append(rows, Recommendation{Group: group, Position: i, Guidance: line})
		}
		if err := s.db.Clauses(onConflict).Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}
