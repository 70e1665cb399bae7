package catalog

// Recommendation groups. Cover crops share one guidance set; crops without
// a dedicated set fall back to the default group.
const (
	GroupDefault   = "default"
	GroupCoverCrop = "cover-crop"
)

// CropProfile is a static reference row: one crop with its base carbon
// coefficients and the recommendation group its guidance comes from.
type CropProfile struct {
	ID                    uint    `gorm:"primaryKey" json:"-"`
	Name                  string  `gorm:"uniqueIndex;not null" json:"name"`
	CreditsTonsPerHaYear  float64 `gorm:"not null" json:"credits_tons_per_ha_year"`
	ReleasedTonsPerHaYear float64 `gorm:"not null" json:"released_tons_per_ha_year"`
	RecommendationGroup   string  `gorm:"not null" json:"-"`
}

// Recommendation is one management-practice guidance line for a
// recommendation group, ordered by position.
type Recommendation struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	Group    string `gorm:"column:group_key;uniqueIndex:idx_group_position;not null" json:"group"`
	Position int    `gorm:"uniqueIndex:idx_group_position;not null" json:"position"`
	Guidance string `gorm:"not null" json:"guidance"`
}
