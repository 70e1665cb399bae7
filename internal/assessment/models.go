package assessment

import (
	"github.com/google/uuid"

	"everglades-dss/grower-portal/grower-portal-backend/internal/soil"
)

// Stage identifies a step of the assessment workflow.
type Stage string

const (
	StageAwaitingSelection Stage = "awaiting_selection"
	StageSoilInput         Stage = "soil_input"
	StageDiagnostics       Stage = "diagnostics"
	StageCropPlanning      Stage = "crop_planning"
	StageResults           Stage = "results"
)

// stageTransitions is the allowed-transition table: a linear forward walk
// with single back edges, plus the restart edge from the results stage.
func stageTransitions() map[Stage][]Stage {
	return map[Stage][]Stage{
		StageAwaitingSelection: {StageSoilInput},
		StageSoilInput:         {StageDiagnostics, StageAwaitingSelection},
		StageDiagnostics:       {StageCropPlanning, StageSoilInput},
		StageCropPlanning:      {StageResults, StageDiagnostics},
		StageResults:           {StageAwaitingSelection},
	}
}

// backTargets maps each stage to where its back navigation lands.
var backTargets = map[Stage]Stage{
	StageSoilInput:    StageAwaitingSelection,
	StageDiagnostics:  StageSoilInput,
	StageCropPlanning: StageDiagnostics,
}

// SelectionMode distinguishes a clicked point from a drawn field boundary.
type SelectionMode string

const (
	SelectionPoint   SelectionMode = "point"
	SelectionPolygon SelectionMode = "polygon"
)

// Selection is the grower's chosen location. For a polygon draw, Lat/Lon
// hold the centroid and AreaHa the measured field area; for a point click
// AreaHa is zero. Replaced wholesale on each accepted interaction.
type Selection struct {
	Mode   SelectionMode `json:"mode"`
	Lat    float64       `json:"lat"`
	Lon    float64       `json:"lon"`
	AreaHa float64       `json:"area_ha,omitempty"`
}

// PHCategory is a declared soil-test pH range.
type PHCategory string

const (
	PHAcidic         PHCategory = "acidic"          // below 5.5
	PHSlightlyAcidic PHCategory = "slightly_acidic" // 5.5 - 6.5
	PHNeutral        PHCategory = "neutral"         // 6.5 - 7.5
	PHAlkaline       PHCategory = "alkaline"        // above 7.5
)

// Midpoint maps a pH category to its representative value.
func (c PHCategory) Midpoint() float64 {
	switch c {
	case PHAcidic:
		return 5.0
	case PHSlightlyAcidic:
		return 6.0
	case PHAlkaline:
		return 8.0
	default:
		return 7.0
	}
}

// ParsePHCategory resolves a category string. Unrecognized input falls back
// to neutral rather than failing.
func ParsePHCategory(s string) PHCategory {
	switch PHCategory(s) {
	case PHAcidic, PHSlightlyAcidic, PHNeutral, PHAlkaline:
		return PHCategory(s)
	default:
		return PHNeutral
	}
}

// OrganicMatterCategory is a declared soil-test organic-matter rating.
type OrganicMatterCategory string

const (
	OrganicMatterRatingLow      OrganicMatterCategory = "low"      // below 40%
	OrganicMatterRatingModerate OrganicMatterCategory = "moderate" // 40% - 70%
	OrganicMatterRatingHigh     OrganicMatterCategory = "high"     // above 70%
)

// Midpoint maps an organic-matter category to its representative value.
func (c OrganicMatterCategory) Midpoint() float64 {
	switch c {
	case OrganicMatterRatingLow:
		return 30.0
	case OrganicMatterRatingHigh:
		return 77.5
	default:
		return 55.0
	}
}

// ParseOrganicMatterCategory resolves a category string. Unrecognized input
// falls back to moderate rather than failing.
func ParseOrganicMatterCategory(s string) OrganicMatterCategory {
	switch OrganicMatterCategory(s) {
	case OrganicMatterRatingLow, OrganicMatterRatingModerate, OrganicMatterRatingHigh:
		return OrganicMatterCategory(s)
	default:
		return OrganicMatterRatingModerate
	}
}

// Session defaults.
const (
	DefaultPH         = 6.5
	DefaultFarmSizeHa = 100
	DefaultCrop       = "Sugarcane"
	MinFarmSizeHa     = 1
	MaxFarmSizeHa     = 500000
)

// Session is the mutable aggregate for one assessment: current stage, the
// active selection and soil reading, resolved display values, and the
// committed plan. Owned by a single interactive session; mutated only by
// Engine transition handlers.
type Session struct {
	ID              uuid.UUID      `json:"id"`
	Stage           Stage          `json:"stage"`
	Selection       *Selection     `json:"selection,omitempty"`
	Reading         *soil.Estimate `json:"reading,omitempty"`
	DisplayPH       float64        `json:"display_ph"`
	DisplaySOM      float64        `json:"display_som"`
	SavedFarmSizeHa int            `json:"saved_farm_size_ha"`
	SelectedCrop    string         `json:"selected_crop"`
	ResetCount      int            `json:"reset_count"`
}

// NewSession creates a session at the initial stage with documented
// defaults.
func NewSession() *Session {
	s := &Session{ID: uuid.New()}
	s.applyDefaults()
	return s
}

func (s *Session) applyDefaults() {
	s.Stage = StageAwaitingSelection
	s.Selection = nil
	s.Reading = nil
	s.DisplayPH = DefaultPH
	s.DisplaySOM = 0
	s.SavedFarmSizeHa = DefaultFarmSizeHa
	s.SelectedCrop = DefaultCrop
}

// Reset returns the session to its defaults and bumps the reset counter so
// externally bound widgets are treated as fresh.
func (s *Session) Reset() {
	s.applyDefaults()
	s.ResetCount++
}
