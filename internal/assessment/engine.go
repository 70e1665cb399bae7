package assessment

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"everglades-dss/grower-portal/grower-portal-backend/internal/boundary"
	"everglades-dss/grower-portal/grower-portal-backend/internal/carbon"
	"everglades-dss/grower-portal/grower-portal-backend/internal/catalog"
	"everglades-dss/grower-portal/grower-portal-backend/internal/soil"
	"everglades-dss/grower-portal/grower-portal-backend/pkg/geospatial"
	"everglades-dss/grower-portal/grower-portal-backend/pkg/workflows"
)

// ErrOutOfBounds reports a selection whose representative point falls
// outside the region. Recoverable: the session is left untouched.
var ErrOutOfBounds = errors.New("selection outside region boundary")

// ErrInvalidTransition reports an operation attempted at the wrong stage.
var ErrInvalidTransition = errors.New("operation not valid at current stage")

// SoilEstimator models soil metrics for an accepted coordinate.
type SoilEstimator interface {
	Estimate(lat, lon float64) soil.Estimate
}

// Catalog provides read-only crop reference data.
type Catalog interface {
	Crops() ([]catalog.CropProfile, error)
	CropByName(name string) (*catalog.CropProfile, error)
	RecommendationsFor(name string) ([]string, error)
}

// RecommendationShortlist is the fixed subset offered when the grower asks
// for crop suggestions instead of naming one.
var RecommendationShortlist = []string{"Flooded Rice", "Sweet Corn", "Sunn Hemp", "Cowpea"}

// Engine sequences an assessment through its stages, validating every
// transition and invoking the boundary, soil, and carbon components at the
// right step. User-supplied geometry or category input never propagates an
// unrecoverable error past this boundary.
type Engine struct {
	region    *boundary.Region
	estimator SoilEstimator
	catalog   Catalog
	machine   *workflows.StateMachine[Stage]
	logger    *zap.Logger
}

// NewEngine creates the workflow engine.
func NewEngine(region *boundary.Region, estimator SoilEstimator, cat Catalog, logger *zap.Logger) *Engine {
	return &Engine{
		region:    region,
		estimator: estimator,
		catalog:   cat,
		machine:   workflows.NewStateMachine(stageTransitions()),
		logger:    logger,
	}
}

// Region exposes the loaded boundary for the presentation layer.
func (e *Engine) Region() *boundary.Region { return e.region }

// SelectPoint handles a map click. Accepted points populate the selection
// and soil reading and advance to soil input; out-of-bounds points are
// rejected without touching the session.
func (e *Engine) SelectPoint(sess *Session, lat, lon float64) error {
	if sess.Stage != StageAwaitingSelection {
		return ErrInvalidTransition
	}
	if !e.region.Contains(lon, lat) {
		e.logger.Warn("point selection outside boundary",
			zap.Float64("lat", lat), zap.Float64("lon", lon))
		return ErrOutOfBounds
	}
	e.acceptSelection(sess, &Selection{Mode: SelectionPoint, Lat: lat, Lon: lon})
	return nil
}

// SelectGeometry handles a drawn field boundary. An absent payload yields
// geospatial.ErrNoGeometry, a malformed one geospatial.ErrInvalidGeometry;
// both are recoverable no-ops. Acceptance is decided on the centroid.
func (e *Engine) SelectGeometry(sess *Session, raw json.RawMessage) error {
	if sess.Stage != StageAwaitingSelection {
		return ErrInvalidTransition
	}
	geom, err := geospatial.ParseGeometry(raw)
	if err != nil {
		return err
	}
	switch geom.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return fmt.Errorf("%w: unsupported geometry type %s", geospatial.ErrInvalidGeometry, geom.GeoJSONType())
	}

	centroid := geospatial.Centroid(geom)
	if !e.region.Contains(centroid[0], centroid[1]) {
		e.logger.Warn("drawn field centroid outside boundary",
			zap.Float64("lat", centroid[1]), zap.Float64("lon", centroid[0]))
		return ErrOutOfBounds
	}

	e.acceptSelection(sess, &Selection{
		Mode:   SelectionPolygon,
		Lat:    centroid[1],
		Lon:    centroid[0],
		AreaHa: boundary.AreaHectares(geom),
	})
	return nil
}

func (e *Engine) acceptSelection(sess *Session, sel *Selection) {
	est := e.estimator.Estimate(sel.Lat, sel.Lon)
	sess.Selection = sel
	sess.Reading = &est
	e.advance(sess, StageSoilInput)
	e.logger.Info("selection accepted",
		zap.String("session", sess.ID.String()),
		zap.String("mode", string(sel.Mode)),
		zap.Float64("som_pct", est.OrganicMatterPct),
		zap.Int("depth_cm", est.DepthCM))
}

// SoilInput carries the grower's optional lab-test declaration.
type SoilInput struct {
	HasLabData            bool   `json:"has_lab_data"`
	PHCategory            string `json:"ph_category"`
	OrganicMatterCategory string `json:"organic_matter_category"`
}

// SubmitSoilInput resolves the display pH and organic matter, either from
// the declared categories or from the modeled defaults, and advances to
// diagnostics. Unrecognized category strings resolve to their documented
// fallbacks instead of failing.
func (e *Engine) SubmitSoilInput(sess *Session, input SoilInput) error {
	if sess.Stage != StageSoilInput {
		return ErrInvalidTransition
	}
	if input.HasLabData {
		sess.DisplayPH = ParsePHCategory(input.PHCategory).Midpoint()
		sess.DisplaySOM = ParseOrganicMatterCategory(input.OrganicMatterCategory).Midpoint()
	} else {
		sess.DisplayPH = DefaultPH
		sess.DisplaySOM = sess.Reading.OrganicMatterPct
	}
	e.advance(sess, StageDiagnostics)
	return nil
}

// DiagnosticsReport is the read-only soil health view for the diagnostics
// stage.
type DiagnosticsReport struct {
	OrganicMatterPct  float64                `json:"organic_matter_pct"`
	PH                float64                `json:"ph"`
	DepthCM           int                    `json:"depth_cm"`
	OrganicMatterBand soil.OrganicMatterBand `json:"organic_matter_band"`
	PHBand            soil.PHBand            `json:"ph_band"`
	DepthBand         soil.DepthBand         `json:"depth_band"`
	Alert             bool                   `json:"alert"`
}

// Diagnostics classifies the current reading into qualitative bands. Pure
// read; the session is not mutated.
func (e *Engine) Diagnostics(sess *Session) (*DiagnosticsReport, error) {
	if sess.Stage != StageDiagnostics || sess.Reading == nil {
		return nil, ErrInvalidTransition
	}
	return &DiagnosticsReport{
		OrganicMatterPct:  sess.DisplaySOM,
		PH:                sess.DisplayPH,
		DepthCM:           sess.Reading.DepthCM,
		OrganicMatterBand: soil.ClassifyOrganicMatter(sess.DisplaySOM),
		PHBand:            soil.ClassifyPH(sess.DisplayPH),
		DepthBand:         soil.ClassifyDepth(sess.Reading.DepthCM),
		Alert:             soil.NeedsAttention(sess.Reading.DepthCM, sess.DisplaySOM),
	}, nil
}

// ConfirmDiagnostics advances from diagnostics to crop planning.
func (e *Engine) ConfirmDiagnostics(sess *Session) error {
	if sess.Stage != StageDiagnostics {
		return ErrInvalidTransition
	}
	e.advance(sess, StageCropPlanning)
	return nil
}

// PlanContext is what the planning stage needs to render: the crop table,
// the shortlist, and the prefilled farm size.
type PlanContext struct {
	DefaultFarmSizeHa int                   `json:"default_farm_size_ha"`
	Crops             []catalog.CropProfile `json:"crops"`
	Shortlist         []string              `json:"shortlist"`
}

// PlanContext assembles the planning-stage context. The default size is the
// drawn field area when one exists, otherwise the last saved size.
func (e *Engine) PlanContext(sess *Session) (*PlanContext, error) {
	if sess.Stage != StageCropPlanning {
		return nil, ErrInvalidTransition
	}
	crops, err := e.catalog.Crops()
	if err != nil {
		return nil, fmt.Errorf("load crop profiles: %w", err)
	}
	return &PlanContext{
		DefaultFarmSizeHa: e.defaultFarmSize(sess),
		Crops:             crops,
		Shortlist:         RecommendationShortlist,
	}, nil
}

func (e *Engine) defaultFarmSize(sess *Session) int {
	if sess.Selection != nil && sess.Selection.Mode == SelectionPolygon {
		return clampFarmSize(int(sess.Selection.AreaHa))
	}
	return sess.SavedFarmSizeHa
}

// PlanInput is the grower's committed plan.
type PlanInput struct {
	FarmSizeHa    int    `json:"farm_size_ha"`
	Crop          string `json:"crop"`
	FromShortlist bool   `json:"from_shortlist"`
}

// CommitPlan records farm size and crop choice and advances to results.
// Size is clamped to the supported range; an unknown crop, or one outside
// the shortlist when the shortlist was requested, keeps the session's
// current crop.
func (e *Engine) CommitPlan(sess *Session, input PlanInput) error {
	if sess.Stage != StageCropPlanning {
		return ErrInvalidTransition
	}

	crop := input.Crop
	if input.FromShortlist && !inShortlist(crop) {
		e.logger.Warn("crop outside recommendation shortlist, keeping current",
			zap.String("crop", crop), zap.String("current", sess.SelectedCrop))
		crop = sess.SelectedCrop
	}
	if _, err := e.catalog.CropByName(crop); err != nil {
		if !errors.Is(err, catalog.ErrCropNotFound) {
			return fmt.Errorf("resolve crop %s: %w", crop, err)
		}
		e.logger.Warn("unknown crop, keeping current",
			zap.String("crop", crop), zap.String("current", sess.SelectedCrop))
		crop = sess.SelectedCrop
	}

	sess.SavedFarmSizeHa = clampFarmSize(input.FarmSizeHa)
	sess.SelectedCrop = crop
	e.advance(sess, StageResults)
	return nil
}

func clampFarmSize(size int) int {
	if size < MinFarmSizeHa {
		return MinFarmSizeHa
	}
	if size > MaxFarmSizeHa {
		return MaxFarmSizeHa
	}
	return size
}

func inShortlist(crop string) bool {
	for _, c := range RecommendationShortlist {
		if c == crop {
			return true
		}
	}
	return false
}

// AssessmentSummary recaps the session for the results view.
type AssessmentSummary struct {
	Location         string  `json:"location"`
	OrganicMatterPct float64 `json:"organic_matter_pct"`
	PH               float64 `json:"ph"`
	DepthCM          int     `json:"depth_cm"`
}

// CarbonImpactResult is the computed outcome of an assessment. Recomputed
// on demand from session state; never persisted.
type CarbonImpactResult struct {
	Crop            string            `json:"crop"`
	FarmSizeHa      int               `json:"farm_size_ha"`
	AdjustedCredits float64           `json:"adjusted_credits_tons"`
	CarsOffsetPerHa float64           `json:"cars_offset_per_ha"`
	ReleasedTons    float64           `json:"co2_released_tons"`
	Recommendations []string          `json:"recommendations"`
	Summary         AssessmentSummary `json:"summary"`
}

// Result runs the carbon model for the committed plan and attaches the
// crop's management recommendations.
func (e *Engine) Result(sess *Session) (*CarbonImpactResult, error) {
	if sess.Stage != StageResults || sess.Reading == nil {
		return nil, ErrInvalidTransition
	}
	crop, err := e.catalog.CropByName(sess.SelectedCrop)
	if err != nil {
		return nil, fmt.Errorf("resolve crop %s: %w", sess.SelectedCrop, err)
	}
	recs, err := e.catalog.RecommendationsFor(crop.Name)
	if err != nil {
		return nil, fmt.Errorf("load recommendations: %w", err)
	}

	size := float64(sess.SavedFarmSizeHa)
	credits := carbon.AdjustedCredits(crop.CreditsTonsPerHaYear, size, sess.Reading.DepthCM, sess.DisplaySOM)

	return &CarbonImpactResult{
		Crop:            crop.Name,
		FarmSizeHa:      sess.SavedFarmSizeHa,
		AdjustedCredits: credits,
		CarsOffsetPerHa: carbon.CarsOffsetPerHectare(credits, size),
		ReleasedTons:    crop.ReleasedTonsPerHaYear * size,
		Recommendations: recs,
		Summary: AssessmentSummary{
			Location:         locationLabel(sess.Selection),
			OrganicMatterPct: sess.DisplaySOM,
			PH:               sess.DisplayPH,
			DepthCM:          sess.Reading.DepthCM,
		},
	}, nil
}

func locationLabel(sel *Selection) string {
	if sel == nil {
		return ""
	}
	if sel.Mode == SelectionPolygon {
		return fmt.Sprintf("%.1f ha area", sel.AreaHa)
	}
	return fmt.Sprintf("Lat: %.4f", sel.Lat)
}

// Back returns the session to the previous stage. Returning to the
// selection stage re-arms selection; the old selection stands until
// replaced.
func (e *Engine) Back(sess *Session) error {
	target, ok := backTargets[sess.Stage]
	if !ok {
		return ErrInvalidTransition
	}
	e.advance(sess, target)
	return nil
}

// Reset restarts the assessment from defaults at any stage.
func (e *Engine) Reset(sess *Session) {
	sess.Reset()
	e.logger.Info("assessment reset",
		zap.String("session", sess.ID.String()),
		zap.Int("reset_count", sess.ResetCount))
}

func (e *Engine) advance(sess *Session, to Stage) {
	if !e.machine.CanTransition(sess.Stage, to) {
		// Transition table and handlers are maintained together; a miss
		// here is a programming error, not user input.
		e.logger.Error("transition outside allowed table",
			zap.String("from", string(sess.Stage)), zap.String("to", string(to)))
		return
	}
	sess.Stage = to
}
