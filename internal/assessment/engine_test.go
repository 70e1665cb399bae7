package assessment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"everglades-dss/grower-portal/grower-portal-backend/internal/boundary"
	"everglades-dss/grower-portal/grower-portal-backend/internal/catalog"
	"everglades-dss/grower-portal/grower-portal-backend/internal/soil"
	"everglades-dss/grower-portal/grower-portal-backend/pkg/geospatial"
)

// Test region: rectangle lon -81.0..-80.5, lat 26.3..26.9.
const testRegionJSON = `{
  "type": "Polygon",
  "coordinates": [[[-81.0, 26.3], [-80.5, 26.3], [-80.5, 26.9], [-81.0, 26.9], [-81.0, 26.3]]]
}`

// fixedEstimator always returns the same baseline, letting tests pin the
// downstream arithmetic.
type fixedEstimator struct {
	est soil.Estimate
}

func (f fixedEstimator) Estimate(lat, lon float64) soil.Estimate { return f.est }

// MockCatalog is a mock implementation of the Catalog interface
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Crops() ([]catalog.CropProfile, error) {
	args := m.Called()
	return args.Get(0).([]catalog.CropProfile), args.Error(1)
}

func (m *MockCatalog) CropByName(name string) (*catalog.CropProfile, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.CropProfile), args.Error(1)
}

func (m *MockCatalog) RecommendationsFor(name string) ([]string, error) {
	args := m.Called(name)
	return args.Get(0).([]string), args.Error(1)
}

var sugarcane = catalog.CropProfile{
	Name:                  "Sugarcane",
	CreditsTonsPerHaYear:  6.75,
	ReleasedTonsPerHaYear: 3.42,
	RecommendationGroup:   "sugarcane",
}

func newTestEngine(t *testing.T, est soil.Estimate, cat Catalog) *Engine {
	t.Helper()
	region, err := boundary.Parse("test", []byte(testRegionJSON))
	require.NoError(t, err)
	return NewEngine(region, fixedEstimator{est}, cat, zap.NewNop())
}

func TestSelectPointInsideRegion(t *testing.T) {
	e := newTestEngine(t, soil.Estimate{OrganicMatterPct: 60.0, DepthCM: 100}, new(MockCatalog))
	sess := NewSession()

	require.NoError(t, e.SelectPoint(sess, 26.6, -80.75))

	assert.Equal(t, StageSoilInput, sess.Stage)
	require.NotNil(t, sess.Selection)
	assert.Equal(t, SelectionPoint, sess.Selection.Mode)
	assert.Equal(t, 26.6, sess.Selection.Lat)
	require.NotNil(t, sess.Reading)
	assert.Equal(t, 60.0, sess.Reading.OrganicMatterPct)
	assert.Equal(t, 100, sess.Reading.DepthCM)
}

func TestSelectPointOutsideRegionIsRejected(t *testing.T) {
	e := newTestEngine(t, soil.Estimate{}, new(MockCatalog))
	sess := NewSession()

	err := e.SelectPoint(sess, 28.0, -80.75)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	// Rejection leaves the session untouched.
	assert.Equal(t, StageAwaitingSelection, sess.Stage)
	assert.Nil(t, sess.Selection)
	assert.Nil(t, sess.Reading)
}

func TestSelectGeometryCentroidOutsideIsRejected(t *testing.T) {
	e := newTestEngine(t, soil.Estimate{}, new(MockCatalog))
	sess := NewSession()

	// A polygon sitting well north of the region.
	outside := json.RawMessage(`{
	  "type": "Polygon",
	  "coordinates": [[[-80.8, 27.5], [-80.7, 27.5], [-80.7, 27.6], [-80.8, 27.6], [-80.8, 27.5]]]
	}`)
	err := e.SelectGeometry(sess, outside)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, StageAwaitingSelection, sess.Stage)
	assert.Nil(t, sess.Selection)
}

func TestSelectGeometryAccepted(t *testing.T) {
	e := newTestEngine(t, soil.Estimate{OrganicMatterPct: 42.5, DepthCM: 55}, new(MockCatalog))
	sess := NewSession()

	drawn := json.RawMessage(`{
	  "type": "Polygon",
	  "coordinates": [[[-80.80, 26.55], [-80.75, 26.55], [-80.75, 26.60], [-80.80, 26.60], [-80.80, 26.55]]]
	}`)
	require.NoError(t, e.SelectGeometry(sess, drawn))

	assert.Equal(t, StageSoilInput, sess.Stage)
	require.NotNil(t, sess.Selection)
	assert.Equal(t, SelectionPolygon, sess.Selection.Mode)
	assert.InDelta(t, 26.575, sess.Selection.Lat, 1e-6)
	assert.InDelta(t, -80.775, sess.Selection.Lon, 1e-6)
	assert.Greater(t, sess.Selection.AreaHa, 0.0)
}

func TestSelectGeometryMalformedIsNoOp(t *testing.T) {
	e := newTestEngine(t, soil.Estimate{}, new(MockCatalog))
	sess := NewSession()

	err := e.SelectGeometry(sess, nil)
	assert.ErrorIs(t, err, geospatial.ErrNoGeometry)

	err = e.SelectGeometry(sess, json.RawMessage(`{"type": "Banana"}`))
	assert.ErrorIs(t, err, geospatial.ErrInvalidGeometry)

	// A line string is present but unusable for a field boundary.
	err = e.SelectGeometry(sess, json.RawMessage(`{
	  "type": "LineString",
	  "coordinates": [[-80.8, 26.5], [-80.7, 26.6]]
	}`))
	assert.ErrorIs(t, err, geospatial.ErrInvalidGeometry)

	assert.Equal(t, StageAwaitingSelection, sess.Stage)
	assert.Nil(t, sess.Selection)
}

func TestSubmitSoilInputDefaults(t *testing.T) {
	e := newTestEngine(t, soil.Estimate{OrganicMatterPct: 48.3, DepthCM: 70}, new(MockCatalog))
	sess := NewSession()
	require.NoError(t, e.SelectPoint(sess, 26.6, -80.75))

	require.NoError(t, e.SubmitSoilInput(sess, SoilInput{HasLabData: false}))

	assert.Equal(t, StageDiagnostics, sess.Stage)
	assert.Equal(t, DefaultPH, sess.DisplayPH)
	assert.Equal(t, 48.3, sess.DisplaySOM)
}

func TestSubmitSoilInputOverrides(t *testing.T) {
	e := newTestEngine(t, soil.Estimate{OrganicMatterPct: 48.3, DepthCM: 70}, new(MockCatalog))
	sess := NewSession()
	require.NoError(t, e.SelectPoint(sess, 26.6, -80.75))

	require.NoError(t, e.SubmitSoilInput(sess, SoilInput{
		HasLabData:            true,
		PHCategory:            "acidic",
		OrganicMatterCategory: "high",
	}))

	assert.Equal(t, 5.0, sess.DisplayPH)
	assert.Equal(t, 77.5, sess.DisplaySOM)
}

func TestSubmitSoilInputUnrecognizedCategoriesFallBack(t *testing.T) {
	e := newTestEngine(t, soil.Estimate{OrganicMatterPct: 48.3, DepthCM: 70}, new(MockCatalog))
	sess := NewSession()
	require.NoError(t, e.SelectPoint(sess, 26.6, -80.75))

	require.NoError(t, e.SubmitSoilInput(sess, SoilInput{
		HasLabData:            true,
		PHCategory:            "volcanic",
		OrganicMatterCategory: "astounding",
	}))

	assert.Equal(t, 7.0, sess.DisplayPH)
	assert.Equal(t, 55.0, sess.DisplaySOM)
}

func TestCategoryMidpoints(t *testing.T) {
	assert.Equal(t, 5.0, PHAcidic.Midpoint())
	assert.Equal(t, 6.0, PHSlightlyAcidic.Midpoint())
	assert.Equal(t, 7.0, PHNeutral.Midpoint())
	assert.Equal(t, 8.0, PHAlkaline.Midpoint())

	assert.Equal(t, 30.0, OrganicMatterRatingLow.Midpoint())
	assert.Equal(t, 55.0, OrganicMatterRatingModerate.Midpoint())
	assert.Equal(t, 77.5, OrganicMatterRatingHigh.Midpoint())
}

func TestDiagnosticsBands(t *testing.T) {
	e := newTestEngine(t, soil.Estimate{OrganicMatterPct: 35.0, DepthCM: 25}, new(MockCatalog))
	sess := NewSession()
	require.NoError(t, e.SelectPoint(sess, 26.6, -80.75))
	require.NoError(t, e.SubmitSoilInput(sess, SoilInput{HasLabData: false}))

	report, err := e.Diagnostics(sess)
	require.NoError(t, err)

	assert.Equal(t, soil.OrganicMatterLow, report.OrganicMatterBand)
	assert.Equal(t, soil.PHGood, report.PHBand)
	assert.Equal(t, soil.DepthVeryLow, report.DepthBand)
	assert.True(t, report.Alert)
}

func TestPlanContextDefaultsToDrawnArea(t *testing.T) {
	cat := new(MockCatalog)
	cat.On("Crops").Return([]catalog.CropProfile{sugarcane}, nil)

	e := newTestEngine(t, soil.Estimate{OrganicMatterPct: 60, DepthCM: 100}, cat)
	sess := NewSession()
	drawn := json.RawMessage(`{
	  "type": "Polygon",
	  "coordinates": [[[-80.80, 26.50], [-80.70, 26.50], [-80.70, 26.60], [-80.80, 26.60], [-80.80, 26.50]]]
	}`)
	require.NoError(t, e.SelectGeometry(sess, drawn))
	require.NoError(t, e.SubmitSoilInput(sess, SoilInput{}))
	require.NoError(t, e.ConfirmDiagnostics(sess))

	plan, err := e.PlanContext(sess)
	require.NoError(t, err)
	assert.Equal(t, int(sess.Selection.AreaHa), plan.DefaultFarmSizeHa)
	assert.Equal(t, RecommendationShortlist, plan.Shortlist)
}

func TestPlanContextDefaultsToSavedSizeForPoint(t *testing.T) {
	cat := new(MockCatalog)
	cat.On("Crops").Return([]catalog.CropProfile{sugarcane}, nil)

	e := newTestEngine(t, soil.Estimate{OrganicMatterPct: 60, DepthCM: 100}, cat)
	sess := NewSession()
	require.NoError(t, e.SelectPoint(sess, 26.6, -80.75))
	require.NoError(t, e.SubmitSoilInput(sess, SoilInput{}))
	require.NoError(t, e.ConfirmDiagnostics(sess))

	plan, err := e.PlanContext(sess)
	require.NoError(t, err)
	assert.Equal(t, DefaultFarmSizeHa, plan.DefaultFarmSizeHa)
}

func TestCommitPlanClampsFarmSize(t *testing.T) {
	cat := new(MockCatalog)
	cat.On("CropByName", "Sugarcane").Return(&sugarcane, nil)

	e := newTestEngine(t, soil.Estimate{OrganicMatterPct: 60, DepthCM: 100}, cat)
	sess := walkToPlanning(t, e)

	require.NoError(t, e.CommitPlan(sess, PlanInput{FarmSizeHa: 9000000, Crop: "Sugarcane"}))
	assert.Equal(t, MaxFarmSizeHa, sess.SavedFarmSizeHa)
	assert.Equal(t, StageResults, sess.Stage)
}

func TestCommitPlanUnknownCropKeepsCurrent(t *testing.T) {
	cat := new(MockCatalog)
	cat.On("CropByName", "Kudzu").Return(nil, catalog.ErrCropNotFound)
	cat.On("CropByName", DefaultCrop).Return(&sugarcane, nil)

	e := newTestEngine(t, soil.Estimate{OrganicMatterPct: 60, DepthCM: 100}, cat)
	sess := walkToPlanning(t, e)

	require.NoError(t, e.CommitPlan(sess, PlanInput{FarmSizeHa: 100, Crop: "Kudzu"}))
	assert.Equal(t, DefaultCrop, sess.SelectedCrop)
	assert.Equal(t, StageResults, sess.Stage)
}

func TestCommitPlanShortlistRestriction(t *testing.T) {
	cat := new(MockCatalog)
	cat.On("CropByName", DefaultCrop).Return(&sugarcane, nil)

	e := newTestEngine(t, soil.Estimate{OrganicMatterPct: 60, DepthCM: 100}, cat)
	sess := walkToPlanning(t, e)

	// Lettuce is a valid crop but not on the shortlist.
	require.NoError(t, e.CommitPlan(sess, PlanInput{FarmSizeHa: 100, Crop: "Lettuce", FromShortlist: true}))
	assert.Equal(t, DefaultCrop, sess.SelectedCrop)
}

func TestResultSugarcaneScenario(t *testing.T) {
	cat := new(MockCatalog)
	cat.On("CropByName", "Sugarcane").Return(&sugarcane, nil)
	cat.On("RecommendationsFor", "Sugarcane").Return([]string{"Rotate with Flooded Rice"}, nil)

	e := newTestEngine(t, soil.Estimate{OrganicMatterPct: 60.0, DepthCM: 100}, cat)
	sess := walkToPlanning(t, e)
	require.NoError(t, e.CommitPlan(sess, PlanInput{FarmSizeHa: 100, Crop: "Sugarcane"}))

	result, err := e.Result(sess)
	require.NoError(t, err)

	assert.InDelta(t, 675.0, result.AdjustedCredits, 1e-9)
	assert.InDelta(t, 1.47, result.CarsOffsetPerHa, 0.01)
	assert.InDelta(t, 342.0, result.ReleasedTons, 1e-9)
	assert.Equal(t, []string{"Rotate with Flooded Rice"}, result.Recommendations)
	assert.Equal(t, "Lat: 26.6000", result.Summary.Location)
	assert.Equal(t, 60.0, result.Summary.OrganicMatterPct)
}

func TestBackEdges(t *testing.T) {
	cat := new(MockCatalog)
	e := newTestEngine(t, soil.Estimate{OrganicMatterPct: 60, DepthCM: 100}, cat)
	sess := walkToPlanning(t, e)

	require.NoError(t, e.Back(sess))
	assert.Equal(t, StageDiagnostics, sess.Stage)
	require.NoError(t, e.Back(sess))
	assert.Equal(t, StageSoilInput, sess.Stage)
	require.NoError(t, e.Back(sess))
	assert.Equal(t, StageAwaitingSelection, sess.Stage)

	// Selection stands until replaced.
	assert.NotNil(t, sess.Selection)

	// No back edge from the initial stage.
	assert.ErrorIs(t, e.Back(sess), ErrInvalidTransition)
}

func TestOperationsRejectWrongStage(t *testing.T) {
	e := newTestEngine(t, soil.Estimate{OrganicMatterPct: 60, DepthCM: 100}, new(MockCatalog))
	sess := NewSession()

	assert.ErrorIs(t, e.SubmitSoilInput(sess, SoilInput{}), ErrInvalidTransition)
	assert.ErrorIs(t, e.ConfirmDiagnostics(sess), ErrInvalidTransition)
	_, err := e.Diagnostics(sess)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, e.CommitPlan(sess, PlanInput{}), ErrInvalidTransition)
	_, err = e.Result(sess)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Once past selection, a second selection must wait for a back
	// navigation.
	require.NoError(t, e.SelectPoint(sess, 26.6, -80.75))
	assert.ErrorIs(t, e.SelectPoint(sess, 26.7, -80.75), ErrInvalidTransition)
}

func TestResetRoundTrip(t *testing.T) {
	cat := new(MockCatalog)
	cat.On("CropByName", "Sugarcane").Return(&sugarcane, nil)

	e := newTestEngine(t, soil.Estimate{OrganicMatterPct: 60, DepthCM: 100}, cat)
	sess := walkToPlanning(t, e)
	require.NoError(t, e.CommitPlan(sess, PlanInput{FarmSizeHa: 250, Crop: "Sugarcane"}))
	require.Equal(t, StageResults, sess.Stage)

	id := sess.ID
	e.Reset(sess)

	assert.Equal(t, id, sess.ID, "identity survives a reset")
	assert.Equal(t, StageAwaitingSelection, sess.Stage)
	assert.Nil(t, sess.Selection)
	assert.Nil(t, sess.Reading)
	assert.Equal(t, DefaultPH, sess.DisplayPH)
	assert.Equal(t, 0.0, sess.DisplaySOM)
	assert.Equal(t, DefaultFarmSizeHa, sess.SavedFarmSizeHa)
	assert.Equal(t, DefaultCrop, sess.SelectedCrop)
	assert.Equal(t, 1, sess.ResetCount)

	e.Reset(sess)
	assert.Equal(t, 2, sess.ResetCount, "reset counter only climbs")
}

func walkToPlanning(t *testing.T, e *Engine) *Session {
	t.Helper()
	sess := NewSession()
	require.NoError(t, e.SelectPoint(sess, 26.6, -80.75))
	require.NoError(t, e.SubmitSoilInput(sess, SoilInput{}))
	require.NoError(t, e.ConfirmDiagnostics(sess))
	require.Equal(t, StageCropPlanning, sess.Stage)
	return sess
}
