package assessment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"everglades-dss/grower-portal/grower-portal-backend/pkg/geospatial"
)

// Handler exposes the assessment workflow over HTTP for the presentation
// shell.
type Handler struct {
	engine *Engine
	store  *SessionStore
	logger *zap.Logger
}

// NewHandler creates an assessment handler.
func NewHandler(engine *Engine, store *SessionStore, logger *zap.Logger) *Handler {
	return &Handler{engine: engine, store: store, logger: logger}
}

// RegisterRoutes registers assessment and reference-data routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	assessments := router.Group("/assessments")
	{
		assessments.POST("", h.createAssessment)
		assessments.GET("/:id", h.getAssessment)
		assessments.POST("/:id/selection", h.submitSelection)
		assessments.POST("/:id/soil", h.submitSoil)
		assessments.GET("/:id/diagnostics", h.getDiagnostics)
		assessments.POST("/:id/diagnostics/confirm", h.confirmDiagnostics)
		assessments.GET("/:id/plan", h.getPlanContext)
		assessments.POST("/:id/plan", h.commitPlan)
		assessments.GET("/:id/result", h.getResult)
		assessments.POST("/:id/back", h.goBack)
		assessments.POST("/:id/reset", h.resetAssessment)
	}

	router.GET("/region", h.getRegion)
	router.GET("/crops", h.listCrops)
	router.GET("/crops/:name/recommendations", h.listRecommendations)
}

func (h *Handler) createAssessment(c *gin.Context) {
	sess := h.store.Create()
	c.JSON(http.StatusCreated, sess)
}

func (h *Handler) getAssessment(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess)
}

type selectionRequest struct {
	Lat      *float64        `json:"lat"`
	Lon      *float64        `json:"lon"`
	Geometry json.RawMessage `json:"geometry"`
}

func (h *Handler) submitSelection(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var err error
	switch {
	case len(req.Geometry) > 0:
		err = h.engine.SelectGeometry(sess, req.Geometry)
	case req.Lat != nil && req.Lon != nil:
		err = h.engine.SelectPoint(sess, *req.Lat, *req.Lon)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "either lat/lon or geometry is required"})
		return
	}
	if err != nil {
		h.respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) submitSoil(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var input SoilInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.engine.SubmitSoilInput(sess, input); err != nil {
		h.respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) getDiagnostics(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	report, err := h.engine.Diagnostics(sess)
	if err != nil {
		h.respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) confirmDiagnostics(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.engine.ConfirmDiagnostics(sess); err != nil {
		h.respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) getPlanContext(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	plan, err := h.engine.PlanContext(sess)
	if err != nil {
		h.respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *Handler) commitPlan(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var input PlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.engine.CommitPlan(sess, input); err != nil {
		h.respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) getResult(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	result, err := h.engine.Result(sess)
	if err != nil {
		h.respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) goBack(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.engine.Back(sess); err != nil {
		h.respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) resetAssessment(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.engine.Reset(sess)
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) getRegion(c *gin.Context) {
	region := h.engine.Region()
	c.JSON(http.StatusOK, gin.H{
		"geometry": geojson.NewGeometry(region.Geometry),
		"bound": gin.H{
			"min_lon": region.Bound.Min[0], "min_lat": region.Bound.Min[1],
			"max_lon": region.Bound.Max[0], "max_lat": region.Bound.Max[1],
		},
		"centroid": gin.H{"lon": region.Centroid[0], "lat": region.Centroid[1]},
	})
}

func (h *Handler) listCrops(c *gin.Context) {
	crops, err := h.engine.catalog.Crops()
	if err != nil {
		h.logger.Error("list crops failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load crops"})
		return
	}
	c.JSON(http.StatusOK, crops)
}

func (h *Handler) listRecommendations(c *gin.Context) {
	recs, err := h.engine.catalog.RecommendationsFor(c.Param("name"))
	if err != nil {
		h.logger.Error("list recommendations failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recommendations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"crop": c.Param("name"), "recommendations": recs})
}

func (h *Handler) session(c *gin.Context) (*Session, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return nil, false
	}
	sess, err := h.store.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return sess, true
}

// respondWorkflowError translates engine errors into the API's error
// taxonomy: rejected input surfaces as a transient advisory, wrong-stage
// operations as a conflict, anything else as an internal failure.
func (h *Handler) respondWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrOutOfBounds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"warning": "selection is outside the region boundary"})
	case errors.Is(err, geospatial.ErrNoGeometry), errors.Is(err, geospatial.ErrInvalidGeometry):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"warning": "drawn geometry could not be used"})
	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "operation not valid at current stage"})
	default:
		h.logger.Error("assessment operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
