package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lg/bodycomp-go-api/internal/metrics"
)

// Handler holds shared dependencies (variant catalog, defaults) for all route handlers.
type Handler struct {
	catalog        *metrics.Catalog
	defaultVariant string
}

/* ─── Helpers ─────────────────────────────────────────────────────────── */

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// validationErrors are the engine errors caused by bad input rather than a
// broken server. They map to 400.
var validationErrors = []error{
	metrics.ErrInvalidHeight,
	metrics.ErrInvalidWeight,
	metrics.ErrInvalidBodyFat,
	metrics.ErrInvalidGender,
	metrics.ErrIndexOverflow,
	metrics.ErrUnknownVariant,
}

// statusFor maps an evaluation error to an HTTP status and a user-facing message.
// Unexpected errors are logged and hidden behind a generic message.
func statusFor(c *gin.Context, where string, err error) (int, string) {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, err.Error()
		}
	}
	log.Printf("[%s] request %s: %v", where, c.GetString("request_id"), err)
	return http.StatusInternalServerError, "evaluation failed"
}

// requestID tags every request with an ID, reusing the caller's X-Request-ID when present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

/* ─── Evaluation ──────────────────────────────────────────────────────── */

// evaluateRequest is the input for every evaluation route: the JSON body of
// POST /api/evaluate, the form on POST / and the query of GET /api/chart.svg.
type evaluateRequest struct {
	HeightCM   float64 `json:"height_cm"    form:"height_cm"`
	WeightKG   float64 `json:"weight_kg"    form:"weight_kg"`
	BodyFatPct float64 `json:"body_fat_pct" form:"body_fat_pct"`
	Gender     string  `json:"gender"       form:"gender"`
	Variant    string  `json:"variant"      form:"variant"`
}

// defaultRequest is what the form shows before the first submit.
func (h *Handler) defaultRequest() evaluateRequest {
	return evaluateRequest{
		HeightCM:   170,
		WeightKG:   70,
		BodyFatPct: 20,
		Gender:     string(metrics.Male),
		Variant:    h.defaultVariant,
	}
}

// evaluate resolves the variant and gender and runs the engine.
// An empty variant falls back to the configured default.
func (h *Handler) evaluate(req evaluateRequest) (metrics.Report, error) {
	name := req.Variant
	if name == "" {
		name = h.defaultVariant
	}
	v, err := h.catalog.Variant(name)
	if err != nil {
		return metrics.Report{}, err
	}
	g, err := metrics.ParseGender(req.Gender)
	if err != nil {
		return metrics.Report{}, err
	}
	return v.Evaluate(metrics.Measurement{
		HeightCM:   req.HeightCM,
		WeightKG:   req.WeightKG,
		BodyFatPct: req.BodyFatPct,
	}, g)
}

// postEvaluate computes and classifies a measurement.
// POST /api/evaluate. Body: {"height_cm", "weight_kg", "body_fat_pct", "gender", "variant"?}.
func (h *Handler) postEvaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.evaluate(req)
	if err != nil {
		status, msg := statusFor(c, "postEvaluate", err)
		apiError(c, status, msg)
		return
	}

	c.JSON(http.StatusOK, report)
}

// variantInfo is one entry of GET /api/variants.
type variantInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

func (h *Handler) variantInfos() []variantInfo {
	names := h.catalog.Names()
	out := make([]variantInfo, 0, len(names))
	for _, name := range names {
		v, err := h.catalog.Variant(name)
		if err != nil {
			continue
		}
		out = append(out, variantInfo{Name: v.Name, Description: v.Description, Default: name == h.defaultVariant})
	}
	return out
}

// getVariants lists the loaded variants.
// GET /api/variants.
func (h *Handler) getVariants(c *gin.Context) {
	c.JSON(http.StatusOK, h.variantInfos())
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// newRouter builds the gin engine with middleware, templates and routes.
func newRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), requestID())
	router.SetTrustedProxies(nil)
	router.SetHTMLTemplate(pageTemplate)
	h.registerRoutes(router)
	return router
}

// registerRoutes registers all routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	router.GET("/", h.getPage)
	router.POST("/", h.postPage)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.POST("/evaluate", h.postEvaluate)
	api.GET("/variants", h.getVariants)
	api.GET("/chart.svg", h.getChart)
}
