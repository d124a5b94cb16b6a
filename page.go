package main

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"lg/bodycomp-go-api/internal/metrics"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("").Funcs(template.FuncMap{
	"fixed": func(v float64, prec int) string { return strconv.FormatFloat(v, 'f', prec, 64) },
}).ParseFS(templateFS, "templates/*.tmpl"))

// pageData is everything index.html.tmpl renders. Report is nil until the
// form has been submitted successfully.
type pageData struct {
	Request  evaluateRequest
	Variants []variantInfo
	Report   *metrics.Report
	Error    string
	ChartURL string
}

// getPage renders the empty form with default values.
// GET /.
func (h *Handler) getPage(c *gin.Context) {
	h.renderPage(c, http.StatusOK, h.defaultRequest(), nil, "")
}

// postPage evaluates the submitted form and renders the results below it.
// POST /. Validation errors re-render the form with the message and status 400.
func (h *Handler) postPage(c *gin.Context) {
	req := h.defaultRequest()
	if err := c.ShouldBind(&req); err != nil {
		h.renderPage(c, http.StatusBadRequest, req, nil, "invalid form input")
		return
	}

	report, err := h.evaluate(req)
	if err != nil {
		status, msg := statusFor(c, "postPage", err)
		h.renderPage(c, status, req, nil, msg)
		return
	}
	h.renderPage(c, http.StatusOK, req, &report, "")
}

func (h *Handler) renderPage(c *gin.Context, status int, req evaluateRequest, report *metrics.Report, errMsg string) {
	data := pageData{
		Request:  req,
		Variants: h.variantInfos(),
		Report:   report,
		Error:    errMsg,
	}
	if report != nil {
		data.ChartURL = chartURL(req)
	}
	c.HTML(status, "index.html.tmpl", data)
}

// chartURL points the page's <img> at the SVG chart for the same inputs.
func chartURL(req evaluateRequest) string {
	q := url.Values{}
	q.Set("height_cm", strconv.FormatFloat(req.HeightCM, 'f', -1, 64))
	q.Set("weight_kg", strconv.FormatFloat(req.WeightKG, 'f', -1, 64))
	q.Set("body_fat_pct", strconv.FormatFloat(req.BodyFatPct, 'f', -1, 64))
	q.Set("gender", req.Gender)
	q.Set("variant", req.Variant)
	return "/api/chart.svg?" + q.Encode()
}
