package main

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"lg/bodycomp-go-api/internal/metrics"
)

// idealBarColor is used for the ideal-index bars and for bands without a colour.
var idealBarColor = drawing.ColorFromHex("aab7b8")

// barColor converts a band colour ("#rrggbb") to a go-chart colour.
func barColor(hex string) drawing.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return idealBarColor
	}
	return drawing.ColorFromHex(hex)
}

func barStyle(col drawing.Color) chart.Style {
	return chart.Style{
		FillColor:   col,
		StrokeColor: col,
		StrokeWidth: 1,
	}
}

// renderChart draws one bar per index in the report, coloured by its band,
// followed by a grey bar for the ideal index when the variant defines one.
func renderChart(r metrics.Report, w io.Writer) error {
	var bars []chart.Value
	maxValue := 0.0
	for _, s := range r.Sections {
		name := strings.ToUpper(string(s.Metric))
		bars = append(bars, chart.Value{
			Label: name,
			Value: s.Value,
			Style: barStyle(barColor(s.Classification.Color)),
		})
		maxValue = max(maxValue, s.Value)
		if s.Ideal != nil {
			bars = append(bars, chart.Value{
				Label: "ideal " + name,
				Value: s.Ideal.Index,
				Style: barStyle(idealBarColor),
			})
			maxValue = max(maxValue, s.Ideal.Index)
		}
	}

	// A fixed range keeps go-chart from rejecting an all-zero data set.
	top := max(maxValue*1.2, 1)

	graph := chart.BarChart{
		Title:      r.Overall,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Width:      720,
		Height:     400,
		BarWidth:   60,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Bars: bars,
	}
	return graph.Render(chart.SVG, w)
}

// getChart renders the indices for the query's measurement as an SVG bar chart.
// GET /api/chart.svg?height_cm=&weight_kg=&body_fat_pct=&gender=&variant=
func (h *Handler) getChart(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid query parameters")
		return
	}

	report, err := h.evaluate(req)
	if err != nil {
		status, msg := statusFor(c, "getChart", err)
		apiError(c, status, msg)
		return
	}

	var buf bytes.Buffer
	if err := renderChart(report, &buf); err != nil {
		status, msg := statusFor(c, "getChart", err)
		apiError(c, status, msg)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}
