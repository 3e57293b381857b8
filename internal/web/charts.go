package web

import (
	"fmt"
	"math"
	"strconv"

	"github.com/justestif/go-music-cluster-explorer/internal/clustering"
	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
	"github.com/justestif/go-music-cluster-explorer/internal/explorer"
)

// Scatter plot geometry, in SVG user units.
const (
	plotWidth   = 800
	plotHeight  = 500
	plotPadding = 40
)

// tab10 is the ten-color categorical palette used for cluster labels.
var tab10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

const unlabelledColor = "#c7c7c7"

// clusterColor maps a label onto the palette, wrapping every ten labels.
func clusterColor(label int) string {
	n := len(tab10)
	return tab10[((label%n)+n)%n]
}

// Bar is one feature in the profile chart.
type Bar struct {
	Name     string
	Value    float64
	Width    float64 // Percentage of the widest bar
	Negative bool
	Missing  bool
}

// BarChart renders a cluster profile as horizontal bars. Values are not
// rescaled, so tempo and loudness dominate, like the raw means they show.
type BarChart struct {
	Bars  []Bar
	Empty bool
}

// newBarChart builds the chart for a profile.
func newBarChart(p clustering.Profile) *BarChart {
	chart := &BarChart{Empty: p.Empty()}

	maxAbs := 0.0
	for _, m := range p.Means {
		if !math.IsNaN(m) {
			maxAbs = math.Max(maxAbs, math.Abs(m))
		}
	}

	for i, name := range dataset.FeatureNames {
		m := p.Means[i]
		bar := Bar{Name: name, Value: m}
		switch {
		case math.IsNaN(m):
			bar.Missing = true
		case maxAbs > 0:
			bar.Width = math.Abs(m) / maxAbs * 100
			bar.Negative = m < 0
		}
		chart.Bars = append(chart.Bars, bar)
	}
	return chart
}

// ScatterPoint is one projected song in SVG coordinates.
type ScatterPoint struct {
	CX    float64
	CY    float64
	Color string
	Label string
}

// LegendEntry maps a label to its color.
type LegendEntry struct {
	Label int
	Color string
}

// ScatterPlot is a projection laid out for an SVG viewport.
type ScatterPlot struct {
	Width   int
	Height  int
	Points  []ScatterPoint
	Legend  []LegendEntry
	XLabel  string
	YLabel  string
	XRange  [2]float64
	YRange  [2]float64
	Padding int
}

// newScatterPlot scales projected points into the plot viewport.
func newScatterPlot(proj *explorer.Projection) *ScatterPlot {
	plot := &ScatterPlot{
		Width:   plotWidth,
		Height:  plotHeight,
		XLabel:  "PC1",
		YLabel:  "PC2",
		Padding: plotPadding,
	}
	for _, l := range proj.Labels {
		plot.Legend = append(plot.Legend, LegendEntry{Label: l, Color: clusterColor(l)})
	}
	if len(proj.Points) == 0 {
		return plot
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range proj.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	plot.XRange = [2]float64{minX, maxX}
	plot.YRange = [2]float64{minY, maxY}

	scale := func(v, lo, hi, size float64) float64 {
		if hi == lo {
			return size / 2
		}
		return (v - lo) / (hi - lo) * size
	}

	innerW := float64(plotWidth - 2*plotPadding)
	innerH := float64(plotHeight - 2*plotPadding)
	for _, p := range proj.Points {
		sp := ScatterPoint{
			CX:    plotPadding + scale(p.X, minX, maxX, innerW),
			CY:    plotHeight - plotPadding - scale(p.Y, minY, maxY, innerH),
			Color: unlabelledColor,
			Label: "unlabelled",
		}
		if p.Label != nil {
			sp.Color = clusterColor(*p.Label)
			sp.Label = fmt.Sprintf("Cluster %d", *p.Label)
		}
		plot.Points = append(plot.Points, sp)
	}
	return plot
}

// newSongTable converts sampled songs into display rows.
func newSongTable(table *explorer.SongTable) *SongTableData {
	data := &SongTableData{
		Label:     table.Label,
		Requested: table.Requested,
		Columns:   table.Columns,
	}
	for _, s := range table.Songs {
		row := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			row[i] = cellValue(s, col)
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// cellValue formats one song attribute for the table.
func cellValue(s dataset.Song, column string) string {
	switch column {
	case dataset.TrackNameColumn:
		return s.TrackName
	case dataset.ArtistColumn:
		return s.Artist
	}
	v := s.Feature(column)
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
