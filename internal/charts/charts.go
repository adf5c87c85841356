// Package charts renders insight figures as embeddable echarts snippets.
// Pages embedding a Snippet must load the echarts script once (see AssetsHost).
package charts

import (
	"fmt"
	"html/template"
	"math"
	"slices"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"
)

// AssetsHost is where the echarts javascript is served from.
const AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

const (
	defaultWidth  = "100%"
	defaultHeight = "420px"
)

// Snippet is a rendered chart: a container element and the script that fills it.
type Snippet struct {
	ID      string
	Element template.HTML
	Script  template.HTML
}

type snippetRenderer interface {
	RenderSnippet() render.ChartSnippet
}

func toSnippet(id string, c snippetRenderer) Snippet {
	s := c.RenderSnippet()
	return Snippet{
		ID:      id,
		Element: template.HTML(s.Element),
		Script:  template.HTML(s.Script),
	}
}

func initOpts(id, height string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		ChartID: id,
		Width:   defaultWidth,
		Height:  height,
	})
}

// clusterLabel is the axis and legend name of a cluster.
func clusterLabel(id int) string {
	return "Cluster " + strconv.Itoa(id)
}

func clusterLabels(ids []int) []string {
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = clusterLabel(id)
	}
	return labels
}

// value returns v for the chart payload. NaN and infinities become "-",
// which echarts draws as a gap; encoding/json cannot marshal them.
func value(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return v
}

// PCAScatter plots the 2-D projection, one series per cluster.
func PCAScatter(points [][2]float64, labels []int, variance [2]float64) (Snippet, error) {
	if len(points) != len(labels) {
		return Snippet{}, fmt.Errorf("%d points but %d labels", len(points), len(labels))
	}

	const id = "pca-scatter"
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		initOpts(id, defaultHeight),
		charts.WithTitleOpts(opts.Title{
			Title:    "PCA 2D Cluster Visualization",
			Subtitle: fmt.Sprintf("PC1 %.1f%% / PC2 %.1f%% of variance", variance[0]*100, variance[1]*100),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "pca1", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "pca2", Type: "value"}),
	)

	byCluster := make(map[int][]opts.ScatterData)
	var order []int
	for i, p := range points {
		c := labels[i]
		if _, ok := byCluster[c]; !ok {
			order = append(order, c)
		}
		byCluster[c] = append(byCluster[c], opts.ScatterData{
			Value:      []interface{}{value(p[0]), value(p[1])},
			SymbolSize: 8,
		})
	}
	slices.Sort(order)

	for _, c := range order {
		scatter.AddSeries(clusterLabel(c), byCluster[c])
	}
	return toSnippet(id, scatter), nil
}

// Heatmap draws an annotated matrix. rows label the y axis, cols the x axis.
type Heatmap struct {
	ID       string
	Title    string
	Rows     []string
	Cols     []string
	Values   [][]float64 // Values[row][col]
	Min, Max float64
	Colors   []string
}

// CoolWarm and Viridis are the colour ramps used by the insight heatmaps.
var (
	CoolWarm = []string{"#3b4cc0", "#dddddd", "#b40426"}
	Viridis  = []string{"#440154", "#21918c", "#fde725"}
)

// Render builds the heatmap snippet.
func (h Heatmap) Render() (Snippet, error) {
	if len(h.Values) != len(h.Rows) {
		return Snippet{}, fmt.Errorf("heatmap %q: %d value rows for %d labels", h.ID, len(h.Values), len(h.Rows))
	}

	data := make([]opts.HeatMapData, 0, len(h.Rows)*len(h.Cols))
	for r, row := range h.Values {
		if len(row) != len(h.Cols) {
			return Snippet{}, fmt.Errorf("heatmap %q: row %d has %d values, want %d", h.ID, r, len(row), len(h.Cols))
		}
		for c, v := range row {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{c, r, value(v)}})
		}
	}

	height := fmt.Sprintf("%dpx", 120+40*len(h.Rows))
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		initOpts(h.ID, height),
		charts.WithTitleOpts(opts.Title{Title: h.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Data:      h.Cols,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
			AxisLabel: &opts.AxisLabel{Rotate: 30, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      h.Rows,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(h.Min),
			Max:        float32(h.Max),
			InRange:    &opts.VisualMapInRange{Color: h.Colors},
		}),
	)
	hm.SetXAxis(h.Cols).AddSeries(h.Title, data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{@[2]}"}),
	)
	return toSnippet(h.ID, hm), nil
}

// MeansHeatmap is the per-cluster feature average heatmap.
func MeansHeatmap(ids []int, features []string, means [][]float64) (Snippet, error) {
	lo, hi := bounds(means)
	return Heatmap{
		ID:     "means-heatmap",
		Title:  "Cluster Feature Averages",
		Rows:   clusterLabels(ids),
		Cols:   features,
		Values: means,
		Min:    lo,
		Max:    hi,
		Colors: CoolWarm,
	}.Render()
}

// CorrelationHeatmap is the feature-by-feature Pearson matrix.
func CorrelationHeatmap(features []string, corr [][]float64) (Snippet, error) {
	return Heatmap{
		ID:     "correlation-heatmap",
		Title:  "Feature Correlation",
		Rows:   features,
		Cols:   features,
		Values: corr,
		Min:    -1,
		Max:    1,
		Colors: Viridis,
	}.Render()
}

// CountsBar plots cluster populations in id order.
func CountsBar(ids []int, counts []int) (Snippet, error) {
	if len(ids) != len(counts) {
		return Snippet{}, fmt.Errorf("%d ids but %d counts", len(ids), len(counts))
	}

	const id = "cluster-sizes"
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(id, "360px"),
		charts.WithTitleOpts(opts.Title{Title: "Cluster Size Distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Cluster"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Number of Songs"}),
	)

	data := make([]opts.BarData, len(counts))
	for i, n := range counts {
		data[i] = opts.BarData{Value: n}
	}
	x := make([]string, len(ids))
	for i, c := range ids {
		x[i] = strconv.Itoa(c)
	}
	bar.SetXAxis(x).AddSeries("Songs", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "skyblue"}),
	)
	return toSnippet(id, bar), nil
}

// Box is one cluster's five-number summary with its outliers.
type Box struct {
	ClusterID int
	Values    [5]float64 // Lower whisker, Q1, median, Q3, upper whisker
	Outliers  []float64
}

// BoxPlot compares the distribution of one feature across clusters.
// Outliers are overlaid as scatter points.
func BoxPlot(feature string, boxes []Box) (Snippet, error) {
	if len(boxes) == 0 {
		return Snippet{}, fmt.Errorf("boxplot %q: no clusters", feature)
	}

	const id = "feature-boxplot"
	x := make([]string, len(boxes))
	data := make([]opts.BoxPlotData, len(boxes))
	var outliers []opts.ScatterData
	for i, b := range boxes {
		x[i] = clusterLabel(b.ClusterID)
		vals := make([]interface{}, len(b.Values))
		for j, v := range b.Values {
			vals[j] = value(v)
		}
		data[i] = opts.BoxPlotData{Value: vals}
		for _, o := range b.Outliers {
			outliers = append(outliers, opts.ScatterData{Value: []interface{}{x[i], value(o)}})
		}
	}

	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		initOpts(id, defaultHeight),
		charts.WithTitleOpts(opts.Title{Title: "Distribution of " + feature + " by Cluster"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: feature, Scale: opts.Bool(true)}),
	)
	box.SetXAxis(x).AddSeries(feature, data)

	if len(outliers) > 0 {
		scatter := charts.NewScatter()
		scatter.SetXAxis(x).AddSeries("outliers", outliers)
		box.Overlap(scatter)
	}
	return toSnippet(id, box), nil
}

// Radar draws one cluster's normalised profile. values are in [0,1], one per feature.
func Radar(clusterID int, features []string, values []float64) (Snippet, error) {
	if len(features) != len(values) {
		return Snippet{}, fmt.Errorf("radar: %d features but %d values", len(features), len(values))
	}
	if len(features) < 3 {
		return Snippet{}, fmt.Errorf("radar: need at least 3 features, have %d", len(features))
	}

	id := "radar-" + strconv.Itoa(clusterID)
	indicators := make([]*opts.Indicator, len(features))
	for i, f := range features {
		indicators[i] = &opts.Indicator{Name: f, Min: 0, Max: 1}
	}
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = value(v)
	}

	radar := charts.NewRadar()
	radar.SetGlobalOptions(
		initOpts(id, "360px"),
		charts.WithTitleOpts(opts.Title{Title: clusterLabel(clusterID)}),
		charts.WithRadarComponentOpts(opts.RadarComponent{
			Indicator: indicators,
			Shape:     "polygon",
		}),
	)
	radar.AddSeries(clusterLabel(clusterID), []opts.RadarData{{Name: clusterLabel(clusterID), Value: vals}})
	return toSnippet(id, radar), nil
}

// bounds returns the finite min and max of m, or 0,1 when there are none.
func bounds(m [][]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range m {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if lo > hi {
		return 0, 1
	}
	return lo, hi
}
