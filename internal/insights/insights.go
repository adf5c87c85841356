// Package insights assembles the cluster insights panel from a session's dataset.
package insights

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/justestif/go-music-cluster-explorer/internal/charts"
	"github.com/justestif/go-music-cluster-explorer/internal/clustering"
	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
	"github.com/justestif/go-music-cluster-explorer/internal/stats"
)

// Derived column names written back to the dataset.
const (
	PCA1Column = "pca1"
	PCA2Column = "pca2"
)

// maxConcurrentSections bounds the goroutines computing sections.
const maxConcurrentSections = 4

// Section titles, used as warning prefixes.
const (
	SectionPCA         = "PCA Visualization"
	SectionMeans       = "Cluster Feature Averages"
	SectionCounts      = "Cluster Size Distribution"
	SectionCorrelation = "Feature Correlation Heatmap"
	SectionBoxPlot     = "Feature Distribution"
	SectionRadar       = "Radar Chart"
	SectionCohesion    = "Cluster Cohesion"
)

// MeansRow is one row of the cluster averages table.
type MeansRow struct {
	ClusterID int
	Mood      string
	Values    []float64 // Rounded to two decimals, in Features order
}

// BoxRow is one cluster's distribution of the selected feature.
type BoxRow struct {
	ClusterID int
	Box       stats.Box
}

// RadarProfile is one cluster's normalised profile and its chart.
type RadarProfile struct {
	ClusterID int
	Polygon   stats.Polygon
	Chart     charts.Snippet
}

// Report holds every rendered section. A nil or empty section failed and has a
// matching entry in Warnings.
type Report struct {
	Features []string
	Feature  string // Feature selected for the boxplot

	PCA      *charts.Snippet
	Variance [2]float64

	MeansChart *charts.Snippet
	MeansTable []MeansRow

	Counts      *charts.Snippet
	Correlation *charts.Snippet

	BoxPlot *charts.Snippet
	Boxes   []BoxRow

	Radars   []RadarProfile
	Cohesion []clustering.Cohesion

	Warnings []string
}

// ResolveFeature returns name if it is a known feature, otherwise the first feature.
func ResolveFeature(name string) string {
	if slices.Contains(dataset.FeatureColumns, name) {
		return name
	}
	return dataset.FeatureColumns[0]
}

// inputs are read from the dataset once, before sections run concurrently.
type inputs struct {
	labels    []int
	labelsErr error

	columns    [][]float64
	columnsErr error

	feature    []float64
	featureErr error
}

// Build computes every insight section over ds. Sections fail independently and
// report a "<section> skipped: <reason>" warning. On success the PCA projection is
// written to ds as the pca1 and pca2 columns; callers must hold the session lock.
func Build(ctx context.Context, ds *dataset.Dataset, feature string) (*Report, error) {
	r := &Report{
		Features: dataset.FeatureColumns,
		Feature:  ResolveFeature(feature),
	}

	in := inputs{}
	in.labels, in.labelsErr = ds.Clusters()
	in.columns, in.columnsErr = ds.Features(dataset.FeatureColumns)
	in.feature, in.featureErr = ds.Floats(r.Feature)

	var projection *stats.Projection

	sections := []struct {
		name string
		run  func() error
	}{
		{SectionPCA, func() (err error) {
			projection, err = r.buildPCA(in)
			return err
		}},
		{SectionMeans, func() error { return r.buildMeans(in) }},
		{SectionCounts, func() error { return r.buildCounts(in) }},
		{SectionCorrelation, func() error { return r.buildCorrelation(in) }},
		{SectionBoxPlot, func() error { return r.buildBoxPlot(in) }},
		{SectionRadar, func() error { return r.buildRadars(in) }},
		{SectionCohesion, func() error { return r.buildCohesion(ctx, in) }},
	}

	failures := make([]error, len(sections))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSections)
	for i, s := range sections {
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			failures[i] = s.run()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building insights: %w", err)
	}

	for i, err := range failures {
		if err != nil {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s skipped: %v", sections[i].name, err))
		}
	}

	if projection != nil {
		if err := writeProjection(ds, projection); err != nil {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s skipped: %v", SectionPCA, err))
		}
	}
	return r, nil
}

func (r *Report) buildPCA(in inputs) (*stats.Projection, error) {
	if in.labelsErr != nil {
		return nil, in.labelsErr
	}
	if in.columnsErr != nil {
		return nil, in.columnsErr
	}

	p, err := stats.PCA2(in.columns)
	if err != nil {
		return nil, err
	}
	chart, err := charts.PCAScatter(p.Points, in.labels, p.ExplainedVariance)
	if err != nil {
		return nil, err
	}
	r.PCA = &chart
	r.Variance = p.ExplainedVariance
	return p, nil
}

// roundedMeans returns per-cluster feature means rounded to two decimals.
func roundedMeans(in inputs) ([]int, [][]float64, error) {
	if in.labelsErr != nil {
		return nil, nil, in.labelsErr
	}
	if in.columnsErr != nil {
		return nil, nil, in.columnsErr
	}
	ids, means, err := stats.GroupMeans(in.labels, in.columns)
	if err != nil {
		return nil, nil, err
	}
	return ids, stats.RoundAll(means, 2), nil
}

func (r *Report) buildMeans(in inputs) error {
	ids, means, err := roundedMeans(in)
	if err != nil {
		return err
	}

	chart, err := charts.MeansHeatmap(ids, dataset.FeatureColumns, means)
	if err != nil {
		return err
	}
	r.MeansChart = &chart

	r.MeansTable = make([]MeansRow, len(ids))
	for k, id := range ids {
		byName := make(map[string]float64, len(dataset.FeatureColumns))
		for j, name := range dataset.FeatureColumns {
			byName[name] = means[k][j]
		}
		r.MeansTable[k] = MeansRow{
			ClusterID: id,
			Mood:      clustering.GetMoodCategory(byName).Name,
			Values:    means[k],
		}
	}
	return nil
}

func (r *Report) buildCounts(in inputs) error {
	if in.labelsErr != nil {
		return in.labelsErr
	}
	if len(in.labels) == 0 {
		return fmt.Errorf("%w: no songs", stats.ErrInsufficientData)
	}

	ids, counts := stats.Counts(in.labels)
	chart, err := charts.CountsBar(ids, counts)
	if err != nil {
		return err
	}
	r.Counts = &chart
	return nil
}

func (r *Report) buildCorrelation(in inputs) error {
	if in.columnsErr != nil {
		return in.columnsErr
	}

	corr, err := stats.Correlation(in.columns)
	if err != nil {
		return err
	}
	chart, err := charts.CorrelationHeatmap(dataset.FeatureColumns, stats.RoundAll(corr, 2))
	if err != nil {
		return err
	}
	r.Correlation = &chart
	return nil
}

func (r *Report) buildBoxPlot(in inputs) error {
	if in.labelsErr != nil {
		return in.labelsErr
	}
	if in.featureErr != nil {
		return in.featureErr
	}

	ids, groups, err := stats.GroupBy(in.labels, in.feature)
	if err != nil {
		return err
	}

	boxes := make([]charts.Box, len(ids))
	rows := make([]BoxRow, len(ids))
	for k, id := range ids {
		b, err := stats.Summarize(groups[k])
		if err != nil {
			return fmt.Errorf("cluster %d: %w", id, err)
		}
		rows[k] = BoxRow{ClusterID: id, Box: b}
		boxes[k] = charts.Box{ClusterID: id, Values: [5]float64(b.Values()), Outliers: b.Outliers}
	}

	chart, err := charts.BoxPlot(r.Feature, boxes)
	if err != nil {
		return err
	}
	r.BoxPlot = &chart
	r.Boxes = rows
	return nil
}

func (r *Report) buildRadars(in inputs) error {
	ids, means, err := roundedMeans(in)
	if err != nil {
		return err
	}
	norm, err := stats.MinMaxNormalize(means)
	if err != nil {
		return err
	}

	radars := make([]RadarProfile, len(ids))
	for k, id := range ids {
		polygon, err := stats.RadarPolygon(norm[k])
		if err != nil {
			return fmt.Errorf("cluster %d: %w", id, err)
		}
		chart, err := charts.Radar(id, dataset.FeatureColumns, norm[k])
		if err != nil {
			return fmt.Errorf("cluster %d: %w", id, err)
		}
		radars[k] = RadarProfile{ClusterID: id, Polygon: polygon, Chart: chart}
	}
	r.Radars = radars
	return nil
}

func (r *Report) buildCohesion(ctx context.Context, in inputs) error {
	if in.labelsErr != nil {
		return in.labelsErr
	}
	if in.columnsErr != nil {
		return in.columnsErr
	}

	c, err := clustering.MeasureCohesion(ctx, in.labels, in.columns)
	if err != nil {
		return err
	}
	r.Cohesion = c
	return nil
}

func writeProjection(ds *dataset.Dataset, p *stats.Projection) error {
	pc1 := make([]float64, len(p.Points))
	pc2 := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		pc1[i], pc2[i] = pt[0], pt[1]
	}
	if err := ds.SetColumn(PCA1Column, pc1); err != nil {
		return err
	}
	return ds.SetColumn(PCA2Column, pc2)
}
