package clustering

import (
	"context"
	"fmt"

	"github.com/muesli/clusters"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/justestif/go-music-cluster-explorer/internal/stats"
)

// Cohesion measures how well one labelled cluster hangs together in
// standardized feature space.
type Cohesion struct {
	ID   int
	Size int
	// MeanDistance is the average euclidean distance of members to the centroid.
	MeanDistance float64
	// Silhouette is the mean simplified silhouette of the members, in [-1, 1]:
	// distances are taken to centroids rather than to every other member.
	Silhouette float64
	// Agreement is the fraction of members whose nearest centroid is their own.
	Agreement float64
}

// songObservation wraps a song's coordinates to implement clusters.Observation.
type songObservation struct {
	coords clusters.Coordinates
}

func (o songObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o songObservation) Distance(point clusters.Coordinates) float64 {
	return floats.Distance(o.coords, point, 2)
}

// cancelCheckEvery is how many songs are measured between context checks.
const cancelCheckEvery = 1024

// MeasureCohesion evaluates the upstream labelling. Columns are z-scored first so
// that wide-ranged features such as tempo do not dominate the distances. The cost
// is linear in songs times clusters.
func MeasureCohesion(ctx context.Context, labels []int, columns [][]float64) ([]Cohesion, error) {
	if len(columns) == 0 || len(labels) == 0 {
		return nil, fmt.Errorf("%w: no songs to measure", stats.ErrInsufficientData)
	}
	for j, col := range columns {
		if len(col) != len(labels) {
			return nil, fmt.Errorf("column %d has %d rows, want %d", j, len(col), len(labels))
		}
	}

	points := standardize(columns)

	ids, _ := stats.Counts(labels)
	pos := make(map[int]int, len(ids))
	for k, id := range ids {
		pos[id] = k
	}

	groups := make(clusters.Clusters, len(ids))
	for i, p := range points {
		k := pos[labels[i]]
		groups[k].Observations = append(groups[k].Observations, songObservation{coords: p})
	}
	for k := range groups {
		center, err := groups[k].Observations.Center()
		if err != nil {
			return nil, fmt.Errorf("cluster %d centroid: %w", ids[k], err)
		}
		groups[k].Center = center
	}

	result := make([]Cohesion, len(ids))
	seen := 0
	for k, g := range groups {
		c := Cohesion{ID: ids[k], Size: len(g.Observations)}

		var dist, sil float64
		var agree int
		for _, o := range g.Observations {
			if seen%cancelCheckEvery == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			seen++

			dist += o.Distance(g.Center)
			if groups.Nearest(o) == k {
				agree++
			}
			sil += silhouette(o, k, groups)
		}

		n := float64(c.Size)
		c.MeanDistance = dist / n
		c.Silhouette = sil / n
		c.Agreement = float64(agree) / n
		result[k] = c
	}
	return result, nil
}

// silhouette returns (b-a)/max(a,b) for one observation, where a is its distance
// to its own centroid and b the distance to the nearest other centroid.
// Members of singleton clusters, or of the only cluster, score 0.
func silhouette(o clusters.Observation, own int, groups clusters.Clusters) float64 {
	if len(groups) < 2 || len(groups[own].Observations) < 2 {
		return 0
	}

	a := o.Distance(groups[own].Center)
	b := -1.0
	for k, g := range groups {
		if k == own {
			continue
		}
		if d := o.Distance(g.Center); b < 0 || d < b {
			b = d
		}
	}

	denom := max(a, b)
	if denom == 0 {
		return 0
	}
	return (b - a) / denom
}

// standardize returns row-major points with each column z-scored.
// Constant columns become zeros.
func standardize(columns [][]float64) []clusters.Coordinates {
	n := len(columns[0])
	points := make([]clusters.Coordinates, n)
	for i := range points {
		points[i] = make(clusters.Coordinates, len(columns))
	}

	for j, col := range columns {
		mean, std := stat.MeanStdDev(col, nil)
		for i, v := range col {
			if std > 0 {
				points[i][j] = (v - mean) / std
			}
		}
	}
	return points
}
