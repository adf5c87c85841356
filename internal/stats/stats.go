// Package stats implements the numeric summaries behind the insights panel.
// Inputs are column-major: columns[j][i] is feature j of row i.
package stats

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned when there are too few rows or columns.
var ErrInsufficientData = errors.New("insufficient data")

// Projection is a 2-D principal component projection.
type Projection struct {
	Points [][2]float64
	// ExplainedVariance is the fraction of total variance on each axis.
	ExplainedVariance [2]float64
}

// PCA2 projects mean-centred rows onto the first two principal components.
func PCA2(columns [][]float64) (*Projection, error) {
	data, err := centredMatrix(columns)
	if err != nil {
		return nil, err
	}
	n, d := data.Dims()

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, errors.New("principal component decomposition failed")
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	var proj mat.Dense
	proj.Mul(data, vecs.Slice(0, d, 0, 2))

	p := &Projection{Points: make([][2]float64, n)}
	for i := 0; i < n; i++ {
		p.Points[i] = [2]float64{proj.At(i, 0), proj.At(i, 1)}
	}

	vars := pc.VarsTo(nil)
	if total := floats.Sum(vars); total > 0 {
		p.ExplainedVariance = [2]float64{vars[0] / total, vars[1] / total}
	}
	return p, nil
}

// centredMatrix builds an n×d matrix with each column's mean subtracted.
func centredMatrix(columns [][]float64) (*mat.Dense, error) {
	if err := checkColumns(columns, 2, 2); err != nil {
		return nil, err
	}
	n, d := len(columns[0]), len(columns)

	data := mat.NewDense(n, d, nil)
	for j, col := range columns {
		mean := stat.Mean(col, nil)
		for i, v := range col {
			data.Set(i, j, v-mean)
		}
	}
	return data, nil
}

// checkColumns validates shape and finiteness.
func checkColumns(columns [][]float64, minCols, minRows int) error {
	if len(columns) < minCols {
		return fmt.Errorf("%w: need at least %d feature columns, have %d", ErrInsufficientData, minCols, len(columns))
	}
	n := len(columns[0])
	if n < minRows {
		return fmt.Errorf("%w: need at least %d rows, have %d", ErrInsufficientData, minRows, n)
	}
	for j, col := range columns {
		if len(col) != n {
			return fmt.Errorf("column %d has %d rows, want %d", j, len(col), n)
		}
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("column %d row %d: non-finite value %v", j, i+1, v)
			}
		}
	}
	return nil
}

// Correlation returns the pairwise Pearson correlation matrix of the columns.
// Entries involving a constant column are NaN.
func Correlation(columns [][]float64) ([][]float64, error) {
	if err := checkColumns(columns, 1, 2); err != nil {
		return nil, err
	}
	n, d := len(columns[0]), len(columns)

	data := mat.NewDense(n, d, nil)
	for j, col := range columns {
		data.SetCol(j, col)
	}

	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, data, nil)

	out := make([][]float64, d)
	for i := 0; i < d; i++ {
		out[i] = make([]float64, d)
		for j := 0; j < d; j++ {
			out[i][j] = corr.At(i, j)
		}
	}
	return out, nil
}

// Counts returns the distinct labels in ascending order and how often each occurs.
func Counts(labels []int) (ids []int, counts []int) {
	byID := make(map[int]int)
	for _, l := range labels {
		byID[l]++
	}

	ids = make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	counts = make([]int, len(ids))
	for i, id := range ids {
		counts[i] = byID[id]
	}
	return ids, counts
}

// GroupMeans returns, for each distinct label in ascending order, the mean of every
// column over the rows carrying that label. means[k][j] is column j of group k.
func GroupMeans(labels []int, columns [][]float64) (ids []int, means [][]float64, err error) {
	for j, col := range columns {
		if len(col) != len(labels) {
			return nil, nil, fmt.Errorf("column %d has %d rows, want %d", j, len(col), len(labels))
		}
	}
	if len(labels) == 0 {
		return nil, nil, fmt.Errorf("%w: no rows", ErrInsufficientData)
	}

	ids, counts := Counts(labels)
	pos := make(map[int]int, len(ids))
	for k, id := range ids {
		pos[id] = k
	}

	means = make([][]float64, len(ids))
	for k := range means {
		means[k] = make([]float64, len(columns))
	}
	for j, col := range columns {
		for i, v := range col {
			means[pos[labels[i]]][j] += v
		}
	}
	for k := range means {
		floats.Scale(1/float64(counts[k]), means[k])
	}
	return ids, means, nil
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// RoundAll rounds every entry of m in place and returns it.
func RoundAll(m [][]float64, places int) [][]float64 {
	for _, row := range m {
		for j, v := range row {
			row[j] = Round(v, places)
		}
	}
	return m
}
