package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinMaxNormalize rescales each column of m (rows are groups) so that the column
// minimum maps to 0 and the maximum to 1. A constant column maps to all zeros.
func MinMaxNormalize(m [][]float64) ([][]float64, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("%w: no rows to normalize", ErrInsufficientData)
	}
	width := len(m[0])
	for k, row := range m {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d values, want %d", k, len(row), width)
		}
	}

	out := make([][]float64, len(m))
	for k := range out {
		out[k] = make([]float64, width)
	}

	col := make([]float64, len(m))
	for j := 0; j < width; j++ {
		for k, row := range m {
			col[k] = row[j]
		}
		lo, hi := floats.Min(col), floats.Max(col)
		span := hi - lo
		for k := range m {
			if span == 0 {
				continue
			}
			out[k][j] = (m[k][j] - lo) / span
		}
	}
	return out, nil
}

// Polygon is a closed radar outline: the first vertex is repeated at the end.
type Polygon struct {
	Values []float64
	Angles []float64 // Radians, evenly spaced from 0
}

// RadarPolygon spaces values evenly around the circle and closes the outline.
func RadarPolygon(values []float64) (Polygon, error) {
	n := len(values)
	if n == 0 {
		return Polygon{}, fmt.Errorf("%w: radar needs at least one axis", ErrInsufficientData)
	}

	p := Polygon{
		Values: make([]float64, 0, n+1),
		Angles: make([]float64, 0, n+1),
	}
	for i, v := range values {
		p.Values = append(p.Values, v)
		p.Angles = append(p.Angles, float64(i)/float64(n)*2*math.Pi)
	}
	p.Values = append(p.Values, p.Values[0])
	p.Angles = append(p.Angles, p.Angles[0])
	return p, nil
}
