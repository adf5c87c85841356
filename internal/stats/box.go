package stats

import (
	"fmt"
	"math"
	"slices"
)

// whiskerIQR is how far whiskers may reach beyond the quartiles, in IQRs.
const whiskerIQR = 1.5

// Box is the five-number summary of one group as drawn in a boxplot.
type Box struct {
	LowerWhisker float64
	Q1           float64
	Median       float64
	Q3           float64
	UpperWhisker float64
	Outliers     []float64
	N            int
}

// Summarize computes quartiles and whiskers for values. Whiskers end at the most
// extreme values within 1.5 IQR of the quartiles; anything beyond is an outlier.
func Summarize(values []float64) (Box, error) {
	if len(values) == 0 {
		return Box{}, fmt.Errorf("%w: no values", ErrInsufficientData)
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	b := Box{
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		N:      len(sorted),
	}

	iqr := b.Q3 - b.Q1
	lo, hi := b.Q1-whiskerIQR*iqr, b.Q3+whiskerIQR*iqr

	b.LowerWhisker, b.UpperWhisker = b.Q1, b.Q3
	for _, v := range sorted {
		if v < lo || v > hi {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		b.LowerWhisker = min(b.LowerWhisker, v)
		b.UpperWhisker = max(b.UpperWhisker, v)
	}
	return b, nil
}

// quantile interpolates linearly between the closest ranks of sorted, placing
// the minimum at p=0 and the maximum at p=1.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[i]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Values returns the box as [lower, q1, median, q3, upper].
func (b Box) Values() []float64 {
	return []float64{b.LowerWhisker, b.Q1, b.Median, b.Q3, b.UpperWhisker}
}

// GroupBy splits values by label, returning labels in ascending order.
func GroupBy(labels []int, values []float64) (ids []int, groups [][]float64, err error) {
	if len(labels) != len(values) {
		return nil, nil, fmt.Errorf("%d labels for %d values", len(labels), len(values))
	}

	ids, _ = Counts(labels)
	pos := make(map[int]int, len(ids))
	for k, id := range ids {
		pos[id] = k
	}

	groups = make([][]float64, len(ids))
	for i, v := range values {
		k := pos[labels[i]]
		groups[k] = append(groups[k], v)
	}
	return ids, groups, nil
}
