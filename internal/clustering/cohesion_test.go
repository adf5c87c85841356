package clustering

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/justestif/go-music-cluster-explorer/internal/stats"
)

func TestMeasureCohesion_Separated(t *testing.T) {
	// Two tight, far-apart groups: every song agrees with its label.
	labels := []int{0, 0, 0, 1, 1, 1}
	columns := [][]float64{
		{0.10, 0.12, 0.11, 0.90, 0.91, 0.89},
		{60, 62, 61, 180, 181, 179},
	}

	got, err := MeasureCohesion(context.Background(), labels, columns)
	if err != nil {
		t.Fatalf("MeasureCohesion() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}

	for _, c := range got {
		if c.Size != 3 {
			t.Errorf("cluster %d size = %d, want 3", c.ID, c.Size)
		}
		if c.Agreement != 1 {
			t.Errorf("cluster %d agreement = %v, want 1", c.ID, c.Agreement)
		}
		if c.Silhouette < 0.9 || c.Silhouette > 1 {
			t.Errorf("cluster %d silhouette = %v, want in [0.9, 1]", c.ID, c.Silhouette)
		}
		if c.MeanDistance <= 0 || math.IsNaN(c.MeanDistance) {
			t.Errorf("cluster %d mean distance = %v, want positive", c.ID, c.MeanDistance)
		}
	}
}

func TestMeasureCohesion_SingleCluster(t *testing.T) {
	got, err := MeasureCohesion(context.Background(), []int{4, 4, 4}, [][]float64{{1, 2, 3}})
	if err != nil {
		t.Fatalf("MeasureCohesion() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != 4 {
		t.Fatalf("got %+v, want one entry for cluster 4", got)
	}
	if got[0].Silhouette != 0 {
		t.Errorf("silhouette = %v, want 0 for a single cluster", got[0].Silhouette)
	}
	if got[0].Agreement != 1 {
		t.Errorf("agreement = %v, want 1", got[0].Agreement)
	}
}

func TestMeasureCohesion_ConstantColumn(t *testing.T) {
	got, err := MeasureCohesion(context.Background(), []int{0, 1}, [][]float64{{5, 5}, {1, 2}})
	if err != nil {
		t.Fatalf("MeasureCohesion() error = %v", err)
	}
	for _, c := range got {
		if math.IsNaN(c.MeanDistance) || math.IsNaN(c.Silhouette) {
			t.Errorf("cluster %d has NaN metrics: %+v", c.ID, c)
		}
	}
}

func TestMeasureCohesion_Errors(t *testing.T) {
	if _, err := MeasureCohesion(context.Background(), nil, nil); !errors.Is(err, stats.ErrInsufficientData) {
		t.Errorf("MeasureCohesion(empty) error = %v, want ErrInsufficientData", err)
	}
	if _, err := MeasureCohesion(context.Background(), []int{0, 1}, [][]float64{{1}}); err == nil {
		t.Error("MeasureCohesion(mismatched) error = nil, want error")
	}
}

// syntheticSongs returns n songs in k clusters over d features, each cluster
// offset along every feature.
func syntheticSongs(n, k, d int) ([]int, [][]float64) {
	labels := make([]int, n)
	columns := make([][]float64, d)
	for j := range columns {
		columns[j] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		labels[i] = i % k
		for j := range columns {
			columns[j][i] = float64(labels[i]) + float64((i*7+j*3)%11)/20
		}
	}
	return labels, columns
}

func TestMeasureCohesion_Scale(t *testing.T) {
	tests := []struct {
		rows  int
		limit time.Duration
	}{
		{rows: 5000, limit: 2 * time.Second},
		{rows: 50000, limit: 5 * time.Second},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("%d rows", tt.rows), func(t *testing.T) {
			labels, columns := syntheticSongs(tt.rows, 6, 10)

			start := time.Now()
			got, err := MeasureCohesion(context.Background(), labels, columns)
			elapsed := time.Since(start)
			if err != nil {
				t.Fatalf("MeasureCohesion() error = %v", err)
			}
			if len(got) != 6 {
				t.Fatalf("got %d entries, want 6", len(got))
			}
			if elapsed > tt.limit {
				t.Errorf("MeasureCohesion took %v on %d rows, want under %v", elapsed, tt.rows, tt.limit)
			}
			for _, c := range got {
				if c.Silhouette <= 0 || c.Silhouette > 1 {
					t.Errorf("cluster %d silhouette = %v, want in (0, 1]", c.ID, c.Silhouette)
				}
			}
		})
	}
}

func TestMeasureCohesion_Cancelled(t *testing.T) {
	labels, columns := syntheticSongs(3000, 3, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := MeasureCohesion(ctx, labels, columns); !errors.Is(err, context.Canceled) {
		t.Errorf("MeasureCohesion(cancelled) error = %v, want context.Canceled", err)
	}
}
