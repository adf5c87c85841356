// Package dataset loads the clustered songs CSV into an in-memory table.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
)

// ClusterColumn is the column holding the upstream cluster label.
const ClusterColumn = "cluster"

// FeatureColumns lists the audio features every song row is expected to carry.
var FeatureColumns = []string{
	"danceability",
	"energy",
	"loudness",
	"speechiness",
	"acousticness",
	"instrumentalness",
	"liveness",
	"valence",
	"tempo",
	"duration_ms",
}

var (
	// ErrNotFound is returned when the dataset file does not exist.
	ErrNotFound = errors.New("dataset file not found")

	// ErrMissingColumn is returned when a requested column is absent from the header.
	ErrMissingColumn = errors.New("missing column")

	// ErrEmpty is returned when the CSV has no header row.
	ErrEmpty = errors.New("dataset is empty")
)

// Dataset is a header plus string rows, with typed accessors on top.
// Cells are kept as read so that export reproduces the input verbatim.
type Dataset struct {
	header []string
	rows   [][]string
	index  map[string]int
}

// Load reads a dataset from a CSV file.
// Returns an error wrapping ErrNotFound if the file does not exist.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ds, nil
}

// Read parses a dataset from CSV. The first record is the header.
func Read(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
	}

	return newDataset(header, records[1:]), nil
}

func newDataset(header []string, rows [][]string) *Dataset {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	return &Dataset{header: header, rows: rows, index: index}
}

// Len returns the number of song rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Columns returns a copy of the header.
func (d *Dataset) Columns() []string {
	return slices.Clone(d.header)
}

// HasColumn reports whether the header contains name.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Clone returns a deep copy so that derived columns stay private to the copy.
func (d *Dataset) Clone() *Dataset {
	rows := make([][]string, len(d.rows))
	for i, row := range d.rows {
		rows[i] = slices.Clone(row)
	}
	return newDataset(slices.Clone(d.header), rows)
}

// Floats parses a column as float64 values.
func (d *Dataset) Floats(name string) ([]float64, error) {
	col, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}

	values := make([]float64, len(d.rows))
	for i, row := range d.rows {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", name, i+1, err)
		}
		values[i] = v
	}
	return values, nil
}

// Features parses every column in names, returning one slice per column.
func (d *Dataset) Features(names []string) ([][]float64, error) {
	cols := make([][]float64, len(names))
	for i, name := range names {
		values, err := d.Floats(name)
		if err != nil {
			return nil, err
		}
		cols[i] = values
	}
	return cols, nil
}

// Clusters parses the cluster column. Values written as floats ("2.0") are accepted
// as long as they are whole and non-negative.
func (d *Dataset) Clusters() ([]int, error) {
	values, err := d.Floats(ClusterColumn)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(values))
	for i, v := range values {
		if v < 0 || v != float64(int(v)) {
			return nil, fmt.Errorf("column %q row %d: invalid cluster label %v", ClusterColumn, i+1, v)
		}
		labels[i] = int(v)
	}
	return labels, nil
}

// ClusterIDs returns the distinct cluster labels in ascending order.
func (d *Dataset) ClusterIDs() ([]int, error) {
	labels, err := d.Clusters()
	if err != nil {
		return nil, err
	}

	ids := slices.Clone(labels)
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// SetColumn appends a derived numeric column, replacing it if it already exists.
func (d *Dataset) SetColumn(name string, values []float64) error {
	if len(values) != len(d.rows) {
		return fmt.Errorf("column %q has %d values, dataset has %d rows", name, len(values), len(d.rows))
	}

	col, ok := d.index[name]
	if !ok {
		col = len(d.header)
		d.header = append(d.header, name)
		d.index[name] = col
	}

	for i, row := range d.rows {
		cell := strconv.FormatFloat(values[i], 'g', -1, 64)
		if col < len(row) {
			row[col] = cell
		} else {
			d.rows[i] = append(row, cell)
		}
	}
	return nil
}

// WriteCSV writes the header and all rows, without an index column.
func (d *Dataset) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(d.header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := writer.WriteAll(d.rows); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	return nil
}
