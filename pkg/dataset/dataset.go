package dataset

import (
	"errors"
	"fmt"
	"math"
)

// Kind is the type of a column.
type Kind int

const (
	Numeric Kind = iota
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column is a named, typed vector of values. Numeric columns store float64
// (NaN marks a missing value); categorical columns store strings ("" marks a
// missing value). Constructors copy their input, so a Column never aliases
// caller-owned memory.
type Column struct {
	name   string
	kind   Kind
	floats []float64
	labels []string
}

// NumericColumn builds a numeric column from values.
func NumericColumn(name string, values []float64) Column {
	copied := make([]float64, len(values))
	copy(copied, values)
	return Column{name: name, kind: Numeric, floats: copied}
}

// CategoricalColumn builds a categorical column from values.
func CategoricalColumn(name string, values []string) Column {
	copied := make([]string, len(values))
	copy(copied, values)
	return Column{name: name, kind: Categorical, labels: copied}
}

func (c Column) Name() string { return c.name }
func (c Column) Kind() Kind   { return c.kind }

func (c Column) len() int {
	if c.kind == Numeric {
		return len(c.floats)
	}
	return len(c.labels)
}

// Dataset is an immutable table of named, typed columns. Transforms produce
// new Datasets; existing ones are never mutated, which makes a Dataset safe
// to share across concurrent readers.
type Dataset struct {
	cols   []Column
	index  map[string]int
	rows   int
	target string
}

// New builds a Dataset from columns. All columns must share the same length
// and names must be unique.
func New(cols ...Column) (*Dataset, error) {
	if len(cols) == 0 {
		return &Dataset{index: map[string]int{}}, nil
	}

	rows := cols[0].len()
	index := make(map[string]int, len(cols))
	for i, col := range cols {
		if col.name == "" {
			return nil, errors.New("dataset: column name must not be empty")
		}
		if _, ok := index[col.name]; ok {
			return nil, fmt.Errorf("dataset: duplicate column %q", col.name)
		}
		if col.len() != rows {
			return nil, fmt.Errorf("dataset: column %q has %d rows, want %d", col.name, col.len(), rows)
		}
		index[col.name] = i
	}

	return &Dataset{cols: cols, index: index, rows: rows}, nil
}

// Rows returns the row count.
func (d *Dataset) Rows() int { return d.rows }

// Columns returns column names in declaration order.
func (d *Dataset) Columns() []string {
	names := make([]string, len(d.cols))
	for i, col := range d.cols {
		names[i] = col.name
	}
	return names
}

// Has reports whether the named column exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// KindOf returns the kind of the named column.
func (d *Dataset) KindOf(name string) (Kind, error) {
	i, ok := d.index[name]
	if !ok {
		return 0, fmt.Errorf("dataset: no column %q", name)
	}
	return d.cols[i].kind, nil
}

// Floats returns the values of a numeric column. The returned slice is shared
// with the Dataset and must be treated as read-only.
func (d *Dataset) Floats(name string) ([]float64, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("dataset: no column %q", name)
	}
	if d.cols[i].kind != Numeric {
		return nil, fmt.Errorf("dataset: column %q is %s, want numeric", name, d.cols[i].kind)
	}
	return d.cols[i].floats, nil
}

// Labels returns the values of a categorical column. The returned slice is
// shared with the Dataset and must be treated as read-only.
func (d *Dataset) Labels(name string) ([]string, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("dataset: no column %q", name)
	}
	if d.cols[i].kind != Categorical {
		return nil, fmt.Errorf("dataset: column %q is %s, want categorical", name, d.cols[i].kind)
	}
	return d.cols[i].labels, nil
}

// Target returns the designated target column name, or "" if none is set.
func (d *Dataset) Target() string { return d.target }

// WithTarget returns a Dataset sharing this one's columns with the given
// target column designated.
func (d *Dataset) WithTarget(name string) (*Dataset, error) {
	if !d.Has(name) {
		return nil, fmt.Errorf("dataset: no column %q", name)
	}
	out := *d
	out.target = name
	return &out, nil
}

// WithColumns returns a Dataset with the given columns replacing or extending
// this one's. Row counts must match unless the receiver is empty.
func (d *Dataset) WithColumns(cols ...Column) (*Dataset, error) {
	merged := make([]Column, 0, len(d.cols)+len(cols))
	seen := make(map[string]int, len(d.cols)+len(cols))
	for _, col := range d.cols {
		seen[col.name] = len(merged)
		merged = append(merged, col)
	}
	for _, col := range cols {
		if i, ok := seen[col.name]; ok {
			merged[i] = col
			continue
		}
		seen[col.name] = len(merged)
		merged = append(merged, col)
	}
	out, err := New(merged...)
	if err != nil {
		return nil, err
	}
	if d.target != "" && out.Has(d.target) {
		return out.WithTarget(d.target)
	}
	return out, nil
}

// Drop returns a Dataset without the named columns.
func (d *Dataset) Drop(names ...string) (*Dataset, error) {
	skip := make(map[string]bool, len(names))
	for _, name := range names {
		skip[name] = true
	}
	kept := make([]Column, 0, len(d.cols))
	for _, col := range d.cols {
		if !skip[col.name] {
			kept = append(kept, col)
		}
	}
	out, err := New(kept...)
	if err != nil {
		return nil, err
	}
	if d.target != "" && out.Has(d.target) {
		return out.WithTarget(d.target)
	}
	return out, nil
}

// Subset returns a Dataset holding the given rows, in order. Indices may
// repeat, which resampling relies on.
func (d *Dataset) Subset(rows []int) (*Dataset, error) {
	cols := make([]Column, len(d.cols))
	for i, col := range d.cols {
		switch col.kind {
		case Numeric:
			values := make([]float64, len(rows))
			for j, r := range rows {
				if r < 0 || r >= d.rows {
					return nil, fmt.Errorf("dataset: row %d out of range", r)
				}
				values[j] = col.floats[r]
			}
			cols[i] = Column{name: col.name, kind: Numeric, floats: values}
		case Categorical:
			values := make([]string, len(rows))
			for j, r := range rows {
				if r < 0 || r >= d.rows {
					return nil, fmt.Errorf("dataset: row %d out of range", r)
				}
				values[j] = col.labels[r]
			}
			cols[i] = Column{name: col.name, kind: Categorical, labels: values}
		}
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	out.target = d.target
	return out, nil
}

// Matrix assembles the named numeric columns into a row-major matrix.
func (d *Dataset) Matrix(names []string) ([][]float64, error) {
	series := make([][]float64, len(names))
	for i, name := range names {
		values, err := d.Floats(name)
		if err != nil {
			return nil, err
		}
		series[i] = values
	}
	rows := make([][]float64, d.rows)
	for r := 0; r < d.rows; r++ {
		row := make([]float64, len(names))
		for c := range names {
			row[c] = series[c][r]
		}
		rows[r] = row
	}
	return rows, nil
}

// NumericColumns returns names of numeric columns, excluding the target.
func (d *Dataset) NumericColumns() []string {
	var names []string
	for _, col := range d.cols {
		if col.kind == Numeric && col.name != d.target {
			names = append(names, col.name)
		}
	}
	return names
}

// CategoricalColumns returns names of categorical columns, excluding the target.
func (d *Dataset) CategoricalColumns() []string {
	var names []string
	for _, col := range d.cols {
		if col.kind == Categorical && col.name != d.target {
			names = append(names, col.name)
		}
	}
	return names
}

// MissingCount reports missing values (NaN or "") in the named column.
func (d *Dataset) MissingCount(name string) (int, error) {
	i, ok := d.index[name]
	if !ok {
		return 0, fmt.Errorf("dataset: no column %q", name)
	}
	count := 0
	switch d.cols[i].kind {
	case Numeric:
		for _, v := range d.cols[i].floats {
			if math.IsNaN(v) {
				count++
			}
		}
	case Categorical:
		for _, v := range d.cols[i].labels {
			if v == "" {
				count++
			}
		}
	}
	return count, nil
}
