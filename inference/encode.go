// Package inference turns a form record into a cluster prediction using a
// loaded artifact bundle.
package inference

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"studentperf/artifact"
	"studentperf/student"
)

var (
	ErrMissingFeature = errors.New("missing feature")
	ErrNotEncoded     = errors.New("categorical feature has no encoder")
)

// EncodedRow is the classifier input: Values[i] belongs to Names[i], and
// Names equals the bundle's feature order.
type EncodedRow struct {
	Names  []string  `json:"columns"`
	Values []float64 `json:"values"`
}

// Map returns the row keyed by column name.
func (r EncodedRow) Map() map[string]float64 {
	m := make(map[string]float64, len(r.Names))
	for i, name := range r.Names {
		m[name] = r.Values[i]
	}
	return m
}

// Cells formats the row for display: encoder codes as integers, grade
// points with two decimals.
func (r EncodedRow) Cells() []string {
	cells := make([]string, len(r.Values))
	for i, v := range r.Values {
		if student.IsCategorical(r.Names[i]) {
			cells[i] = strconv.FormatInt(int64(v), 10)
		} else {
			cells[i] = strconv.FormatFloat(v, 'f', 2, 64)
		}
	}
	return cells
}

func (r EncodedRow) key() string {
	var sb strings.Builder
	for i, v := range r.Values {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return sb.String()
}

// Encode builds the single-row table, replaces each categorical value with
// its encoder code and selects the bundle's features in order.
func Encode(bundle *artifact.Bundle, record student.Record) (EncodedRow, error) {
	categorical := record.Categorical()
	numeric := make(map[string]float64, len(student.GradeFields)+len(categorical))
	for name, grade := range record.Grades() {
		numeric[name] = grade.InexactFloat64()
	}

	names := make([]string, 0, len(bundle.Encoders))
	for name := range bundle.Encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value, ok := categorical[name]
		if !ok {
			return EncodedRow{}, fmt.Errorf("%w: %s", ErrMissingFeature, name)
		}
		code, err := bundle.Encoders[name].Transform(value)
		if err != nil {
			return EncodedRow{}, fmt.Errorf("%s: %w", name, err)
		}
		numeric[name] = float64(code)
	}

	row := EncodedRow{
		Names:  make([]string, len(bundle.FeatureNames)),
		Values: make([]float64, len(bundle.FeatureNames)),
	}
	for i, name := range bundle.FeatureNames {
		value, ok := numeric[name]
		if !ok {
			if _, raw := categorical[name]; raw {
				return EncodedRow{}, fmt.Errorf("%w: %s", ErrNotEncoded, name)
			}
			return EncodedRow{}, fmt.Errorf("%w: %s", ErrMissingFeature, name)
		}
		row.Names[i] = name
		row.Values[i] = value
	}
	return row, nil
}
