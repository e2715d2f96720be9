// Package join enriches feature collections with external tabular data via
// attribute-key left joins and explicit code-to-category mappings.
package join

import (
	"strconv"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/geostitch/geostitch/internal/geo"
	"github.com/geostitch/geostitch/internal/source"
)

// KeyFunc derives a join key from a feature's attributes. The second return
// reports whether a key could be derived at all.
type KeyFunc func(geojson.Properties) (string, bool)

// RowKeyFunc derives the matching key from an external table row.
type RowKeyFunc func(source.Row) (string, bool)

// Column describes one attribute derived from a matched table row. Unmatched
// features receive Missing instead; an absent population figure is expected
// data, not an error.
type Column struct {
	Name    string
	Value   func(source.Row) interface{}
	Missing interface{}
}

// IntColumn derives an integer attribute from a table column. Rows whose
// value does not parse count as unmatched for this column.
func IntColumn(name, col string, missing interface{}) Column {
	return Column{
		Name: name,
		Value: func(r source.Row) interface{} {
			n, err := strconv.Atoi(r[col])
			if err != nil {
				return missing
			}
			return n
		},
		Missing: missing,
	}
}

// TrailingAttr derives a key from the last n characters of a string
// attribute. Shorter values are used whole.
func TrailingAttr(field string, n int) KeyFunc {
	return func(p geojson.Properties) (string, bool) {
		s, ok := p[field].(string)
		if !ok {
			return "", false
		}
		return trailing(s, n), true
	}
}

// TrailingColumn derives a key from the last n characters of a table column.
func TrailingColumn(col string, n int) RowKeyFunc {
	return func(r source.Row) (string, bool) {
		s, ok := r[col]
		if !ok {
			return "", false
		}
		return trailing(s, n), true
	}
}

func trailing(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// Left performs an attribute-key left join: every feature of the input
// appears in the result, in the same position, with the derived columns
// attached from the first matching table row or set to the column's missing
// sentinel. Duplicate table keys are a data-quality issue on the caller's
// side; the first row wins.
func Left(fc geo.FeatureCollection, t *source.Table, featureKey KeyFunc, rowKey RowKeyFunc, cols []Column) geo.FeatureCollection {
	index := make(map[string]source.Row, len(t.Rows))
	for _, row := range t.Rows {
		key, ok := rowKey(row)
		if !ok {
			continue
		}
		if _, exists := index[key]; !exists {
			index[key] = row
		}
	}

	out := fc.Clone()
	matched := 0
	for i := range out.Features {
		f := &out.Features[i]
		if f.Attributes == nil {
			f.Attributes = geojson.Properties{}
		}

		var row source.Row
		if key, ok := featureKey(f.Attributes); ok {
			if r, hit := index[key]; hit {
				row = r
				matched++
			}
		}

		for _, c := range cols {
			if row != nil {
				f.Attributes[c.Name] = c.Value(row)
			} else {
				f.Attributes[c.Name] = c.Missing
			}
		}
	}

	log.Debug().
		Int("features", out.Len()).
		Int("matched", matched).
		Int("table_rows", len(t.Rows)).
		Msg("Left join applied")

	return out
}
