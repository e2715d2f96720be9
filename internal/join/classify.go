package join

import (
	"fmt"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/geostitch/geostitch/internal/geo"
)

// CategoryMap is an explicit enumerated mapping from raw codes to labels,
// passed as configuration rather than inferred per record.
type CategoryMap map[string]string

// Classify derives a label column from a raw code attribute. A code absent
// from the mapping keeps its raw value and is logged, consistent with the
// per-record recovery policy for data problems. Features without the code
// attribute are left unclassified.
func Classify(fc geo.FeatureCollection, field string, categories CategoryMap, out string) geo.FeatureCollection {
	result := fc.Clone()
	for i := range result.Features {
		f := &result.Features[i]
		if f.Attributes == nil {
			f.Attributes = geojson.Properties{}
		}

		v, present := f.Attributes[field]
		if !present || v == nil {
			log.Warn().
				Str("field", field).
				Msg("Feature lacks classification field, leaving it unclassified")
			continue
		}

		raw := fmt.Sprint(v)
		label, ok := categories[raw]
		if !ok {
			log.Warn().
				Str("field", field).
				Str("code", raw).
				Msg("Raw code missing from category mapping, keeping raw value")
			label = raw
		}
		f.Attributes[out] = label
	}
	return result
}
