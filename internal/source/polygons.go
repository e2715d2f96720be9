// Package source normalizes heterogeneous inputs (tiered polygon datasets,
// shapefiles, WKT-bearing CSV directories, plain attribute tables) into the
// common feature representation.
package source

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/geostitch/geostitch/internal/geo"
)

// Scale selects the resolution tier of a bundled polygon dataset.
type Scale string

// Resolution tiers shipped with a polygon dataset.
const (
	ScaleCoarse Scale = "coarse"
	ScaleMedium Scale = "medium"
	ScaleFine   Scale = "fine"
)

// PolygonDataset is a bundled world/country polygon set stored as one
// GeoJSON file per resolution tier (world_<scale>.geojson).
type PolygonDataset struct {
	Dir   string
	Scale Scale
}

// NameEquals returns a filter matching features whose attribute equals the
// given value.
func NameEquals(field, value string) func(geojson.Properties) bool {
	return func(p geojson.Properties) bool {
		s, ok := p[field].(string)
		return ok && s == value
	}
}

// Load reads the tier file and returns the features matching the filter.
// A nil filter keeps everything. Zero matches fail with geo.ErrSourceNotFound
// since an empty base layer means the caller named an absent entity.
// GeoJSON coordinates are lon/lat by definition, so the collection declares
// the geographic CRS itself.
func (d *PolygonDataset) Load(filter func(geojson.Properties) bool) (geo.FeatureCollection, error) {
	path := filepath.Join(d.Dir, fmt.Sprintf("world_%s.geojson", d.Scale))

	data, err := os.ReadFile(path)
	if err != nil {
		return geo.FeatureCollection{}, fmt.Errorf("polygon dataset %s: %w", path, err)
	}

	src, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return geo.FeatureCollection{}, fmt.Errorf("polygon dataset %s: %w", path, err)
	}

	out := geo.FeatureCollection{CRS: geo.CRSGeographic}
	for _, f := range src.Features {
		if f.Geometry == nil {
			continue
		}
		if filter != nil && !filter(f.Properties) {
			continue
		}
		out.Features = append(out.Features, geo.Feature{
			Geometry:   f.Geometry,
			Attributes: f.Properties,
			CRS:        geo.CRSGeographic,
		})
	}

	if out.Len() == 0 {
		return geo.FeatureCollection{}, fmt.Errorf("polygon dataset %s: filter matched nothing: %w", path, geo.ErrSourceNotFound)
	}

	log.Debug().
		Str("path", path).
		Str("scale", string(d.Scale)).
		Int("features", out.Len()).
		Msg("Polygon dataset loaded")

	return out, nil
}
