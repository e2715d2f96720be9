// Package geo defines the feature representation shared by every pipeline
// stage: a geometry handle, an attribute map, and the coordinate reference
// system the coordinates are meaningful under.
package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// CRSUnknown marks data whose reference system has not been declared yet.
// Shapefiles without a sidecar and bare WKT columns land in this state and
// must be assigned a CRS before reprojection.
const CRSUnknown = 0

// CRSGeographic is the geographic lon/lat reference system (EPSG:4326) that
// GeoJSON sources declare implicitly.
const CRSGeographic = 4326

// Feature is one geographic entity.
type Feature struct {
	Geometry   orb.Geometry
	Attributes geojson.Properties
	CRS        int
}

// Clone returns an independent deep copy of the feature.
func (f Feature) Clone() Feature {
	out := Feature{CRS: f.CRS}
	if f.Geometry != nil {
		out.Geometry = orb.Clone(f.Geometry)
	}
	if f.Attributes != nil {
		out.Attributes = make(geojson.Properties, len(f.Attributes))
		for k, v := range f.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// FeatureCollection is an ordered sequence of features sharing one CRS.
// Mixed per-feature CRS is a transient state during loading; after
// reconciliation every member reports the collection code.
type FeatureCollection struct {
	Features []Feature
	CRS      int
}

// Len returns the number of features.
func (fc FeatureCollection) Len() int {
	return len(fc.Features)
}

// Clone returns an independent deep copy of the collection. Stages never
// mutate their input; they clone and return a new value.
func (fc FeatureCollection) Clone() FeatureCollection {
	out := FeatureCollection{CRS: fc.CRS}
	if fc.Features != nil {
		out.Features = make([]Feature, len(fc.Features))
		for i, f := range fc.Features {
			out.Features[i] = f.Clone()
		}
	}
	return out
}
