package source

import (
	"fmt"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/geostitch/geostitch/internal/geo"
)

// BorderShapefile reads a border/polygon vector file. Shapefiles carry no
// reliable CRS metadata, so the resulting collection is left in the
// CRSUnknown state until the caller assigns a declared reference system.
type BorderShapefile struct {
	Path string
}

// Load parses every record together with its DBF attributes.
func (b *BorderShapefile) Load() (geo.FeatureCollection, error) {
	r, err := shp.Open(b.Path)
	if err != nil {
		return geo.FeatureCollection{}, fmt.Errorf("shapefile %s: %w", b.Path, err)
	}
	defer r.Close()

	fields := r.Fields()
	out := geo.FeatureCollection{CRS: geo.CRSUnknown}

	for r.Next() {
		row, shape := r.Shape()

		g := shapeToGeometry(shape)
		if g == nil {
			log.Warn().
				Str("path", b.Path).
				Int("record", row).
				Msg("Skipping unsupported shape type")
			continue
		}

		attrs := make(geojson.Properties, len(fields))
		for j, f := range fields {
			attrs[f.String()] = strings.TrimSpace(r.ReadAttribute(row, j))
		}

		out.Features = append(out.Features, geo.Feature{
			Geometry:   g,
			Attributes: attrs,
			CRS:        geo.CRSUnknown,
		})
	}

	if err := r.Err(); err != nil {
		return geo.FeatureCollection{}, fmt.Errorf("shapefile %s: %w", b.Path, err)
	}

	log.Debug().
		Str("path", b.Path).
		Int("features", out.Len()).
		Msg("Shapefile loaded with unknown CRS")

	return out, nil
}

// shapeToGeometry converts a shapefile record to an orb geometry.
// Returns nil for shape types the pipeline has no use for.
func shapeToGeometry(s shp.Shape) orb.Geometry {
	switch v := s.(type) {
	case *shp.Point:
		return orb.Point{v.X, v.Y}
	case *shp.Polygon:
		return partsToPolygon(v.Parts, v.Points)
	case *shp.PolyLine:
		return partsToLines(v.Parts, v.Points)
	default:
		return nil
	}
}

// partsToPolygon splits the flat point array into rings at part offsets.
func partsToPolygon(parts []int32, points []shp.Point) orb.Polygon {
	poly := make(orb.Polygon, 0, len(parts))
	for _, pts := range splitParts(parts, points) {
		ring := make(orb.Ring, len(pts))
		for i, p := range pts {
			ring[i] = orb.Point{p.X, p.Y}
		}
		poly = append(poly, ring)
	}
	return poly
}

func partsToLines(parts []int32, points []shp.Point) orb.MultiLineString {
	mls := make(orb.MultiLineString, 0, len(parts))
	for _, pts := range splitParts(parts, points) {
		line := make(orb.LineString, len(pts))
		for i, p := range pts {
			line[i] = orb.Point{p.X, p.Y}
		}
		mls = append(mls, line)
	}
	return mls
}

func splitParts(parts []int32, points []shp.Point) [][]shp.Point {
	if len(parts) == 0 {
		return [][]shp.Point{points}
	}
	out := make([][]shp.Point, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || int(start) > len(points) || end < start {
			continue
		}
		out = append(out, points[start:end])
	}
	return out
}
