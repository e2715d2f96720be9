package crs

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/rs/zerolog/log"

	"github.com/geostitch/geostitch/internal/geo"
)

// AssignCRS stamps a declared reference system onto a collection whose CRS is
// unknown. Assigning over an already-known CRS is a caller error: it would
// silently discard a previously declared reference system, so it fails with
// geo.ErrCRSAlreadySet instead. Assign and Reproject are deliberately
// separate operations; machine-readable sources declare their own CRS while
// shapefiles without a sidecar and bare WKT columns need a human-supplied
// assumption, and that assumption should never masquerade as authoritative.
func AssignCRS(fc geo.FeatureCollection, code int) (geo.FeatureCollection, error) {
	if fc.CRS != geo.CRSUnknown {
		return geo.FeatureCollection{}, fmt.Errorf("assign crs %d: collection already declares %d: %w", code, fc.CRS, geo.ErrCRSAlreadySet)
	}
	if _, ok := ForEPSG(code); !ok {
		return geo.FeatureCollection{}, fmt.Errorf("assign crs %d: %w", code, geo.ErrUnknownCRS)
	}

	out := fc.Clone()
	out.CRS = code
	for i := range out.Features {
		out.Features[i].CRS = code
	}

	log.Debug().Int("crs", code).Int("features", out.Len()).Msg("Assigned CRS to collection")
	return out, nil
}

// Reproject transforms every geometry from the collection's CRS to the
// target code. The source CRS must be known; an unresolved CRS has to be
// assigned before it can be reprojected. When source and target match the
// result is an identity copy.
func Reproject(fc geo.FeatureCollection, target int) (geo.FeatureCollection, error) {
	if fc.CRS == geo.CRSUnknown {
		return geo.FeatureCollection{}, fmt.Errorf("reproject to %d: %w", target, geo.ErrUnknownSourceCRS)
	}
	if fc.CRS == target {
		return fc.Clone(), nil
	}

	src, ok := ForEPSG(fc.CRS)
	if !ok {
		return geo.FeatureCollection{}, fmt.Errorf("reproject from %d: %w", fc.CRS, geo.ErrUnknownCRS)
	}
	dst, ok := ForEPSG(target)
	if !ok {
		return geo.FeatureCollection{}, fmt.Errorf("reproject to %d: %w", target, geo.ErrUnknownCRS)
	}

	transform := func(p orb.Point) orb.Point {
		lon, lat := src.ToWGS84(p[0], p[1])
		x, y := dst.FromWGS84(lon, lat)
		return orb.Point{x, y}
	}

	out := fc.Clone()
	out.CRS = target
	for i := range out.Features {
		if out.Features[i].Geometry != nil {
			out.Features[i].Geometry = project.Geometry(out.Features[i].Geometry, transform)
		}
		out.Features[i].CRS = target
	}

	log.Debug().
		Int("from", fc.CRS).
		Int("to", target).
		Int("features", out.Len()).
		Msg("Reprojected collection")

	return out, nil
}
