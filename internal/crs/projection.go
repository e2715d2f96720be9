// Package crs reconciles coordinate reference systems across feature
// collections: assigning a declared CRS to sources that lack one, and
// reprojecting collections onto a requested target code.
package crs

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Projection converts between a reference system and WGS84 lon/lat degrees.
// All reprojection routes through WGS84 as the interchange system.
type Projection interface {
	// ToWGS84 converts native coordinates to lon/lat degrees.
	ToWGS84(x, y float64) (lon, lat float64)

	// FromWGS84 converts lon/lat degrees to native coordinates.
	FromWGS84(lon, lat float64) (x, y float64)

	// EPSG returns the EPSG code of this reference system.
	EPSG() int
}

// ForEPSG returns the projection registered for an EPSG code.
// Supported: 4326 (WGS84 lon/lat), 3857 (web mercator) and the
// 32601-32660 / 32701-32760 UTM zone ranges.
func ForEPSG(code int) (Projection, bool) {
	switch {
	case code == 4326:
		return wgs84{}, true
	case code == 3857:
		return webMercator{}, true
	case code >= 32601 && code <= 32660:
		return utm{zone: code - 32600, north: true}, true
	case code >= 32701 && code <= 32760:
		return utm{zone: code - 32700, north: false}, true
	}
	return nil, false
}

// wgs84 is the identity projection for data already in lon/lat degrees.
type wgs84 struct{}

func (wgs84) ToWGS84(x, y float64) (float64, float64)       { return x, y }
func (wgs84) FromWGS84(lon, lat float64) (float64, float64) { return lon, lat }
func (wgs84) EPSG() int                                     { return 4326 }

// webMercator delegates to the orb projection pair.
type webMercator struct{}

func (webMercator) ToWGS84(x, y float64) (float64, float64) {
	p := project.Mercator.ToWGS84(orb.Point{x, y})
	return p[0], p[1]
}

func (webMercator) FromWGS84(lon, lat float64) (float64, float64) {
	p := project.WGS84.ToMercator(orb.Point{lon, lat})
	return p[0], p[1]
}

func (webMercator) EPSG() int { return 3857 }
