package crs

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostitch/geostitch/internal/geo"
)

func TestForEPSG(t *testing.T) {
	tests := []struct {
		name string
		code int
		ok   bool
	}{
		{"wgs84", 4326, true},
		{"web mercator", 3857, true},
		{"utm 24 north", 32624, true},
		{"utm 1 north", 32601, true},
		{"utm 60 south", 32760, true},
		{"unknown", 9999, false},
		{"zero", 0, false},
		{"utm zone out of range", 32661, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ForEPSG(tt.code)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.code, p.EPSG())
			}
		})
	}
}

func TestWebMercatorKnownValue(t *testing.T) {
	p, ok := ForEPSG(3857)
	require.True(t, ok)

	x, y := p.FromWGS84(45, 0)
	assert.InDelta(t, 5009377.0857, x, 0.01)
	assert.InDelta(t, 0, y, 0.01)

	lon, lat := p.ToWGS84(x, y)
	assert.InDelta(t, 45, lon, 1e-9)
	assert.InDelta(t, 0, lat, 1e-9)
}

func TestUTMCentralMeridian(t *testing.T) {
	p, ok := ForEPSG(32624)
	require.True(t, ok)

	// On the central meridian (24*6-183 = -39) the easting is the false
	// easting and the northing is the scaled meridian arc.
	x, y := p.FromWGS84(-39, 64)
	assert.InDelta(t, 500000, x, 0.5)
	assert.Greater(t, y, 7.0e6)
	assert.Less(t, y, 7.2e6)
}

func TestProjectionRoundTrips(t *testing.T) {
	coords := []orb.Point{
		{-51.7216, 64.1835}, // Nuuk
		{-46.0, 61.0},
		{-39.0, 70.0},
		{-52.0, 66.5},
	}

	for _, code := range []int{3857, 32622, 32624} {
		p, ok := ForEPSG(code)
		require.True(t, ok)

		for _, c := range coords {
			x, y := p.FromWGS84(c[0], c[1])
			lon, lat := p.ToWGS84(x, y)
			assert.InDeltaf(t, c[0], lon, 1e-6, "epsg %d lon for %v", code, c)
			assert.InDeltaf(t, c[1], lat, 1e-6, "epsg %d lat for %v", code, c)
		}
	}
}

func geographic(points ...orb.Point) geo.FeatureCollection {
	fc := geo.FeatureCollection{CRS: geo.CRSGeographic}
	for _, p := range points {
		fc.Features = append(fc.Features, geo.Feature{
			Geometry:   p,
			Attributes: geojson.Properties{},
			CRS:        geo.CRSGeographic,
		})
	}
	return fc
}

func TestAssignCRS(t *testing.T) {
	fc := geo.FeatureCollection{
		Features: []geo.Feature{{Geometry: orb.Point{-51, 64}}},
	}

	out, err := AssignCRS(fc, 4326)
	require.NoError(t, err)
	assert.Equal(t, 4326, out.CRS)
	for _, f := range out.Features {
		assert.Equal(t, 4326, f.CRS)
	}

	// input untouched
	assert.Equal(t, geo.CRSUnknown, fc.CRS)
	assert.Equal(t, geo.CRSUnknown, fc.Features[0].CRS)
}

func TestAssignCRSAlreadySet(t *testing.T) {
	fc := geographic(orb.Point{-51, 64})

	_, err := AssignCRS(fc, 32624)
	assert.ErrorIs(t, err, geo.ErrCRSAlreadySet)
}

func TestAssignCRSUnregisteredCode(t *testing.T) {
	fc := geo.FeatureCollection{Features: []geo.Feature{{Geometry: orb.Point{0, 0}}}}

	_, err := AssignCRS(fc, 123456)
	assert.ErrorIs(t, err, geo.ErrUnknownCRS)
}

func TestReprojectUnknownSource(t *testing.T) {
	fc := geo.FeatureCollection{Features: []geo.Feature{{Geometry: orb.Point{0, 0}}}}

	_, err := Reproject(fc, 3857)
	assert.ErrorIs(t, err, geo.ErrUnknownSourceCRS)
}

func TestReprojectIdentity(t *testing.T) {
	fc := geographic(orb.Point{-51, 64})

	out, err := Reproject(fc, 4326)
	require.NoError(t, err)
	assert.Equal(t, fc.Features[0].Geometry, out.Features[0].Geometry)

	// identity is still a copy, not a shared value
	out.Features[0].Attributes["x"] = 1
	assert.Empty(t, fc.Features[0].Attributes)
}

func TestReprojectCollectionRoundTrip(t *testing.T) {
	fc := geographic(orb.Point{-51.7216, 64.1835}, orb.Point{-46, 61})

	projected, err := Reproject(fc, 32624)
	require.NoError(t, err)
	assert.Equal(t, 32624, projected.CRS)
	for _, f := range projected.Features {
		assert.Equal(t, 32624, f.CRS)
	}

	back, err := Reproject(projected, 4326)
	require.NoError(t, err)
	require.Equal(t, fc.Len(), back.Len())

	for i := range fc.Features {
		want := fc.Features[i].Geometry.(orb.Point)
		got := back.Features[i].Geometry.(orb.Point)
		assert.InDelta(t, want[0], got[0], 1e-6)
		assert.InDelta(t, want[1], got[1], 1e-6)
	}
}

func TestReprojectPolygonGeometry(t *testing.T) {
	ring := orb.Ring{{-52, 64}, {-51, 64}, {-51, 65}, {-52, 64}}
	fc := geo.FeatureCollection{
		CRS: geo.CRSGeographic,
		Features: []geo.Feature{{
			Geometry: orb.Polygon{ring},
			CRS:      geo.CRSGeographic,
		}},
	}

	out, err := Reproject(fc, 3857)
	require.NoError(t, err)

	poly, ok := out.Features[0].Geometry.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, poly[0], 4)

	// coordinates should be meters now, far outside the degree range
	assert.Greater(t, math.Abs(poly[0][0][0]), 1e6)
}
