package source

import (
	"path/filepath"
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostitch/geostitch/internal/geo"
)

// writeBorderFixture creates a two-record polygon shapefile with a NAME
// attribute and, like real-world border files, no CRS sidecar.
func writeBorderFixture(t *testing.T, path string) {
	t.Helper()

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	w.SetFields([]shp.Field{shp.StringField("NAME", 20)})

	west := shp.NewPolyLine([][]shp.Point{{
		{X: -52, Y: 64}, {X: -51, Y: 64}, {X: -51, Y: 65}, {X: -52, Y: 64},
	}})
	east := shp.NewPolyLine([][]shp.Point{{
		{X: -46, Y: 61}, {X: -45, Y: 61}, {X: -45, Y: 62}, {X: -46, Y: 61},
	}})

	w.Write((*shp.Polygon)(west))
	w.WriteAttribute(0, 0, "Sermersooq")
	w.Write((*shp.Polygon)(east))
	w.WriteAttribute(1, 0, "Kujalleq")

	w.Close()
}

func TestBorderShapefileLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "borders.shp")
	writeBorderFixture(t, path)

	src := &BorderShapefile{Path: path}
	fc, err := src.Load()
	require.NoError(t, err)

	require.Equal(t, 2, fc.Len())
	assert.Equal(t, geo.CRSUnknown, fc.CRS)

	for _, f := range fc.Features {
		assert.Equal(t, geo.CRSUnknown, f.CRS)
	}

	poly, ok := fc.Features[0].Geometry.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, poly, 1)
	assert.Len(t, poly[0], 4)

	assert.Equal(t, "Sermersooq", fc.Features[0].Attributes["NAME"])
	assert.Equal(t, "Kujalleq", fc.Features[1].Attributes["NAME"])
}

func TestBorderShapefileMissing(t *testing.T) {
	src := &BorderShapefile{Path: filepath.Join(t.TempDir(), "nope.shp")}
	_, err := src.Load()
	assert.Error(t, err)
}

func TestSplitParts(t *testing.T) {
	points := []shp.Point{{X: 0}, {X: 1}, {X: 2}, {X: 3}, {X: 4}}

	parts := splitParts([]int32{0, 3}, points)
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], 3)
	assert.Len(t, parts[1], 2)

	whole := splitParts(nil, points)
	require.Len(t, whole, 1)
	assert.Len(t, whole[0], 5)
}
