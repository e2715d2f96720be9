package layer

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostitch/geostitch/internal/geo"
)

func pointLayer(crs int, names ...string) geo.FeatureCollection {
	fc := geo.FeatureCollection{CRS: crs}
	for i, n := range names {
		fc.Features = append(fc.Features, geo.Feature{
			Geometry:   orb.Point{float64(i), float64(i)},
			Attributes: geojson.Properties{"name": n, "population": i * 100},
			CRS:        crs,
		})
	}
	return fc
}

func TestAppendRejectsDuplicateName(t *testing.T) {
	s := NewStack()
	require.NoError(t, s.Append("base", pointLayer(4326, "a"), nil))

	err := s.Append("base", pointLayer(4326, "b"), nil)
	assert.ErrorIs(t, err, geo.ErrDuplicateLayer)
	assert.Equal(t, 1, s.Len())
}

func TestAppendValidatesStyleRefs(t *testing.T) {
	s := NewStack()

	bad := Style{ChannelSize: {Attribute: "missing_column"}}
	err := s.Append("points", pointLayer(4326, "a"), bad)
	assert.ErrorIs(t, err, geo.ErrBadStyleRef)

	good := Style{
		ChannelColor: {Attribute: "name"},
		ChannelSize:  {Attribute: "population"},
	}
	assert.NoError(t, s.Append("points", pointLayer(4326, "a"), good))
}

func TestStyleConstantsNeedNoAttributes(t *testing.T) {
	st := Style{
		ChannelColor:   {Constant: "#1f78b4"},
		ChannelOpacity: {Constant: 0.8},
	}
	assert.NoError(t, st.Validate(pointLayer(4326, "a")))
}

func TestValueResolve(t *testing.T) {
	attrs := geojson.Properties{"population": 500}

	assert.Equal(t, 500, Value{Attribute: "population"}.Resolve(attrs))
	assert.Equal(t, 3.5, Value{Constant: 3.5}.Resolve(attrs))
}

func TestComposeStampsCRSAndPreservesOrder(t *testing.T) {
	s := NewStack()
	require.NoError(t, s.Append("world", pointLayer(4326, "a"), nil))
	require.NoError(t, s.Append("borders", pointLayer(4326, "b"), nil))
	require.NoError(t, s.Append("localities", pointLayer(4326, "c"), nil))

	cm, err := s.Compose(ModeStatic, 32624)
	require.NoError(t, err)

	assert.Equal(t, ModeStatic, cm.Mode)
	assert.Equal(t, 32624, cm.CRS)
	require.Len(t, cm.Layers, 3)

	names := []string{cm.Layers[0].Name, cm.Layers[1].Name, cm.Layers[2].Name}
	assert.Equal(t, []string{"world", "borders", "localities"}, names)

	for _, l := range cm.Layers {
		assert.Equal(t, 32624, l.Collection.CRS)
		for _, f := range l.Collection.Features {
			assert.Equal(t, 32624, f.CRS)
		}
	}
}

func TestComposeMixedNativeCRS(t *testing.T) {
	s := NewStack()
	require.NoError(t, s.Append("geo", pointLayer(4326, "a"), nil))
	require.NoError(t, s.Append("mercator", pointLayer(3857, "b"), nil))

	cm, err := s.Compose(ModeInteractive, 4326)
	require.NoError(t, err)
	for _, l := range cm.Layers {
		assert.Equal(t, 4326, l.Collection.CRS)
	}
}

func TestComposeEmptyStack(t *testing.T) {
	_, err := NewStack().Compose(ModeStatic, 32624)
	assert.ErrorIs(t, err, geo.ErrEmptyStack)
}

func TestComposeUnassignedLayerFails(t *testing.T) {
	s := NewStack()
	require.NoError(t, s.Append("raw", pointLayer(geo.CRSUnknown, "a"), nil))

	_, err := s.Compose(ModeStatic, 32624)
	assert.ErrorIs(t, err, geo.ErrUnknownSourceCRS)
}
