package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostitch/geostitch/internal/layer"
)

const scenarioFixture = `
name: greenland
world:
  dir: data/world
  scale: coarse
  name_field: name
  name: Greenland
borders:
  path: data/borders/admin.shp
  crs: 4326
localities:
  dir: data/localities
  pattern: "locality_*.csv"
  geometry_column: shape_wkt
  crs: 4326
  category_field: name
  categories:
    "1": Town
    "2": Settlement
population:
  path: data/population.csv
  locality_column: locality
  value_column: n
  feature_key_field: lok_id
  key_length: 4
styles:
  localities:
    color:
      attr: category
    size:
      attr: population
  world:
    color:
      const: "#cccccc"
static:
  crs: 32624
  width: 1000
  height: 1200
  format: webp
  output: out/greenland.webp
interactive:
  crs: 4326
  title: Greenland localities
  output: out/web
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioFixture), 0644))

	sc, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "greenland", sc.Name)
	assert.Equal(t, "Greenland", sc.World.Name)
	assert.Equal(t, 4326, sc.Borders.CRS)
	assert.Equal(t, "Town", sc.Localities.Categories["1"])
	assert.Equal(t, 4, sc.Population.KeyLength)
	assert.Equal(t, 32624, sc.Static.CRS)
	assert.Equal(t, "webp", sc.Static.Format)

	st := sc.Styles["localities"]
	assert.Equal(t, "category", st[layer.ChannelColor].Attribute)
	assert.Equal(t, "population", st[layer.ChannelSize].Attribute)
	assert.Equal(t, "#cccccc", sc.Styles["world"][layer.ChannelColor].Constant)
}

func TestLoadAppliesDefaults(t *testing.T) {
	minimal := `
name: minimal
world:
  dir: data/world
  name: Greenland
borders:
  path: data/borders.shp
  crs: 4326
localities:
  dir: data/localities
  crs: 4326
population:
  path: data/population.csv
static:
  crs: 32624
  output: out/map.png
interactive:
  output: out/web
`
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0644))

	sc, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "coarse", sc.World.Scale)
	assert.Equal(t, "name", sc.World.NameField)
	assert.Equal(t, "*.csv", sc.Localities.Pattern)
	assert.Equal(t, "shape_wkt", sc.Localities.GeometryColumn)
	assert.Equal(t, "locality", sc.Population.LocalityColumn)
	assert.Equal(t, "n", sc.Population.ValueColumn)
	assert.Equal(t, 4, sc.Population.KeyLength)
	assert.Equal(t, 1200, sc.Static.Width)
	assert.Equal(t, "png", sc.Static.Format)
	assert.Equal(t, 4326, sc.Interactive.CRS)
}

func TestLoadRejectsIncompleteScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: broken\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
