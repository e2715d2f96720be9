// Package config handles scenario configuration loading and shared data
// structures.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/geostitch/geostitch/internal/layer"
)

// Scenario describes one named map composition: its sources, styles and the
// two render targets.
type Scenario struct {
	Name string `yaml:"name"`

	World      World      `yaml:"world"`
	Borders    Borders    `yaml:"borders"`
	Localities Localities `yaml:"localities"`
	Population Population `yaml:"population"`

	Styles map[string]layer.Style `yaml:"styles,omitempty"`

	Static      StaticTarget      `yaml:"static"`
	Interactive InteractiveTarget `yaml:"interactive"`
}

// World selects the bundled polygon dataset, a resolution tier and the named
// entity used as the base layer.
type World struct {
	Dir       string `yaml:"dir"`
	Scale     string `yaml:"scale,omitempty"`
	NameField string `yaml:"name_field,omitempty"`
	Name      string `yaml:"name"`
}

// Borders points at the administrative-border shapefile and declares the CRS
// the file carries no metadata for.
type Borders struct {
	Path string `yaml:"path"`
	CRS  int    `yaml:"crs"`
}

// Localities describes the WKT-bearing CSV directory of settlement points.
type Localities struct {
	Dir            string            `yaml:"dir"`
	Pattern        string            `yaml:"pattern,omitempty"`
	GeometryColumn string            `yaml:"geometry_column,omitempty"`
	CRS            int               `yaml:"crs"`
	CategoryField  string            `yaml:"category_field,omitempty"`
	Categories     map[string]string `yaml:"categories,omitempty"`
}

// Population configures the locality-code join against the population table.
// The join key is a fixed-length trailing substring of the locality code on
// both sides; KeyLength keeps that fragile convention a config choice rather
// than a constant.
type Population struct {
	Path            string `yaml:"path"`
	LocalityColumn  string `yaml:"locality_column,omitempty"`
	ValueColumn     string `yaml:"value_column,omitempty"`
	FeatureKeyField string `yaml:"feature_key_field,omitempty"`
	KeyLength       int    `yaml:"key_length,omitempty"`
}

// StaticTarget configures the projected raster output.
type StaticTarget struct {
	CRS        int    `yaml:"crs"`
	Width      int    `yaml:"width,omitempty"`
	Height     int    `yaml:"height,omitempty"`
	Format     string `yaml:"format,omitempty"`
	Background string `yaml:"background,omitempty"`
	Output     string `yaml:"output"`
}

// InteractiveTarget configures the web map output.
type InteractiveTarget struct {
	CRS    int    `yaml:"crs"`
	Title  string `yaml:"title,omitempty"`
	Output string `yaml:"output"`
}

// Load reads and parses the YAML scenario file from the specified path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	sc.ApplyDefaults()

	if sc.World.Dir == "" || sc.Borders.Path == "" || sc.Localities.Dir == "" || sc.Population.Path == "" {
		return nil, fmt.Errorf("scenario %s: world.dir, borders.path, localities.dir and population.path are required", path)
	}

	return &sc, nil
}

// ApplyDefaults fills the optional fields a minimal scenario may omit.
func (s *Scenario) ApplyDefaults() {
	if s.World.Scale == "" {
		s.World.Scale = "coarse"
	}
	if s.World.NameField == "" {
		s.World.NameField = "name"
	}
	if s.Localities.Pattern == "" {
		s.Localities.Pattern = "*.csv"
	}
	if s.Localities.GeometryColumn == "" {
		s.Localities.GeometryColumn = "shape_wkt"
	}
	if s.Population.LocalityColumn == "" {
		s.Population.LocalityColumn = "locality"
	}
	if s.Population.ValueColumn == "" {
		s.Population.ValueColumn = "n"
	}
	if s.Population.KeyLength == 0 {
		s.Population.KeyLength = 4
	}
	if s.Static.Width == 0 {
		s.Static.Width = 1200
	}
	if s.Static.Height == 0 {
		s.Static.Height = 1400
	}
	if s.Static.Format == "" {
		s.Static.Format = "png"
	}
	if s.Interactive.CRS == 0 {
		s.Interactive.CRS = 4326
	}
}
