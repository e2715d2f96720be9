// Package compose orchestrates the full pipeline for one named scenario:
// source loading, CRS reconciliation, the population join, layer stacking
// and the hand-off to a renderer.
package compose

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/geostitch/geostitch/internal/config"
	"github.com/geostitch/geostitch/internal/crs"
	"github.com/geostitch/geostitch/internal/geo"
	"github.com/geostitch/geostitch/internal/join"
	"github.com/geostitch/geostitch/internal/layer"
	"github.com/geostitch/geostitch/internal/render"
	"github.com/geostitch/geostitch/internal/source"
)

// Fixed z-order of the composed map, bottom to top.
const (
	LayerWorld      = "world"
	LayerBorders    = "borders"
	LayerLocalities = "localities"
)

// Composer builds renderable maps from one scenario. It keeps no state
// between calls: every composition reloads the immutable sources, so
// repeated renders are independent of each other.
type Composer struct {
	scenario *config.Scenario
}

// New returns a composer for the scenario.
func New(sc *config.Scenario) *Composer {
	return &Composer{scenario: sc}
}

// BuildStack loads all sources, reconciles their reference systems, enriches
// the locality points and assembles the layer stack in fixed z-order: base
// polygon, borders, localities.
func (c *Composer) BuildStack() (*layer.Stack, error) {
	sc := c.scenario

	world, err := c.loadWorld()
	if err != nil {
		return nil, err
	}

	borders, err := c.loadBorders()
	if err != nil {
		return nil, err
	}

	localities, err := c.loadLocalities()
	if err != nil {
		return nil, err
	}

	stack := layer.NewStack()
	if err := stack.Append(LayerWorld, world, sc.Styles[LayerWorld]); err != nil {
		return nil, err
	}
	if err := stack.Append(LayerBorders, borders, sc.Styles[LayerBorders]); err != nil {
		return nil, err
	}
	if err := stack.Append(LayerLocalities, localities, sc.Styles[LayerLocalities]); err != nil {
		return nil, err
	}

	log.Info().
		Str("scenario", sc.Name).
		Int("world", world.Len()).
		Int("borders", borders.Len()).
		Int("localities", localities.Len()).
		Msg("Layer stack assembled")

	return stack, nil
}

// loadWorld pulls the named entity out of the bundled polygon dataset.
func (c *Composer) loadWorld() (geo.FeatureCollection, error) {
	w := c.scenario.World
	ds := &source.PolygonDataset{Dir: w.Dir, Scale: source.Scale(w.Scale)}
	return ds.Load(source.NameEquals(w.NameField, w.Name))
}

// loadBorders reads the shapefile and assigns the scenario-declared CRS;
// the file itself carries none.
func (c *Composer) loadBorders() (geo.FeatureCollection, error) {
	b := c.scenario.Borders
	sf := &source.BorderShapefile{Path: b.Path}
	fc, err := sf.Load()
	if err != nil {
		return geo.FeatureCollection{}, err
	}
	return crs.AssignCRS(fc, b.CRS)
}

// loadLocalities loads the WKT point CSVs, assigns the declared CRS,
// classifies raw codes into categories and joins population figures.
func (c *Composer) loadLocalities() (geo.FeatureCollection, error) {
	sc := c.scenario
	loc := sc.Localities

	src := &source.WKTPointCSV{
		Dir:            loc.Dir,
		Pattern:        loc.Pattern,
		GeometryColumn: loc.GeometryColumn,
	}
	fc, report, err := src.Load()
	if err != nil {
		return geo.FeatureCollection{}, err
	}
	if report.SkippedMalformed > 0 {
		log.Warn().
			Int("skipped", report.SkippedMalformed).
			Msg("Locality rows dropped for malformed geometry")
	}

	fc, err = crs.AssignCRS(fc, loc.CRS)
	if err != nil {
		return geo.FeatureCollection{}, err
	}

	if loc.CategoryField != "" && len(loc.Categories) > 0 {
		fc = join.Classify(fc, loc.CategoryField, join.CategoryMap(loc.Categories), "category")
	}

	pop := sc.Population
	table, err := source.LoadTable(pop.Path)
	if err != nil {
		return geo.FeatureCollection{}, err
	}

	keyField := pop.FeatureKeyField
	if keyField == "" {
		keyField = pop.LocalityColumn
	}

	fc = join.Left(fc, table,
		join.TrailingAttr(keyField, pop.KeyLength),
		join.TrailingColumn(pop.LocalityColumn, pop.KeyLength),
		[]join.Column{join.IntColumn("population", pop.ValueColumn, nil)},
	)

	return fc, nil
}

// Static composes the stack at the scenario's projected CRS.
func (c *Composer) Static() (layer.ComposedMap, error) {
	stack, err := c.BuildStack()
	if err != nil {
		return layer.ComposedMap{}, err
	}
	return stack.Compose(layer.ModeStatic, c.scenario.Static.CRS)
}

// Interactive composes the stack at the scenario's web CRS.
func (c *Composer) Interactive() (layer.ComposedMap, error) {
	stack, err := c.BuildStack()
	if err != nil {
		return layer.ComposedMap{}, err
	}
	return stack.Compose(layer.ModeInteractive, c.scenario.Interactive.CRS)
}

// RenderStatic composes and writes the static raster artifact.
func (c *Composer) RenderStatic() error {
	cm, err := c.Static()
	if err != nil {
		return fmt.Errorf("scenario %s: %w", c.scenario.Name, err)
	}

	st := c.scenario.Static
	r := &render.Static{
		Width:      st.Width,
		Height:     st.Height,
		Background: st.Background,
		Format:     st.Format,
		Output:     st.Output,
	}
	return r.Render(cm)
}

// RenderInteractive composes and writes the web map directory.
func (c *Composer) RenderInteractive() error {
	cm, err := c.Interactive()
	if err != nil {
		return fmt.Errorf("scenario %s: %w", c.scenario.Name, err)
	}

	w := &render.Web{Dir: c.scenario.Interactive.Output, Title: c.scenario.Interactive.Title}
	if w.Title == "" {
		w.Title = c.scenario.Name
	}
	return w.Render(cm)
}
