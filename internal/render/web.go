package render

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/geostitch/geostitch/internal/layer"
)

//go:embed assets/index.html.tpl
var indexTemplate string

// webCRS is the geographic reference system the web viewer consumes.
// Compositions at any other code still render but are almost certainly a
// caller mistake, so they are logged.
const webCRS = 4326

// Web writes an interactive map directory: one GeoJSON file per layer plus a
// minified Leaflet viewer.
type Web struct {
	Dir   string
	Title string
}

type webLayer struct {
	Name  string `json:"name"`
	File  string `json:"file"`
	Color string `json:"color"`
}

// Render writes the layer data and the viewer page.
func (w *Web) Render(cm layer.ComposedMap) error {
	if cm.CRS != webCRS {
		log.Warn().
			Int("crs", cm.CRS).
			Msg("Interactive target expects geographic coordinates (EPSG:4326)")
	}

	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return err
	}

	cats := newCategorical()
	manifest := make([]webLayer, 0, len(cm.Layers))
	for _, l := range cm.Layers {
		file := l.Name + ".geojson"
		if err := w.writeLayer(filepath.Join(w.Dir, file), l); err != nil {
			return fmt.Errorf("web render layer %q: %w", l.Name, err)
		}
		manifest = append(manifest, webLayer{
			Name:  l.Name,
			File:  file,
			Color: layerColorHex(l, cats),
		})
	}

	if err := w.writeIndex(manifest); err != nil {
		return err
	}

	log.Info().
		Str("dir", w.Dir).
		Int("layers", len(cm.Layers)).
		Msg("Interactive map rendered")

	return nil
}

// writeLayer marshals one layer as a GeoJSON feature collection.
func (w *Web) writeLayer(path string, l layer.Layer) error {
	fc := geojson.NewFeatureCollection()
	for _, f := range l.Collection.Features {
		if f.Geometry == nil {
			continue
		}
		gf := geojson.NewFeature(f.Geometry)
		gf.Properties = f.Attributes
		fc.Append(gf)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	return json.NewEncoder(f).Encode(fc)
}

// writeIndex renders the viewer template and minifies it before writing.
func (w *Web) writeIndex(manifest []webLayer) error {
	layersJSON, err := json.Marshal(manifest)
	if err != nil {
		return err
	}

	tmpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return err
	}

	title := w.Title
	if title == "" {
		title = "geostitch map"
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct {
		Title      string
		LayersJSON string
	}{Title: title, LayersJSON: string(layersJSON)}); err != nil {
		return err
	}

	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)

	final, err := m.String("text/html", buf.String())
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(w.Dir, "index.html"), []byte(final), 0644)
}

// layerColorHex picks a representative color for the legend: the style's
// constant color when present, a palette color otherwise.
func layerColorHex(l layer.Layer, cats *categorical) string {
	if v, ok := l.Style[layer.ChannelColor]; ok && v.Attribute == "" {
		if s, ok := v.Constant.(string); ok {
			if _, err := parseHexColor(s); err == nil {
				return s
			}
		}
	}
	c := cats.colorFor(l.Name)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
