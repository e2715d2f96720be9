// Package render carries the two built-in rendering collaborators: a static
// raster compositor and an interactive web map writer. Both consume the
// ordered, CRS-uniform layer list produced by the stack and never reach back
// into the pipeline.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/vector"

	"github.com/geostitch/geostitch/internal/geo"
	"github.com/geostitch/geostitch/internal/layer"
)

const (
	defaultLineWidth = 1.5
	minPointRadius   = 2.0
	maxPointRadius   = 18.0
	circleSegments   = 24
)

// Static rasterizes a composed map onto a fixed-size canvas. Meant for maps
// composed at a projected CRS where pixel distances stay locally accurate.
type Static struct {
	Width      int
	Height     int
	Background string // #rrggbb, defaults to a pale blue-grey
	Format     string // "png" or "webp"
	Output     string
}

// Render draws every layer in z-order and encodes the canvas.
func (r *Static) Render(cm layer.ComposedMap) error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("static render: canvas %dx%d invalid", r.Width, r.Height)
	}

	bound, ok := stackBound(cm)
	if !ok {
		return fmt.Errorf("static render: no geometry to draw: %w", geo.ErrEmptyStack)
	}

	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	bg := color.NRGBA{R: 0xf2, G: 0xf6, B: 0xfa, A: 0xff}
	if r.Background != "" {
		parsed, err := parseHexColor(r.Background)
		if err != nil {
			log.Warn().Err(err).Msg("Bad background color, using default")
		} else {
			bg = parsed
		}
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	tr := newTransform(bound, r.Width, r.Height)
	canvas := &canvas{img: img, ras: vector.NewRasterizer(r.Width, r.Height)}

	for _, l := range cm.Layers {
		drawLayer(canvas, tr, l)
	}

	if err := r.encode(img); err != nil {
		return err
	}

	log.Info().
		Str("path", r.Output).
		Str("format", r.Format).
		Int("layers", len(cm.Layers)).
		Msg("Static map rendered")

	return nil
}

func (r *Static) encode(img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(r.Output), 0755); err != nil {
		return err
	}
	f, err := os.Create(r.Output)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", r.Output).Msg("Failed to close output file")
		}
	}()

	switch r.Format {
	case "", "png":
		return png.Encode(f, img)
	case "webp":
		return webp.Encode(f, img, &webp.Options{Lossless: false, Quality: 90})
	default:
		return fmt.Errorf("static render: unsupported format %q", r.Format)
	}
}

// transform maps map-unit coordinates onto the pixel grid, preserving aspect
// ratio and flipping the y axis.
type transform struct {
	scale            float64
	offsetX, offsetY float64
	maxY             float64
}

func newTransform(b orb.Bound, w, h int) transform {
	const margin = 0.04

	dx, dy := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	if dx == 0 {
		dx = 1
	}
	if dy == 0 {
		dy = 1
	}

	innerW := float64(w) * (1 - 2*margin)
	innerH := float64(h) * (1 - 2*margin)
	scale := math.Min(innerW/dx, innerH/dy)

	// center the drawing inside the canvas
	offX := (float64(w) - dx*scale) / 2
	offY := (float64(h) - dy*scale) / 2

	return transform{
		scale:   scale,
		offsetX: offX - b.Min[0]*scale,
		offsetY: offY - b.Min[1]*scale,
		maxY:    float64(h),
	}
}

func (t transform) apply(p orb.Point) (float32, float32) {
	x := p[0]*t.scale + t.offsetX
	y := t.maxY - (p[1]*t.scale + t.offsetY)
	return float32(x), float32(y)
}

func stackBound(cm layer.ComposedMap) (orb.Bound, bool) {
	var b orb.Bound
	found := false
	for _, l := range cm.Layers {
		for _, f := range l.Collection.Features {
			if f.Geometry == nil {
				continue
			}
			if !found {
				b = f.Geometry.Bound()
				found = true
			} else {
				b = b.Union(f.Geometry.Bound())
			}
		}
	}
	return b, found
}

type canvas struct {
	img *image.RGBA
	ras *vector.Rasterizer
}

// fill rasterizes the accumulated path with the given color.
func (c *canvas) fill(col color.NRGBA, opacity float64) {
	if opacity < 1 {
		col.A = uint8(float64(col.A) * clamp01(opacity))
	}
	c.ras.DrawOp = draw.Over
	c.ras.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
	c.ras.Reset(c.img.Bounds().Dx(), c.img.Bounds().Dy())
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// drawLayer renders one layer's features with its style.
func drawLayer(c *canvas, tr transform, l layer.Layer) {
	cats := newCategorical()
	maxSize := maxSizeValue(l)

	for _, f := range l.Collection.Features {
		if f.Geometry == nil {
			continue
		}

		col := resolveColor(l.Style, f, cats)
		opacity := resolveOpacity(l.Style, f)

		switch g := f.Geometry.(type) {
		case orb.Point:
			radius := pointRadius(l.Style, f, maxSize)
			circlePath(c.ras, tr, g, radius)
			c.fill(col, opacity)
		case orb.MultiPoint:
			radius := pointRadius(l.Style, f, maxSize)
			for _, p := range g {
				circlePath(c.ras, tr, p, radius)
			}
			c.fill(col, opacity)
		case orb.LineString:
			strokePath(c.ras, tr, g, defaultLineWidth)
			c.fill(col, opacity)
		case orb.MultiLineString:
			for _, ls := range g {
				strokePath(c.ras, tr, ls, defaultLineWidth)
			}
			c.fill(col, opacity)
		case orb.Polygon:
			polygonPath(c.ras, tr, g)
			c.fill(col, opacity)
		case orb.MultiPolygon:
			for _, poly := range g {
				polygonPath(c.ras, tr, poly)
			}
			c.fill(col, opacity)
		}
	}
}

func resolveColor(s layer.Style, f geo.Feature, cats *categorical) color.NRGBA {
	v, ok := s[layer.ChannelColor]
	if !ok {
		return color.NRGBA{R: 0x50, G: 0x50, B: 0x50, A: 0xff}
	}
	if v.Attribute != "" {
		return cats.colorFor(fmt.Sprint(f.Attributes[v.Attribute]))
	}
	col, err := parseHexColor(fmt.Sprint(v.Constant))
	if err != nil {
		log.Warn().Err(err).Msg("Bad constant color, falling back to grey")
		return color.NRGBA{R: 0x50, G: 0x50, B: 0x50, A: 0xff}
	}
	return col
}

func resolveOpacity(s layer.Style, f geo.Feature) float64 {
	v, ok := s[layer.ChannelOpacity]
	if !ok {
		return 1
	}
	if n, ok := toFloat(v.Resolve(f.Attributes)); ok {
		return clamp01(n)
	}
	return 1
}

// maxSizeValue finds the layer's largest size-channel value so point radii
// can be scaled relative to it.
func maxSizeValue(l layer.Layer) float64 {
	v, ok := l.Style[layer.ChannelSize]
	if !ok || v.Attribute == "" {
		return 0
	}
	max := 0.0
	for _, f := range l.Collection.Features {
		if n, ok := toFloat(f.Attributes[v.Attribute]); ok && n > max {
			max = n
		}
	}
	return max
}

// pointRadius resolves the size channel: attribute-driven sizes scale by
// square root (area-proportional symbols), constants are taken as pixels.
func pointRadius(s layer.Style, f geo.Feature, maxSize float64) float64 {
	v, ok := s[layer.ChannelSize]
	if !ok {
		return minPointRadius + 1
	}
	if v.Attribute == "" {
		if n, ok := toFloat(v.Constant); ok {
			return math.Max(n, 1)
		}
		return minPointRadius + 1
	}

	n, ok := toFloat(f.Attributes[v.Attribute])
	if !ok || n <= 0 || maxSize <= 0 {
		return minPointRadius
	}
	return minPointRadius + (maxPointRadius-minPointRadius)*math.Sqrt(n/maxSize)
}

func polygonPath(ras *vector.Rasterizer, tr transform, poly orb.Polygon) {
	for _, ring := range poly {
		if len(ring) < 3 {
			continue
		}
		x, y := tr.apply(ring[0])
		ras.MoveTo(x, y)
		for _, p := range ring[1:] {
			x, y = tr.apply(p)
			ras.LineTo(x, y)
		}
		ras.ClosePath()
	}
}

// strokePath approximates a stroked polyline by filling one thin quad per
// segment. The rasterizer is fill-only.
func strokePath(ras *vector.Rasterizer, tr transform, ls orb.LineString, width float64) {
	half := float32(width / 2)
	for i := 0; i+1 < len(ls); i++ {
		x0, y0 := tr.apply(ls[i])
		x1, y1 := tr.apply(ls[i+1])

		dx, dy := x1-x0, y1-y0
		length := float32(math.Hypot(float64(dx), float64(dy)))
		if length == 0 {
			continue
		}
		// unit normal
		nx, ny := -dy/length*half, dx/length*half

		ras.MoveTo(x0+nx, y0+ny)
		ras.LineTo(x1+nx, y1+ny)
		ras.LineTo(x1-nx, y1-ny)
		ras.LineTo(x0-nx, y0-ny)
		ras.ClosePath()
	}
}

func circlePath(ras *vector.Rasterizer, tr transform, center orb.Point, radius float64) {
	cx, cy := tr.apply(center)
	r := float32(radius)

	ras.MoveTo(cx+r, cy)
	for i := 1; i <= circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		ras.LineTo(cx+r*float32(math.Cos(a)), cy+r*float32(math.Sin(a)))
	}
	ras.ClosePath()
}
