package layer

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/geostitch/geostitch/internal/crs"
	"github.com/geostitch/geostitch/internal/geo"
)

// Mode selects the render target. Static composition is expected at a
// projected (locally distance-preserving) CRS; interactive composition at
// the standard web geographic CRS, because the web collaborator accepts only
// that one. This is a documented usage convention, not a runtime constraint.
type Mode string

// Render targets.
const (
	ModeStatic      Mode = "static"
	ModeInteractive Mode = "interactive"
)

// Layer is a named feature collection plus its style.
type Layer struct {
	Name       string
	Collection geo.FeatureCollection
	Style      Style
}

// Stack is an ordered sequence of layers. Order is the z-order: later layers
// draw on top, and the stack never reorders anything itself.
type Stack struct {
	layers []Layer
}

// NewStack returns an empty layer stack.
func NewStack() *Stack {
	return &Stack{}
}

// Len returns the number of layers.
func (s *Stack) Len() int {
	return len(s.layers)
}

// Append adds a layer at the top of the z-order. The layer may arrive in its
// native CRS; reconciliation happens at composition. Style attribute
// references are validated here so typos surface before render time.
func (s *Stack) Append(name string, fc geo.FeatureCollection, style Style) error {
	for _, l := range s.layers {
		if l.Name == name {
			return fmt.Errorf("layer %q: %w", name, geo.ErrDuplicateLayer)
		}
	}
	if err := style.Validate(fc); err != nil {
		return fmt.Errorf("layer %q: %w", name, err)
	}

	s.layers = append(s.layers, Layer{Name: name, Collection: fc, Style: style})
	log.Debug().Str("layer", name).Int("features", fc.Len()).Int("z", len(s.layers)-1).Msg("Layer appended")
	return nil
}

// ComposedMap is the ordered, CRS-uniform layer list handed to a renderer.
type ComposedMap struct {
	Mode   Mode
	CRS    int
	Layers []Layer
}

// Renderer consumes a composed map. The concrete renderers live in the
// render package; the stack only guarantees order and CRS uniformity.
type Renderer interface {
	Render(ComposedMap) error
}

// Compose reprojects every layer to the target CRS, preserving append order.
// Layers already at the target are copied unchanged; layers with an unknown
// CRS fail the composition, since an unresolved CRS must be assigned first.
func (s *Stack) Compose(mode Mode, crsCode int) (ComposedMap, error) {
	if len(s.layers) == 0 {
		return ComposedMap{}, geo.ErrEmptyStack
	}

	cm := ComposedMap{Mode: mode, CRS: crsCode, Layers: make([]Layer, 0, len(s.layers))}
	for _, l := range s.layers {
		fc, err := crs.Reproject(l.Collection, crsCode)
		if err != nil {
			return ComposedMap{}, fmt.Errorf("compose layer %q: %w", l.Name, err)
		}
		cm.Layers = append(cm.Layers, Layer{Name: l.Name, Collection: fc, Style: l.Style})
	}

	log.Info().
		Str("mode", string(mode)).
		Int("crs", crsCode).
		Int("layers", len(cm.Layers)).
		Msg("Stack composed")

	return cm, nil
}
