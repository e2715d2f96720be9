// Package layer holds the ordered, styled layer stack and its composition
// into a CRS-uniform renderable map.
package layer

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/geostitch/geostitch/internal/geo"
)

// Channel is a visual channel a style value binds to.
type Channel string

// Visual channels understood by the renderers.
const (
	ChannelColor   Channel = "color"
	ChannelSize    Channel = "size"
	ChannelOpacity Channel = "opacity"
)

// Value binds a channel either to a feature attribute or to a constant.
// Exactly one of the two should be set.
type Value struct {
	Attribute string      `yaml:"attr,omitempty"`
	Constant  interface{} `yaml:"const,omitempty"`
}

// Resolve returns the value for one feature's attributes.
func (v Value) Resolve(attrs geojson.Properties) interface{} {
	if v.Attribute != "" {
		return attrs[v.Attribute]
	}
	return v.Constant
}

// Style maps visual channels to values.
type Style map[Channel]Value

// Validate checks that every attribute reference resolves on every feature
// of the collection. Join sentinels mean derived columns exist on all
// features, so a missing key is a caller typo rather than sparse data.
func (s Style) Validate(fc geo.FeatureCollection) error {
	for ch, v := range s {
		if v.Attribute == "" {
			continue
		}
		for i, f := range fc.Features {
			if _, ok := f.Attributes[v.Attribute]; !ok {
				return fmt.Errorf("channel %s references %q, absent on feature %d: %w", ch, v.Attribute, i, geo.ErrBadStyleRef)
			}
		}
	}
	return nil
}
