package render

import (
	"fmt"
	"image/color"
	"strconv"
)

// palette provides categorical colors for attribute-driven styling, assigned
// in first-seen value order so output is deterministic.
var palette = []color.NRGBA{
	{R: 0x1f, G: 0x78, B: 0xb4, A: 0xff},
	{R: 0xe3, G: 0x1a, B: 0x1c, A: 0xff},
	{R: 0x33, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x00, A: 0xff},
	{R: 0x6a, G: 0x3d, B: 0x9a, A: 0xff},
	{R: 0xb1, G: 0x59, B: 0x28, A: 0xff},
	{R: 0xa6, G: 0xce, B: 0xe3, A: 0xff},
	{R: 0xfb, G: 0x9a, B: 0x99, A: 0xff},
}

// categorical hands out palette colors per distinct value.
type categorical struct {
	assigned map[string]color.NRGBA
	next     int
}

func newCategorical() *categorical {
	return &categorical{assigned: make(map[string]color.NRGBA)}
}

func (c *categorical) colorFor(value string) color.NRGBA {
	if col, ok := c.assigned[value]; ok {
		return col
	}
	col := palette[c.next%len(palette)]
	c.next++
	c.assigned[value] = col
	return col
}

// parseHexColor parses #rgb or #rrggbb notation.
func parseHexColor(s string) (color.NRGBA, error) {
	if len(s) == 0 || s[0] != '#' {
		return color.NRGBA{}, fmt.Errorf("color %q: expected #rgb or #rrggbb", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("color %q: expected #rgb or #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// toFloat coerces the scalar types that appear in attribute maps.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
