package render

import (
	"fmt"
	"image/color"
)

// Stop anchors a color at a position in [0, 1] along the scale. Two stops
// may share a position to encode a hard break; the later stop's color wins
// at and beyond the shared position.
type Stop struct {
	Pos   float64
	Color color.NRGBA
}

// ColorScale maps a temperature domain onto a piecewise-linear gradient.
type ColorScale struct {
	// Domain is [min, max] in Celsius. Values outside clamp to the
	// boundary color.
	Domain [2]float64
	Stops  []Stop
}

// DefaultDomain is the display range of the IR color scale in Celsius.
var DefaultDomain = [2]float64{-100, 40}

// IRScale returns the archive's enhanced-IR color scale over the -100..+40 C
// domain, with hard breaks at -80 C and -20 C.
func IRScale() ColorScale {
	return ColorScale{
		Domain: DefaultDomain,
		Stops: []Stop{
			{0, hex("#330f2f")},
			{10.0 / 140, hex("#9b1f94")},
			{20.0 / 140, hex("#eb6fc0")},
			{20.0 / 140, hex("#e1e4e5")},
			{30.0 / 140, hex("#000300")},
			{40.0 / 140, hex("#fd1917")},
			{50.0 / 140, hex("#fbff2d")},
			{60.0 / 140, hex("#00fe24")},
			{70.0 / 140, hex("#010071")},
			{80.0 / 140, hex("#05fcfe")},
			{80.0 / 140, hex("#fffdfd")},
			{1, hex("#000000")},
		},
	}
}

// Lookup maps a temperature to its color. Temperatures outside the domain
// take the boundary color; they are never wrapped and never an error.
func (s ColorScale) Lookup(celsius float64) color.NRGBA {
	min, max := s.Domain[0], s.Domain[1]
	t := (celsius - min) / (max - min)
	if t <= 0 {
		return s.Stops[0].Color
	}
	if t >= 1 {
		return s.Stops[len(s.Stops)-1].Color
	}

	// Find the last stop at or before t; at a hard break this is the
	// right-hand duplicate, which wins at the shared position.
	j := 0
	for i := range s.Stops {
		if s.Stops[i].Pos > t {
			break
		}
		j = i
	}
	if s.Stops[j].Pos == t || j == len(s.Stops)-1 {
		return s.Stops[j].Color
	}
	lo, hi := s.Stops[j], s.Stops[j+1]
	frac := (t - lo.Pos) / (hi.Pos - lo.Pos)
	return lerp(lo.Color, hi.Color, frac)
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(float64(a.R) + t*(float64(b.R)-float64(a.R)) + 0.5),
		G: uint8(float64(a.G) + t*(float64(b.G)-float64(a.G)) + 0.5),
		B: uint8(float64(a.B) + t*(float64(b.B)-float64(a.B)) + 0.5),
		A: 255,
	}
}

// hex parses a #rrggbb literal. Scale definitions are package constants, so
// a malformed literal is a programming error.
func hex(s string) color.NRGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		panic("render: bad color literal " + s)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
