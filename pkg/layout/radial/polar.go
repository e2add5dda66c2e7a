package radial

import (
	"math"
	"unicode/utf16"
)

// Polar is a (radius, angle) pair. Angles are in radians.
type Polar struct {
	R     float64
	Angle float64
}

// Cartesian converts p to x, y around the origin.
func (p Polar) Cartesian() (x, y float64) {
	return p.R * math.Cos(p.Angle), p.R * math.Sin(p.Angle)
}

// toPolar converts x, y relative to the origin.
func toPolar(x, y float64) Polar {
	return Polar{R: math.Hypot(x, y), Angle: math.Atan2(y, x)}
}

// project returns the span a child subtree occupies as seen from its parent,
// where radius is the parent's footprint plus the link length.
//
// A subtree that wraps around the child far enough is bounded by the tangent
// from the parent; otherwise its sector edge is moved into the parent frame.
func project(des Polar, radius float64) Polar {
	if math.Cos(math.Pi-des.Angle) > des.R/radius {
		return Polar{R: radius, Angle: math.Asin(des.R / radius)}
	}
	x, y := des.Cartesian()
	span := toPolar(x+radius, y)
	span.R = max(span.R, radius, des.R)
	return span
}

// fanHash is the 32-bit string hash used to order wide fan-outs. It matches
// the classic s[0]*31^(n-1) + ... + s[n-1] over UTF-16 code units so layouts
// stay comparable with positions produced by existing viewers.
func fanHash(id string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(id)) {
		h = h*31 + int32(u)
	}
	return h
}
