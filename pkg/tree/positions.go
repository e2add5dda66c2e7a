package tree

import "maps"

// Point is an [x, y] coordinate pair.
type Point [2]float64

// Positions maps node IDs to coordinates. It is the shape exchanged with
// renderers as "node_positions".
type Positions map[string]Point

// Clone returns a copy of p. A nil map clones to nil.
func (p Positions) Clone() Positions {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}
