// Package sizing derives node sizes from group membership.
//
// A node that represents many entities is drawn larger. The drawn radius
// follows a power law of the entity weight, and the layout area weight is
// chosen so its square root is proportional to that radius:
//
//	radius = weight^Power * Base
//	size   = weight^(2*Power)
//
// With the default power of 0.5 the layout size is the entity count
// itself. Composite nodes are not drawn and get a negligible size so they
// still claim a sliver of angular space.
package sizing

import (
	"math"

	"github.com/matzehuels/msttree/pkg/errors"
	"github.com/matzehuels/msttree/pkg/tree"
)

// CompositeSize is the layout size of composite nodes.
const CompositeSize = 0.01

const (
	// DefaultPower is the default exponent of the size power law.
	DefaultPower = 0.5
	// DefaultBase is the default radius in pixels of a single-entity node.
	DefaultBase = 10.0
)

// Policy maps group membership to node sizes.
//
// Records optionally holds, per entity ID, the number of metadata records
// (samples, isolates) attached to it; entities without an entry weigh 1.
type Policy struct {
	Power   float64
	Base    float64
	Records map[string]int
}

// Default returns the policy with default power and base.
func Default() Policy {
	return Policy{Power: DefaultPower, Base: DefaultBase}
}

// Validate checks that the exponent and base are finite and non-negative.
func (p Policy) Validate() error {
	if err := errors.ValidateNonNegative("size_power", p.Power); err != nil {
		return err
	}
	return errors.ValidatePositive("base_node_size", p.Base)
}

// Weight returns the number of underlying records represented by ids.
func (p Policy) Weight(ids []string) float64 {
	var w float64
	for _, id := range ids {
		if n, ok := p.Records[id]; ok && n > 0 {
			w += float64(n)
		} else {
			w++
		}
	}
	return w
}

// Radius returns the drawn radius of a node representing group.
func (p Policy) Radius(n *tree.Node, group []string) float64 {
	if n.Composite {
		return 0
	}
	return math.Pow(p.Weight(p.members(n, group)), p.Power) * p.Base
}

// LayoutSize returns the area weight of a node representing group.
func (p Policy) LayoutSize(n *tree.Node, group []string) float64 {
	if n.Composite {
		return CompositeSize
	}
	return math.Pow(p.Weight(p.members(n, group)), 2*p.Power)
}

// members falls back to the node itself when no group is known.
func (p Policy) members(n *tree.Node, group []string) []string {
	if len(group) == 0 {
		return []string{n.ID}
	}
	return group
}

// Apply writes the layout size of every node in t, looking groups up by
// node ID.
func (p Policy) Apply(t *tree.Tree, groups map[string][]string) {
	for _, n := range t.Nodes() {
		n.Size = p.LayoutSize(n, groups[n.ID])
	}
}

// Radii returns the drawn radius of every node in t keyed by node ID.
func (p Policy) Radii(t *tree.Tree, groups map[string][]string) map[string]float64 {
	radii := make(map[string]float64, t.Len())
	for _, n := range t.Nodes() {
		radii[n.ID] = p.Radius(n, groups[n.ID])
	}
	return radii
}
