// Package collapse contracts short links of a minimum spanning tree.
//
// Links whose distance is at or below a threshold are merged away: the child
// node disappears and its children move up to the parent. Real entities that
// merge are recorded as groups so a rendered node can be resolved back to the
// entities it stands for. Composite (inferred) nodes never appear in groups;
// when a composite absorbs a real node it takes over the real node's identity.
//
// A [Collapser] keeps the original tree untouched and always works on a
// clone, so thresholds can be raised incrementally and lowered again:
//
//	c := collapse.New(t, sizing.Default())
//	res, err := c.Collapse(2.5, nil)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Tree.Len(), res.Groups)
package collapse

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/msttree/pkg/errors"
	"github.com/matzehuels/msttree/pkg/tree"
	"github.com/matzehuels/msttree/pkg/tree/sizing"
)

// Result is the outcome of one contraction.
type Result struct {
	Tree      *tree.Tree          // contracted working tree (owned by the Collapser)
	Groups    map[string][]string // surviving node ID -> original entity IDs
	Positions tree.Positions      // positions passed in, with adopted identities applied
	Threshold float64             // threshold that produced this result
	Merged    int                 // links merged by this call
}

// Collapser contracts a tree at varying thresholds. It is not safe for
// concurrent use.
type Collapser struct {
	original *tree.Tree
	current  *tree.Tree
	groups   map[string][]string
	applied  float64
	snapshot tree.Positions
	policy   sizing.Policy
}

// New returns a Collapser over t. The tree is cloned; later changes to t are
// not observed. The sizing policy is applied to the working tree immediately.
func New(t *tree.Tree, policy sizing.Policy) *Collapser {
	c := &Collapser{
		original: t.Clone(),
		snapshot: make(tree.Positions),
		policy:   policy,
	}
	c.reset()
	return c
}

// Tree returns the current working tree.
func (c *Collapser) Tree() *tree.Tree { return c.current }

// Original returns the uncontracted tree.
func (c *Collapser) Original() *tree.Tree { return c.original }

// Applied returns the threshold of the last contraction, 0 if none ran.
func (c *Collapser) Applied() float64 { return c.applied }

// Groups returns a copy of the current groups.
func (c *Collapser) Groups() map[string][]string { return cloneGroups(c.groups) }

// IDsFor returns the entities a visual node stands for. Composite and
// unknown IDs resolve to nil.
func (c *Collapser) IDsFor(id string) []string {
	return slices.Clone(c.groups[id])
}

// Positions merges current with the positions recorded before the first
// contraction, so nodes that are currently merged away keep their original
// coordinates. Entries in current win.
func (c *Collapser) Positions(current tree.Positions) tree.Positions {
	out := make(tree.Positions, len(current)+len(c.snapshot))
	maps.Copy(out, c.snapshot)
	maps.Copy(out, current)
	return out
}

// Reset restores the uncontracted tree and singleton groups.
func (c *Collapser) Reset() {
	c.reset()
	c.applied = 0
}

func (c *Collapser) reset() {
	c.current = c.original.Clone()
	c.groups = make(map[string][]string)
	for _, n := range c.current.Nodes() {
		if !n.Composite {
			c.groups[n.ID] = []string{n.ID}
		}
	}
	c.policy.Apply(c.current, c.groups)
}

// Collapse merges every link whose distance is at or below threshold.
//
// Raising the threshold continues from the current working tree; a threshold
// at or below the applied one restarts from the original tree. When positions
// is non-nil it is updated in place for composites that adopt a real identity
// and, before anything is collapsed, recorded as the reference layout.
func (c *Collapser) Collapse(threshold float64, positions tree.Positions) (*Result, error) {
	if err := errors.ValidateNonNegative("collapse threshold", threshold); err != nil {
		return nil, err
	}

	if positions != nil && c.current.Len() == c.original.Len() {
		for _, n := range c.current.Nodes() {
			if p, ok := positions[n.ID]; ok {
				c.snapshot[n.ID] = p
			}
		}
	}

	grow := threshold > c.applied
	if !grow || c.current.Len() == 0 {
		c.reset()
	}

	t := c.current
	links := t.Links()
	slices.SortStableFunc(links, func(a, b *tree.Link) int {
		if v := cmp.Compare(a.Value, b.Value); v != 0 {
			return v
		}
		return cmp.Compare(t.Node(a.Target).Index, t.Node(b.Target).Index)
	})

	removedNode := make([]bool, t.Len())
	removedLink := make(map[*tree.Link]bool)
	merged := 0
	for _, l := range links {
		// Values can grow while merging, so check at processing time.
		if l.Value > threshold {
			continue
		}
		if err := c.merge(t, l, positions, grow); err != nil {
			return nil, err
		}
		removedLink[l] = true
		removedNode[l.Target] = true
		merged++
	}

	if merged > 0 {
		t = t.Prune(
			func(pos int) bool { return removedNode[pos] },
			func(l *tree.Link) bool { return removedLink[l] },
		)
	}
	for i, n := range t.Nodes() {
		if pl := t.ParentLink(i); pl != nil {
			n.Length = pl.Value
		}
	}
	c.policy.Apply(t, c.groups)

	c.current = t
	c.applied = threshold
	return &Result{
		Tree:      t,
		Groups:    cloneGroups(c.groups),
		Positions: positions,
		Threshold: threshold,
		Merged:    merged,
	}, nil
}

// merge folds the target of l into its source.
func (c *Collapser) merge(t *tree.Tree, l *tree.Link, positions tree.Positions, grow bool) error {
	s, d := l.Source, l.Target
	src, dst := t.Node(s), t.Node(d)
	value := l.Value

	t.Detach(d)
	siblings := slices.Clone(src.Children)

	if !src.Composite && !dst.Composite {
		c.groups[src.ID] = append(c.groups[src.ID], c.groups[dst.ID]...)
		delete(c.groups, dst.ID)
	}

	for _, k := range slices.Clone(dst.Children) {
		t.Reparent(k, s)
		if dst.Composite {
			t.ParentLink(k).Value += value
		}
	}

	if !src.Composite || dst.Composite {
		return nil
	}

	// The composite source becomes the real target.
	for _, k := range siblings {
		t.ParentLink(k).Value += value
	}
	if pl := t.ParentLink(s); pl != nil {
		pl.Value += value
	}
	if positions != nil && grow {
		if p, ok := positions[src.ID]; ok {
			positions[dst.ID] = p
		}
	}
	id := dst.ID
	if err := t.Rename(d, fmt.Sprintf("\x00merged:%d", d)); err != nil {
		return err
	}
	if err := t.Rename(s, id); err != nil {
		return err
	}
	src.Composite = false
	return nil
}

func cloneGroups(g map[string][]string) map[string][]string {
	out := make(map[string][]string, len(g))
	for k, v := range g {
		out[k] = slices.Clone(v)
	}
	return out
}
