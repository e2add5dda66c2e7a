package radial

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/msttree/pkg/errors"
	"github.com/matzehuels/msttree/pkg/tree"
)

const (
	maxIterations = 20
	maxPasses     = 11
	fallbackPass  = 9

	// Bounds accepted as a fit: the widest half-angle must not exceed pi and
	// should be within 5% of it.
	convergeSlack = 1.05

	compositeSize = 0.01
	leafSize      = 1.0
)

// Sector is the angular interval a child subtree is placed in, measured
// around its parent in absolute radians.
type Sector struct {
	Start float64
	End   float64
}

// Width returns End - Start.
func (s Sector) Width() float64 { return s.End - s.Start }

// Result holds the layout of one tree.
type Result struct {
	Positions  tree.Positions    // node ID -> pixel coordinates, root at the origin
	Sectors    map[string]Sector // child ID -> sector around its parent
	Converged  bool              // widest half-angle ended within 1.05 pi
	RootSpan   float64           // half-angle used by the root's children
	Iterations int               // outer iterations run
	MinArc     float64           // final minimum arc spacing
	MinRadial  float64           // footprint radius of a size-1 node
}

// nodeState is the per-node scratch data of one Compute call.
type nodeState struct {
	size     float64
	length   float64
	desSpan  Polar // clamped span of the whole subtree
	selfSpan Polar // span of the subtree as projected onto the parent
	desAngle float64
	measured bool
	frozen   bool
	spacing  float64
	polar    Polar
	coord    tree.Point
}

type layout struct {
	t         *tree.Tree
	order     []int
	nodes     []nodeState
	minRadial float64
	minArc    float64
	widest    float64
}

// Compute lays out t. The tree must be valid; an empty tree yields an empty
// converged result. Compute reads node Length and Size and never changes
// the tree.
func Compute(t *tree.Tree, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "cannot lay out tree")
	}

	res := &Result{
		Positions: make(tree.Positions, t.Len()),
		Sectors:   make(map[string]Sector, t.Len()),
	}
	order := t.PreOrder()
	if len(order) == 0 {
		res.Converged = true
		return res, nil
	}

	l := newLayout(t, order, opts)
	res.Iterations = l.spread()
	l.place(res.Sectors)

	for _, pos := range order {
		res.Positions[t.Node(pos).ID] = l.nodes[pos].coord
	}
	res.Converged = l.converged()
	res.RootSpan = l.nodes[order[0]].desAngle
	res.MinArc = l.minArc
	res.MinRadial = l.minRadial
	return res, nil
}

func newLayout(t *tree.Tree, order []int, opts Options) *layout {
	lengths := make([]float64, t.Len())
	for i, n := range t.Nodes() {
		lengths[i] = n.Length
	}
	px, ref := opts.pixelLengths(lengths)

	l := &layout{t: t, order: order, nodes: make([]nodeState, t.Len())}
	var total float64
	for i, n := range t.Nodes() {
		size := n.Size
		if size <= 0 {
			size = leafSize
			if !n.IsLeaf() {
				size = compositeSize
			}
		}
		l.nodes[i] = nodeState{size: size, length: px[i]}
		total += size
	}
	l.minRadial = ref / opts.LinkScale * 2 * math.Sqrt(opts.NodeSize)
	l.minArc = l.minRadial * math.Pi / total
	return l
}

// spread tunes the minimum arc and freezes subtrees until the root is
// frozen. It returns the number of outer iterations run.
func (l *layout) spread() int {
	root := l.order[0]
	iterations := 0
	for iter := 0; iter < maxIterations; iter++ {
		if l.nodes[root].frozen {
			break
		}
		iterations++

		widest := l.tune(l.measure)
		if iter == maxIterations-1 {
			widest = []int{root}
		}
		for _, pos := range widest {
			l.freeze(pos)
		}
		if len(widest) == 0 || len(widest) == 1 && widest[0] == root {
			break
		}
	}

	// Everything below a frozen root is frozen too; this only catches
	// degenerate runs that stopped without a widest node.
	for _, pos := range l.order {
		if !l.nodes[pos].frozen {
			l.nodes[pos].frozen = true
			l.nodes[pos].spacing = l.minArc
		}
	}
	return iterations
}

// tune rescales minArc until the widest span measured fits within pi and
// is no more than 5% below it. Pass 9 falls back to the largest minArc that
// fit; later passes keep it. It returns the widest nodes of the last pass.
func (l *layout) tune(measure func() ([]int, float64)) []int {
	var records []float64
	var widest []int
	for pass := 0; pass < maxPasses; pass++ {
		var span float64
		widest, span = measure()
		l.widest = span
		if span <= math.Pi {
			records = append(records, l.minArc)
			if math.Pi < convergeSlack*span {
				break
			}
		}
		switch {
		case pass == fallbackPass:
			if len(records) > 0 {
				l.minArc = slices.Max(records)
			}
		case pass < fallbackPass:
			l.minArc *= math.Pi / span
		}
	}
	return widest
}

func (l *layout) converged() bool { return l.widest <= convergeSlack*math.Pi }

// measure runs one leaves-to-root pass over the unfrozen nodes and returns
// the positions sharing the widest unclamped half-angle.
func (l *layout) measure() ([]int, float64) {
	var widest []int
	var span float64
	for i := len(l.order) - 1; i >= 0; i-- {
		pos := l.order[i]
		st := &l.nodes[pos]
		if st.frozen {
			continue
		}

		own := Polar{R: l.minRadial * math.Sqrt(st.size), Angle: l.minArc / l.minRadial}
		var radialSum, angleSum float64
		for _, k := range l.t.Node(pos).Children {
			c := &l.nodes[k]
			if !c.measured {
				continue
			}
			c.selfSpan = project(c.desSpan, own.R+c.length)
			angleSum += c.selfSpan.Angle + l.minArc/c.selfSpan.R
			radialSum = max(radialSum, c.selfSpan.R)
		}

		des := Polar{R: max(own.R, radialSum), Angle: angleSum}
		if area := own.R * own.Angle; area > des.R*des.Angle {
			des.Angle = area / des.R
		}
		st.desAngle = angleSum

		switch {
		case des.Angle > span:
			widest = append(widest[:0], pos)
			span = des.Angle
		case des.Angle == span:
			widest = append(widest, pos)
		}
		des.Angle = min(des.Angle, math.Pi)
		st.desSpan = des
		st.measured = true
	}
	return widest, span
}

// freeze fixes the spacing of pos and of every unfrozen node below it.
func (l *layout) freeze(pos int) {
	stack := []int{pos}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		st := &l.nodes[p]
		st.frozen = true
		st.spacing = l.minArc
		for _, k := range l.t.Node(p).Children {
			if !l.nodes[k].frozen {
				stack = append(stack, k)
			}
		}
	}
}

// place assigns polar and Cartesian coordinates root to leaves.
func (l *layout) place(sectors map[string]Sector) {
	root := l.order[0]
	for _, pos := range l.order {
		n := l.t.Node(pos)
		st := &l.nodes[pos]
		own := l.minRadial * math.Sqrt(st.size)

		start, gap := -st.desAngle, 0.0
		if pos == root {
			start = 0
			if len(n.Children) > 0 {
				gap = max(0, (math.Pi-st.desAngle)/float64(len(n.Children)))
			}
		}

		for _, k := range fanOrder(l.t, n.Children) {
			c := &l.nodes[k]
			half := c.selfSpan.Angle + st.spacing/c.selfSpan.R
			from := start + st.polar.Angle
			c.polar = Polar{R: c.length + own, Angle: from + half}
			sectors[l.t.Node(k).ID] = Sector{Start: from, End: from + 2*half}
			start += 2 * (half + gap)

			x, y := c.polar.Cartesian()
			c.coord = tree.Point{x + st.coord[0], y + st.coord[1]}
		}
	}
}

// fanOrder returns children in placement order. Fan-outs wider than two are
// sorted by ID hash so equal inputs give equal layouts regardless of link
// order.
func fanOrder(t *tree.Tree, children []int) []int {
	kids := slices.Clone(children)
	if len(kids) > 2 {
		slices.SortStableFunc(kids, func(a, b int) int {
			return cmp.Compare(fanHash(t.Node(a).ID), fanHash(t.Node(b).ID))
		})
	}
	return kids
}
