package tree

import (
	"errors"
	"math"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Tree.AddNode] and [Tree.Rename] when
	// the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Tree.AddNode] and [Tree.Rename] when
	// a node with the same ID already exists in the tree.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Tree.AddLink] when the source
	// index is outside the arena.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Tree.AddLink] when the target
	// index is outside the arena.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrSelfLink is returned by [Tree.AddLink] when source and target are
	// the same node.
	ErrSelfLink = errors.New("link connects a node to itself")

	// ErrMultipleParents is returned by [Tree.AddLink] when the target
	// already hangs below another node. Every non-root node has exactly one
	// parent link.
	ErrMultipleParents = errors.New("node already has a parent")

	// ErrInvalidLength is returned by [Tree.AddLink] for negative, NaN or
	// infinite distances.
	ErrInvalidLength = errors.New("link distance must be finite and non-negative")

	// ErrNoRoot is returned by [Tree.Validate] when every node has a parent,
	// which can only happen when the parent chain is cyclic.
	ErrNoRoot = errors.New("tree has no root")

	// ErrMultipleRoots is returned by [Tree.Validate] when more than one node
	// has no parent. The input is a forest rather than a tree.
	ErrMultipleRoots = errors.New("tree has more than one root")

	// ErrHasCycle is returned by [Tree.Validate] when following parent links
	// from some node never reaches the root.
	ErrHasCycle = errors.New("parent chain contains a cycle")

	// ErrBrokenLink is returned by [Tree.Validate] when a link and the
	// parent/children indices disagree. This indicates corruption.
	ErrBrokenLink = errors.New("link does not match parent index")
)

// CompositePrefix starts the ID of every composite (hypothetical) node.
const CompositePrefix = "_hypo_node_"

// NoParent is the Parent value of the root node.
const NoParent = -1

// Node is one vertex of the rooted tree.
//
// Parent and Children hold arena positions, never pointers, so contraction
// can move subtrees around without ownership questions. Index is the
// insertion-order index assigned when the node was first added; it
// survives contraction and is used as a deterministic tie-break.
type Node struct {
	ID        string
	Index     int
	Parent    int
	Children  []int
	Length    float64 // distance to the parent (0 for the root)
	Size      float64 // area weight used by the layout
	Composite bool    // layout-only branching point without an entity
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.Parent == NoParent }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Link connects a node to its parent.
type Link struct {
	Source        int     // parent position
	Target        int     // child position
	Value         float64 // current displayed distance
	OriginalValue float64 // distance as given in the input
}

// Tree is a rooted tree stored as an arena of nodes addressed by position.
//
// The zero value is not usable - use New to create a valid Tree.
// Tree is not safe for concurrent use without external synchronization.
type Tree struct {
	nodes      []*Node
	links      []*Link
	byID       map[string]int
	parentLink []int // node position -> link position, -1 for none
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{byID: make(map[string]int)}
}

// IsCompositeID reports whether id names a composite node, either the
// literal placeholder name used by MST producers or a generated ID.
func IsCompositeID(id string) bool {
	return id == "hypothetical_node" || len(id) >= 6 && id[:6] == "_hypo_"
}

// AddNode appends a node and returns its arena position.
// Parent and Children of n are ignored - structure is created with
// AddLink. Index is set to the insertion position unless it is already
// positive, which lets callers carry indices across rebuilt trees.
func (t *Tree) AddNode(n Node) (int, error) {
	if n.ID == "" {
		return -1, ErrInvalidNodeID
	}
	if _, exists := t.byID[n.ID]; exists {
		return -1, ErrDuplicateNodeID
	}
	pos := len(t.nodes)
	node := &Node{
		ID:        n.ID,
		Index:     n.Index,
		Parent:    NoParent,
		Length:    n.Length,
		Size:      n.Size,
		Composite: n.Composite,
	}
	if node.Index <= 0 {
		node.Index = pos
	}
	t.nodes = append(t.nodes, node)
	t.parentLink = append(t.parentLink, -1)
	t.byID[node.ID] = pos
	return pos, nil
}

// AddLink hangs target below source at the given distance.
// The node's Length is set to the distance.
func (t *Tree) AddLink(source, target int, distance float64) error {
	if source < 0 || source >= len(t.nodes) {
		return ErrUnknownSourceNode
	}
	if target < 0 || target >= len(t.nodes) {
		return ErrUnknownTargetNode
	}
	if source == target {
		return ErrSelfLink
	}
	if t.parentLink[target] >= 0 {
		return ErrMultipleParents
	}
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance < 0 {
		return ErrInvalidLength
	}

	t.links = append(t.links, &Link{Source: source, Target: target, Value: distance, OriginalValue: distance})
	t.parentLink[target] = len(t.links) - 1

	child := t.nodes[target]
	child.Parent = source
	child.Length = distance
	t.nodes[source].Children = append(t.nodes[source].Children, target)
	return nil
}

// Rename changes a node's ID, keeping its position.
func (t *Tree) Rename(pos int, id string) error {
	if id == "" {
		return ErrInvalidNodeID
	}
	n := t.nodes[pos]
	if n.ID == id {
		return nil
	}
	if _, exists := t.byID[id]; exists {
		return ErrDuplicateNodeID
	}
	delete(t.byID, n.ID)
	n.ID = id
	t.byID[id] = pos
	return nil
}

// Reparent moves child from its current parent to newParent, appending it
// to the end of newParent's children. The parent link is repointed as well.
func (t *Tree) Reparent(child, newParent int) {
	n := t.nodes[child]
	if n.Parent != NoParent {
		p := t.nodes[n.Parent]
		p.Children = slices.DeleteFunc(p.Children, func(c int) bool { return c == child })
	}
	n.Parent = newParent
	t.nodes[newParent].Children = append(t.nodes[newParent].Children, child)
	if l := t.parentLink[child]; l >= 0 {
		t.links[l].Source = newParent
	}
}

// Detach removes child from its parent's children list without touching the
// child's own fields. Used when the child is about to be deleted.
func (t *Tree) Detach(child int) {
	n := t.nodes[child]
	if n.Parent == NoParent {
		return
	}
	p := t.nodes[n.Parent]
	p.Children = slices.DeleteFunc(p.Children, func(c int) bool { return c == child })
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// LinkCount returns the number of links.
func (t *Tree) LinkCount() int { return len(t.links) }

// Node returns the node at pos. The pointer refers to the stored node, so
// modifications affect the tree (except ID changes - use Rename instead).
func (t *Tree) Node(pos int) *Node { return t.nodes[pos] }

// Nodes returns all nodes in arena order.
func (t *Tree) Nodes() []*Node { return slices.Clone(t.nodes) }

// Links returns all links in insertion order. The pointers refer to the
// stored links.
func (t *Tree) Links() []*Link { return slices.Clone(t.links) }

// Lookup returns the position of the node with the given ID.
func (t *Tree) Lookup(id string) (int, bool) {
	pos, ok := t.byID[id]
	return pos, ok
}

// ParentLink returns the link above pos, or nil for the root.
func (t *Tree) ParentLink(pos int) *Link {
	if l := t.parentLink[pos]; l >= 0 {
		return t.links[l]
	}
	return nil
}

// Root returns the position of the first node without a parent, or -1 for
// an empty tree.
func (t *Tree) Root() int {
	for i, n := range t.nodes {
		if n.IsRoot() {
			return i
		}
	}
	return -1
}

// PreOrder returns node positions in depth-first pre-order from the root,
// visiting children in their stored order. Parents always precede their
// children in the result.
func (t *Tree) PreOrder() []int {
	root := t.Root()
	if root < 0 {
		return nil
	}
	order := make([]int, 0, len(t.nodes))
	stack := []int{root}
	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, pos)
		kids := t.nodes[pos].Children
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return order
}

// IDs returns the node IDs in arena order.
func (t *Tree) IDs() []string {
	ids := make([]string, len(t.nodes))
	for i, n := range t.nodes {
		ids[i] = n.ID
	}
	return ids
}

// MaxLength returns the longest parent distance in the tree.
func (t *Tree) MaxLength() float64 {
	var m float64
	for _, n := range t.nodes {
		m = max(m, n.Length)
	}
	return m
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		nodes:      make([]*Node, len(t.nodes)),
		links:      make([]*Link, len(t.links)),
		byID:       make(map[string]int, len(t.byID)),
		parentLink: slices.Clone(t.parentLink),
	}
	for i, n := range t.nodes {
		cp := *n
		cp.Children = slices.Clone(n.Children)
		c.nodes[i] = &cp
	}
	for i, l := range t.links {
		cp := *l
		c.links[i] = &cp
	}
	for id, pos := range t.byID {
		c.byID[id] = pos
	}
	return c
}

// Prune returns a compacted copy of the tree without the nodes and links
// for which drop returns true. Arena positions are renumbered; node Index
// values are kept. Children of dropped nodes must have been moved away
// beforehand - a surviving node whose parent is dropped becomes a root.
func (t *Tree) Prune(dropNode func(pos int) bool, dropLink func(l *Link) bool) *Tree {
	remap := make([]int, len(t.nodes))
	out := New()
	for i, n := range t.nodes {
		if dropNode(i) {
			remap[i] = -1
			continue
		}
		remap[i] = len(out.nodes)
		cp := *n
		cp.Children = nil
		out.nodes = append(out.nodes, &cp)
		out.parentLink = append(out.parentLink, -1)
		out.byID[cp.ID] = remap[i]
	}

	for _, n := range out.nodes {
		if n.Parent != NoParent {
			n.Parent = remap[n.Parent]
		}
	}
	for i, n := range t.nodes {
		if remap[i] < 0 {
			continue
		}
		kids := make([]int, 0, len(n.Children))
		for _, c := range n.Children {
			if remap[c] >= 0 {
				kids = append(kids, remap[c])
			}
		}
		out.nodes[remap[i]].Children = kids
	}

	for _, l := range t.links {
		if dropLink(l) || remap[l.Source] < 0 || remap[l.Target] < 0 {
			continue
		}
		cp := *l
		cp.Source, cp.Target = remap[l.Source], remap[l.Target]
		out.links = append(out.links, &cp)
		out.parentLink[cp.Target] = len(out.links) - 1
	}
	return out
}

// Validate checks tree integrity and returns nil if valid.
// It verifies that:
//
//  1. Every link matches the parent and children indices of its endpoints
//  2. Exactly one node has no parent
//  3. Every node reaches the root by following parent links (no cycles)
//
// An empty tree is valid.
func (t *Tree) Validate() error {
	if len(t.nodes) == 0 {
		return nil
	}
	if err := t.validateLinks(); err != nil {
		return err
	}
	if err := t.validateRoot(); err != nil {
		return err
	}
	return t.detectCycles()
}

func (t *Tree) validateLinks() error {
	for i, l := range t.links {
		if l.Source < 0 || l.Source >= len(t.nodes) || l.Target < 0 || l.Target >= len(t.nodes) {
			return ErrBrokenLink
		}
		if t.nodes[l.Target].Parent != l.Source || t.parentLink[l.Target] != i {
			return ErrBrokenLink
		}
	}
	for i, n := range t.nodes {
		if !n.IsRoot() && t.parentLink[i] < 0 {
			return ErrBrokenLink
		}
	}
	return nil
}

func (t *Tree) validateRoot() error {
	roots := 0
	for _, n := range t.nodes {
		if n.IsRoot() {
			roots++
		}
	}
	switch {
	case roots == 0:
		return ErrNoRoot
	case roots > 1:
		return ErrMultipleRoots
	}
	return nil
}

func (t *Tree) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(t.nodes))
	for start := range t.nodes {
		var path []int
		pos := start
		for pos != NoParent && color[pos] == white {
			color[pos] = gray
			path = append(path, pos)
			pos = t.nodes[pos].Parent
		}
		if pos != NoParent && color[pos] == gray {
			return ErrHasCycle
		}
		for _, p := range path {
			color[p] = black
		}
	}
	return nil
}
