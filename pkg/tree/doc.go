// Package tree provides the rooted tree model used for minimum-spanning-tree
// cluster diagrams.
//
// # Overview
//
// An MST built from pairwise distances, or a phylogeny, is a rooted tree:
// every node except the root has exactly one parent, connected by a
// [Link] that carries the distance between the two. Nodes are either real
// entities (isolates, sequence types, samples) or composite "hypothetical"
// branching points that exist only to give the tree its shape.
//
// # Arena Model
//
// Nodes live in an arena addressed by position. [Node.Parent] and
// [Node.Children] are positions, not pointers, which keeps ownership
// unambiguous while the contraction engine moves subtrees around. Each
// node also carries its insertion [Node.Index], which survives
// contraction and serves as a deterministic tie-break.
//
//	t := tree.New()
//	root, _ := t.AddNode(tree.Node{ID: "ST131"})
//	leaf, _ := t.AddNode(tree.Node{ID: "ST11"})
//	_ = t.AddLink(root, leaf, 4)
//
// Use [Tree.Validate] to check the structure before running algorithms on
// it, and [Tree.PreOrder] to walk it parents-first.
//
// # Related Packages
//
// The [build] subpackage converts input documents into trees, [collapse]
// merges sub-threshold links, and [sizing] assigns node sizes from group
// membership.
//
// [build]: github.com/matzehuels/msttree/pkg/tree/build
// [collapse]: github.com/matzehuels/msttree/pkg/tree/collapse
// [sizing]: github.com/matzehuels/msttree/pkg/tree/sizing
package tree
