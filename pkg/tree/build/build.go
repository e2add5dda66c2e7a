// Package build converts input descriptions into rooted trees.
//
// Two input shapes are supported, mirroring what MST and phylogeny tools
// produce:
//
//   - [Graph]: an explicit node list plus links that reference nodes by
//     index, as written by MST algorithms over allele profiles.
//   - [Spec]: a recursive {name, length, children} description, as produced
//     by a newick or nexus parser.
//
// Both builders fail fast: any structural problem returns an error with
// code INVALID_GRAPH and no partial tree.
package build

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/msttree/pkg/errors"
	"github.com/matzehuels/msttree/pkg/tree"
)

// placeholder is the node name MST producers use for inferred nodes.
const placeholder = "hypothetical_node"

// LinkSpec is a link between two entries of [Graph.Nodes].
type LinkSpec struct {
	Source   int      `json:"source"`
	Target   int      `json:"target"`
	Distance *float64 `json:"distance"`
}

// Graph is an explicit node/link description.
type Graph struct {
	Nodes []string   `json:"nodes"`
	Links []LinkSpec `json:"links"`
}

// Spec is one node of a rooted tree description. Length is the branch
// length to the parent and is ignored on the root.
type Spec struct {
	Name     string   `json:"name,omitempty"`
	Length   *float64 `json:"length,omitempty"`
	Children []Spec   `json:"children,omitempty"`
}

// FromGraph builds a tree from an explicit node/link description.
//
// Nodes named "hypothetical_node" become composite nodes named
// "_hypo_node_<i>" where i is their position in g.Nodes; names that already
// start with "_hypo_" are composite too. Every link target gains the link
// source as its parent.
func FromGraph(g Graph) (*tree.Tree, error) {
	t := tree.New()
	for i, name := range g.Nodes {
		if name == placeholder {
			name = tree.CompositePrefix + strconv.Itoa(i)
		}
		if err := errors.ValidateNodeName(name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "node %d", i)
		}
		if _, err := t.AddNode(tree.Node{ID: name, Composite: tree.IsCompositeID(name)}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "node %s", name)
		}
	}

	for i, l := range g.Links {
		if l.Source < 0 || l.Source >= len(g.Nodes) {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "link %d: unknown source index %d", i, l.Source)
		}
		if l.Target < 0 || l.Target >= len(g.Nodes) {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "link %d: unknown target index %d", i, l.Target)
		}
		if err := errors.ValidateDistance(l.Distance); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "link %d", i)
		}
		if err := t.AddLink(l.Source, l.Target, *l.Distance); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "link %d (%d->%d)", i, l.Source, l.Target)
		}
	}

	if err := t.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "validate")
	}
	return t, nil
}

// FromSpec builds a tree from a rooted description.
//
// Internal nodes become composite nodes named "_hypo_node_<n>" with n the
// pre-order insertion position. Leaves keep their name, remapped through
// translate when it has an entry for it. Every non-root node needs a
// branch length.
func FromSpec(root Spec, translate map[string]string) (*tree.Tree, error) {
	t := tree.New()
	if _, err := addSpec(t, root, -1, translate, "root"); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "validate")
	}
	return t, nil
}

func addSpec(t *tree.Tree, s Spec, parent int, translate map[string]string, path string) (int, error) {
	var n tree.Node
	if len(s.Children) > 0 {
		n = tree.Node{ID: tree.CompositePrefix + strconv.Itoa(t.Len()), Composite: true}
	} else {
		name := s.Name
		if mapped, ok := translate[name]; ok && mapped != "" {
			name = mapped
		}
		if err := errors.ValidateNodeName(name); err != nil {
			return -1, errors.Wrap(errors.ErrCodeInvalidGraph, err, "leaf at %s", path)
		}
		n = tree.Node{ID: name, Composite: tree.IsCompositeID(name)}
	}

	pos, err := t.AddNode(n)
	if err != nil {
		return -1, errors.Wrap(errors.ErrCodeInvalidGraph, err, "node %s", n.ID)
	}

	if parent >= 0 {
		if err := errors.ValidateDistance(s.Length); err != nil {
			return -1, errors.Wrap(errors.ErrCodeInvalidGraph, err, "branch to %s", n.ID)
		}
		if err := t.AddLink(parent, pos, *s.Length); err != nil {
			return -1, errors.Wrap(errors.ErrCodeInvalidGraph, err, "branch to %s", n.ID)
		}
	}

	for i, c := range s.Children {
		if _, err := addSpec(t, c, pos, translate, fmt.Sprintf("%s/%d", path, i)); err != nil {
			return -1, err
		}
	}
	return pos, nil
}

// Entities returns the IDs of all real (non-composite) nodes in insertion
// order. These are the entities whose partition contraction preserves.
func Entities(t *tree.Tree) []string {
	var ids []string
	for _, n := range t.Nodes() {
		if !n.Composite {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
