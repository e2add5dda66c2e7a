package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/msttree/pkg/errors"
	"github.com/matzehuels/msttree/pkg/tree"
	"github.com/matzehuels/msttree/pkg/tree/build"
)

// Record is one metadata entry of an entity.
type Record map[string]any

// Input is a tree input document.
type Input struct {
	Nodes     []string            `json:"nodes,omitempty"`
	Links     []build.LinkSpec    `json:"links,omitempty"`
	Tree      *build.Spec         `json:"tree,omitempty"`
	Translate map[string]string   `json:"translate,omitempty"`
	Metadata  map[string][]Record `json:"metadata,omitempty"`
	Layout    *LayoutData         `json:"layout_data,omitempty"`
}

// Build constructs the tree described by the document. A rooted tree takes
// precedence over an explicit graph.
func (in *Input) Build() (*tree.Tree, error) {
	switch {
	case in.Tree != nil:
		return build.FromSpec(*in.Tree, in.Translate)
	case len(in.Nodes) > 0:
		return build.FromGraph(build.Graph{Nodes: in.Nodes, Links: in.Links})
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "input has neither nodes nor tree")
	}
}

// Records returns the number of metadata records per entity.
func (in *Input) Records() map[string]int {
	if len(in.Metadata) == 0 {
		return nil
	}
	counts := make(map[string]int, len(in.Metadata))
	for id, recs := range in.Metadata {
		counts[id] = len(recs)
	}
	return counts
}

// RecordIDKey is the metadata field that names an individual record.
const RecordIDKey = "ID"

// ExpandIDs resolves entities to the IDs of their metadata records. An
// entity without identified records stands for itself.
func (in *Input) ExpandIDs(entities []string) []string {
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		n := len(ids)
		for _, rec := range in.Metadata[e] {
			if id, ok := rec[RecordIDKey].(string); ok && id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) == n {
			ids = append(ids, e)
		}
	}
	return ids
}

// ReadInput decodes an input document from r. It does not close r.
func ReadInput(r io.Reader) (*Input, error) {
	var in Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode input")
	}
	return &in, nil
}

// ImportInput reads an input document from the file at path.
func ImportInput(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadInput(f)
}
