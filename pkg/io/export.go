package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/msttree/pkg/config"
	"github.com/matzehuels/msttree/pkg/errors"
	"github.com/matzehuels/msttree/pkg/tree"
)

// LayoutData is a saved tree view.
type LayoutData struct {
	NodePositions tree.Positions      `json:"node_positions" bson:"node_positions"`
	NodesLinks    config.Settings     `json:"nodes_links" bson:"nodes_links"`
	GroupedNodes  map[string][]string `json:"grouped_nodes" bson:"grouped_nodes"`
	Converged     bool                `json:"converged" bson:"converged"`
	Scale         float64             `json:"scale,omitempty" bson:"scale,omitempty"`
	Translate     *tree.Point         `json:"translate,omitempty" bson:"translate,omitempty"`
}

// UnmarshalJSON decodes a layout whose settings bag may be absent or
// partial.
func (l *LayoutData) UnmarshalJSON(data []byte) error {
	type plain LayoutData
	p := plain{NodesLinks: config.Default()}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = LayoutData(p)
	return nil
}

// WriteLayout encodes l as indented JSON to w.
func WriteLayout(l *LayoutData, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	return nil
}

// ExportLayout writes l to a JSON file at path.
func ExportLayout(l *LayoutData, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", path)
	}
	defer f.Close()
	return WriteLayout(l, f)
}

// ReadLayout decodes a layout from r and validates its settings.
func ReadLayout(r io.Reader) (*LayoutData, error) {
	var l LayoutData
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	if err := l.NodesLinks.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// ImportLayout reads a layout from the file at path.
func ImportLayout(path string) (*LayoutData, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadLayout(f)
}
