package pipeline

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	mstio "github.com/matzehuels/msttree/pkg/io"
	"github.com/matzehuels/msttree/pkg/render/echarts"
	"github.com/matzehuels/msttree/pkg/render/nodelink"
	"github.com/matzehuels/msttree/pkg/tree"
)

// RenderArtifacts renders l in the requested formats without caching.
// in supplies metadata for labels and record weights and may be nil.
func RenderArtifacts(t *tree.Tree, l *mstio.LayoutData, in *mstio.Input, formats []string) (map[string][]byte, error) {
	var metadata map[string][]mstio.Record
	var records map[string]int
	if in != nil {
		metadata = in.Metadata
		records = in.Records()
	}
	s := l.NodesLinks
	radii := s.SizingPolicy(records).Radii(t, l.GroupedNodes)
	labels := Labels(t, l.GroupedNodes, metadata, s.NodeTextValue)

	// The DOT source is shared by the Graphviz based formats.
	var dot string
	if slices.ContainsFunc(formats, func(f string) bool {
		return f == FormatDOT || f == FormatSVG || f == FormatPNG || f == FormatPDF
	}) {
		dot = nodelink.ToDOT(t, l.NodePositions, nodelink.Options{
			Settings: s,
			Radii:    radii,
			Groups:   l.GroupedNodes,
			Labels:   labels,
		})
	}

	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(dot, 2.0)
		case FormatPDF:
			data, err = nodelink.RenderPDF(dot)
		case FormatHTML:
			data, err = echarts.RenderHTML(t, l.NodePositions, echarts.Options{
				Settings: s,
				Radii:    radii,
				Groups:   l.GroupedNodes,
				Labels:   labels,
			})
		case FormatJSON:
			var buf bytes.Buffer
			err = mstio.WriteLayout(l, &buf)
			data = buf.Bytes()
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// Labels returns node labels taken from the metadata field. A node that
// stands for several entities shows the distinct values of all of them.
// An empty field yields no labels, so renderers fall back to node IDs.
func Labels(t *tree.Tree, groups map[string][]string, metadata map[string][]mstio.Record, field string) map[string]string {
	if field == "" || len(metadata) == 0 {
		return nil
	}
	labels := make(map[string]string)
	for _, n := range t.Nodes() {
		if n.Composite {
			continue
		}
		members := groups[n.ID]
		if len(members) == 0 {
			members = []string{n.ID}
		}
		var values []string
		for _, id := range members {
			for _, rec := range metadata[id] {
				v, ok := rec[field]
				if !ok || v == nil {
					continue
				}
				if s := fmt.Sprint(v); s != "" && !slices.Contains(values, s) {
					values = append(values, s)
				}
			}
		}
		if len(values) > 0 {
			labels[n.ID] = strings.Join(values, ", ")
		}
	}
	return labels
}
