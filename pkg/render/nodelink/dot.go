package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/msttree/pkg/config"
	"github.com/matzehuels/msttree/pkg/render"
	"github.com/matzehuels/msttree/pkg/tree"
)

// pointsPerInch converts pixel sizes to Graphviz inches.
const pointsPerInch = 72.0

// Options configures node-link diagram rendering.
type Options struct {
	// Settings is the display settings bag.
	Settings config.Settings
	// Radii maps node IDs to drawn radii in pixels. Missing real nodes use
	// the base node size.
	Radii map[string]float64
	// Groups maps node IDs to the entities they stand for.
	Groups map[string][]string
	// Labels overrides node labels by ID.
	Labels map[string]string
}

// ToDOT converts a laid out tree to Graphviz DOT. Nodes without a position
// are placed at the origin.
func ToDOT(t *tree.Tree, positions tree.Positions, opts Options) string {
	s := opts.Settings

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fixedsize=true, fontname=\"sans-serif\", fontsize=%s, color=\"#333333\", penwidth=0.5];\n", num(s.NodeFontSize))
	fmt.Fprintf(&buf, "  edge [color=\"#666666\", fontname=\"sans-serif\", fontsize=%s];\n", num(s.LinkFontSize))
	buf.WriteString("\n")

	for i, n := range t.Nodes() {
		p := positions[n.ID]
		attrs := nodeAttrs(n, i, opts)
		// Graphviz y grows upwards, layout y grows downwards.
		attrs = append([]string{fmt.Sprintf("pos=\"%s,%s!\"", num(p[0]), num(-p[1]))}, attrs...)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range t.Links() {
		if s.HideLinkLength > 0 && l.Value > s.HideLinkLength {
			continue
		}
		var attrs []string
		if s.ShowLinkLabels {
			attrs = append(attrs, fmt.Sprintf("label=%q", num(l.Value)))
		}
		if s.MaxLinkLength > 0 && l.Value > s.MaxLinkLength {
			attrs = append(attrs, "style=dashed")
		}
		src, dst := t.Node(l.Source).ID, t.Node(l.Target).ID
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -- %q;\n", src, dst)
		} else {
			fmt.Fprintf(&buf, "  %q -- %q [%s];\n", src, dst, strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *tree.Node, i int, opts Options) []string {
	if n.Composite {
		return []string{"shape=point", "width=0.02", fmt.Sprintf("fillcolor=%q", render.CompositeColour), "label=\"\""}
	}

	s := opts.Settings
	r, ok := opts.Radii[n.ID]
	if !ok {
		r = s.BaseNodeSize
	}
	attrs := []string{
		fmt.Sprintf("width=%s", num(2*r/pointsPerInch)),
		fmt.Sprintf("label=%q", fmtLabel(n, opts)),
	}

	members := opts.Groups[n.ID]
	if s.ShowIndividualSegments && len(members) > 1 {
		colours := make([]string, len(members))
		share := 1 / float64(len(members))
		for j, m := range members {
			colours[j] = fmt.Sprintf("%s;%s", render.NodeColour(m, s.CustomColours, i+j), num(share))
		}
		attrs = append(attrs, "style=wedged", fmt.Sprintf("fillcolor=%q", strings.Join(colours, ":")))
	} else {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", render.NodeColour(n.ID, s.CustomColours, i)))
	}
	return attrs
}

func fmtLabel(n *tree.Node, opts Options) string {
	if !opts.Settings.ShowNodeLabels {
		return ""
	}
	if l, ok := opts.Labels[n.ID]; ok {
		return l
	}
	return n.ID
}

// num formats a float compactly for DOT.
func num(f float64) string {
	if f == 0 {
		f = 0 // drops the sign of -0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders a DOT graph to SVG using the Graphviz neato engine.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
