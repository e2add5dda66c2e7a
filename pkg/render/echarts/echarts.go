// Package echarts renders a laid out tree as an interactive HTML page.
//
// Nodes are pinned at their layout positions (the graph series uses the
// "none" layout), so the page only adds panning, zooming and tooltips on
// top of the computed picture.
package echarts

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/matzehuels/msttree/pkg/config"
	"github.com/matzehuels/msttree/pkg/render"
	"github.com/matzehuels/msttree/pkg/tree"
)

// Options configures HTML rendering.
type Options struct {
	Settings config.Settings
	Radii    map[string]float64
	Groups   map[string][]string
	Labels   map[string]string
	// Title is the page title. Empty uses "msttree".
	Title string
}

// Render writes the page to w.
func Render(w io.Writer, t *tree.Tree, positions tree.Positions, o Options) error {
	page := components.NewPage()
	page.SetPageTitle(title(o))
	page.AddCharts(Chart(t, positions, o))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// RenderHTML returns the page as bytes.
func RenderHTML(t *tree.Tree, positions tree.Positions, o Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, t, positions, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Chart builds the graph chart without rendering it.
func Chart(t *tree.Tree, positions tree.Positions, o Options) *charts.Graph {
	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title(o),
			Height:    "100vh",
			Width:     "100vw",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	graph.AddSeries(
		"tree",
		Nodes(t, positions, o),
		Links(t, o.Settings),
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout:    "none",
			Roam:      opts.Bool(true),
			Draggable: opts.Bool(false),
		}),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(o.Settings.ShowNodeLabels),
			Color:    "black",
			FontSize: float32(o.Settings.NodeFontSize),
			Position: "right",
		}),
	)
	return graph
}

// Nodes converts tree nodes to fixed graph nodes. Composite nodes become
// small grey dots without a label.
func Nodes(t *tree.Tree, positions tree.Positions, o Options) []opts.GraphNode {
	nodes := make([]opts.GraphNode, 0, t.Len())
	for i, n := range t.Nodes() {
		p := positions[n.ID]
		gn := opts.GraphNode{
			Name:  n.ID,
			X:     float32(p[0]),
			Y:     float32(p[1]),
			Fixed: opts.Bool(true),
		}
		if n.Composite {
			gn.Symbol = "circle"
			gn.SymbolSize = 2
			gn.ItemStyle = &opts.ItemStyle{Color: render.CompositeColour}
			nodes = append(nodes, gn)
			continue
		}

		r, ok := o.Radii[n.ID]
		if !ok {
			r = o.Settings.BaseNodeSize
		}
		gn.Symbol = "circle"
		gn.SymbolSize = 2 * r
		gn.Value = float32(len(o.Groups[n.ID]))
		gn.ItemStyle = &opts.ItemStyle{Color: render.NodeColour(n.ID, o.Settings.CustomColours, i)}
		gn.Tooltip = &opts.Tooltip{Show: opts.Bool(true), Formatter: tooltip(n, o)}
		nodes = append(nodes, gn)
	}
	return nodes
}

// Links converts tree links to graph links, honouring the hide and
// truncation thresholds of s.
func Links(t *tree.Tree, s config.Settings) []opts.GraphLink {
	links := make([]opts.GraphLink, 0, t.LinkCount())
	for _, l := range t.Links() {
		if s.HideLinkLength > 0 && l.Value > s.HideLinkLength {
			continue
		}
		gl := opts.GraphLink{
			Source: t.Node(l.Source).ID,
			Target: t.Node(l.Target).ID,
			Value:  float32(l.Value),
		}
		style := &opts.LineStyle{Color: "#666666", Width: 1}
		if s.MaxLinkLength > 0 && l.Value > s.MaxLinkLength {
			style.Type = "dashed"
		}
		gl.LineStyle = style
		if s.ShowLinkLabels {
			gl.Label = &opts.EdgeLabel{Show: opts.Bool(true)}
		}
		links = append(links, gl)
	}
	return links
}

func tooltip(n *tree.Node, o Options) types.FuncStr {
	label := n.ID
	if l, ok := o.Labels[n.ID]; ok && l != "" {
		label = l
	}
	members := o.Groups[n.ID]
	if len(members) <= 1 {
		return types.FuncStr(label)
	}
	return types.FuncStr(fmt.Sprintf("%s<br/>%s", label, strings.Join(members, ", ")))
}

func title(o Options) string {
	if o.Title != "" {
		return o.Title
	}
	return "msttree"
}
