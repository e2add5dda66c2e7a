// Package nodelink renders tree layouts as node-link diagrams.
//
// # Overview
//
// A layout is written as Graphviz DOT with every node pinned at its computed
// position (pos="x,y!") and rendered by the neato engine, which honours
// pinned positions instead of computing its own. Real entities appear as
// filled circles sized by the sizing policy; composite nodes shrink to points.
//
// # Usage
//
//	dot := nodelink.ToDOT(t, positions, nodelink.Options{Settings: s, Radii: radii})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # Settings
//
// The settings bag controls labels, fonts and link styling:
//
//   - links longer than HideLinkLength are omitted
//   - links longer than MaxLinkLength are drawn dashed
//   - ShowLinkLabels prints the link distance
//   - ShowIndividualSegments draws merged nodes as pie wedges, one per entity
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
