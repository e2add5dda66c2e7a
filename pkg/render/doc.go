// Package render turns tree layouts into pictures.
//
// # Overview
//
// A layout is a set of fixed node positions, so renderers never move nodes;
// they only decide how nodes and links look. Two renderers exist:
//
//   - [nodelink]: Graphviz DOT with pinned positions, rendered to SVG by the
//     neato engine and converted to PDF or PNG
//   - [echarts]: a self-contained interactive HTML page
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg):
//
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Colours
//
// Entities get the colour configured for them in the settings bag, falling
// back to a fixed palette; see [NodeColour].
//
// [nodelink]: github.com/matzehuels/msttree/pkg/render/nodelink
// [echarts]: github.com/matzehuels/msttree/pkg/render/echarts
package render
