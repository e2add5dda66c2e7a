// Package io reads tree input documents and reads and writes layouts as JSON.
//
// # Input Format
//
// An input document carries either an explicit graph or a rooted tree:
//
//	{
//	  "nodes": ["ST1", "hypothetical_node", "ST2"],
//	  "links": [
//	    {"source": 0, "target": 1, "distance": 2},
//	    {"source": 1, "target": 2, "distance": 1}
//	  ],
//	  "metadata": {"ST1": [{"country": "UK"}, {"country": "FR"}]}
//	}
//
// or
//
//	{
//	  "tree": {"children": [{"name": "1", "length": 0.5}, {"name": "2", "length": 1}]},
//	  "translate": {"1": "ST1", "2": "ST2"}
//	}
//
// Nodes named "hypothetical_node" are composite nodes. The metadata object
// maps entity IDs to their records; the record count drives node sizes.
// An optional "layout_data" object holds a previously saved layout.
//
// # Layout Format
//
// [LayoutData] is the saved view: node positions, the settings bag
// ("nodes_links"), the grouping of merged entities and the viewport:
//
//	{
//	  "node_positions": {"ST1": [0, 0], "ST2": [500.6, 0]},
//	  "nodes_links": {"max_link_scale": 500, "node_collapsed_value": 0},
//	  "grouped_nodes": {"ST1": ["ST1"], "ST2": ["ST2"]},
//	  "converged": true
//	}
//
// Missing settings keep their defaults when a layout is read.
package io
