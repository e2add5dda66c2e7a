// Package pkg provides the core libraries for msttree radial tree layouts.
//
// # Overview
//
// msttree takes a minimum spanning tree (or any rooted tree with link
// lengths), merges the nodes joined by short links, and places what remains
// on a radial layout in which sibling subtrees never overlap. The pkg
// directory is organized into four areas:
//
//  1. Model: [tree] and its builders, sizing and contraction
//  2. Layout: [layout/radial]
//  3. Output: [render], [io]
//  4. Plumbing: [pipeline], [cache], [store], [config], [observability]
//
// # Architecture
//
// The typical data flow:
//
//	input document (nodes/links or nested tree)
//	         ↓
//	    [tree/build] (arena tree, composite nodes)
//	         ↓
//	    [tree/collapse] (merge links at or below the threshold)
//	         ↓
//	    [layout/radial] (polar placement, overlap removal)
//	         ↓
//	    SVG/PNG/PDF/HTML/DOT/JSON output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/msttree/pkg/config"
//	    "github.com/matzehuels/msttree/pkg/layout/radial"
//	    "github.com/matzehuels/msttree/pkg/tree/build"
//	    "github.com/matzehuels/msttree/pkg/tree/collapse"
//	)
//
//	// 1. Build the tree
//	t, _ := build.FromGraph(g)
//
//	// 2. Merge short links
//	s := config.Default()
//	res, _ := collapse.New(t, s.SizingPolicy(nil)).Collapse(2, nil)
//
//	// 3. Compute positions
//	l, _ := radial.Compute(res.Tree, s.LayoutOptions())
//
// Most callers use [pipeline.Runner] instead, which adds caching, saved
// layout restoration and rendering.
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/tree/...      # Specific package
//	go test -run Example ./...  # Examples only
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/msttree/pkg/tree
// [tree/build]: https://pkg.go.dev/github.com/matzehuels/msttree/pkg/tree/build
// [tree/collapse]: https://pkg.go.dev/github.com/matzehuels/msttree/pkg/tree/collapse
// [layout/radial]: https://pkg.go.dev/github.com/matzehuels/msttree/pkg/layout/radial
// [render]: https://pkg.go.dev/github.com/matzehuels/msttree/pkg/render
// [io]: https://pkg.go.dev/github.com/matzehuels/msttree/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/msttree/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/msttree/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/matzehuels/msttree/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/msttree/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/msttree/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/msttree/pkg/observability
package pkg
