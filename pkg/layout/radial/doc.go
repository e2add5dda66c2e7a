// Package radial computes greedy radial layouts for minimum spanning trees.
//
// # Overview
//
// Each node owns an angular sector around its parent. Subtree extents are
// measured leaves-to-root as polar spans (radius, half-angle) and projected
// onto the parent's frame, then a minimum arc spacing between siblings is
// tuned until the widest subtree fits into half a turn. Nodes whose subtree
// reached that bound are frozen with the spacing found so far and the search
// repeats for the rest of the tree. The result places every child at its
// link length away from its parent, inside a sector that does not overlap
// the sectors of its siblings.
//
// # Units
//
// Link lengths are converted to pixels before layout: lengths above
// [Options.MaxLinkLength] are clamped, the longest remaining length maps to
// [Options.LinkScale] pixels and [Options.LogScale] compresses them with an
// exponent of 0.8. Node footprints derive from [Options.NodeSize] and the
// per-node Size written by the sizing policy.
//
// # Bounds
//
// The refinement runs at most 20 outer iterations of at most 11 passes each.
// Layouts that do not settle within that budget are still returned, with
// [Result.Converged] set to false.
package radial
