package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/msttree/pkg/config"
	mstio "github.com/matzehuels/msttree/pkg/io"
	"github.com/matzehuels/msttree/pkg/layout/radial"
	"github.com/matzehuels/msttree/pkg/observability"
	"github.com/matzehuels/msttree/pkg/tree"
	"github.com/matzehuels/msttree/pkg/tree/collapse"
)

// Collapse contracts the tree held by c at threshold. positions may carry a
// saved layout; its entries follow composites that adopt a real identity.
func (r *Runner) Collapse(ctx context.Context, c *collapse.Collapser, threshold float64, positions tree.Positions) (*collapse.Result, error) {
	hooks := observability.Pipeline()
	hooks.OnCollapseStart(ctx, c.Original().Len(), threshold)
	start := time.Now()

	res, err := c.Collapse(threshold, positions)
	if err != nil {
		hooks.OnCollapseComplete(ctx, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnCollapseComplete(ctx, res.Merged, time.Since(start), nil)
	return res, nil
}

// Layout computes the radial layout of a collapsed tree and packages it as
// a saved view carrying s and groups.
func (r *Runner) Layout(ctx context.Context, t *tree.Tree, groups map[string][]string, s config.Settings) (*mstio.LayoutData, *radial.Result, error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, t.Len())
	start := time.Now()

	res, err := radial.Compute(t, s.LayoutOptions())
	if err != nil {
		hooks.OnLayoutComplete(ctx, false, 0, time.Since(start), err)
		return nil, nil, err
	}
	hooks.OnLayoutComplete(ctx, res.Converged, res.Iterations, time.Since(start), nil)

	if groups == nil {
		groups = map[string][]string{}
	}
	return &mstio.LayoutData{
		NodePositions: res.Positions,
		NodesLinks:    s,
		GroupedNodes:  groups,
		Converged:     res.Converged,
	}, res, nil
}

// savedPositions returns a copy of the positions saved in the input, or nil
// when there are none or a refresh was requested.
func savedPositions(in *mstio.Input, opts Options) tree.Positions {
	if in == nil || in.Layout == nil || opts.Refresh || len(in.Layout.NodePositions) == 0 {
		return nil
	}
	return in.Layout.NodePositions.Clone()
}

// restore builds the view from saved positions when they place every node
// of the collapsed tree, whatever threshold they were saved at. Groups come
// from the contraction, not from the saved view. Nodes merged away keep
// their saved coordinates so a lower threshold can be restored later.
func restore(in *mstio.Input, c *collapse.Collapser, res *collapse.Result, opts Options) (*mstio.LayoutData, bool) {
	if res.Positions == nil {
		return nil, false
	}
	visible := make(tree.Positions, res.Tree.Len())
	for _, n := range res.Tree.Nodes() {
		p, ok := res.Positions[n.ID]
		if !ok {
			return nil, false
		}
		visible[n.ID] = p
	}
	return &mstio.LayoutData{
		NodePositions: c.Positions(visible),
		NodesLinks:    *opts.Settings,
		GroupedNodes:  res.Groups,
		// Saved positions are final; there is nothing left to converge.
		Converged: true,
		Scale:     in.Layout.Scale,
		Translate: in.Layout.Translate,
	}, true
}
