package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/msttree/pkg/errors"
	mstio "github.com/matzehuels/msttree/pkg/io"
	"github.com/matzehuels/msttree/pkg/observability"
	"github.com/matzehuels/msttree/pkg/tree"
)

// Build constructs the tree described by in.
func (r *Runner) Build(ctx context.Context, in *mstio.Input) (*tree.Tree, error) {
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx)
	start := time.Now()

	if in == nil {
		err := errors.New(errors.ErrCodeInvalidInput, "no input document")
		hooks.OnBuildComplete(ctx, 0, time.Since(start), err)
		return nil, err
	}
	t, err := in.Build()
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnBuildComplete(ctx, t.Len(), time.Since(start), nil)
	return t, nil
}
