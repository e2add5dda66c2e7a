package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/msttree/pkg/config"
	"github.com/matzehuels/msttree/pkg/errors"
	"github.com/matzehuels/msttree/pkg/pipeline"
	"github.com/matzehuels/msttree/pkg/tree/collapse"
)

// collapseOutput is the JSON form of the collapse command's result.
type collapseOutput struct {
	Threshold    float64             `json:"threshold"`
	Merged       int                 `json:"merged"`
	Nodes        []string            `json:"nodes"`
	GroupedNodes map[string][]string `json:"grouped_nodes"`
}

// collapseCommand creates the collapse command, which contracts the tree
// without laying it out.
func (c *CLI) collapseCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "collapse [input.json]",
		Short: "Show which nodes a threshold merges",
		Long: `Contract every link at or below the threshold and print the visible nodes
together with the nodes merged into each of them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCollapse(cmd, args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the groups as JSON")

	return cmd
}

func (c *CLI) runCollapse(cmd *cobra.Command, input string, asJSON bool) error {
	in, err := loadInput(input)
	if err != nil {
		return err
	}
	opts, err := c.options(cmd, in)
	if err != nil {
		return err
	}
	settings := config.Default()
	switch {
	case opts.Settings != nil:
		settings = *opts.Settings
	case in.Layout != nil:
		settings = in.Layout.NodesLinks
	}
	if err := errors.ValidateNonNegative("threshold", opts.Threshold); err != nil {
		return err
	}

	ctx := cmd.Context()
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	prog := newProgress(c.Logger)

	t, err := runner.Build(ctx, in)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	res, err := runner.Collapse(ctx, collapse.New(t, settings.SizingPolicy(in.Records())), opts.Threshold, nil)
	if err != nil {
		return fmt.Errorf("collapse: %w", err)
	}
	prog.done(fmt.Sprintf("Collapsed %d nodes into %d", t.Len(), res.Tree.Len()))

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(collapseOutput{
			Threshold:    opts.Threshold,
			Merged:       res.Merged,
			Nodes:        res.Tree.IDs(),
			GroupedNodes: res.Groups,
		})
	}

	printSuccess("Threshold %g merged %d nodes", opts.Threshold, res.Merged)
	for _, n := range res.Tree.Nodes() {
		if n.Composite {
			continue
		}
		printGroup(n.ID, res.Groups[n.ID])
	}
	return nil
}
