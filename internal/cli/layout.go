package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	mstio "github.com/matzehuels/msttree/pkg/io"
	"github.com/matzehuels/msttree/pkg/pipeline"
)

// layoutCommand creates the layout command for computing radial layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "layout [input.json]",
		Short: "Compute the radial layout of a tree",
		Long: `Compute the radial layout of a tree.

The input is a JSON document holding either a node/link graph or a nested
tree. Links at or below the threshold are collapsed first; the collapsed
tree is then placed radially around the root.

The output is a layout file (same format as 'render -f json') with node
positions, the settings used and the merged groups. Embedding it in the
input as "layout_data" restores the positions on the next run.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")

	return cmd
}

// runLayout loads the input, computes the layout, and writes output.
func (c *CLI) runLayout(cmd *cobra.Command, input, output string) error {
	in, err := loadInput(input)
	if err != nil {
		return err
	}
	opts, err := c.options(cmd, in)
	if err != nil {
		return err
	}

	res, err := c.execute(cmd.Context(), in, opts, "Computing layout...")
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + ".layout.json"
	}
	if err := mstio.ExportLayout(&res.Layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(res.Stats.Nodes, res.Stats.Visible, res.CacheHit, res.Stats.Restored)
	if !res.Layout.Converged {
		printWarning("Layout did not converge; some subtrees may overlap")
	}
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}

// execute runs the pipeline behind a spinner.
func (c *CLI) execute(ctx context.Context, in *mstio.Input, opts pipeline.Options, message string) (*pipeline.Result, error) {
	runner, err := c.newRunner()
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, message)
	spinner.Start()

	res, err := runner.Execute(ctx, in, opts)
	if err != nil {
		spinner.StopWithError("Pipeline failed")
		return nil, err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return res, nil
}
