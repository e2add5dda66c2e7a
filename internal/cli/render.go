package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/msttree/pkg/errors"
	"github.com/matzehuels/msttree/pkg/pipeline"
)

// renderCommand creates the render command for writing visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
	)

	cmd := &cobra.Command{
		Use:   "render [input.json]",
		Short: "Render the radial layout of a tree",
		Long: `Render the radial layout of a tree to one or more formats.

Formats:
  svg, png, pdf  node-link drawing with pinned positions (Graphviz)
  html           interactive chart with zoom and tooltips (ECharts)
  dot            Graphviz source
  json           layout file, same as the layout command`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if formatsStr == "" {
				formatsStr = defaultFormat
			}
			formats, err := pipeline.ParseFormats(formatsStr)
			if err != nil {
				return err
			}
			return c.runRender(cmd, args[0], output, formats)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, html, dot, json (comma-separated)")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input, output string, formats []string) error {
	if output != "" {
		if err := errors.ValidatePath(output); err != nil {
			return fmt.Errorf("output: %w", err)
		}
	}
	in, err := loadInput(input)
	if err != nil {
		return err
	}
	opts, err := c.options(cmd, in)
	if err != nil {
		return err
	}
	opts.Formats = formats

	res, err := c.execute(cmd.Context(), in, opts, "Rendering...")
	if err != nil {
		return err
	}

	paths := outputPaths(output, input, formats)
	printSuccess("Rendered %d format(s)", len(formats))
	for _, format := range sortedKeys(paths) {
		path := paths[format]
		if err := os.WriteFile(path, res.Artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		c.Logger.Debug("wrote artifact", "format", format, "bytes", len(res.Artifacts[format]))
		printFile(path)
	}
	printStats(res.Stats.Nodes, res.Stats.Visible, res.CacheHit, res.Stats.Restored)
	if !res.Layout.Converged {
		printWarning("Layout did not converge; some subtrees may overlap")
	}
	return nil
}

// outputPaths maps each format to its file. A single format honours the
// exact --output path; several formats share the base path.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		if f == pipeline.FormatJSON {
			paths[f] = base + ".layout.json"
			continue
		}
		paths[f] = base + "." + f
	}
	return paths
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
