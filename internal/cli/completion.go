package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command. Besides subcommands,
// the scripts complete --format values.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for msttree and print it to stdout.

  bash        source <(msttree completion bash)
  zsh         msttree completion zsh > "${fpath[1]}/_msttree"
  fish        msttree completion fish > ~/.config/fish/completions/msttree.fish
  powershell  msttree completion powershell | Out-String | Invoke-Expression

Open a new shell afterwards.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeFormats offers the output formats for --format.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"svg\tnode-link drawing",
		"png\tnode-link drawing (raster)",
		"pdf\tnode-link drawing (print)",
		"html\tinteractive chart",
		"dot\tGraphviz source",
		"json\tlayout file",
	}, cobra.ShellCompDirectiveNoFileComp
}
