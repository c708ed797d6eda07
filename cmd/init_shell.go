package cmd

import (
	"github.com/chris-regnier/murmur/internal/shell"
	"github.com/spf13/cobra"
)

var initShellCmd = &cobra.Command{
	Use:   "init <shell>",
	Short: "Output shell integration script",
	Long: `Output shell integration script for eval.

Generates shell-specific initialization code that sets up:
- Shell completions
- A prompt hook exporting MURMUR_PROMPT_* from murmur status
- A murmur_prompt_info helper function

Supported shells: bash, zsh, fish`,
	Example: `  # Add to ~/.bashrc
  eval "$(murmur init bash)"

  # Add to ~/.config/fish/config.fish
  murmur init fish | source`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: shell.Supported(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return shell.WriteInit(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(initShellCmd)
}
