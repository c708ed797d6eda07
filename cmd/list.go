package cmd

import (
	"io"

	"github.com/chris-regnier/murmur/internal/ui"
	"github.com/spf13/cobra"
)

var (
	listJSON  bool
	listLimit int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal entries",
	Long:  "List journal entries newest first, with the period of day and any category an agent attached.",
	Example: `  murmur list
  murmur list --limit 5
  murmur -u Ada list --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listRun(cmd.OutOrStdout(), listJSON, listLimit)
	},
}

func listRun(w io.Writer, asJSON bool, limit int) error {
	c, err := loadEntries()
	if err != nil {
		return err
	}

	if asJSON {
		return ui.FormatJSON(w, ui.ToSummaries(c, limit))
	}

	if limit > 0 && limit < len(c) {
		// storage order is oldest first
		c = c[len(c)-limit:]
	}
	ui.FormatEntryList(w, c)
	return nil
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output in JSON format")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "show at most this many entries (0 = all)")
	rootCmd.AddCommand(listCmd)
}
