package cmd

import (
	"io"
	"time"

	"github.com/chris-regnier/murmur/internal/stats"
	"github.com/chris-regnier/murmur/internal/ui"
	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show writing statistics",
	Long: `Show how much and when you write: entry and active-day totals, the current
streak, a cumulative chart, entries per time of day and your most used words.`,
	Example: `  murmur stats
  murmur stats --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statsRun(cmd.OutOrStdout(), statsJSON, time.Now())
	},
}

func statsRun(w io.Writer, asJSON bool, now time.Time) error {
	c, err := loadEntries()
	if err != nil {
		return err
	}
	summary := stats.Compute(c, now)
	if asJSON {
		return ui.FormatJSON(w, summary)
	}

	th := theme()
	width := 80
	if appConfig.MaxWidth > 0 {
		width = appConfig.MaxWidth
	}
	report := ui.RenderMarkdown(stats.Markdown(summary, stats.Title(appConfig.Identity)), width, th.MarkdownStyle)
	return ui.PageOutput(w, report+"\n", th, appConfig.MaxWidth)
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(statsCmd)
}
