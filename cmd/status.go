package cmd

import (
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/chris-regnier/murmur/internal/stats"
	"github.com/spf13/cobra"
)

const (
	todayIcon   = "✎"
	noTodayIcon = "·"
	streakIcon  = "d"
)

// statusData holds the template data for status formatting.
type statusData struct {
	Identity   string
	HasToday   bool
	TodayIcon  string
	Streak     int
	StreakIcon string
	Entries    int
}

var (
	statusEnv    bool
	statusFormat string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show journal prompt status",
	Long: `Show a one-line journal status for shell prompt integration: whether you
have written today and your current streak of consecutive days.

Use --env to output shell environment variable assignments.
Use --format with a Go template for custom output.`,
	Example: `  murmur status
  murmur status --env
  murmur status --format "{{.TodayIcon}} {{.Streak}}{{.StreakIcon}}"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun(cmd.OutOrStdout(), statusEnv, statusFormat, time.Now())
	},
}

func statusRun(w io.Writer, env bool, format string, now time.Time) error {
	c, err := loadEntries()
	if err != nil {
		return err
	}
	summary := stats.Compute(c, now)

	data := statusData{
		Identity:   journal().Identity(),
		HasToday:   summary.WrittenToday,
		TodayIcon:  noTodayIcon,
		Streak:     summary.Streak,
		StreakIcon: streakIcon,
		Entries:    summary.Total,
	}
	if data.HasToday {
		data.TodayIcon = todayIcon
	}

	switch {
	case env:
		fmt.Fprintf(w, "export MURMUR_PROMPT_TODAY=%q\n", data.TodayIcon)
		fmt.Fprintf(w, "export MURMUR_PROMPT_STREAK=%q\n", fmt.Sprint(data.Streak))
		fmt.Fprintf(w, "export MURMUR_PROMPT_ENTRIES=%q\n", fmt.Sprint(data.Entries))
		return nil
	case format != "":
		tmpl, err := template.New("status").Parse(format)
		if err != nil {
			return fmt.Errorf("invalid format template: %w", err)
		}
		if err := tmpl.Execute(w, data); err != nil {
			return fmt.Errorf("executing format template: %w", err)
		}
		fmt.Fprintln(w)
		return nil
	}
	fmt.Fprintf(w, "%s %d%s\n", data.TodayIcon, data.Streak, data.StreakIcon)
	return nil
}

func init() {
	statusCmd.Flags().BoolVar(&statusEnv, "env", false, "output shell environment variable assignments")
	statusCmd.Flags().StringVar(&statusFormat, "format", "", "Go template format string")
	rootCmd.AddCommand(statusCmd)
}
