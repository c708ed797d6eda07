package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/chris-regnier/murmur/internal/entry"
	"github.com/chris-regnier/murmur/internal/speech"
	"github.com/chris-regnier/murmur/internal/storage"
	"github.com/spf13/cobra"
)

var errNarrationFailed = errors.New("narration failed")

var sayCmd = &cobra.Command{
	Use:   "say [n]",
	Short: "Read an entry aloud",
	Long: `Read an entry aloud followed by the time it was written. n counts from the
newest entry, which is 0.`,
	Example: `  murmur say
  murmur say 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 0
		if len(args) == 1 {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: entry number %q", storage.ErrValidation, args[0])
			}
			n = v
		}
		return sayRun(cmd.Context(), cmd.OutOrStdout(), newSynthesizer(), n)
	},
}

// sayRun narrates one entry and waits for the chain to finish. It runs the
// pipeline's event loop itself since there is no UI program to do it.
func sayRun(ctx context.Context, w io.Writer, synth speech.Synthesizer, n int) error {
	c, err := loadEntries()
	if err != nil {
		return err
	}
	e, ok := c.AtDisplay(n)
	if !ok {
		return fmt.Errorf("%w: no entry %d (journal has %d)", storage.ErrNotFound, n, c.Len())
	}

	date := entry.SpeechDate(e.Timestamp.Local())
	fmt.Fprintf(w, "%s\n%s\n", e.Text, date)

	p := speech.NewPipeline(synth, appConfig.Speech.SettleDelay, logger)
	if !p.Available() {
		return fmt.Errorf("%w: nothing to speak with", speech.ErrUnavailable)
	}
	msgs := make(chan any, 4)
	p.Attach(func(m any) { msgs <- m })
	p.Resolve(ctx, voicePolicy())
	defer p.Cancel()

	p.Start(speech.Chain{Parts: []string{e.Text, date}, Profile: narrateProfile()})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-msgs:
			p.Handle(m)
			switch p.Stage() {
			case speech.Done:
				return nil
			case speech.Idle:
				return errNarrationFailed
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(sayCmd)
}
