package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/chris-regnier/murmur/internal/speech"
	"github.com/chris-regnier/murmur/internal/ui"
	"github.com/spf13/cobra"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the voices of the speech engine",
	Long: `List the voices reported by the configured speech engine. The voice marked
with * is the one murmur narrates with, picked from speech.preferred_voices.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return voicesRun(cmd.Context(), cmd.OutOrStdout(), newSynthesizer())
	},
}

func voicesRun(ctx context.Context, w io.Writer, synth speech.Synthesizer) error {
	if !speech.IsAvailable(synth) {
		return fmt.Errorf("%w: install espeak-ng, say or spd-say, or set speech.engine", speech.ErrUnavailable)
	}
	if e, ok := synth.(*speech.ExecSynthesizer); ok {
		fmt.Fprintf(w, "Engine: %s\n\n", e.Engine())
	}

	voices, err := synth.Voices(ctx)
	if err != nil {
		return fmt.Errorf("listing voices: %w", err)
	}
	ui.FormatVoices(w, voices, voicePolicy().Choose(voices))
	return nil
}

func init() {
	rootCmd.AddCommand(voicesCmd)
}
