package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/chris-regnier/murmur/internal/config"
	"github.com/chris-regnier/murmur/internal/speech"
	"github.com/chris-regnier/murmur/internal/storage"
	"github.com/chris-regnier/murmur/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfgFile        string
	storageBackend string
	identityFlag   string
	muteFlag       bool
	appConfig      *config.Config
	store          storage.Store
	logger         = discardLogger()
	logCloser      io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "murmur",
	Short: "A journal that talks back",
	Long: `murmur is a terminal journal. Type an entry and press enter; words are echoed
aloud as you type and every entry is read back with the time it was written.
Press esc to browse older entries, space to hear one, enter to edit it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		appConfig = cfg

		// Flags win over config and environment
		if storageBackend != "" {
			appConfig.Storage = storageBackend
		}
		if identityFlag != "" {
			appConfig.Identity = identityFlag
		}
		if muteFlag {
			appConfig.Speech.Engine = speech.EngineNone
		}

		// stdout belongs to the protocol and the TUI owns the terminal, so
		// only mcp-serve logs to stderr.
		if cmd.Name() == mcpServeCmd.Name() {
			logger = newLogger(os.Stderr, appConfig.LogLevel)
		} else {
			l, c, err := openLogFile(appConfig)
			if err != nil {
				return fmt.Errorf("opening log: %w", err)
			}
			logger, logCloser = l, c
		}

		store, err = openStore(appConfig)
		if err != nil {
			return err
		}
		logger.Debug("storage opened", "backend", appConfig.Storage, "data_dir", appConfig.DataDir)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			// Non-TTY: fall back to a plain listing
			return listRun(cmd.OutOrStdout(), false, 0)
		}

		p := speech.NewPipeline(newSynthesizer(), appConfig.Speech.SettleDelay, logger)
		p.Resolve(cmd.Context(), voicePolicy())

		return ui.RunJournal(cmd.Context(), journal(), p, ui.JournalConfig{
			Identity: appConfig.Identity,
			Theme:    theme(),
			MaxWidth: appConfig.MaxWidth,
			Narrate:  narrateProfile(),
			Echo:     echoProfile(),
			Logger:   logger,
		})
	},
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&storageBackend, "storage", "", "storage backend (kv|markdown|sqlite)")
	rootCmd.PersistentFlags().StringVarP(&identityFlag, "identity", "u", "", "whose journal to open")
	rootCmd.PersistentFlags().BoolVar(&muteFlag, "mute", false, "disable speech")

	// Silence Cobra's built-in error and usage printing so we control stderr output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	cobra.OnFinalize(closeResources)
}

func closeResources() {
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn("closing storage", "err", err)
		}
		store = nil
	}
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}
