package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/chris-regnier/murmur/internal/config"
	"github.com/chris-regnier/murmur/internal/entry"
	"github.com/chris-regnier/murmur/internal/speech"
	"github.com/chris-regnier/murmur/internal/storage"
	"github.com/chris-regnier/murmur/internal/storage/kv"
	"github.com/chris-regnier/murmur/internal/storage/markdown"
	"github.com/chris-regnier/murmur/internal/storage/sqlite"
	"github.com/chris-regnier/murmur/internal/ui"
)

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage {
	case "", "kv":
		s, err := kv.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing kv storage: %w", err)
		}
		return s, nil
	case "markdown":
		s, err := markdown.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing markdown storage: %w", err)
		}
		return s, nil
	case "sqlite":
		s, err := sqlite.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing sqlite storage: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func openLogFile(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	path := cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return newLogger(f, cfg.LogLevel), f, nil
}

func journal() *storage.Journal {
	return storage.NewJournal(store, appConfig.Identity, logger)
}

// loadEntries reads the journal strictly for the one-shot commands.
func loadEntries() (entry.Collection, error) {
	c, err := journal().Entries()
	if storage.IsCorrupt(err) {
		return nil, fmt.Errorf("%w (storage %q in %s was left untouched)", err, appConfig.Storage, appConfig.DataDir)
	}
	return c, err
}

// theme resolves the configured theme, warning about unknown presets.
func theme() ui.Theme {
	if p := appConfig.Theme.Preset; p != "" && !slices.Contains(ui.Presets(), p) {
		logger.Warn("unknown theme preset, using default", "preset", p, "available", ui.Presets())
	}
	return ui.ResolveTheme(appConfig.Theme)
}

// newSynthesizer resolves the configured engine. A missing engine is not
// fatal: the journal still works, silently.
func newSynthesizer() speech.Synthesizer {
	synth, err := speech.Resolve(appConfig.Speech.Engine)
	if err != nil {
		logger.Warn("speech disabled", "engine", appConfig.Speech.Engine, "err", err)
	}
	return synth
}

func voicePolicy() speech.Preferred {
	p := speech.DefaultPolicy()
	if len(appConfig.Speech.PreferredVoices) > 0 {
		p.Names = appConfig.Speech.PreferredVoices
	}
	if appConfig.Speech.FallbackLang != "" {
		p.FallbackLang = appConfig.Speech.FallbackLang
	}
	return p
}

func narrateProfile() speech.Profile {
	return profileOr(appConfig.Speech.Rate, appConfig.Speech.Pitch, speech.Solemn)
}

func echoProfile() speech.Profile {
	return profileOr(appConfig.Speech.EchoRate, appConfig.Speech.EchoPitch, speech.Echo)
}

func profileOr(rate, pitch float64, def speech.Profile) speech.Profile {
	if rate <= 0 {
		rate = def.Rate
	}
	if pitch <= 0 {
		pitch = def.Pitch
	}
	return speech.Profile{Rate: rate, Pitch: pitch}
}
