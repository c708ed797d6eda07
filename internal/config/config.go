package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// ThemeConfig holds TUI color configuration. Empty fields fall back to the
// preset's value.
type ThemeConfig struct {
	Preset        string `mapstructure:"preset"`
	Primary       string `mapstructure:"primary"`
	Secondary     string `mapstructure:"secondary"`
	Accent        string `mapstructure:"accent"`
	Muted         string `mapstructure:"muted"`
	Danger        string `mapstructure:"danger"`
	Background    string `mapstructure:"background"`
	MarkdownStyle string `mapstructure:"markdown_style"`
}

// SpeechConfig holds narration settings.
type SpeechConfig struct {
	Engine          string        `mapstructure:"engine"`
	PreferredVoices []string      `mapstructure:"preferred_voices"`
	FallbackLang    string        `mapstructure:"fallback_lang"`
	SettleDelay     time.Duration `mapstructure:"settle_delay"`
	Rate            float64       `mapstructure:"rate"`
	Pitch           float64       `mapstructure:"pitch"`
	EchoRate        float64       `mapstructure:"echo_rate"`
	EchoPitch       float64       `mapstructure:"echo_pitch"`
}

// Config holds the application configuration.
type Config struct {
	Storage  string       `mapstructure:"storage"`
	DataDir  string       `mapstructure:"data_dir"`
	Identity string       `mapstructure:"identity"`
	MaxWidth int          `mapstructure:"max_width"`
	LogFile  string       `mapstructure:"log_file"`
	LogLevel string       `mapstructure:"log_level"`
	Theme    ThemeConfig  `mapstructure:"theme"`
	Speech   SpeechConfig `mapstructure:"speech"`
}

// DefaultDataDir returns the default data directory (~/.murmur/).
func DefaultDataDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return filepath.Join(".", ".murmur")
	}
	return filepath.Join(home, ".murmur")
}

// LogPath returns the log file, defaulting to murmur.log in the data dir.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "murmur.log")
}

// Load reads configuration from file, environment variables, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("storage", "kv")
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("identity", "")
	v.SetDefault("max_width", 0)
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("theme.preset", "default-dark")
	v.SetDefault("theme.markdown_style", "")
	v.SetDefault("speech.engine", "auto")
	v.SetDefault("speech.preferred_voices", []string{"Google UK English Male", "Daniel", "English (United Kingdom)"})
	v.SetDefault("speech.fallback_lang", "en-GB")
	v.SetDefault("speech.settle_delay", "230ms")
	v.SetDefault("speech.rate", 0.9)
	v.SetDefault("speech.pitch", 0.8)
	v.SetDefault("speech.echo_rate", 1.0)
	v.SetDefault("speech.echo_pitch", 1.0)

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// XDG support
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "murmur"))
		}
		v.AddConfigPath(DefaultDataDir())
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	// Environment variables: MURMUR_STORAGE, MURMUR_SPEECH_ENGINE, etc.
	v.SetEnvPrefix("MURMUR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only return error if it's not a "file not found" error
			if configPath != "" {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	dataDir, err := homedir.Expand(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("expanding data_dir: %w", err)
	}
	cfg.DataDir = dataDir
	if cfg.LogFile != "" {
		if cfg.LogFile, err = homedir.Expand(cfg.LogFile); err != nil {
			return nil, fmt.Errorf("expanding log_file: %w", err)
		}
	}

	return cfg, nil
}
