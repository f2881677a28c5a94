// Package config provides YAML-based configuration loading for uipipe.
package config

import (
    "errors"
    "fmt"
    "os"
    "strings"
    "time"

    "github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
    // AppName optional logical name of the application
    AppName string `mapstructure:"app_name"`

    // Log holds logging configuration
    Log LogConfig `mapstructure:"log"`

    // Channel configures the inter-process channel
    Channel ChannelConfig `mapstructure:"channel"`

    // Worker configures the back-end loop
    Worker WorkerConfig `mapstructure:"worker"`

    // UI configures the front-end loop
    UI UIConfig `mapstructure:"ui"`
}

// LogConfig defines logger settings.
type LogConfig struct {
    // Level: debug, info, warn, error
    Level string `mapstructure:"level"`
    // Format: console or json
    Format string `mapstructure:"format"`
    // Outputs: list of outputs: stdout, stderr, or file paths
    Outputs []string `mapstructure:"outputs"`

    // Rotation controls file rotation when writing to files
    Rotation RotationConfig `mapstructure:"rotation"`
    // Development toggles development-friendly logging options
    Development bool `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
    Enable     bool   `mapstructure:"enable"`
    Filename   string `mapstructure:"filename"`
    MaxSizeMB  int    `mapstructure:"max_size_mb"`
    MaxBackups int    `mapstructure:"max_backups"`
    MaxAgeDays int    `mapstructure:"max_age_days"`
    Compress   bool   `mapstructure:"compress"`
}

// ChannelConfig selects the payload codec used on the wire.
type ChannelConfig struct {
    // Codec: json or cbor
    Codec string `mapstructure:"codec"`
}

// WorkerConfig tunes the back-end loop.
type WorkerConfig struct {
    // TickIntervalMS spaces the liveness tick
    TickIntervalMS int `mapstructure:"tick_interval_ms"`
    // QuitKeyword is the reserved input text that triggers shutdown
    QuitKeyword string `mapstructure:"quit_keyword"`
}

// UIConfig tunes the front-end loop.
type UIConfig struct {
    // PollIntervalMS spaces idle drains of the inbound channel
    PollIntervalMS int `mapstructure:"poll_interval_ms"`
}

// TickInterval returns the liveness tick spacing as a duration.
func (w WorkerConfig) TickInterval() time.Duration {
    return time.Duration(w.TickIntervalMS) * time.Millisecond
}

// PollInterval returns the idle poll spacing as a duration.
func (u UIConfig) PollInterval() time.Duration {
    return time.Duration(u.PollIntervalMS) * time.Millisecond
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
    return &Config{
        AppName: "uipipe",
        Log: LogConfig{
            Level:       "info",
            Format:      "console",
            Outputs:     []string{"stderr"},
            Development: true,
            Rotation: RotationConfig{
                Enable:     false,
                Filename:   "logs/uipipe.log",
                MaxSizeMB:  50,
                MaxBackups: 3,
                MaxAgeDays: 28,
                Compress:   true,
            },
        },
        Channel: ChannelConfig{Codec: "json"},
        Worker:  WorkerConfig{TickIntervalMS: 5000, QuitKeyword: "quit"},
        UI:      UIConfig{PollIntervalMS: 100},
    }
}

// Load reads configuration from the provided path (if non-empty), otherwise
// it relies on defaults plus environment overrides. Environment variables
// use the prefix UIPIPE and `.`/`-` are replaced with `_`.
// Example: UIPIPE_LOG_LEVEL=debug
func Load(path string) (*Config, error) {
    cfg := Default()

    v := viper.New()
    v.SetConfigType("yaml")
    v.SetEnvPrefix("UIPIPE")
    v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
    v.AutomaticEnv()

    // seed defaults for viper so env-only configs work
    v.SetDefault("app_name", cfg.AppName)
    v.SetDefault("log.level", cfg.Log.Level)
    v.SetDefault("log.format", cfg.Log.Format)
    v.SetDefault("log.outputs", cfg.Log.Outputs)
    v.SetDefault("log.development", cfg.Log.Development)
    v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
    v.SetDefault("log.rotation.filename", cfg.Log.Rotation.Filename)
    v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
    v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
    v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
    v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
    v.SetDefault("channel.codec", cfg.Channel.Codec)
    v.SetDefault("worker.tick_interval_ms", cfg.Worker.TickIntervalMS)
    v.SetDefault("worker.quit_keyword", cfg.Worker.QuitKeyword)
    v.SetDefault("ui.poll_interval_ms", cfg.UI.PollIntervalMS)

    if path != "" {
        v.SetConfigFile(path)
        if err := v.ReadInConfig(); err != nil {
            return nil, fmt.Errorf("read config %s: %w", path, err)
        }
    }

    if err := v.Unmarshal(cfg); err != nil {
        return nil, fmt.Errorf("unmarshal config: %w", err)
    }
    if err := cfg.validate(); err != nil {
        return nil, err
    }
    return cfg, nil
}

func (c *Config) validate() error {
    switch c.Channel.Codec {
    case "", "json", "cbor":
    default:
        return fmt.Errorf("channel.codec must be json or cbor, got %q", c.Channel.Codec)
    }
    if c.Worker.TickIntervalMS <= 0 {
        return errors.New("worker.tick_interval_ms must be positive")
    }
    if c.UI.PollIntervalMS <= 0 {
        return errors.New("ui.poll_interval_ms must be positive")
    }
    if strings.TrimSpace(c.Worker.QuitKeyword) == "" {
        return errors.New("worker.quit_keyword must not be empty")
    }
    return nil
}

// WriteExample writes a commented example config to path, refusing to
// overwrite an existing file.
func WriteExample(path string) error {
    if _, err := os.Stat(path); err == nil {
        return fmt.Errorf("%s already exists", path)
    }
    return os.WriteFile(path, []byte(exampleYAML), 0o644)
}

const exampleYAML = `app_name: uipipe
log:
  level: info
  format: console
  outputs: [stderr]
  development: true
channel:
  codec: json
worker:
  tick_interval_ms: 5000
  quit_keyword: quit
ui:
  poll_interval_ms: 100
`
