// Package config loads the compositor configuration. Settings come
// from a TOML file with environment overrides; the zero file is a
// working configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config is the full compositor configuration.
type Config struct {
	// Socket names the Wayland socket to listen on. An empty value
	// picks the first free wayland-N name in XDG_RUNTIME_DIR.
	Socket string `mapstructure:"socket"`

	Backend  string `mapstructure:"backend"`
	Renderer string `mapstructure:"renderer"`

	// Layout selects the window arrangement policy, "floating" or
	// "tiling".
	Layout string `mapstructure:"layout"`

	LogLevel string `mapstructure:"log-level"`

	// ReadyFD is a file descriptor the compositor writes the socket
	// name plus a newline to once it accepts clients. Negative
	// disables it.
	ReadyFD int `mapstructure:"ready-fd"`

	// ReadyFile, when set, is created once the compositor accepts
	// clients.
	ReadyFile string `mapstructure:"ready-file"`

	Input   Input    `mapstructure:"input"`
	Cursor  Cursor   `mapstructure:"cursor"`
	Outputs []Output `mapstructure:"output"`
}

// Input configures the seat.
type Input struct {
	// RepeatRate is key repeats per second, RepeatDelay the
	// milliseconds before the first repeat.
	RepeatRate  int32 `mapstructure:"repeat-rate"`
	RepeatDelay int32 `mapstructure:"repeat-delay"`

	// Keymap is a compiled xkb keymap file handed verbatim to
	// clients. Empty announces no keymap.
	Keymap string `mapstructure:"keymap"`

	// Evdev turns on reading real input devices. Devices optionally
	// names the device nodes instead of scanning /dev/input.
	Evdev   bool     `mapstructure:"evdev"`
	Devices []string `mapstructure:"devices"`
}

// Cursor configures the compositor's own pointer image.
type Cursor struct {
	Theme string `mapstructure:"theme"`
	Size  int    `mapstructure:"size"`
}

// Output configures one synthesized output.
type Output struct {
	Name    string `mapstructure:"name"`
	Width   int    `mapstructure:"width"`
	Height  int    `mapstructure:"height"`
	Refresh int32  `mapstructure:"refresh"` // mHz
	Scale   int32  `mapstructure:"scale"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Backend:  "headless",
		Renderer: "software",
		Layout:   "floating",
		LogLevel: "info",
		ReadyFD:  -1,
		Input: Input{
			RepeatRate:  25,
			RepeatDelay: 400,
		},
	}
}

// Load reads the configuration from path, or from the usual lookup
// places when path is empty: $XDG_CONFIG_HOME/novawc/novawc.toml and
// the system config dirs. A missing file yields the defaults;
// NOVAWC_* environment variables override individual keys.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("novawc")
		v.AddConfigPath(xdg.ConfigHome + "/novawc")
		for _, dir := range xdg.ConfigDirs {
			v.AddConfigPath(dir + "/novawc")
		}
	}

	v.SetEnvPrefix("novawc")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("backend", def.Backend)
	v.SetDefault("renderer", def.Renderer)
	v.SetDefault("layout", def.Layout)
	v.SetDefault("log-level", def.LogLevel)
	v.SetDefault("ready-fd", def.ReadyFD)
	v.SetDefault("input.repeat-rate", def.Input.RepeatRate)
	v.SetDefault("input.repeat-delay", def.Input.RepeatDelay)

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have a fixed domain. Load calls it;
// callers that mutate the config afterwards should call it again.
func (cfg *Config) Validate() error {
	switch cfg.Layout {
	case "", "floating", "tiling":
	default:
		return fmt.Errorf("unknown layout %q", cfg.Layout)
	}
	for _, out := range cfg.Outputs {
		if out.Width <= 0 || out.Height <= 0 {
			return fmt.Errorf("output %q: size %vx%v is not positive", out.Name, out.Width, out.Height)
		}
		if out.Scale < 0 {
			return fmt.Errorf("output %q: negative scale", out.Name)
		}
	}
	if cfg.Input.RepeatRate < 0 || cfg.Input.RepeatDelay < 0 {
		return errors.New("negative key repeat settings")
	}
	return nil
}
