// Package config loads snippet settings from a YAML file and SNIPPET_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/zoobzio/snippet"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "SNIPPET"

// Path names accepted in Config.Path.
const (
	PathMeasured = "measured"
	PathInert    = "inert"
)

var (
	// ErrUnknownFlag is returned for a flag name that is not recognised.
	ErrUnknownFlag = errors.New("config: unknown flag")
	// ErrUnknownPath is returned for an execution path that is not recognised.
	ErrUnknownPath = errors.New("config: unknown execution path")
)

// Config is the file and environment form of snippet.Settings.
type Config struct {
	Filter    string   `mapstructure:"filter"`
	Namespace string   `mapstructure:"namespace"`
	Path      string   `mapstructure:"path"`
	Flags     []string `mapstructure:"flags"`
	Debug     bool     `mapstructure:"debug"`
}

// Default returns the configuration matching snippet.NewSettings.
func Default() Config {
	return Config{
		Filter:    snippet.DefaultFilter,
		Namespace: snippet.DefaultNamespace,
		Path:      PathMeasured,
		Flags:     []string{"class", "method"},
	}
}

// Load reads the file at path, if any, and overlays SNIPPET_* variables,
// e.g. SNIPPET_FILTER or SNIPPET_FLAGS=line,thread.
func Load(path string) (Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("filter", def.Filter)
	v.SetDefault("namespace", def.Namespace)
	v.SetDefault("path", def.Path)
	v.SetDefault("flags", def.Flags)
	v.SetDefault("debug", def.Debug)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Flags = splitNames(cfg.Flags)
	cfg.Path = strings.ToLower(strings.TrimSpace(cfg.Path))
	return cfg, nil
}

// splitNames accepts both list values and comma separated strings.
func splitNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, name := range strings.Split(item, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, strings.ToLower(name))
			}
		}
	}
	return out
}

// ParseFlags converts flag names to a snippet.Flag set.
func ParseFlags(names []string) (snippet.Flag, error) {
	flags := snippet.FlagNone
	for _, name := range splitNames(names) {
		switch name {
		case "class":
			flags |= snippet.FlagClass
		case "method":
			flags |= snippet.FlagMethod
		case "line":
			flags |= snippet.FlagLine
		case "thread":
			flags |= snippet.FlagThread
		case "none":
		default:
			return snippet.FlagNone, fmt.Errorf("%w: %q", ErrUnknownFlag, name)
		}
	}
	return flags, nil
}

// Validate checks the flag names and the execution path.
func (c Config) Validate() error {
	if _, err := ParseFlags(c.Flags); err != nil {
		return err
	}
	switch c.Path {
	case "", PathMeasured, PathInert:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPath, c.Path)
	}
}

// Apply copies the configuration into settings. Empty strings leave the
// current values alone.
func (c Config) Apply(settings *snippet.Settings) error {
	if err := c.Validate(); err != nil {
		return err
	}
	flags, _ := ParseFlags(c.Flags)

	if c.Filter != "" {
		settings.SetFilter(c.Filter)
	}
	if c.Namespace != "" {
		settings.SetNamespace(c.Namespace)
	}
	settings.ClearFlags()
	settings.AddFlags(flags)
	settings.SetDebug(c.Debug)
	return nil
}

// NewPath applies the configuration to settings and builds the execution
// path it names.
func (c Config) NewPath(settings *snippet.Settings, sink snippet.Sink) (snippet.ExecutionPath, error) {
	if settings == nil {
		settings = snippet.DefaultSettings()
	}
	if err := c.Apply(settings); err != nil {
		return nil, err
	}
	if c.Path == PathInert {
		return snippet.InertPath{}, nil
	}
	return snippet.NewMeasuredPath(settings, sink), nil
}
