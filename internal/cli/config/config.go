package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Output formats accepted by output.format
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatLSP  = "lsp"
)

var formats = []string{FormatText, FormatJSON, FormatLSP}

// Config represents the protopool CLI configuration
type Config struct {
	WellKnownTypes bool         `mapstructure:"well_known_types"`
	Output         OutputConfig `mapstructure:"output"`
	Log            LogConfig    `mapstructure:"log"`
}

// OutputConfig controls how results and diagnostics are printed
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
	// Root is the directory file names are resolved against when
	// diagnostics are exported as editor document URIs
	Root string `mapstructure:"root"`
}

// LogConfig controls the zap logger handed to pool construction
type LogConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

// Options selects where configuration is read from
type Options struct {
	// Dir is searched for protopool.yml or protopool.yaml
	Dir string
	// File overrides the search with an explicit path
	File string
	// Flags are bound over file and environment values when changed
	Flags *pflag.FlagSet
}

// flagKeys maps CLI flag names to configuration keys
var flagKeys = map[string]string{
	"well-known-types": "well_known_types",
	"format":           "output.format",
	"color":            "output.color",
	"root":             "output.root",
	"verbose":          "log.verbose",
}

// Load reads protopool.yml, PROTOPOOL_* environment variables and flags, in
// increasing order of precedence
func Load(opts Options) (*Config, error) {
	v := viper.New()

	v.SetDefault("well_known_types", true)
	v.SetDefault("output.format", FormatText)
	v.SetDefault("output.color", true)
	v.SetDefault("output.root", ".")
	v.SetDefault("log.verbose", false)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		v.SetConfigName("protopool")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix("PROTOPOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	if !slices.Contains(formats, cfg.Output.Format) {
		return fmt.Errorf("output.format must be one of %s, got: %q",
			strings.Join(formats, ", "), cfg.Output.Format)
	}
	if cfg.Output.Root == "" {
		return fmt.Errorf("output.root must not be empty")
	}
	return nil
}
