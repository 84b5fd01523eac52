package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ACTTEL_"

// Path returns the config file to read: ACTTEL_CONFIG when set, otherwise
// the default location.
func Path() string {
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p
	}
	return DefaultPath()
}

// Load reads the config from Path(). A missing default file is not an
// error; a missing ACTTEL_CONFIG file is.
func Load() (*Config, error) {
	path := Path()
	if os.Getenv(EnvPrefix+"CONFIG") == "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	return LoadFrom(path)
}

// LoadFrom layers defaults, the YAML file at path (skipped when empty) and
// environment variables, then validates the result.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// ACTTEL_QUEUE_SIZE -> queue_size, ACTTEL_HEATMAP_SIGMA -> heatmap.sigma
	envProvider := env.Provider(EnvPrefix, ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if s == "config" {
		// the file path itself, not a setting
		return ""
	}
	if rest, ok := strings.CutPrefix(s, "heatmap_"); ok {
		return "heatmap." + rest
	}
	return s
}
