package coremain

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/sanchis/localit/mlog"
	"github.com/sanchis/localit/pkg/keystore"
)

type Config struct {
	Log   mlog.LogConfig `yaml:"log"`
	Store StoreConfig    `yaml:"store"`
}

type StoreConfig struct {
	// Domain is the namespace prefix applied to every key.
	Domain string `yaml:"domain"`

	// Type selects the backend, "primary" (default) or "secondary".
	Type keystore.BackendType `yaml:"type"`

	Primary PrimaryConfig `yaml:"primary"`
}

type PrimaryConfig struct {
	// Path of the database file. When empty the primary backend is an
	// in-memory store that does not outlive the command.
	Path     string `yaml:"path"`
	Bucket   string `yaml:"bucket"`
	Compress bool   `yaml:"compress"`
}

// loadConfig load a config from a file. If filePath is empty, it will
// automatically search and load a file which name start with "config".
func loadConfig(filePath string) (*Config, string, error) {
	v := viper.New()

	if len(filePath) > 0 {
		v.SetConfigFile(filePath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	decoderOpt := func(cfg *mapstructure.DecoderConfig) {
		cfg.ErrorUnused = true
		cfg.TagName = "yaml"
		cfg.WeaklyTypedInput = true
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg, decoderOpt); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, v.ConfigFileUsed(), nil
}
