package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Default runtime archive shipped with the launcher. Overridable via config
// or the persisted settings record.
const (
	DefaultBepInExURL = "https://builds.bepinex.dev/projects/bepinex_be/738/BepInEx-Unity.IL2CPP-win-x86-6.0.0-be.738%2Baf0cba7.zip"
	DefaultBepInExVer = "6.0.0-be.738"
)

// Config holds application-level configuration. User-facing settings
// (game path, runtime URL override) live in the persisted store instead.
type Config struct {
	DataDir        string        `mapstructure:"data_dir"`
	RegistryURL    string        `mapstructure:"registry_url"`
	UserAgent      string        `mapstructure:"user_agent"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CacheRuntime   bool          `mapstructure:"cache_runtime"`
}

// StorePath returns the location of the persisted registry document.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "registry.json")
}

// ProfilesDir returns the directory that holds per-profile trees.
func (c *Config) ProfilesDir() string {
	return filepath.Join(c.DataDir, "profiles")
}

// CacheDir returns the directory for cached runtime archives.
func (c *Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}

// Load reads configuration from config.yaml in configDir and NOVA_* environment
// variables, applying defaults for anything unset.
func Load(configDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("nova")
	v.AutomaticEnv()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}

	v.SetDefault("data_dir", filepath.Join(home, ".local", "share", "nova"))
	v.SetDefault("registry_url", "https://registry.novamods.dev/api/v2")
	v.SetDefault("user_agent", "nova-mod-manager")
	v.SetDefault("connect_timeout", 30*time.Second)
	v.SetDefault("request_timeout", 5*time.Minute)
	v.SetDefault("cache_runtime", true)

	if err := v.ReadInConfig(); err != nil {
		// No config file is fine; defaults and env apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}
