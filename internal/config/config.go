// Package config provides configuration loading and validation for the lldap
// server.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding file values,
// e.g. LLDAP_SERVER_ADDRESS.
const EnvPrefix = "LLDAP"

// Backend types.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds the complete server configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Logging   LogConfig       `mapstructure:"logging"`
}

// ServerConfig holds listener and connection settings.
type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	MaxConnections int           `mapstructure:"maxConnections"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
}

// BackendConfig selects and configures the credential store.
type BackendConfig struct {
	Type      string      `mapstructure:"type"`
	UsersFile string      `mapstructure:"usersFile"`
	Redis     RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"keyPrefix"`
}

// DirectoryConfig holds directory-related configuration.
type DirectoryConfig struct {
	BaseDN       string `mapstructure:"baseDN"`
	RootDN       string `mapstructure:"rootDN"`
	RootPassword string `mapstructure:"rootPassword"`
	EntriesFile  string `mapstructure:"entriesFile"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSizeMB  int    `mapstructure:"maxSizeMB"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAgeDays"`
}

// Load reads configuration from the YAML file at path (if non-empty) and
// applies LLDAP_* environment overrides on top of the defaults. Keys map to
// variables by upper-casing and replacing '.' with '_':
// LLDAP_BACKEND_REDIS_ADDRESS=localhost:6379. The result is validated.
func Load(path string) (*Config, error) {
	v := newViper()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())
	return v
}
