package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        ":3890",
			MaxConnections: 1024,
			ReadTimeout:    0,
			WriteTimeout:   30 * time.Second,
		},
		Backend: BackendConfig{
			Type:      BackendMemory,
			UsersFile: "",
			Redis: RedisConfig{
				Address:   "",
				Password:  "",
				DB:        0,
				KeyPrefix: "lldap:",
			},
		},
		Directory: DirectoryConfig{
			BaseDN:       "dc=example,dc=com",
			RootDN:       "",
			RootPassword: "",
			EntriesFile:  "",
		},
		Logging: LogConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stdout",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// setDefaults seeds v with every key so that environment-only
// configurations are picked up by AutomaticEnv.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.address", cfg.Server.Address)
	v.SetDefault("server.maxConnections", cfg.Server.MaxConnections)
	v.SetDefault("server.readTimeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.writeTimeout", cfg.Server.WriteTimeout)

	v.SetDefault("backend.type", cfg.Backend.Type)
	v.SetDefault("backend.usersFile", cfg.Backend.UsersFile)
	v.SetDefault("backend.redis.address", cfg.Backend.Redis.Address)
	v.SetDefault("backend.redis.password", cfg.Backend.Redis.Password)
	v.SetDefault("backend.redis.db", cfg.Backend.Redis.DB)
	v.SetDefault("backend.redis.keyPrefix", cfg.Backend.Redis.KeyPrefix)

	v.SetDefault("directory.baseDN", cfg.Directory.BaseDN)
	v.SetDefault("directory.rootDN", cfg.Directory.RootDN)
	v.SetDefault("directory.rootPassword", cfg.Directory.RootPassword)
	v.SetDefault("directory.entriesFile", cfg.Directory.EntriesFile)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)
	v.SetDefault("logging.maxSizeMB", cfg.Logging.MaxSizeMB)
	v.SetDefault("logging.maxBackups", cfg.Logging.MaxBackups)
	v.SetDefault("logging.maxAgeDays", cfg.Logging.MaxAgeDays)
}
