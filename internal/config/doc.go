// Package config provides configuration loading and validation for the lldap
// server.
//
// # Overview
//
// Configuration is read with viper from an optional YAML file and LLDAP_*
// environment variables, on top of the values returned by DefaultConfig:
//
//	server:
//	  address: ":3890"
//	  maxConnections: 1024
//	  readTimeout: 0s
//	  writeTimeout: 30s
//	backend:
//	  type: memory            # memory or redis
//	  usersFile: /etc/lldap/users.toml
//	  redis:
//	    address: localhost:6379
//	    keyPrefix: "lldap:"
//	directory:
//	  baseDN: dc=example,dc=com
//	  rootDN: cn=admin,dc=example,dc=com
//	  rootPassword: "{SSHA256}..."
//	  entriesFile: /etc/lldap/entries.toml
//	logging:
//	  level: info
//	  format: json
//	  output: stdout
//
// # Loading Configuration
//
//	cfg, err := config.Load("/etc/lldap/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// An empty path falls back to LLDAP_CONFIG and then to defaults plus
// environment only.
//
// # Environment Variables
//
// Every key can be overridden by upper-casing it, replacing '.' with '_' and
// adding the LLDAP_ prefix:
//
//	LLDAP_SERVER_ADDRESS=:10389
//	LLDAP_BACKEND_TYPE=redis
//	LLDAP_BACKEND_REDIS_ADDRESS=redis:6379
//	LLDAP_LOGGING_LEVEL=debug
//
// # Validation
//
// Load validates the result. Validate returns an error wrapping ErrInvalid
// that lists every ValidationError found.
package config
