// Package logging provides structured logging for the lldap server.
//
// # Overview
//
// Logger is a small key/value interface backed by go.uber.org/zap. It
// supports:
//
//   - Multiple log levels (debug, info, warn, error)
//   - Text and JSON output formats
//   - Rotated file output through lumberjack
//   - Request ID tracking, one ID per client connection
//
// # Creating a Logger
//
//	logger := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "/var/log/lldap/lldap.log",
//	})
//	defer logger.Sync()
//
// For testing, use a no-op logger, or wrap a zaptest observer core with
// NewWithCore to assert on emitted entries:
//
//	core, logs := observer.New(zap.DebugLevel)
//	logger := logging.NewWithCore(core)
//
// # Structured Logging
//
//	logger.Info("bind successful",
//	    "dn", "uid=alice,ou=users,dc=example,dc=com",
//	    "duration_ms", 2,
//	)
//
// Connection-scoped loggers carry the request ID on every line:
//
//	connLogger := logger.WithRequestID(logging.GenerateRequestID())
package logging
