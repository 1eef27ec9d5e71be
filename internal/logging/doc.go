// Package logging provides structured logging for the gopico library and CLI.
//
// This package wraps zap logger with convenience functions for the logging
// patterns used throughout the module. Logging is silent by default so that
// library users and CLI output are not polluted; it is enabled through the
// GOPICO_LOG_LEVEL environment variable or an explicit Initialize call.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (frame hex dumps, dropped datagrams)
//   - Info: Normal operations (connections, discovery results)
//   - Warn: Non-fatal issues (dropped messages, retries)
//   - Error: Fatal issues (connect failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Device discovered",
//	    zap.String("addr", "192.168.1.100"),
//	    zap.Uint32("serial", 2226578067),
//	)
//
// # Frame Logging
//
// The transports log every wire frame at debug level with hex and ascii
// dumps:
//
//	logging.Frame("TCP request", wire)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Logs are written to stderr in console format so they never mix with the
// CLI's data output on stdout.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
