// Package logging builds zap loggers for the CLI and for callers that want
// the client's request logs.
//
// The library itself never writes logs unless a *zap.Logger is supplied;
// OrNop turns a nil logger into a no-op one.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output with debug level
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "debug"})
//	if err != nil {
//		return err
//	}
//	logger.Info("compressed", zap.String("file", path))
package logging
