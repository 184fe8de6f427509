// Package config provides 12-factor configuration for the Tinify client and CLI.
//
// Configuration is loaded from environment variables with defaults, or from
// a YAML file whose values are then overridden by any variable that is set.
//
// Configuration Sections:
//   - API: key, app identifier, proxy, endpoint, timeout, rate limit
//   - Retry: wait bounds between a failed attempt and its retry
//   - Breaker: failure threshold and cooldown of the circuit breaker
//   - Logging: log level and output format
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//	fmt.Printf("Using endpoint %s\n", cfg.API.Endpoint)
//
// Environment Variables:
//   - TINIFY_KEY, TINIFY_APP_IDENTIFIER, TINIFY_PROXY, TINIFY_ENDPOINT
//   - TINIFY_TIMEOUT, TINIFY_RATE_LIMIT
//   - TINIFY_RETRY_WAIT_MIN, TINIFY_RETRY_WAIT_MAX
//   - TINIFY_BREAKER_THRESHOLD, TINIFY_BREAKER_COOLDOWN
//   - LOG_LEVEL, LOG_DEV
package config
