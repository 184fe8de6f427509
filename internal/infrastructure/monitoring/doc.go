// Package monitoring provides Prometheus metrics for the service client.
//
// Collected:
//   - tinify_requests_total{method,status}: every HTTP attempt
//   - tinify_request_duration_seconds{method}: logical calls, retries included
//   - tinify_retries_total{reason}: timeout, connection or server
//   - tinify_errors_total{kind}: calls that failed
//   - tinify_compression_count: last Compression-Count header
//
// A nil *Metrics is valid and records nothing.
package monitoring
