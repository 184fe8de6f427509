// Package client is the HTTP transport for the Tinify API.
//
// A Client authenticates with HTTP basic auth (user "api", password the
// API key), identifies itself through the User-Agent header and executes
// one logical call per Execute:
//
//	c, err := client.New(client.Options{Key: key})
//	if err != nil {
//		return err
//	}
//	resp, err := c.Execute(ctx, http.MethodPost, "/shrink", data, nil)
//
// Retry policy:
//   - One extra attempt per call, shared by every retryable cause
//   - Retryable: timeouts, other connection faults, 5xx responses
//   - Never retried: 4xx responses, encoding failures, cancelled contexts
//
// Every failure is an *apierror.Error. Successful responses update the
// client's CompressionCounter from the Compression-Count header.
package client
