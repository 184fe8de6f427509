// Package apierror defines the closed error taxonomy of the Tinify client.
//
// Every failure surfaced by the client is an *Error carrying one Kind:
//   - Account: credentials rejected or rate limited (HTTP 401, 429)
//   - Client: the request was refused (any other 4xx)
//   - Server: the service failed (5xx), including after retries
//   - Connection: no response was obtained at all
//
// Classification is a pure function of the HTTP status:
//
//	err := apierror.Classify(400, "Source not found", "Cannot parse URL")
//	err.Error() // "Cannot parse URL (HTTP 400/Source not found)"
//
// Callers test kinds with errors.Is:
//
//	if errors.Is(err, apierror.ErrAccount) {
//		// rotate the key
//	}
package apierror
