// Package tinify is a client for the Tinify image optimization API.
//
// Upload an image, chain the commands to apply, then fetch or store the
// result:
//
//	tinify.SetKey("YOUR_API_KEY")
//
//	source, err := tinify.FromFile(ctx, "unoptimized.png")
//	if err != nil {
//		return err
//	}
//	err = source.
//		Resize(tinify.ResizeOptions{Method: tinify.MethodFit, Width: 150, Height: 100}).
//		Preserve(tinify.PreserveCopyright).
//		ToFile(ctx, "thumbnail.png")
//
// Uploads (FromBuffer, FromFile, FromURL) and terminal calls (Result,
// Store, ToBuffer, ToFile) each perform one HTTP exchange, retried once on
// timeouts, connection faults and server errors. Chaining calls (Resize,
// Convert, Transform, Preserve, With) never touch the network and return a
// new Source.
//
// The package functions use a process-wide Shared. Applications that need
// several keys, or explicit ownership of configuration, create their own
// with New. Errors are *apierror.Error values; see package apierror.
package tinify
