// Package main is the tinify command: it compresses local images with the
// Tinify API.
//
// Configuration:
//   - Environment variables (TINIFY_KEY, TINIFY_PROXY, LOG_LEVEL, ...)
//   - An optional YAML file given with -config
//   - CLI flags (override both)
//
// Usage:
//
//	# Compress in place next to the originals (photo.png -> photo.min.png)
//	tinify -key YOUR_KEY photo.png banner.jpg
//
//	# Resize and convert into another directory, four uploads at a time
//	tinify -out dist -width 800 -method scale -convert image/webp -concurrency 4 *.png
//
//	# Check the key only
//	tinify -validate
package main
