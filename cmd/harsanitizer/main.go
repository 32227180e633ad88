// Package main provides the entry point for the harsanitizer CLI.
//
// harsanitizer removes credentials and other secrets from HTTP Archive
// (HAR) captures so they can be shared for troubleshooting.
//
// Usage:
//
//	harsanitizer sanitize capture.har
//	harsanitizer sanitize --all-cookies --output-dir clean/ a.har b.har
//	cat capture.har | harsanitizer sanitize - > clean.har
//
// See --help for all available options.
package main

// main is the entry point for harsanitizer.
func main() {
	Execute()
}
