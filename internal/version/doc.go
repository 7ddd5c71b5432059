// Package version exposes build metadata for the alarm clock binaries.
//
// Version, Commit and BuildTime are injected through -ldflags at build time.
// UserAgent renders them for outbound HTTP requests.
package version
