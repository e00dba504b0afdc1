// Package config carries build-time metadata, injected via -ldflags.
package config

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)
