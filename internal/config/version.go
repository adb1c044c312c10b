package config

// Version is the chronicle binary version.
// Set at build time via: -ldflags "-X github.com/chroniclehq/chronicle/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
