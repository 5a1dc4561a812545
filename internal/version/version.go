package version

// Name identifies the service in logs and telemetry.
const Name = "taskdeck-api"

// Version is stamped at build time via -ldflags.
var Version = "dev"
