package buildinfo

// Set via -ldflags "-X lexify/internal/buildinfo.Version=..." at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
