package version

// Version is overridden at build time with
// -ldflags "-X github.com/L4er70/ContactBook/version.Version=..."
var Version = "0.1.0"
