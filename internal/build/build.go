// Package build holds build-time information about the ccrules binary.
package build

// Version is the application version reported by the version command.
// It defaults to "dev" and can be overwritten by linker flags.
var Version = "dev"
