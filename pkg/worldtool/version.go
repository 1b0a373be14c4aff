// Package worldtool holds module-level metadata shared by the CLI and
// the engine packages.
package worldtool

// Version is the current worldtool release.
var Version = "0.3.0"
