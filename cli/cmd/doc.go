// Package cmd implements the holtzman subcommands.
//
// Each command is a kong command struct whose Run method receives the
// context built by package cli. Values the commands share, such as the
// template search path and the standard streams, are carried in that
// context.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)
