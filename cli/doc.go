// Package cli contains the command line interface for holtzman.
//
// # Usage
//
//	holtzman [flags] TEMPLATE [-d DATA]... [--set KEY=VALUE]... [--watch]
//	holtzman check TEMPLATE...
//	holtzman fmt {native|json|yaml|ast} TEMPLATE
//	holtzman repl [-d DATA]...
//	holtzman init [--force]
//
// Rendering is the default command. A TEMPLATE of "-" is read from standard
// input. Other template names that do not exist as given are looked up in
// each --path directory, then in the directories listed in HOLTZMAN_PATH.
// With --watch, the template is rendered again each time it or one of its
// data files changes.
//
// # Configuration
//
// Flag defaults are read from config.yaml (and config.json) in the user
// configuration directory, e.g. ~/.config/holtzman/config.yaml:
//
//	log:
//	  level: debug
//	  pretty: false
//	path:
//	  - ~/templates
//
// Keys may also be written flat ("log-level") or with underscores
// ("log_level"). Flags given on the command line take precedence. The init
// command writes the current flag values to this file.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (text, json)
//   - --log-time-layout: timestamp layout, or "none"
//   - --log-caller: include caller information
//   - --log-pretty: colorize output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof
//
// It adds --pprof-mode and --pprof-dir. Profiles are written to the cache
// directory by default.
package cli
