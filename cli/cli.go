package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/holtzman/cli/cmd"
	"github.com/ardnew/holtzman/pkg"
)

// CLI is the top-level command-line interface.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Path    []string         `help:"Template search directory, searched before ${pathEnv} (repeatable)." name:"path" placeholder:"DIR" short:"I"`
	Version kong.VersionFlag `help:"Print version and exit."                                            short:"V"`

	Render cmd.Render `cmd:"" default:"withargs" help:"Render a template."`
	Check  cmd.Check  `cmd:""                    help:"Compile templates and report errors."`
	Fmt    cmd.Fmt    `cmd:""                    help:"Format a template or dump its syntax tree."`
	Repl   cmd.Repl   `cmd:""                    help:"Render templates interactively."`
	Init   cmd.Init   `cmd:""                    help:"Write configuration file with current flag values."`
}

// Run parses args and executes the selected command.
// The exit function is called by kong when it terminates early, e.g. after
// printing help.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	configFile := configPath(baseConfig + ".yaml")

	vars := kong.Vars{
		"version":            pkg.Version(),
		"pathEnv":            pkg.EnvVar("path"),
		cmd.ConfigIdentifier: configFile,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Configure the logger before kong reports anything.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolve(ctx), configFile),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSearchPath(ctx, cli.Path...)

	cli.Log.start(ctx)

	// No-op unless built with tag pprof and a mode is given.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
