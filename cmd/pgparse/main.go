package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	urfavecli "github.com/urfave/cli/v3"
	"zombiezen.com/go/bass/sigterm"

	"github.com/cybertec-postgresql/pgparse/internal/cli"
	"github.com/cybertec-postgresql/pgparse/internal/logger"
)

const version = "1.0.0"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), sigterm.Signals()...)
	app := &urfavecli.Command{
		Name:    "pgparse",
		Usage:   "PostgreSQL SQL scanner and parser",
		Version: version,
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:  "config",
				Usage: "Configuration file (JSON with comments)",
				Value: cli.DefaultConfigFile,
			},
			&urfavecli.BoolFlag{
				Name:    "standard-conforming-strings",
				Usage:   "Treat backslashes in ordinary string literals literally",
				Value:   true,
				Sources: urfavecli.EnvVars("PGPARSE_STANDARD_CONFORMING_STRINGS"),
			},
			&urfavecli.StringFlag{
				Name:    "backslash-quote",
				Usage:   "Whether \\' is accepted in string literals (on, off or safe_encoding)",
				Sources: urfavecli.EnvVars("PGPARSE_BACKSLASH_QUOTE"),
			},
			&urfavecli.StringFlag{
				Name:    "encoding",
				Usage:   "Encoding of the SQL files (default UTF-8)",
				Sources: urfavecli.EnvVars("PGPARSE_ENCODING"),
			},
			&urfavecli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable debug output",
				Sources: urfavecli.EnvVars("PGPARSE_VERBOSE"),
			},
			&urfavecli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only print warnings and errors",
			},
		},
		Commands: []*urfavecli.Command{
			{
				Name:      "check",
				Usage:     "Parse SQL files and report syntax errors",
				ArgsUsage: "[paths...]",
				Action:    checkCommand,
				Flags:     append(checkFlags(), outputFlags()...),
			},
			{
				Name:      "verify",
				Usage:     "Check SQL files and compare every verdict with a PostgreSQL server",
				ArgsUsage: "[paths...]",
				Action:    verifyCommand,
				Flags: append(append(checkFlags(), outputFlags()...),
					&urfavecli.StringFlag{
						Name:    "connection",
						Aliases: []string{"c"},
						Usage:   "PostgreSQL connection string (URI or key=value format). Supports standard PG* environment variables.",
						Sources: urfavecli.EnvVars("PGPARSE_CONNECTION"),
					},
					&urfavecli.DurationFlag{
						Name:  "timeout",
						Usage: "Per-statement timeout",
					},
					&urfavecli.BoolFlag{
						Name:  "no-scratch-database",
						Usage: "Verify in the configured database instead of a temporary one",
					},
				),
			},
			{
				Name:   "report",
				Usage:  "Render stored results",
				Action: reportCommand,
				Flags:  outputFlags(),
			},
			{
				Name:      "tokens",
				Usage:     "Print the tokens of a SQL file",
				ArgsUsage: "<file|->",
				Action:    tokensCommand,
			},
			{
				Name:      "split",
				Usage:     "Print the statements of a SQL file",
				ArgsUsage: "<file|->",
				Action:    splitCommand,
				Flags: []urfavecli.Flag{
					&urfavecli.StringFlag{
						Name:  "type",
						Usage: "Only print statements of this type (transaction, select, utility or other)",
					},
				},
			},
		},
	}

	err := app.Run(ctx, os.Args)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func checkFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringSliceFlag{
			Name:    "pattern",
			Usage:   "File name pattern for directory walks (repeatable)",
			Sources: urfavecli.EnvVars("PGPARSE_PATTERNS"),
		},
		&urfavecli.IntFlag{
			Name:    "parallel",
			Usage:   "Maximum concurrent files (1 = sequential)",
			Sources: urfavecli.EnvVars("PGPARSE_PARALLEL"),
		},
	}
}

func outputFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:  "results-file",
			Usage: "Results data path",
		},
		&urfavecli.StringFlag{
			Name:    "format",
			Usage:   "Output format (text, json, yaml or html)",
			Sources: urfavecli.EnvVars("PGPARSE_FORMAT"),
		},
		&urfavecli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (use - for stdout)",
		},
		&urfavecli.StringFlag{
			Name:    "color",
			Usage:   "Colorize text output (auto, always or never)",
			Sources: urfavecli.EnvVars("PGPARSE_COLOR"),
		},
	}
}

// loadConfig merges defaults, the config file, environment and flags
func loadConfig(cmd *urfavecli.Command) (*cli.Config, error) {
	config := cli.NewConfig()
	if err := cli.LoadConfigFile(config, cmd.String("config"), cmd.IsSet("config")); err != nil {
		return nil, err
	}

	var scs *bool
	if cmd.IsSet("standard-conforming-strings") {
		v := cmd.Bool("standard-conforming-strings")
		scs = &v
	}

	cli.ApplyFlagsToConfig(config, cli.Overrides{
		StandardConformingStrings: scs,
		BackslashQuote:            cmd.String("backslash-quote"),
		Encoding:                  cmd.String("encoding"),
		Patterns:                  cmd.StringSlice("pattern"),
		Parallelism:               cmd.Int("parallel"),
		Timeout:                   cmd.Duration("timeout"),
		ConnectionString:          cmd.String("connection"),
		NoScratchDatabase:         cmd.Bool("no-scratch-database"),
		ResultsFile:               cmd.String("results-file"),
		Format:                    cmd.String("format"),
		OutputPath:                cmd.String("output"),
		Color:                     cmd.String("color"),
		Verbose:                   cmd.Bool("verbose"),
		Quiet:                     cmd.Bool("quiet"),
	})

	if err := cli.Validate(config); err != nil {
		return nil, err
	}

	logger.SetVerbose(config.Verbose)
	logger.SetQuiet(config.Quiet)
	return config, nil
}

// checkCommand handles the 'pgparse check' command
func checkCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	exitCode, err := cli.Check(ctx, config, cmd.Args().Slice())
	if err != nil {
		return err
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}

// verifyCommand handles the 'pgparse verify' command
func verifyCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	exitCode, err := cli.Verify(ctx, config, cmd.Args().Slice())
	if err != nil {
		return err
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}

// reportCommand handles the 'pgparse report' command
func reportCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return cli.Report(config)
}

// tokensCommand handles the 'pgparse tokens' command
func tokensCommand(ctx context.Context, cmd *urfavecli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return cli.Tokens(os.Stdout, config, cmd.Args().First())
}

// splitCommand handles the 'pgparse split' command
func splitCommand(ctx context.Context, cmd *urfavecli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return cli.Split(os.Stdout, config, cmd.Args().First(), cmd.String("type"))
}
