package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/snip/internal/config"
	"github.com/standardbeagle/snip/internal/debug"
	"github.com/standardbeagle/snip/internal/extractor"
	"github.com/standardbeagle/snip/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")

	load := config.Load
	if c.IsSet("config") {
		load = config.LoadRequired
	}
	cfg, err := load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if c.IsSet("format") {
		cfg.Extract.Format = strings.ToLower(c.String("format"))
	}
	if c.Bool("suggest") {
		cfg.Suggest.Enabled = true
	}
	if c.IsSet("workers") {
		cfg.Performance.MaxWorkers = c.Int("workers")
	}
	if c.IsSet("debounce") {
		cfg.Watch.DebounceMs = c.Int("debounce")
	}

	// Flags bypass the file validation, so check again
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newService(c *cli.Context) (*extractor.Service, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, err
	}
	return extractor.New(cfg)
}

func lookupFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "filepath",
			Aliases: []string{"f"},
			Usage:   "Source file to search",
		},
		&cli.StringFlag{
			Name:    "target",
			Aliases: []string{"t"},
			Usage:   "Method name to extract (exact, case-sensitive)",
		},
		&cli.StringFlag{
			Name:    "language",
			Aliases: []string{"l"},
			Usage:   "Grammar to use instead of the file extension (java, csharp, go, ...)",
		},
	}
}

func extractFlags() []cli.Flag {
	return append(lookupFlags(),
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output format: text, range or json (overrides config)",
		},
		&cli.BoolFlag{
			Name:    "suggest",
			Aliases: []string{"s"},
			Usage:   "Suggest similar method names when the target is not found",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Files extracted in parallel (0 = CPU count - 1)",
		},
	)
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "snip",
		Usage:                  "Extract a method declaration's exact source text by name",
		UsageText:              "snip -f FILE -t NAME\n   snip [global options] command [command options] [arguments...]",
		Version:                version.Version,
		HideVersion:            true, // -v is --verbose; use the version command
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   config.ProjectFileKDL,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Show debug information",
			},
		}, extractFlags()...),
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				debug.SetVerbose(true)
				debug.SetDebugOutput(c.App.ErrWriter)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Aliases:   []string{"x"},
				Usage:     "Print the first method declaration named TARGET",
				ArgsUsage: "[more files...]",
				Flags:     extractFlags(),
				Action:    extractCommand,
			},
			{
				Name:   "watch",
				Usage:  "Re-extract the declaration whenever the file changes",
				Flags:  append(lookupFlags(), &cli.IntFlag{Name: "debounce", Usage: "Debounce window in milliseconds (overrides config)"}, &cli.StringFlag{Name: "format", Usage: "Output format: text, range or json"}),
				Action: watchCommand,
			},
			{
				Name:   "languages",
				Usage:  "List supported languages and the node kinds they match",
				Action: languagesCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve extraction as MCP tools over stdio",
				Action: mcpCommand,
			},
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(c *cli.Context) error {
					info := version.Get()
					fmt.Fprintf(c.App.Writer, "snip %s\n", info)
					fmt.Fprintf(c.App.Writer, "%s %s\n", info.GoVersion, info.Platform)
					return nil
				},
			},
		},
		Action: func(c *cli.Context) error {
			// snip -f FILE -t NAME without a command
			if c.IsSet("filepath") || c.IsSet("target") {
				return extractCommand(c)
			}
			return cli.ShowAppHelp(c)
		},
	}
}

func languagesCommand(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LANGUAGE\tEXTENSIONS\tNAME KIND\tDECLARATION KIND\tPATTERNS")
	for _, g := range svc.Registry().Grammars() {
		patterns := svc.Registry().Patterns(g.Language)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			g.Language,
			strings.Join(g.Extensions, " "),
			g.NameKind,
			g.DeclarationKind,
			strings.Join(patterns, " "))
	}
	return w.Flush()
}

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(os.Args[0]), err)
		os.Exit(1)
	}
}
