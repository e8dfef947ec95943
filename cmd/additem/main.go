package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/4x4trailrunners/riggs-feed/internal/di"
	"github.com/4x4trailrunners/riggs-feed/internal/modules/feed/domain"
	feedService "github.com/4x4trailrunners/riggs-feed/internal/modules/feed/service"
	"github.com/4x4trailrunners/riggs-feed/internal/shared/config"
	apperrors "github.com/4x4trailrunners/riggs-feed/internal/shared/errors"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"github.com/urfave/cli/v2"
)

const usage = `Usage: additem "<title>" "<link>" "<description>" [guid]`

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr, config.DefaultFeedPath))
}

func run(args []string, stdout, stderr io.Writer, feedPath func() (string, error)) int {
	app := newApp(stdout, stderr, feedPath)
	if err := app.Run(positionalArgs(args, append([]cli.Flag{cli.HelpFlag}, app.Flags...))); err != nil {
		if errors.Is(err, apperrors.ErrUsage) {
			fmt.Fprintln(stderr, usage)
			return 1
		}
		slog.New(slog.NewTextHandler(stderr, nil)).Error("Failed to update feed", "error", err)
		return 1
	}
	return 0
}

func newApp(stdout, stderr io.Writer, feedPath func() (string, error)) *cli.App {
	return &cli.App{
		Name:      "additem",
		Usage:     "Add an item to the Riggs RSS feed",
		UsageText: `additem [--config FILE] [--pub-date DATE] [--] "<title>" "<link>" "<description>" [guid]`,
		Description: `Adds one item to feed.xml in the directory above the executable,
creating the feed if it does not exist yet. Items are kept newest first,
an item whose guid is already present is skipped, and the feed is trimmed
to max_items entries.

The guid defaults to the link. Arguments after the first one that is not
a known flag are taken literally, so a title may start with a dash; use --
to pass a title that matches a flag name.`,
		HideHelpCommand: true,
		Writer:          stdout,
		ErrWriter:       stderr,
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return oops.Wrap(fmt.Errorf("%w: %w", apperrors.ErrUsage, err))
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a riggsfeed configuration file",
				EnvVars: []string{"RIGGSFEED_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "pub-date",
				Usage: "Publication date as an RFC 2822 timestamp (defaults to now)",
			},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() < 3 {
				return oops.With("args", ctx.NArg()).Wrap(apperrors.ErrUsage)
			}

			path, err := feedPath()
			if err != nil {
				return err
			}

			injector, err := di.Setup(di.Options{
				ConfigPath: ctx.String("config"),
				FeedPath:   path,
				Stderr:     stderr,
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := di.Shutdown(injector); err != nil {
					slog.Error("Error during shutdown", "error", err)
				}
			}()

			svc, err := do.Invoke[*feedService.Service](injector)
			if err != nil {
				return err
			}

			result, err := svc.Publish(ctx.Context, domain.NewItem{
				Title:       ctx.Args().Get(0),
				Link:        ctx.Args().Get(1),
				Description: ctx.Args().Get(2),
				GUID:        ctx.Args().Get(3),
				PubDate:     ctx.String("pub-date"),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(stdout, "Updated %s\n", result.Path)
			return nil
		},
	}
}

// positionalArgs inserts "--" before the first argument that is not one of
// flags, so everything from there on is positional even when it starts with
// a dash.
func positionalArgs(args []string, flags []cli.Flag) []string {
	if len(args) == 0 {
		return args
	}

	takesValue := make(map[string]bool)
	for _, f := range flags {
		value := false
		if doc, ok := f.(cli.DocGenerationFlag); ok {
			value = doc.TakesValue()
		}
		for _, name := range f.Names() {
			takesValue[name] = value
		}
	}

	out := []string{args[0]}
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		if arg == "--" {
			return append(out, rest[i:]...)
		}

		name, _, inline := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		value, known := takesValue[name]
		if !strings.HasPrefix(arg, "-") || !known {
			out = append(out, "--")
			return append(out, rest[i:]...)
		}

		out = append(out, arg)
		if value && !inline && i+1 < len(rest) {
			i++
			out = append(out, rest[i])
		}
	}
	return out
}
