package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/4x4trailrunners/riggs-feed/internal/di"
	"github.com/4x4trailrunners/riggs-feed/internal/modules/feed/domain"
	feedService "github.com/4x4trailrunners/riggs-feed/internal/modules/feed/service"
	"github.com/4x4trailrunners/riggs-feed/internal/shared/config"
	apperrors "github.com/4x4trailrunners/riggs-feed/internal/shared/errors"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"github.com/urfave/cli/v2"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr, config.DefaultFeedPath))
}

func run(args []string, stdout, stderr io.Writer, feedPath func() (string, error)) int {
	if err := newApp(stdout, stderr, feedPath).Run(args); err != nil {
		slog.New(slog.NewTextHandler(stderr, nil)).Error("Failed to export feed", "error", err)
		return 1
	}
	return 0
}

func newApp(stdout, stderr io.Writer, feedPath func() (string, error)) *cli.App {
	return &cli.App{
		Name:  "feedexport",
		Usage: "Render the Riggs feed as RSS, Atom or JSON Feed",
		Description: `Reads feed.xml from the directory above the executable and writes it
in another syndication format, for static-site pipelines that want
Atom or JSON Feed next to the RSS file.`,
		HideHelpCommand: true,
		Writer:          stdout,
		ErrWriter:       stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a riggsfeed configuration file",
				EnvVars: []string{"RIGGSFEED_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   domain.ExportFormatAtom.String(),
				Usage:   "Output format: rss, atom or json",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Write to this file instead of stdout",
			},
		},
		Action: func(ctx *cli.Context) error {
			format, err := domain.ParseExportFormat(ctx.String("format"))
			if err != nil {
				return oops.With("format", ctx.String("format")).Wrap(fmt.Errorf("%w: %w", apperrors.ErrUnsupportedFormat, err))
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

			rendered, err := svc.Export(ctx.Context, format)
			if err != nil {
				return err
			}

			out := ctx.String("out")
			if out == "" {
				_, err := fmt.Fprintln(stdout, rendered)
				return err
			}
			if err := os.WriteFile(out, []byte(rendered+"\n"), 0644); err != nil {
				return oops.With("out", out).Wrap(fmt.Errorf("%w: %w", apperrors.ErrWrite, err))
			}
			return nil
		},
	}
}
