package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/camtrap-arena/duelrank/internal/leaderboard"
	"github.com/camtrap-arena/duelrank/internal/ledger"
	"github.com/camtrap-arena/duelrank/internal/projectconfig"
	"github.com/camtrap-arena/duelrank/internal/webserver"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	f := &rankFlags{}
	var port int
	var open bool
	var corsOrigins []string

	cmd := &cobra.Command{
		Use:   "serve [ledger]",
		Short: "Serve the leaderboard over HTTP",
		Long: `Serve the leaderboard over HTTP on the loopback interface.

The root page renders the full report. JSON tables are available under
/api: summary, leaderboard, elo, bradley-terry, accuracy, macro,
species?target= and confusion?model=. Every request reads a fresh
snapshot of the ledger, so duels appended while serving show up on the
next refresh. Query parameters such as outcome, method and mode override
the flags for a single request.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(".")
			if err != nil {
				return err
			}
			opts, err := resolveOptions(cmd, f, cfg)
			if err != nil {
				return err
			}
			opts.Sections = leaderboard.SectionStandard

			location, err := resolveLedger(args, cfg)
			if err != nil {
				return err
			}
			src, err := ledger.Open(location)
			if err != nil {
				return err
			}
			if c, ok := src.(io.Closer); ok {
				defer c.Close() //nolint:errcheck
			}

			srv, err := webserver.New(webserver.Config{
				Port:           port,
				Builder:        leaderboard.New(src),
				Defaults:       opts,
				AllowedOrigins: corsOrigins,
				OpenBrowser:    open,
				Logger:         slog.Default(),
			})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "duelrank leaderboard: %s\n", srv.URL()) //nolint:errcheck
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", webserver.DefaultPort, "Port to listen on")
	cmd.Flags().BoolVar(&open, "open", false, "Open the leaderboard in the default browser")
	cmd.Flags().StringSliceVar(&corsOrigins, "cors-origin", nil, "Origin allowed to call the API cross-origin (repeatable)")
	cmd.Flags().StringVar(&f.normalization, "normalization", projectconfig.DefaultNormalization, "Label normalization: standard or compact")
	addAccuracyFlags(cmd, f)
	addTargetFlag(cmd, f)
	addOutcomeFlags(cmd, f)
	addEloFlags(cmd, f)
	addBTFlags(cmd, f)
	return cmd
}
