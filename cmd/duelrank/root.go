package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duelrank",
		Short: "duelrank - rank species-ID models from camera trap duels",
		Long: `duelrank ranks vision-language models on camera trap species
identification from a ledger of pairwise duels.

It reports classification metrics (accuracy, macro F1, one-vs-rest and
confusion matrices) and preference rankings (bootstrapped Elo and
Bradley-Terry) computed from one consistent snapshot of the ledger.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newEloCommand())
	cmd.AddCommand(newBTCommand())
	cmd.AddCommand(newAccuracyCommand())
	cmd.AddCommand(newMacroCommand())
	cmd.AddCommand(newSpeciesCommand())
	cmd.AddCommand(newConfusionCommand())
	cmd.AddCommand(newSummaryCommand())
	cmd.AddCommand(newReportCommand())
	cmd.AddCommand(newImportCommand())
	cmd.AddCommand(newCacheCommand())
	cmd.AddCommand(newServeCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
