package main

import (
	"fmt"
	"io"
	"os"

	"github.com/camtrap-arena/duelrank/internal/ledger"
	"github.com/spf13/cobra"
)

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <source> <database.db>",
		Short: "Append a ledger export to an arena SQLite database",
		Long: `Read every duel from a ledger export (CSV, JSON Lines, JSON, optionally
gzip or zstd compressed, or an Azure blob) and append it to the evaluations
table of an arena SQLite database, creating the table if needed.`,
		Args: cobra.ExactArgs(2),
		RunE: importCommandE,
	}
}

func importCommandE(cmd *cobra.Command, args []string) error {
	src, err := ledger.Open(args[0])
	if err != nil {
		return err
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close() //nolint:errcheck
	}

	records, err := src.Snapshot(cmd.Context())
	if err != nil {
		return err
	}

	dst, err := ledger.OpenSQLite(args[1])
	if err != nil {
		return err
	}
	defer dst.Close() //nolint:errcheck

	if err := dst.Append(cmd.Context(), records); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d duels into %s\n", len(records), args[1]) //nolint:errcheck
	return nil
}

func createOutput(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, nil
}
