package main

import (
	"fmt"
	"path/filepath"

	"github.com/camtrap-arena/duelrank/internal/cache"
	"github.com/camtrap-arena/duelrank/internal/projectconfig"
	"github.com/spf13/cobra"
)

func newCacheCommand() *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the model response cache",
		Long: `Manage the model response cache.

The cache stores model responses keyed by model, prompt, temperature and
image content, so that re-running a duel does not re-invoke the model.`,
	}
	cmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Cache directory (default from "+projectconfig.FileName+")")

	resolve := func() (*cache.Cache, string, error) {
		dir := cacheDir
		if dir == "" {
			cfg, err := projectconfig.Load(".")
			if err != nil {
				return nil, "", err
			}
			dir = cfg.Cache.Dir
		}
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, "", fmt.Errorf("resolving cache directory: %w", err)
		}
		return cache.New(absDir), absDir, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, dir, err := resolve()
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", dir) //nolint:errcheck
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show how many responses are cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, dir, err := resolve()
			if err != nil {
				return err
			}
			s, err := c.Stats()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries, %d bytes\n", dir, s.Entries, s.Bytes) //nolint:errcheck
			return nil
		},
	})

	var (
		model       string
		prompt      string
		temperature float64
	)
	lookup := &cobra.Command{
		Use:   "lookup <image>",
		Short: "Print the cache key for an image and any cached response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := resolve()
			if err != nil {
				return err
			}
			digest, err := cache.ImageFileDigest(args[0])
			if err != nil {
				return fmt.Errorf("reading image: %w", err)
			}
			key := cache.Key(model, prompt, temperature, digest)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "key: %s\n", key) //nolint:errcheck
			entry, ok := c.Get(key)
			if !ok {
				fmt.Fprintln(out, "not cached") //nolint:errcheck
				return nil
			}
			fmt.Fprintf(out, "model: %s (%d ms, %s)\n%s\n", //nolint:errcheck
				entry.Model, entry.DurationMs, entry.CreatedAt.Format("2006-01-02 15:04:05"), entry.Response)
			return nil
		},
	}
	lookup.Flags().StringVar(&model, "model", "", "Model name")
	lookup.Flags().StringVar(&prompt, "prompt", "", "Prompt text")
	lookup.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature")
	_ = lookup.MarkFlagRequired("model")
	cmd.AddCommand(lookup)

	return cmd
}
