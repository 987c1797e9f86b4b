package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/projectboard/internal/pkg/logger"
	"github.com/devilmonastery/projectboard/internal/seed"
)

func newSeedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "seed <file>",
		Short:   "Load users, articles and comments from a YAML fixture",
		Example: "  board seed configs/seed.yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := seed.LoadFile(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), opts.cfg, logger.WithCommand(slog.Default(), "seed"))
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := seed.New(a.users, a.articles, a.comments).Apply(cmd.Context(), fixture)
			if err != nil {
				return fmt.Errorf("failed to seed %s: %w", args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "users: %d created, %d skipped; articles: %d; comments: %d\n",
				res.Users, res.Skipped, res.Articles, res.Comments)
			return nil
		},
	}
}
