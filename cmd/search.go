package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	searchLocation string
	searchMax      int
	searchOutput   string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search businesses by website URL or name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cfg, "cli")
		if err != nil {
			return err
		}
		return runSearch(cmd.Context(), cmd.OutOrStdout(), env, args[0])
	},
}

func runSearch(ctx context.Context, out io.Writer, env *appEnv, query string) error {
	maxResults := searchMax
	if maxResults <= 0 {
		maxResults = cfg.Search.MaxResults
	}

	businesses, err := env.Searcher.Search(ctx, query, searchLocation, maxResults)
	if err != nil {
		return err
	}

	zap.L().Info("search complete", zap.String("query", query), zap.Int("businesses", len(businesses)))
	return writeOutput(out, searchOutput, businesses)
}

func init() {
	searchCmd.Flags().StringVar(&searchLocation, "location", "", "location to search in (default from config)")
	searchCmd.Flags().IntVar(&searchMax, "max", 0, "maximum results, 1-20 (default from config)")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "json", "output format: json or yaml")
	rootCmd.AddCommand(searchCmd)
}
