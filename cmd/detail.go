package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/daniellim27/leadgen-scraper/internal/finance"
	"github.com/daniellim27/leadgen-scraper/internal/model"
)

var (
	detailFinancials bool
	detailOutput     string
)

var detailCmd = &cobra.Command{
	Use:   "detail <place-id>",
	Short: "Fetch a business with website contact details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cfg, "cli")
		if err != nil {
			return err
		}
		return runDetail(cmd.Context(), cmd.OutOrStdout(), env, args[0])
	},
}

type detailResult struct {
	Details       *model.BusinessDetail `json:"details"`
	FinancialData *finance.Financials   `json:"financial_data,omitempty"`
}

func runDetail(ctx context.Context, out io.Writer, env *appEnv, placeID string) error {
	details, err := env.Detailer.Details(ctx, placeID)
	if err != nil {
		return err
	}

	res := detailResult{Details: details}
	if detailFinancials {
		res.FinancialData = env.Finance.ForBusiness(ctx, details.Name)
	}
	return writeOutput(out, detailOutput, res)
}

func init() {
	detailCmd.Flags().BoolVar(&detailFinancials, "financials", false, "look up public-company financials by business name")
	detailCmd.Flags().StringVarP(&detailOutput, "output", "o", "json", "output format: json or yaml")
	rootCmd.AddCommand(detailCmd)
}
