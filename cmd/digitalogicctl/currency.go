package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/digitalogic/catalog/internal/rates"
	"github.com/spf13/cobra"
)

func currencyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "currency",
		Short: "Inspect and update exchange rates",
	}
	cmd.AddCommand(currencyGetCmd(), currencyUpdateCmd())
	return cmd
}

func currencyGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the current exchange rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			out := a.rates.Rates(cliContext())
			return json.NewEncoder(os.Stdout).Encode(out)
		},
	}
}

func currencyUpdateCmd() *cobra.Command {
	var (
		usd         float64
		cny         float64
		recalculate bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update one or both exchange rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := rates.UpdateInput{Recalculate: recalculate}
			if cmd.Flags().Changed("usd") {
				input.DollarPrice = &usd
			}
			if cmd.Flags().Changed("cny") {
				input.YuanPrice = &cny
			}
			if input.DollarPrice == nil && input.YuanPrice == nil {
				return errors.New("at least one of --usd or --cny is required")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cliContext()
			out, apiErr := a.rates.Set(ctx, input)
			if apiErr != nil {
				return apiErr
			}

			if recalculate {
				result, apiErr := a.pricing.RecalculateAll(ctx)
				if apiErr != nil {
					return apiErr
				}
				fmt.Printf("Recalculated prices: %d updated, %d failed (total %d)\n",
					result.Success, result.Failed, result.Total)
			}

			return json.NewEncoder(os.Stdout).Encode(out)
		},
	}

	cmd.Flags().Float64Var(&usd, "usd", 0, "dollar exchange rate")
	cmd.Flags().Float64Var(&cny, "cny", 0, "yuan exchange rate")
	cmd.Flags().BoolVar(&recalculate, "recalculate", false, "reprice dynamically priced products after updating")
	return cmd
}
