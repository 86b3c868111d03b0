package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"optionsimulator/internal/config"
	"optionsimulator/internal/engines/pricing"
	"optionsimulator/internal/handlers"
	"optionsimulator/internal/render"
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price the call once and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		contract, valuationDate, err := contractFromFlags(cmd, config.Load())
		if err != nil {
			return err
		}

		call, err := pricing.NewEuropeanCall(contract, valuationDate)
		if err != nil {
			return fmt.Errorf("failed to price contract: %w", err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			out, err := json.MarshalIndent(handlers.NewQuoteResponse(call), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		render.RenderQuote(cmd.OutOrStdout(), call)
		return nil
	},
}

func init() {
	quoteCmd.Flags().Bool("json", false, "Print the quote as json")
}
