package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"optionsimulator/internal/config"
	"optionsimulator/internal/logger"
	"optionsimulator/internal/models"
)

var rootCmd = &cobra.Command{
	Use:   "optionsim",
	Short: "Price a European call and animate its value along a random walk",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		logger.Setup(level, "development")
	},
	SilenceUsage: true,
}

func init() {
	defaults := models.DefaultContractParams()

	flags := rootCmd.PersistentFlags()
	flags.Float64("asset-price", defaults.AssetPrice, "Current price of the underlying")
	flags.Float64("strike-price", defaults.StrikePrice, "Strike price of the call")
	flags.Float64("volatility", defaults.Volatility, "Annualized volatility")
	flags.String("expiration-date", defaults.ExpirationDate.String(), "Expiration date (YYYY-MM-DD)")
	flags.Float64("risk-free-rate", defaults.RiskFreeRate, "Annualized risk free rate")
	flags.Float64("drift", defaults.Drift, "Expected return of the underlying, used for the exercise probability")
	flags.String("valuation-date", "", "Valuation date (YYYY-MM-DD), defaults to today")
	flags.String("config", "", "Yaml file with contract parameters")
	flags.String("log-level", "warn", "Log level")

	rootCmd.AddCommand(simulateCmd, quoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// contractFromFlags layers the contract sources: defaults and environment,
// then the --config file, then any flag set explicitly.
func contractFromFlags(cmd *cobra.Command, cfg *config.Config) (models.ContractParams, models.Date, error) {
	contract := cfg.Contract
	flags := cmd.Flags()

	if path, _ := flags.GetString("config"); path != "" {
		fromFile, err := config.LoadContractFile(path)
		if err != nil {
			return contract, models.Date{}, err
		}
		contract = fromFile
	}

	floatFlags := map[string]*float64{
		"asset-price":    &contract.AssetPrice,
		"strike-price":   &contract.StrikePrice,
		"volatility":     &contract.Volatility,
		"risk-free-rate": &contract.RiskFreeRate,
		"drift":          &contract.Drift,
	}
	for name, target := range floatFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetFloat64(name)
		if err != nil {
			return contract, models.Date{}, fmt.Errorf("error getting %s: %w", name, err)
		}
		*target = value
	}

	if flags.Changed("expiration-date") {
		value, _ := flags.GetString("expiration-date")
		expiration, err := models.ParseDate(value)
		if err != nil {
			return contract, models.Date{}, fmt.Errorf("invalid expiration-date: %w", err)
		}
		contract.ExpirationDate = expiration
	}

	valuationDate := models.Today()
	value, _ := flags.GetString("valuation-date")
	if value == "" {
		value = cfg.Simulation.ValuationDate
	}
	if value != "" {
		parsed, err := models.ParseDate(value)
		if err != nil {
			return contract, models.Date{}, fmt.Errorf("invalid valuation-date: %w", err)
		}
		valuationDate = parsed
	}

	log.WithFields(log.Fields{
		"contract":      contract,
		"valuationDate": valuationDate.String(),
	}).Debug("Resolved contract")

	return contract, valuationDate, nil
}
