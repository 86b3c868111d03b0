package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"optionsimulator/internal/engines/simulation"
	"optionsimulator/internal/models"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Contract    models.ContractParams
	Simulation  SimulationConfig
}

// SimulationConfig holds the frame source defaults
type SimulationConfig struct {
	Interval      time.Duration
	MaxFrames     int
	Seed          uint64
	Increment     string
	ValuationDate string // Empty means today
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment variables")
	}

	config := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Contract:    models.DefaultContractParams(),
		Simulation: SimulationConfig{
			Interval:      getEnvDuration("FRAME_INTERVAL", 100*time.Millisecond),
			MaxFrames:     getEnvInt("MAX_FRAMES", 100),
			Seed:          getEnvUint("SEED", 0),
			Increment:     getEnv("INCREMENT_MODEL", "horizon"),
			ValuationDate: getEnv("VALUATION_DATE", ""),
		},
	}

	if path := getEnv("CONTRACT_FILE", ""); path != "" {
		contract, err := LoadContractFile(path)
		if err != nil {
			log.Warnf("Ignoring contract file: %v", err)
		} else {
			config.Contract = contract
		}
	}

	config.Contract.AssetPrice = getEnvFloat("ASSET_PRICE", config.Contract.AssetPrice)
	config.Contract.StrikePrice = getEnvFloat("STRIKE_PRICE", config.Contract.StrikePrice)
	config.Contract.Volatility = getEnvFloat("VOLATILITY", config.Contract.Volatility)
	config.Contract.RiskFreeRate = getEnvFloat("RISK_FREE_RATE", config.Contract.RiskFreeRate)
	config.Contract.Drift = getEnvFloat("DRIFT", config.Contract.Drift)
	config.Contract.ExpirationDate = getEnvDate("EXPIRATION_DATE", config.Contract.ExpirationDate)

	return config
}

type contractFile struct {
	AssetPrice     *float64 `yaml:"asset_price"`
	StrikePrice    *float64 `yaml:"strike_price"`
	Volatility     *float64 `yaml:"volatility"`
	ExpirationDate string   `yaml:"expiration_date"`
	RiskFreeRate   *float64 `yaml:"risk_free_rate"`
	Drift          *float64 `yaml:"drift"`
}

// LoadContractFile reads contract parameters from a yaml file. Keys missing
// from the file keep their default values.
func LoadContractFile(path string) (models.ContractParams, error) {
	params := models.DefaultContractParams()

	data, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("failed to read contract file: %w", err)
	}

	var file contractFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return params, fmt.Errorf("failed to unmarshal contract file %s: %w", path, err)
	}

	for _, field := range []struct {
		value *float64
		dest  *float64
	}{
		{file.AssetPrice, &params.AssetPrice},
		{file.StrikePrice, &params.StrikePrice},
		{file.Volatility, &params.Volatility},
		{file.RiskFreeRate, &params.RiskFreeRate},
		{file.Drift, &params.Drift},
	} {
		if field.value != nil {
			*field.dest = *field.value
		}
	}

	if file.ExpirationDate != "" {
		expiration, err := models.ParseDate(file.ExpirationDate)
		if err != nil {
			return params, fmt.Errorf("contract file %s: %w", path, err)
		}
		params.ExpirationDate = expiration
	}

	return params, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Warnf("Invalid %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Warnf("Invalid %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		log.Warnf("Invalid %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Warnf("Invalid %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDate(key string, defaultValue models.Date) models.Date {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := models.ParseDate(value)
	if err != nil {
		log.Warnf("Invalid %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// StartOptions turns the simulation defaults into engine options. A zero
// seed stays zero so callers can decide how to pick a fresh one.
func (c *Config) StartOptions() (simulation.StartOptions, error) {
	increment, err := simulation.ParseIncrementModel(c.Simulation.Increment)
	if err != nil {
		return simulation.StartOptions{}, err
	}

	var valuationDate models.Date
	if c.Simulation.ValuationDate != "" {
		valuationDate, err = models.ParseDate(c.Simulation.ValuationDate)
		if err != nil {
			return simulation.StartOptions{}, fmt.Errorf("invalid VALUATION_DATE: %w", err)
		}
	}

	return simulation.StartOptions{
		Contract:      c.Contract,
		ValuationDate: valuationDate,
		Seed:          c.Simulation.Seed,
		Increment:     increment,
		Interval:      c.Simulation.Interval,
		MaxFrames:     c.Simulation.MaxFrames,
	}, nil
}
