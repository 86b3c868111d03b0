package models

// ContractParams holds the construction parameters of a European call
type ContractParams struct {
	AssetPrice     float64 `json:"assetPrice" yaml:"asset_price"`
	StrikePrice    float64 `json:"strikePrice" yaml:"strike_price"`
	Volatility     float64 `json:"volatility" yaml:"volatility"`
	ExpirationDate Date    `json:"expirationDate" yaml:"expiration_date"`
	RiskFreeRate   float64 `json:"riskFreeRate" yaml:"risk_free_rate"`
	// Drift is the annualized expected return, used only for the exercise probability
	Drift          float64 `json:"drift" yaml:"drift"`
}

// DefaultContractParams returns the near-the-money contract used when nothing is configured
func DefaultContractParams() ContractParams {
	return ContractParams{
		AssetPrice:     64.5,
		StrikePrice:    64.6,
		Volatility:     0.4,
		ExpirationDate: NewDate(2023, 2, 17),
		RiskFreeRate:   0.1,
		Drift:          0.2,
	}
}

// ContractSnapshot is the valuation attached to every simulation frame
type ContractSnapshot struct {
	AssetPrice     float64 `json:"assetPrice"`
	StrikePrice    float64 `json:"strikePrice"`
	ExpirationDate Date    `json:"expirationDate"`
	Dt             float64 `json:"dt"`
	Price          float64 `json:"price"`
	Delta          float64 `json:"delta"`
}
