package pricing

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"optionsimulator/internal/models"
)

var (
	// ErrInvalidParameter is returned for parameters the closed-form model cannot price
	ErrInvalidParameter = errors.New("invalid option parameter")
	// ErrExpired is returned when no business time remains before expiration
	ErrExpired = errors.New("option expired")
)

// EuropeanCall is a Black-Scholes valuation of a European call. The derived
// fields are computed once by NewEuropeanCall; build a new value to reprice.
type EuropeanCall struct {
	AssetPrice     float64
	StrikePrice    float64
	Volatility     float64
	ExpirationDate models.Date
	RiskFreeRate   float64
	Drift          float64
	ValuationDate  models.Date

	Dt    float64 // Business-day years from ValuationDate to ExpirationDate
	D1    float64
	D2    float64
	Price float64
	Delta float64
}

// NewEuropeanCall validates params and prices the call as of valuationDate
func NewEuropeanCall(params models.ContractParams, valuationDate models.Date) (*EuropeanCall, error) {
	if err := ValidateParams(params, valuationDate); err != nil {
		return nil, err
	}

	dt := YearFraction(valuationDate, params.ExpirationDate)
	d1 := ComputeD1(params.AssetPrice, params.StrikePrice, params.RiskFreeRate, params.Volatility, dt)
	d2 := ComputeD2(d1, params.Volatility, dt)

	return &EuropeanCall{
		AssetPrice:     params.AssetPrice,
		StrikePrice:    params.StrikePrice,
		Volatility:     params.Volatility,
		ExpirationDate: params.ExpirationDate,
		RiskFreeRate:   params.RiskFreeRate,
		Drift:          params.Drift,
		ValuationDate:  valuationDate,
		Dt:             dt,
		D1:             d1,
		D2:             d2,
		Price:          ComputePrice(params.AssetPrice, d1, params.StrikePrice, d2, params.RiskFreeRate, dt),
		Delta:          ComputeDelta(d1),
	}, nil
}

// ValidateParams reports why params cannot be priced as of valuationDate
func ValidateParams(params models.ContractParams, valuationDate models.Date) error {
	positive := []struct {
		name  string
		value float64
	}{
		{"asset price", params.AssetPrice},
		{"strike price", params.StrikePrice},
		{"volatility", params.Volatility},
	}
	for _, p := range positive {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) || p.value <= 0 {
			return fmt.Errorf("%w: %s must be a positive number, got %v", ErrInvalidParameter, p.name, p.value)
		}
	}

	if math.IsNaN(params.RiskFreeRate) || math.IsInf(params.RiskFreeRate, 0) {
		return fmt.Errorf("%w: risk free rate must be finite, got %v", ErrInvalidParameter, params.RiskFreeRate)
	}
	if math.IsNaN(params.Drift) || math.IsInf(params.Drift, 0) {
		return fmt.Errorf("%w: drift must be finite, got %v", ErrInvalidParameter, params.Drift)
	}
	if params.ExpirationDate.IsZero() {
		return fmt.Errorf("%w: expiration date is required", ErrInvalidParameter)
	}
	if valuationDate.IsZero() {
		return fmt.Errorf("%w: valuation date is required", ErrInvalidParameter)
	}

	if days := BusinessDays(valuationDate, params.ExpirationDate); days <= 0 {
		return fmt.Errorf("%w: %d business days from %s to expiration %s",
			ErrExpired, days, valuationDate, params.ExpirationDate)
	}
	return nil
}

// Params returns the construction parameters of the call
func (c *EuropeanCall) Params() models.ContractParams {
	return models.ContractParams{
		AssetPrice:     c.AssetPrice,
		StrikePrice:    c.StrikePrice,
		Volatility:     c.Volatility,
		ExpirationDate: c.ExpirationDate,
		RiskFreeRate:   c.RiskFreeRate,
		Drift:          c.Drift,
	}
}

// ExerciseProbability estimates the drift-adjusted probability that the call
// finishes in the money.
func (c *EuropeanCall) ExerciseProbability() float64 {
	return ExerciseProbability(c.StrikePrice, c.AssetPrice, c.Drift, c.Volatility, c.Dt)
}

// Snapshot returns the frame view of the valuation
func (c *EuropeanCall) Snapshot() models.ContractSnapshot {
	return models.ContractSnapshot{
		AssetPrice:     c.AssetPrice,
		StrikePrice:    c.StrikePrice,
		ExpirationDate: c.ExpirationDate,
		Dt:             c.Dt,
		Price:          c.Price,
		Delta:          c.Delta,
	}
}

func ComputeD1(assetPrice, strikePrice, riskFreeRate, volatility, dt float64) float64 {
	return (math.Log(assetPrice/strikePrice) + (riskFreeRate+math.Pow(volatility, 2)/2)*dt) / (volatility * math.Sqrt(dt))
}

func ComputeD2(d1, volatility, dt float64) float64 {
	return d1 - volatility*math.Sqrt(dt)
}

// ComputePrice is the discounted risk-neutral expected payoff of the call
func ComputePrice(assetPrice, d1, strikePrice, d2, riskFreeRate, dt float64) float64 {
	return assetPrice*normCDF(d1) - strikePrice*math.Exp(-riskFreeRate*dt)*normCDF(d2)
}

// ComputeDelta is the hedge ratio of the call
func ComputeDelta(d1 float64) float64 {
	return normCDF(d1)
}

// ExerciseProbability models the terminal price as arithmetic Brownian motion
// with drift, so it is a real-world rather than risk-neutral probability.
func ExerciseProbability(strikePrice, assetPrice, drift, volatility, dt float64) float64 {
	z := ((strikePrice - assetPrice) - drift*assetPrice*dt) / (volatility * assetPrice * math.Sqrt(dt))
	return 1 - normCDF(z)
}

func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}
