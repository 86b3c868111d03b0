package simulation

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"optionsimulator/internal/engines/pricing"
	"optionsimulator/internal/models"
)

// IncrementModel selects the standard deviation of the per-tick price draw
type IncrementModel string

const (
	// IncrementHorizon draws N(0, sqrt(dt)) regardless of volatility
	IncrementHorizon IncrementModel = "horizon"
	// IncrementVolatility draws N(0, volatility*price*sqrt(dt))
	IncrementVolatility IncrementModel = "volatility"
)

func ParseIncrementModel(s string) (IncrementModel, error) {
	switch IncrementModel(s) {
	case "", IncrementHorizon:
		return IncrementHorizon, nil
	case IncrementVolatility:
		return IncrementVolatility, nil
	default:
		return "", fmt.Errorf("unknown increment model %q, must be %q or %q", s, IncrementHorizon, IncrementVolatility)
	}
}

// Driver advances a simulated market one tick at a time and reprices the
// call after every move. It is not safe for concurrent use.
type Driver struct {
	params        models.ContractParams
	valuationDate models.Date
	src           rand.Source
	increment     IncrementModel

	contract          *pricing.EuropeanCall
	tickIndex         int
	assetPrices       []float64
	optionPrices      []float64
	deltas            []float64
	currentExpiration models.Date
	terminal          error
}

// NewDriver prices the initial contract and seeds the asset price history.
// Invalid parameters fail here, before any tick runs.
func NewDriver(params models.ContractParams, valuationDate models.Date, src rand.Source, increment IncrementModel) (*Driver, error) {
	if src == nil {
		return nil, fmt.Errorf("random source is required")
	}
	model, err := ParseIncrementModel(string(increment))
	if err != nil {
		return nil, err
	}

	contract, err := pricing.NewEuropeanCall(params, valuationDate)
	if err != nil {
		return nil, fmt.Errorf("failed to price initial contract: %w", err)
	}

	return &Driver{
		params:            params,
		valuationDate:     valuationDate,
		src:               src,
		increment:         model,
		contract:          contract,
		assetPrices:       []float64{params.AssetPrice},
		currentExpiration: params.ExpirationDate,
	}, nil
}

// Advance runs one tick. Once the option has expired, or the walk produces a
// price the model cannot value, the driver is terminal and every later call
// returns the same error without changing state.
func (d *Driver) Advance() (models.Frame, error) {
	if d.terminal != nil {
		return models.Frame{}, d.terminal
	}

	dt := pricing.YearFraction(d.valuationDate, d.currentExpiration)
	if dt <= 0 {
		d.terminal = fmt.Errorf("tick %d: %w on %s", d.tickIndex, pricing.ErrExpired, d.currentExpiration)
		return models.Frame{}, d.terminal
	}

	lastPrice := d.assetPrices[len(d.assetPrices)-1]
	assetPrice := lastPrice + d.draw(lastPrice, dt)

	params := d.params
	params.AssetPrice = assetPrice
	params.ExpirationDate = d.currentExpiration
	contract, err := pricing.NewEuropeanCall(params, d.valuationDate)
	if err != nil {
		d.terminal = fmt.Errorf("tick %d: failed to reprice at %.4f: %w", d.tickIndex, assetPrice, err)
		return models.Frame{}, d.terminal
	}

	d.contract = contract
	d.optionPrices = append(d.optionPrices, contract.Price)
	d.deltas = append(d.deltas, contract.Delta)
	d.assetPrices = append(d.assetPrices, assetPrice)
	d.tickIndex++
	d.currentExpiration = d.currentExpiration.AddDays(-1)

	return d.frame(), nil
}

func (d *Driver) draw(price, dt float64) float64 {
	sigma := math.Sqrt(dt)
	if d.increment == IncrementVolatility {
		sigma *= d.params.Volatility * price
	}
	return distuv.Normal{Mu: 0, Sigma: sigma, Src: d.src}.Rand()
}

func (d *Driver) frame() models.Frame {
	return models.Frame{
		Tick:         d.tickIndex,
		OptionPrices: models.SeriesOf(d.optionPrices),
		Deltas:       models.SeriesOf(d.deltas),
		AssetPrices:  models.SeriesOf(d.assetPrices),
		Moneyness:    models.MoneynessOf(d.contract.AssetPrice, d.contract.StrikePrice),
		Contract:     d.contract.Snapshot(),
	}
}

// Terminal reports whether the driver can no longer advance, and why
func (d *Driver) Terminal() (bool, error) {
	return d.terminal != nil, d.terminal
}

func (d *Driver) TickIndex() int {
	return d.tickIndex
}

// Contract returns the most recent valuation
func (d *Driver) Contract() *pricing.EuropeanCall {
	return d.contract
}

func (d *Driver) CurrentExpiration() models.Date {
	return d.currentExpiration
}

func (d *Driver) AssetPrices() []float64 {
	return append([]float64(nil), d.assetPrices...)
}

func (d *Driver) OptionPrices() []float64 {
	return append([]float64(nil), d.optionPrices...)
}

func (d *Driver) Deltas() []float64 {
	return append([]float64(nil), d.deltas...)
}
