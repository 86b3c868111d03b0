package models

// Moneyness tells the renderer whether the asset trades at or above the strike
type Moneyness string

const (
	MoneynessAbove Moneyness = "above"
	MoneynessBelow Moneyness = "below"
)

// MoneynessOf returns MoneynessAbove when assetPrice >= strikePrice
func MoneynessOf(assetPrice, strikePrice float64) Moneyness {
	if strikePrice <= assetPrice {
		return MoneynessAbove
	}
	return MoneynessBelow
}

// Point is one (x, y) sample of a rendered series; X is the history index
type Point struct {
	X int     `json:"x"`
	Y float64 `json:"y"`
}

// Frame is everything a renderer needs to redraw after one tick
type Frame struct {
	Tick         int              `json:"tick"`
	OptionPrices []Point          `json:"optionPrices"`
	Deltas       []Point          `json:"deltas"`
	AssetPrices  []Point          `json:"assetPrices"`
	Moneyness    Moneyness        `json:"moneyness"`
	Contract     ContractSnapshot `json:"contract"`
}

// SeriesOf converts a history into points indexed by position
func SeriesOf(values []float64) []Point {
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{X: i, Y: v}
	}
	return points
}
