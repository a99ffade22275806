package market

import "math"

type InstrumentMeta struct {
	Name   string
	Digits int     // quote decimal places, e.g. 5 for EUR_USD
	Point  float64 // smallest quote increment, 10^-Digits
}

var Instruments = map[string]InstrumentMeta{
	"EUR_USD": {Name: "EUR_USD", Digits: 5, Point: 0.00001},
	"GBP_USD": {Name: "GBP_USD", Digits: 5, Point: 0.00001},
	"USD_JPY": {Name: "USD_JPY", Digits: 3, Point: 0.001},
}

// PipDistance converts the absolute price distance between a and b into pips.
// One pip is ten points on a 5-digit quote, so distance/point/10.
func (m InstrumentMeta) PipDistance(a, b float64) float64 {
	if m.Point <= 0 {
		return 0
	}
	return math.Abs(a-b) / m.Point / 10
}
