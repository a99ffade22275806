package market

import "time"

// Candle is one OHLC bar with tick volume.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Closes returns the close prices of cs, oldest first.
func Closes(cs []Candle) []float64 {
	out := make([]float64, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Close)
	}
	return out
}

// Volumes returns the tick volumes of cs, oldest first.
func Volumes(cs []Candle) []float64 {
	out := make([]float64, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Volume)
	}
	return out
}
