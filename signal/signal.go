package signal

// Signal is one immutable snapshot of the analytics service's output. It is
// consumed by exactly one decision pass and never persisted in memory beyond
// that.
type Signal struct {
	ZScore              float64
	IsDirectionalRegime bool
	MLProbability       float64
	KalmanSignal        bool
	HedgeSignal         bool
	Correlation         float64
	OptimalStopSignal   bool
}

// Snapshot is the market-data payload sent with each fetch: up to the 100
// most recent close prices and tick volumes, oldest first. Both slices may
// be shorter (or empty) when fewer bars exist.
type Snapshot struct {
	Prices  []float64
	Volumes []float64
}
