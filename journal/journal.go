package journal

import "time"

// OrderRecord is one dispatched order: an open or a close, with the reason
// the controller acted.
type OrderRecord struct {
	ID         string
	Time       time.Time
	Instrument string
	Side       string // "buy", "sell" or "close"
	Lots       float64
	Price      float64
	OwnerTag   int64
	Reason     string
}

// SignalRecord is one successfully fetched analytics response.
type SignalRecord struct {
	Time          time.Time
	ZScore        float64
	Regime        bool
	MLProbability float64
	Kalman        bool
	Hedge         bool
	Correlation   float64
	OptimalStop   bool
}

// EventRecord captures controller lifecycle events, e.g. the kill-switch.
type EventRecord struct {
	Time   time.Time
	Kind   string
	Detail string
}

type Journal interface {
	RecordOrder(OrderRecord) error
	RecordSignal(SignalRecord) error
	RecordEvent(EventRecord) error
	Close() error
}

// Nop discards everything. Used when journaling is disabled and in tests.
type Nop struct{}

func (Nop) RecordOrder(OrderRecord) error   { return nil }
func (Nop) RecordSignal(SignalRecord) error { return nil }
func (Nop) RecordEvent(EventRecord) error   { return nil }
func (Nop) Close() error                    { return nil }
