package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSV struct {
	orders  *csv.Writer
	signals *csv.Writer
	events  *csv.Writer
	files   []*os.File
}

func NewCSV(ordersPath, signalsPath, eventsPath string) (*CSV, error) {
	j := &CSV{}

	open := func(path string, cols []string) (*csv.Writer, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		j.files = append(j.files, f)
		w := csv.NewWriter(f)
		if err := w.Write(cols); err != nil {
			return nil, err
		}
		w.Flush()
		return w, w.Error()
	}

	var err error
	if j.orders, err = open(ordersPath, []string{
		"order_id", "time", "instrument", "side", "lots", "price", "owner_tag", "reason",
	}); err != nil {
		j.Close()
		return nil, err
	}
	if j.signals, err = open(signalsPath, []string{
		"time", "z_score", "regime", "ml_probability", "kalman", "hedge", "correlation", "optimal_stop",
	}); err != nil {
		j.Close()
		return nil, err
	}
	if j.events, err = open(eventsPath, []string{"time", "kind", "detail"}); err != nil {
		j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSV) RecordOrder(o OrderRecord) error {
	if err := j.orders.Write([]string{
		o.ID,
		o.Time.Format(time.RFC3339),
		o.Instrument,
		o.Side,
		f(o.Lots),
		f(o.Price),
		strconv.FormatInt(o.OwnerTag, 10),
		o.Reason,
	}); err != nil {
		return err
	}
	j.orders.Flush()
	return j.orders.Error()
}

func (j *CSV) RecordSignal(s SignalRecord) error {
	if err := j.signals.Write([]string{
		s.Time.Format(time.RFC3339),
		f(s.ZScore),
		b(s.Regime),
		f(s.MLProbability),
		b(s.Kalman),
		b(s.Hedge),
		f(s.Correlation),
		b(s.OptimalStop),
	}); err != nil {
		return err
	}
	j.signals.Flush()
	return j.signals.Error()
}

func (j *CSV) RecordEvent(e EventRecord) error {
	if err := j.events.Write([]string{
		e.Time.Format(time.RFC3339), e.Kind, e.Detail,
	}); err != nil {
		return err
	}
	j.events.Flush()
	return j.events.Error()
}

func (j *CSV) Close() error {
	var first error
	for _, file := range j.files {
		if err := file.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func b(v bool) string {
	return strconv.FormatBool(v)
}
