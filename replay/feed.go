package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rmercier/quantctl/market"
)

// Feed yields ticks from a CSV file, one row at a time. Rows are
// time,bid,ask with an optional header; time is RFC3339.
type Feed struct {
	f          *os.File
	r          *csv.Reader
	instrument string
	sawFirst   bool
}

func NewCSVFeed(path, instrument string) (*Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return &Feed{f: f, r: r, instrument: instrument}, nil
}

func (f *Feed) Close() error {
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

// Next returns the next tick. ok=false with a nil error means EOF.
func (f *Feed) Next() (market.Tick, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return market.Tick{}, false, nil
		}
		if err != nil {
			return market.Tick{}, false, err
		}
		if len(row) < 3 {
			return market.Tick{}, false, fmt.Errorf("replay: short row %v", row)
		}

		// Skip a header row once.
		if !f.sawFirst {
			f.sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(row[0]))
		if err != nil {
			return market.Tick{}, false, fmt.Errorf("replay: bad time %q: %w", row[0], err)
		}
		bid, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return market.Tick{}, false, fmt.Errorf("replay: bad bid %q: %w", row[1], err)
		}
		ask, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return market.Tick{}, false, fmt.Errorf("replay: bad ask %q: %w", row[2], err)
		}

		return market.Tick{
			Instrument: f.instrument,
			Time:       ts,
			Bid:        bid,
			Ask:        ask,
		}, true, nil
	}
}
