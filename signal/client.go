package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

// Fetch failure taxonomy. All four are recoverable: the caller skips the
// tick and retries naturally once the fetch interval elapses.
var (
	ErrConnect = errors.New("signal: connect failed")
	ErrSend    = errors.New("signal: send failed")
	ErrRead    = errors.New("signal: read failed")
	ErrParse   = errors.New("signal: parse failed")
)

const (
	DefaultAddr        = "localhost:5555"
	DefaultDialTimeout = 3 * time.Second
	DefaultReadTimeout = time.Second

	readBufferSize = 1 << 16
)

// Client fetches signals from the analytics service. One TCP connection per
// call, no pooling: a single JSON request followed by a single bounded read,
// no framing or versioning on the wire.
type Client struct {
	Addr        string
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

func NewClient(addr string) *Client {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Client{
		Addr:        addr,
		DialTimeout: DefaultDialTimeout,
		ReadTimeout: DefaultReadTimeout,
	}
}

type request struct {
	Prices  []float64 `json:"prices"`
	Volumes []float64 `json:"volumes"`
}

// response uses pointer fields so an absent key is distinguishable from a
// zero value; every field is required by the protocol.
type response struct {
	ZScore              *float64 `json:"zScore"`
	IsDirectionalRegime *bool    `json:"isDirectionalRegime"`
	MLProbability       *float64 `json:"mlProbability"`
	KalmanSignal        *bool    `json:"kalmanSignal"`
	HedgeSignal         *bool    `json:"hedgeSignal"`
	Correlation         *float64 `json:"correlation"`
	OptimalStopSignal   *bool    `json:"optimalStopSignal"`
}

// Fetch performs one request/response cycle. The connection is closed on
// every exit path. No retry happens here; rate limiting between attempts is
// the Throttle's job.
func (c *Client) Fetch(ctx context.Context, snap Snapshot) (Signal, error) {
	d := net.Dialer{Timeout: c.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.Addr)
	if err != nil {
		return Signal{}, fmt.Errorf("%w: dial %s: %v", ErrConnect, c.Addr, err)
	}
	defer conn.Close()

	payload, err := json.Marshal(request{
		Prices:  nonNil(snap.Prices),
		Volumes: nonNil(snap.Volumes),
	})
	if err != nil {
		return Signal{}, fmt.Errorf("%w: marshal request: %v", ErrSend, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if _, err := conn.Write(payload); err != nil {
		return Signal{}, fmt.Errorf("%w: %v", ErrSend, err)
	}

	// The service answers with one JSON document in a single segment; a
	// bounded read keeps a stalled backend from blocking the tick handler
	// past the timeout.
	_ = conn.SetReadDeadline(time.Now().Add(c.ReadTimeout))
	buf := make([]byte, readBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		return Signal{}, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if n == 0 {
		return Signal{}, fmt.Errorf("%w: empty response", ErrRead)
	}

	return parse(buf[:n])
}

func parse(raw []byte) (Signal, error) {
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Signal{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if resp.ZScore == nil || resp.IsDirectionalRegime == nil ||
		resp.MLProbability == nil || resp.KalmanSignal == nil ||
		resp.HedgeSignal == nil || resp.Correlation == nil ||
		resp.OptimalStopSignal == nil {
		return Signal{}, fmt.Errorf("%w: missing required field", ErrParse)
	}
	return Signal{
		ZScore:              *resp.ZScore,
		IsDirectionalRegime: *resp.IsDirectionalRegime,
		MLProbability:       *resp.MLProbability,
		KalmanSignal:        *resp.KalmanSignal,
		HedgeSignal:         *resp.HedgeSignal,
		Correlation:         *resp.Correlation,
		OptimalStopSignal:   *resp.OptimalStopSignal,
	}, nil
}

// nonNil keeps empty snapshots marshaling as [] rather than null.
func nonNil(xs []float64) []float64 {
	if xs == nil {
		return []float64{}
	}
	return xs
}
