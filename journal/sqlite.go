package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordOrder(o OrderRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO orders
		(order_id, time, instrument, side, lots, price, owner_tag, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Time, o.Instrument, o.Side, o.Lots, o.Price, o.OwnerTag, o.Reason,
	)
	return err
}

func (j *SQLite) RecordSignal(s SignalRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO signals
		(time, z_score, regime, ml_probability, kalman, hedge, correlation, optimal_stop)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Time, s.ZScore, s.Regime, s.MLProbability, s.Kalman, s.Hedge,
		s.Correlation, s.OptimalStop,
	)
	return err
}

func (j *SQLite) RecordEvent(e EventRecord) error {
	_, err := j.db.Exec(
		`INSERT INTO events (time, kind, detail) VALUES (?, ?, ?)`,
		e.Time, e.Kind, e.Detail,
	)
	return err
}

// ListRecentOrders returns up to n orders, newest first.
func (j *SQLite) ListRecentOrders(n int) ([]OrderRecord, error) {
	rows, err := j.db.Query(`
		SELECT order_id, time, instrument, side, lots, price, owner_tag, reason
		FROM orders ORDER BY time DESC, order_id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderRecord
	for rows.Next() {
		var o OrderRecord
		if err := rows.Scan(&o.ID, &o.Time, &o.Instrument, &o.Side,
			&o.Lots, &o.Price, &o.OwnerTag, &o.Reason); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
