package journal

const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	order_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	instrument TEXT NOT NULL,
	side TEXT NOT NULL,
	lots REAL NOT NULL,
	price REAL NOT NULL,
	owner_tag INTEGER NOT NULL,
	reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS signals (
	time DATETIME NOT NULL,
	z_score REAL NOT NULL,
	regime INTEGER NOT NULL,
	ml_probability REAL NOT NULL,
	kalman INTEGER NOT NULL,
	hedge INTEGER NOT NULL,
	correlation REAL NOT NULL,
	optimal_stop INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	time DATETIME NOT NULL,
	kind TEXT NOT NULL,
	detail TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_time ON orders(time);
CREATE INDEX IF NOT EXISTS idx_signals_time ON signals(time);
`
