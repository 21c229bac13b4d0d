package journal

const Schema = `
CREATE TABLE IF NOT EXISTS assessments (
	id TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL,
	source TEXT NOT NULL,
	instrument TEXT NOT NULL,
	window_start DATETIME NOT NULL,
	window_end DATETIME NOT NULL,
	amount_usd REAL NOT NULL,
	invoice_date TEXT NOT NULL,
	settlement_date TEXT NOT NULL,
	stress INTEGER NOT NULL,
	horizon_days INTEGER NOT NULL,
	current_rate REAL NOT NULL,
	potential_loss REAL NOT NULL,
	vol_used_pct REAL NOT NULL,
	nu REAL NOT NULL,
	clamped INTEGER NOT NULL,
	result_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assessments_created ON assessments(created_at);
`
