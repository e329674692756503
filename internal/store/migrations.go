package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id       TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	title    TEXT NOT NULL,
	content  TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT 'order',
	status   TEXT NOT NULL DEFAULT '',
	read_at  DATETIME,
	sent_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS recent_orders (
	order_id         TEXT PRIMARY KEY,
	sender_name      TEXT NOT NULL DEFAULT '',
	sender_phone     TEXT NOT NULL DEFAULT '',
	receiver_name    TEXT NOT NULL DEFAULT '',
	receiver_phone   TEXT NOT NULL DEFAULT '',
	receiver_address TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT '',
	viewed_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_position ON notifications(position);
CREATE INDEX IF NOT EXISTS idx_recent_orders_viewed_at ON recent_orders(viewed_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
