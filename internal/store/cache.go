package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/vantai/console/internal/model"
)

// Cache is the local SQLite cache of last-known-good server state: the
// notification list and recently viewed orders. It exists so the
// console can render something meaningful before the first fetch of a
// session resolves; every successful fetch replaces its contents
// wholesale.
type Cache struct {
	db *sqlx.DB
}

// Open opens (or creates) the cache database at dbPath, enables WAL
// mode, and runs any pending schema migrations.
func Open(dbPath string) (*Cache, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	c := &Cache{db: db}
	if err := c.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return c, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (c *Cache) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := c.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = c.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := c.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// ReplaceNotifications replaces the cached notification list wholesale,
// preserving server order via the position column.
func (c *Cache) ReplaceNotifications(
	ctx context.Context,
	items []model.Notification,
) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return fmt.Errorf("clearing cached notifications: %w", err)
	}

	const query = `
		INSERT INTO notifications (
			id, position, title, content, category, status, read_at, sent_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i, n := range items {
		var readAt interface{}
		if n.ReadAt != nil {
			readAt = n.ReadAt.UTC()
		}
		_, err = stmt.ExecContext(ctx,
			n.ID, i, n.Title, n.Content, string(n.Category),
			n.Status, readAt, n.SentAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("caching notification %s: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

// GetNotifications returns the cached notification list in the order
// the server last sent it.
func (c *Cache) GetNotifications(ctx context.Context) ([]model.Notification, error) {
	rows, err := c.db.QueryxContext(ctx, `
		SELECT id, title, content, category, status, read_at, sent_at
		FROM notifications ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying cached notifications: %w", err)
	}
	defer rows.Close()

	var items []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}

	return items, rows.Err()
}

// RecordOrderViewed upserts an order into the recently-viewed list and
// bumps its viewed timestamp.
func (c *Cache) RecordOrderViewed(ctx context.Context, order model.Order) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO recent_orders (
			order_id, sender_name, sender_phone,
			receiver_name, receiver_phone, receiver_address,
			status, viewed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		order.OrderID, order.Sender.Name, order.Sender.Phone,
		order.Receiver.Name, order.Receiver.Phone, order.Receiver.Address,
		order.Status, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording viewed order %s: %w", order.OrderID, err)
	}
	return nil
}

// GetRecentOrders returns the most recently viewed orders, newest first.
func (c *Cache) GetRecentOrders(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := c.db.QueryxContext(ctx, `
		SELECT order_id, sender_name, sender_phone,
			receiver_name, receiver_phone, receiver_address, status
		FROM recent_orders ORDER BY viewed_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		err := rows.Scan(
			&o.OrderID, &o.Sender.Name, &o.Sender.Phone,
			&o.Receiver.Name, &o.Receiver.Phone, &o.Receiver.Address,
			&o.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning recent order row: %w", err)
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

// scanNotification scans a notification row from a sqlx.Rows result set.
func scanNotification(rows *sqlx.Rows) (model.Notification, error) {
	var (
		n        model.Notification
		category string
		readAt   *time.Time
		sentAt   time.Time
	)

	err := rows.Scan(
		&n.ID, &n.Title, &n.Content, &category,
		&n.Status, &readAt, &sentAt,
	)
	if err != nil {
		return model.Notification{}, fmt.Errorf("scanning notification row: %w", err)
	}

	n.Category = model.Category(category).Normalize()
	n.ReadAt = readAt
	n.SentAt = sentAt

	return n, nil
}
