// Package sqlite provides a SQLite-backed implementation of ports.OrderRepository.
//
// WAL mode is enabled on Open so that the admin board can list orders while
// the storefront is writing new ones.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/broaster-orders/internal/core/domain"
	"github.com/jcmexdev/broaster-orders/internal/core/ports"

	// Register the pure-Go SQLite driver (no CGO needed in Alpine images).
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup.
const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Customer-facing code (PB + 6 digits). Not UNIQUE: two confirmations
    -- sharing the trailing digits of their timestamp collide.
    tracking_code    TEXT    NOT NULL,

    customer_name    TEXT    NOT NULL,
    customer_address TEXT    NOT NULL,
    customer_phone   TEXT    NOT NULL,

    -- Decimal rendered as TEXT to keep money exact.
    total            TEXT    NOT NULL,
    payment_method   TEXT    NOT NULL,
    status           TEXT    NOT NULL DEFAULT 'Preparing',
    created_at       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_tracking_code ON orders(tracking_code);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_lines (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id     INTEGER NOT NULL REFERENCES orders(id),
    product_name TEXT    NOT NULL,
    quantity     INTEGER NOT NULL CHECK (quantity > 0),
    unit_price   TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_lines_order_id ON order_lines(order_id);
`

const orderColumns = `id, tracking_code, customer_name, customer_address, customer_phone,
       total, payment_method, status, created_at`

var _ ports.OrderRepository = (*Repository)(nil)

// Repository is the SQLite implementation of ports.OrderRepository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and applies
// the schema.
//
//	repo, err := sqlite.Open("./data/orders.db")
func Open(path string) (*Repository, error) {
	// busy_timeout waits for locks instead of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// Single writer connection; every method finishes one statement before
	// starting the next so this never self-deadlocks.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// Create inserts the order row and all its lines in one transaction.
func (r *Repository) Create(ctx context.Context, o *domain.Order) (id int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin create %q: %w", o.TrackingCode, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertOrder = `
		INSERT INTO orders
			(tracking_code, customer_name, customer_address, customer_phone, total, payment_method, status, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := tx.ExecContext(ctx, insertOrder,
		o.TrackingCode,
		o.CustomerName,
		o.CustomerAddress,
		o.CustomerPhone,
		o.Total.String(),
		o.PaymentMethod,
		string(o.Status),
		formatTime(o.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert order %q: %w", o.TrackingCode, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: order id for %q: %w", o.TrackingCode, err)
	}

	const insertLine = `
		INSERT INTO order_lines (order_id, product_name, quantity, unit_price)
		VALUES (?, ?, ?, ?)`

	for _, l := range o.Lines {
		if _, err = tx.ExecContext(ctx, insertLine, id, l.ProductName, l.Quantity, l.UnitPrice.String()); err != nil {
			return 0, fmt.Errorf("sqlite: insert line %q for %q: %w", l.ProductName, o.TrackingCode, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit order %q: %w", o.TrackingCode, err)
	}
	return id, nil
}

// List returns all orders with their lines, newest first.
func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}

	lines, err := r.queryLines(ctx, `
		SELECT order_id, product_name, quantity, unit_price
		FROM   order_lines
		ORDER  BY order_id, id`)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}
	return orders, nil
}

// GetByTrackingCode returns the most recent order carrying trackingCode.
func (r *Repository) GetByTrackingCode(ctx context.Context, trackingCode string) (*domain.Order, error) {
	orders, err := r.queryOrders(ctx, `
		SELECT `+orderColumns+`
		FROM   orders
		WHERE  tracking_code = ?
		ORDER  BY id DESC
		LIMIT  1`, trackingCode)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("sqlite: tracking code %q: %w", trackingCode, domain.ErrOrderNotFound)
	}
	o := orders[0]

	lines, err := r.queryLines(ctx, `
		SELECT order_id, product_name, quantity, unit_price
		FROM   order_lines
		WHERE  order_id = ?
		ORDER  BY id`, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return &o, nil
}

// UpdateStatus overwrites the status of the most recent order with trackingCode.
func (r *Repository) UpdateStatus(ctx context.Context, trackingCode string, next, expected domain.OrderStatus) (*domain.Order, error) {
	const q = `
		UPDATE orders
		SET    status = ?
		WHERE  id = (SELECT id FROM orders WHERE tracking_code = ? ORDER BY id DESC LIMIT 1)
		  AND  (? = '' OR status = ?)`

	res, err := r.db.ExecContext(ctx, q, string(next), trackingCode, string(expected), string(expected))
	if err != nil {
		return nil, fmt.Errorf("sqlite: update status for %q: %w", trackingCode, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: update status for %q: %w", trackingCode, err)
	}

	order, err := r.GetByTrackingCode(ctx, trackingCode)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("sqlite: %q is %s, expected %s: %w", trackingCode, order.Status, expected, domain.ErrStatusConflict)
	}
	return order, nil
}

func (r *Repository) queryOrders(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var (
			o         domain.Order
			status    string
			createdAt string
		)
		if err := rows.Scan(
			&o.ID,
			&o.TrackingCode,
			&o.CustomerName,
			&o.CustomerAddress,
			&o.CustomerPhone,
			&o.Total,
			&o.PaymentMethod,
			&status,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan order: %w", err)
		}
		o.Status = domain.OrderStatus(status)
		if o.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate orders: %w", err)
	}
	return orders, nil
}

func (r *Repository) queryLines(ctx context.Context, q string, args ...any) (map[int64][]domain.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query lines: %w", err)
	}
	defer rows.Close()

	lines := make(map[int64][]domain.OrderLine)
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.OrderID, &l.ProductName, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("sqlite: scan line: %w", err)
		}
		lines[l.OrderID] = append(lines[l.OrderID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate lines: %w", err)
	}
	return lines, nil
}

// applySchema runs the DDL statements once. Idempotent due to IF NOT EXISTS.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}
