// Package postgres provides a PostgreSQL-backed implementation of
// ports.OrderRepository on top of a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/broaster-orders/internal/core/domain"
	"github.com/jcmexdev/broaster-orders/internal/core/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS pb_orders (
    id               BIGSERIAL     PRIMARY KEY,
    tracking_code    TEXT          NOT NULL,
    customer_name    TEXT          NOT NULL,
    customer_address TEXT          NOT NULL,
    customer_phone   TEXT          NOT NULL,
    total            NUMERIC(12,2) NOT NULL,
    payment_method   TEXT          NOT NULL,
    status           TEXT          NOT NULL DEFAULT 'Preparing',
    created_at       TIMESTAMPTZ   NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_pb_orders_tracking_code ON pb_orders(tracking_code);
CREATE INDEX IF NOT EXISTS idx_pb_orders_created_at ON pb_orders(created_at);

CREATE TABLE IF NOT EXISTS pb_order_items (
    id           BIGSERIAL     PRIMARY KEY,
    order_id     BIGINT        NOT NULL REFERENCES pb_orders(id),
    product_name TEXT          NOT NULL,
    quantity     INTEGER       NOT NULL CHECK (quantity > 0),
    unit_price   NUMERIC(12,2) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pb_order_items_order_id ON pb_order_items(order_id);
`

// NUMERIC columns travel as text in both directions so that no float ever
// touches a price.
const orderColumns = `id, tracking_code, customer_name, customer_address, customer_phone,
       total::text, payment_method, status, created_at`

var _ ports.OrderRepository = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

// Open connects to databaseURL, verifies the connection and applies the schema.
func Open(ctx context.Context, databaseURL string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: apply schema: %w", err)
	}

	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() {
	r.pool.Close()
}

// Create inserts the order header and its items in a single transaction.
func (r *Repository) Create(ctx context.Context, o *domain.Order) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin create %q: %w", o.TrackingCode, err)
	}
	// No-op once committed.
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO pb_orders
			(tracking_code, customer_name, customer_address, customer_phone, total, payment_method, status, created_at)
		VALUES
			($1, $2, $3, $4, CAST($5::text AS NUMERIC), $6, $7, $8)
		RETURNING id`,
		o.TrackingCode,
		o.CustomerName,
		o.CustomerAddress,
		o.CustomerPhone,
		o.Total.String(),
		o.PaymentMethod,
		string(o.Status),
		o.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert order %q: %w", o.TrackingCode, err)
	}

	batch := &pgx.Batch{}
	for _, l := range o.Lines {
		batch.Queue(`
			INSERT INTO pb_order_items (order_id, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, CAST($4::text AS NUMERIC))`,
			id, l.ProductName, l.Quantity, l.UnitPrice.String())
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("postgres: insert items for %q: %w", o.TrackingCode, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: commit order %q: %w", o.TrackingCode, err)
	}
	return id, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM pb_orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: query orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan orders: %w", err)
	}

	lines, err := r.queryLines(ctx, `
		SELECT order_id, product_name, quantity, unit_price::text
		FROM   pb_order_items
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
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM   pb_orders
		WHERE  tracking_code = $1
		ORDER  BY id DESC
		LIMIT  1`, trackingCode)
	if err != nil {
		return nil, fmt.Errorf("postgres: query order %q: %w", trackingCode, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres: tracking code %q: %w", trackingCode, domain.ErrOrderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: scan order %q: %w", trackingCode, err)
	}

	lines, err := r.queryLines(ctx, `
		SELECT order_id, product_name, quantity, unit_price::text
		FROM   pb_order_items
		WHERE  order_id = $1
		ORDER  BY id`, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return &o, nil
}

// UpdateStatus sets the status of the most recent order with trackingCode.
// A non-empty expected turns the write into a compare-and-set.
func (r *Repository) UpdateStatus(ctx context.Context, trackingCode string, next, expected domain.OrderStatus) (*domain.Order, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE pb_orders
		SET    status = $1
		WHERE  id = (SELECT id FROM pb_orders WHERE tracking_code = $2 ORDER BY id DESC LIMIT 1)
		  AND  ($3::text = '' OR status = $3::text)`,
		string(next), trackingCode, string(expected))
	if err != nil {
		return nil, fmt.Errorf("postgres: update status for %q: %w", trackingCode, err)
	}

	order, err := r.GetByTrackingCode(ctx, trackingCode)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("postgres: %q is %s, expected %s: %w", trackingCode, order.Status, expected, domain.ErrStatusConflict)
	}
	return order, nil
}

func (r *Repository) queryLines(ctx context.Context, q string, args ...any) (map[int64][]domain.OrderLine, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query items: %w", err)
	}
	defer rows.Close()

	lines := make(map[int64][]domain.OrderLine)
	for rows.Next() {
		var (
			l     domain.OrderLine
			price string
		)
		if err := rows.Scan(&l.OrderID, &l.ProductName, &l.Quantity, &price); err != nil {
			return nil, fmt.Errorf("postgres: scan item: %w", err)
		}
		if l.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("postgres: item price %q: %w", price, err)
		}
		lines[l.OrderID] = append(lines[l.OrderID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate items: %w", err)
	}
	return lines, nil
}

func scanOrder(row pgx.CollectableRow) (domain.Order, error) {
	var (
		o      domain.Order
		total  string
		status string
	)
	err := row.Scan(
		&o.ID,
		&o.TrackingCode,
		&o.CustomerName,
		&o.CustomerAddress,
		&o.CustomerPhone,
		&total,
		&o.PaymentMethod,
		&status,
		&o.CreatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return domain.Order{}, fmt.Errorf("total %q: %w", total, err)
	}
	o.Status = domain.OrderStatus(status)
	o.CreatedAt = o.CreatedAt.UTC()
	return o, nil
}
