// Package store provides the data stores behind the analytics facade: a
// Postgres-backed store for production and an in-memory store for tests and
// demos. Both satisfy the read facade plus the rule and inventory write
// interfaces in internal/core.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"insight-engine/internal/core"
)

// NewPool opens a pgx pool from DATABASE_URL and verifies the connection.
func NewPool(ctx context.Context) (*pgxpool.Pool, error) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// PG is the Postgres-backed store. Latest-wins inventory reads lean on the
// (merchant_id, stock_name, date_updated DESC, id DESC) index so a current
// stock lookup never scans the full log.
type PG struct {
	pool *pgxpool.Pool
}

// NewPG wraps an existing pool.
func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

// ── Read facade ───────────────────────────────────────────────────────────────

func (s *PG) GetMerchant(ctx context.Context, merchantID string) (*core.Merchant, error) {
	var m core.Merchant
	err := s.pool.QueryRow(ctx, `
		SELECT merchant_id, merchant_name, join_date, city_name
		FROM merchants
		WHERE merchant_id = $1
	`, merchantID).Scan(&m.MerchantID, &m.MerchantName, &m.JoinDate, &m.CityName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &core.NotFoundError{Resource: "merchant", Key: merchantID}
		}
		return nil, &core.DataUnavailableError{Source: "merchants", Err: err}
	}
	return &m, nil
}

func (s *PG) GetProducts(ctx context.Context, merchantID string) ([]core.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT item_id, item_name, category, item_price, merchant_id
		FROM products
		WHERE merchant_id = $1
		ORDER BY item_id
	`, merchantID)
	if err != nil {
		return nil, &core.DataUnavailableError{Source: "products", Err: err}
	}
	defer rows.Close()

	var products []core.Product
	for rows.Next() {
		var p core.Product
		if err := rows.Scan(&p.ItemID, &p.ItemName, &p.Category, &p.ItemPrice, &p.MerchantID); err != nil {
			return nil, &core.DataUnavailableError{Source: "products", Err: err}
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *PG) GetOrderLines(ctx context.Context, merchantID string, r core.DateRange) ([]core.OrderLine, error) {
	query := `
		SELECT order_id, item_id, merchant_id, item_price, ts
		FROM order_lines
		WHERE merchant_id = $1`
	args := []any{merchantID}

	if !r.From.IsZero() {
		args = append(args, core.Day(r.From))
		query += fmt.Sprintf(" AND ts >= $%d", len(args))
	}
	if !r.To.IsZero() {
		// The To day is included whole.
		args = append(args, core.Day(r.To).AddDate(0, 0, 1))
		query += fmt.Sprintf(" AND ts < $%d", len(args))
	}
	query += " ORDER BY ts, order_id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &core.DataUnavailableError{Source: "order_lines", Err: err}
	}
	defer rows.Close()

	var lines []core.OrderLine
	for rows.Next() {
		var l core.OrderLine
		if err := rows.Scan(&l.OrderID, &l.ItemID, &l.MerchantID, &l.ItemPrice, &l.Timestamp); err != nil {
			return nil, &core.DataUnavailableError{Source: "order_lines", Err: err}
		}
		lines = append(lines, l)
	}
	return lines, nil
}

func (s *PG) GetInventoryLog(ctx context.Context, merchantID string) ([]core.InventoryLogEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT merchant_id, stock_name, stock_quantity, units, date_updated
		FROM inventory_log
		WHERE merchant_id = $1
		ORDER BY date_updated, id
	`, merchantID)
	if err != nil {
		return nil, &core.DataUnavailableError{Source: "inventory_log", Err: err}
	}
	defer rows.Close()

	var entries []core.InventoryLogEntry
	for rows.Next() {
		var e core.InventoryLogEntry
		if err := rows.Scan(&e.MerchantID, &e.StockName, &e.StockQuantity, &e.Units, &e.DateUpdated); err != nil {
			return nil, &core.DataUnavailableError{Source: "inventory_log", Err: err}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *PG) GetNotificationRules(ctx context.Context, merchantID string) ([]core.NotificationRule, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, merchant_id, product_name, threshold, enabled, units
		FROM notification_rules
		WHERE merchant_id = $1
		ORDER BY id
	`, merchantID)
	if err != nil {
		return nil, &core.DataUnavailableError{Source: "notification_rules", Err: err}
	}
	defer rows.Close()

	var rules []core.NotificationRule
	for rows.Next() {
		var r core.NotificationRule
		if err := rows.Scan(&r.ID, &r.MerchantID, &r.ProductName, &r.Threshold, &r.Enabled, &r.Units); err != nil {
			return nil, &core.DataUnavailableError{Source: "notification_rules", Err: err}
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// ── Rule writes ───────────────────────────────────────────────────────────────

func (s *PG) InsertRule(ctx context.Context, r core.NotificationRule) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO notification_rules (merchant_id, product_name, threshold, enabled, units)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, r.MerchantID, r.ProductName, r.Threshold, r.Enabled, r.Units).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert notification rule: %w", err)
	}
	return id, nil
}

func (s *PG) GetRule(ctx context.Context, id int64) (*core.NotificationRule, error) {
	var r core.NotificationRule
	err := s.pool.QueryRow(ctx, `
		SELECT id, merchant_id, product_name, threshold, enabled, units
		FROM notification_rules
		WHERE id = $1
	`, id).Scan(&r.ID, &r.MerchantID, &r.ProductName, &r.Threshold, &r.Enabled, &r.Units)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &core.NotFoundError{Resource: "notification rule", Key: strconv.FormatInt(id, 10)}
		}
		return nil, &core.DataUnavailableError{Source: "notification_rules", Err: err}
	}
	return &r, nil
}

func (s *PG) UpdateRule(ctx context.Context, id int64, threshold *int, enabled *bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notification_rules
		SET threshold = COALESCE($2, threshold),
		    enabled   = COALESCE($3, enabled)
		WHERE id = $1
	`, id, threshold, enabled)
	if err != nil {
		return fmt.Errorf("failed to update notification rule %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &core.NotFoundError{Resource: "notification rule", Key: strconv.FormatInt(id, 10)}
	}
	return nil
}

func (s *PG) DeleteRule(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM notification_rules
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification rule %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &core.NotFoundError{Resource: "notification rule", Key: strconv.FormatInt(id, 10)}
	}
	return nil
}

// ── Inventory writes ──────────────────────────────────────────────────────────

func (s *PG) AppendInventory(ctx context.Context, e core.InventoryLogEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO inventory_log (merchant_id, stock_name, stock_quantity, units, date_updated)
		VALUES ($1, $2, $3, $4, $5)
	`, e.MerchantID, e.StockName, e.StockQuantity, e.Units, e.DateUpdated)
	if err != nil {
		return fmt.Errorf("failed to append inventory entry for %s: %w", e.StockName, err)
	}
	return nil
}

func (s *PG) CurrentStock(ctx context.Context, merchantID, productName string) (*core.InventoryLogEntry, error) {
	var e core.InventoryLogEntry
	err := s.pool.QueryRow(ctx, `
		SELECT merchant_id, stock_name, stock_quantity, units, date_updated
		FROM inventory_log
		WHERE merchant_id = $1 AND stock_name = $2
		ORDER BY date_updated DESC, id DESC
		LIMIT 1
	`, merchantID, productName).Scan(&e.MerchantID, &e.StockName, &e.StockQuantity, &e.Units, &e.DateUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &core.DataUnavailableError{Source: "inventory_log", Err: err}
	}
	return &e, nil
}
