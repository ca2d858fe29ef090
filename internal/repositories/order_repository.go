package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/neoshop/neoshop-platform/internal/models"
	"github.com/neoshop/neoshop-platform/internal/utils"
)

// ErrDuplicateOrderNumber surfaces a unique-constraint violation on the
// generated order number so the caller can regenerate and retry.
var ErrDuplicateOrderNumber = errors.New("order number already exists")

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int, status models.OrderStatus) ([]models.Order, int, error)
	UpdateStatus(ctx context.Context, order *models.Order, entry models.TimelineEntry) error
	UpdatePaymentByIntent(ctx context.Context, transactionID string, status models.PaymentStatus, paidAt *time.Time) error
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

// CreateOrder persists the order, its item snapshots and the creation
// timeline entry in a single transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	shippingJSON, err := json.Marshal(order.Shipping)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping: %w", err)
	}

	paymentJSON, err := json.Marshal(order.Payment)
	if err != nil {
		return fmt.Errorf("failed to marshal payment: %w", err)
	}

	var couponJSON []byte
	if order.Coupon != nil {
		if couponJSON, err = json.Marshal(order.Coupon); err != nil {
			return fmt.Errorf("failed to marshal coupon: %w", err)
		}
	}

	query := `
		INSERT INTO orders (id, user_id, order_number, status, subtotal, tax, shipping_fee, discount, total,
			shipping, payment, coupon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, query,
		order.ID, order.UserID, order.OrderNumber, order.Status,
		order.Totals.Subtotal, order.Totals.Tax, order.Totals.Shipping, order.Totals.Discount, order.Totals.Total,
		shippingJSON, paymentJSON, couponJSON).
		Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateOrderNumber
		}

		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, name, sku, image, quantity, unit_price, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, item := range order.Items {
		_, err := tx.ExecContext(dbCtx, itemQuery,
			order.ID, item.ProductID, item.Name, item.SKU, item.Image, item.Quantity, item.UnitPrice, item.Total)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	timelineQuery := `
		INSERT INTO order_timeline (order_id, status, timestamp, note)
		VALUES ($1, $2, $3, $4)
	`

	for _, entry := range order.Timeline {
		_, err := tx.ExecContext(dbCtx, timelineQuery, order.ID, entry.Status, entry.Timestamp, entry.Note)
		if err != nil {
			return fmt.Errorf("failed to insert timeline entry: %w", err)
		}
	}

	return tx.Commit()
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order := &models.Order{ID: id}

	query := `
		SELECT user_id, order_number, status, subtotal, tax, shipping_fee, discount, total,
			shipping, payment, coupon, cancellation_reason, return_reason, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var shippingJSON, paymentJSON, couponJSON []byte

	var cancellationReason, returnReason sql.NullString

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(
		&order.UserID, &order.OrderNumber, &order.Status,
		&order.Totals.Subtotal, &order.Totals.Tax, &order.Totals.Shipping, &order.Totals.Discount, &order.Totals.Total,
		&shippingJSON, &paymentJSON, &couponJSON, &cancellationReason, &returnReason,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	if err := json.Unmarshal(shippingJSON, &order.Shipping); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipping: %w", err)
	}

	if err := json.Unmarshal(paymentJSON, &order.Payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment: %w", err)
	}

	if len(couponJSON) > 0 {
		if err := json.Unmarshal(couponJSON, &order.Coupon); err != nil {
			return nil, fmt.Errorf("failed to unmarshal coupon: %w", err)
		}
	}

	order.CancellationReason = cancellationReason.String
	order.ReturnReason = returnReason.String

	if order.Items, err = r.getOrderItems(dbCtx, id); err != nil {
		return nil, err
	}

	if order.Timeline, err = r.getTimeline(dbCtx, id); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) getOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	query := `
		SELECT product_id, name, sku, image, quantity, unit_price, total
		FROM order_items
		WHERE order_id = $1
		ORDER BY name
	`

	rows, err := r.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get the order items: %w", err)
	}

	defer rows.Close()

	var items []models.OrderItem

	for rows.Next() {
		var item models.OrderItem

		err := rows.Scan(&item.ProductID, &item.Name, &item.SKU, &item.Image, &item.Quantity, &item.UnitPrice, &item.Total)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *orderRepository) getTimeline(ctx context.Context, orderID uuid.UUID) ([]models.TimelineEntry, error) {
	query := `
		SELECT status, timestamp, note
		FROM order_timeline
		WHERE order_id = $1
		ORDER BY timestamp, id
	`

	rows, err := r.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get the order timeline: %w", err)
	}

	defer rows.Close()

	var timeline []models.TimelineEntry

	for rows.Next() {
		var entry models.TimelineEntry

		var note sql.NullString

		if err := rows.Scan(&entry.Status, &entry.Timestamp, &note); err != nil {
			return nil, fmt.Errorf("failed to scan timeline entry: %w", err)
		}

		entry.Note = note.String
		timeline = append(timeline, entry)
	}

	return timeline, rows.Err()
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int, status models.OrderStatus) ([]models.Order, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `SELECT COUNT(*) FROM orders WHERE user_id = $1 AND ($2 = '' OR status = $2)`

	if err := r.DB.QueryRowContext(dbCtx, countQuery, userID, string(status)).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * size

	query := `
		SELECT id, order_number, status, subtotal, tax, shipping_fee, discount, total,
			shipping, payment, coupon, created_at, updated_at
		FROM orders
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.DB.QueryContext(dbCtx, query, userID, string(status), size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	var orders []models.Order

	for rows.Next() {
		order := models.Order{UserID: userID}

		var shippingJSON, paymentJSON, couponJSON []byte

		err := rows.Scan(&order.ID, &order.OrderNumber, &order.Status,
			&order.Totals.Subtotal, &order.Totals.Tax, &order.Totals.Shipping, &order.Totals.Discount, &order.Totals.Total,
			&shippingJSON, &paymentJSON, &couponJSON, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan the orders: %w", err)
		}

		if err := json.Unmarshal(shippingJSON, &order.Shipping); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal shipping: %w", err)
		}

		if err := json.Unmarshal(paymentJSON, &order.Payment); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal payment: %w", err)
		}

		if len(couponJSON) > 0 {
			if err := json.Unmarshal(couponJSON, &order.Coupon); err != nil {
				return nil, 0, fmt.Errorf("failed to unmarshal coupon: %w", err)
			}
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range orders {
		if orders[i].Items, err = r.getOrderItems(dbCtx, orders[i].ID); err != nil {
			return nil, 0, err
		}
	}

	return orders, total, nil
}

// UpdateStatus writes the order's current status, reasons and payment block
// and appends the given timeline entry, atomically. Exactly one timeline row
// per status mutation.
func (r *orderRepository) UpdateStatus(ctx context.Context, order *models.Order, entry models.TimelineEntry) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	paymentJSON, err := json.Marshal(order.Payment)
	if err != nil {
		return fmt.Errorf("failed to marshal payment: %w", err)
	}

	shippingJSON, err := json.Marshal(order.Shipping)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping: %w", err)
	}

	query := `
		UPDATE orders
		SET status = $1, payment = $2, shipping = $3, cancellation_reason = $4, return_reason = $5, updated_at = NOW()
		WHERE id = $6
	`

	result, err := tx.ExecContext(dbCtx, query,
		order.Status, paymentJSON, shippingJSON,
		nullIfEmpty(order.CancellationReason), nullIfEmpty(order.ReturnReason), order.ID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return sql.ErrNoRows
	}

	timelineQuery := `
		INSERT INTO order_timeline (order_id, status, timestamp, note)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := tx.ExecContext(dbCtx, timelineQuery, order.ID, entry.Status, entry.Timestamp, entry.Note); err != nil {
		return fmt.Errorf("failed to insert timeline entry: %w", err)
	}

	return tx.Commit()
}

// UpdatePaymentByIntent merges a payment outcome into the order matching the
// gateway transaction id. The webhook path only knows the payment intent, not
// the order id, so the match happens inside the payment document.
func (r *orderRepository) UpdatePaymentByIntent(ctx context.Context, transactionID string, status models.PaymentStatus, paidAt *time.Time) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	patch := struct {
		Status models.PaymentStatus `json:"status"`
		PaidAt *time.Time           `json:"paid_at,omitempty"`
	}{Status: status, PaidAt: paidAt}

	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to marshal payment patch: %w", err)
	}

	query := `
		UPDATE orders
		SET payment = payment || $2::jsonb, updated_at = NOW()
		WHERE payment->>'transaction_id' = $1
	`

	result, err := r.DB.ExecContext(dbCtx, query, transactionID, patchJSON)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
