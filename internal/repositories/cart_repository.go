package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/neoshop/neoshop-platform/internal/models"
	"github.com/neoshop/neoshop-platform/internal/utils"
)

// ErrVersionConflict is returned when an UpdateCart loses the optimistic
// version race. Callers re-read the cart and reapply their mutation.
var ErrVersionConflict = errors.New("cart was modified concurrently")

type CartRepository interface {
	CreateCart(ctx context.Context, cart *models.Cart) error
	GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	UpdateCart(ctx context.Context, cart *models.Cart) error
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

func (r *cartRepository) CreateCart(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}

	couponJSON, err := marshalNullable(cart.Coupon)
	if err != nil {
		return fmt.Errorf("failed to marshal coupon: %w", err)
	}

	query := `
		INSERT INTO carts (id, user_id, items, coupon, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 1, NOW(), NOW())
		RETURNING version, created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, cart.ID, cart.UserID, itemsJSON, couponJSON).
		Scan(&cart.Version, &cart.CreatedAt, &cart.UpdatedAt)
}

func (r *cartRepository) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, items, coupon, version, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`

	cart := &models.Cart{}

	var itemsJSON []byte

	var couponJSON []byte

	err := r.DB.QueryRowContext(dbCtx, query, userID).
		Scan(&cart.ID, &cart.UserID, &itemsJSON, &couponJSON, &cart.Version, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &cart.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart items: %w", err)
	}

	if len(couponJSON) > 0 {
		if err := json.Unmarshal(couponJSON, &cart.Coupon); err != nil {
			return nil, fmt.Errorf("failed to unmarshal coupon: %w", err)
		}
	}

	return cart, nil
}

// UpdateCart persists the cart only when its version still matches the one it
// was read at. On success the in-memory version is bumped to match the row.
func (r *cartRepository) UpdateCart(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}

	couponJSON, err := marshalNullable(cart.Coupon)
	if err != nil {
		return fmt.Errorf("failed to marshal coupon: %w", err)
	}

	query := `
		UPDATE carts
		SET items = $1, coupon = $2, version = version + 1, updated_at = NOW()
		WHERE id = $3 AND version = $4
	`

	result, err := r.DB.ExecContext(dbCtx, query, itemsJSON, couponJSON, cart.ID, cart.Version)
	if err != nil {
		return fmt.Errorf("failed to update the cart: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return ErrVersionConflict
	}

	cart.Version++

	return nil
}

func marshalNullable(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}

	if coupon, ok := v.(*models.Coupon); ok && coupon == nil {
		return nil, nil
	}

	return json.Marshal(v)
}
