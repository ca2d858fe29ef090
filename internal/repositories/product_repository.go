package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/neoshop/neoshop-platform/internal/models"
	"github.com/neoshop/neoshop-platform/internal/utils"
)

// ErrInsufficientStock is returned by ReserveStock when the conditional
// decrement touches no row because the remaining quantity is too low.
var ErrInsufficientStock = errors.New("insufficient stock")

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, page, size int) ([]*models.Product, int, error)
	ListLowStock(ctx context.Context) ([]*models.Product, error)
	GetStock(ctx context.Context, id uuid.UUID) (int, error)
	ReserveStock(ctx context.Context, id uuid.UUID, quantity int) error
	ReleaseStock(ctx context.Context, id uuid.UUID, quantity int) error
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `INSERT INTO products (id, category_id, name, description, price, stock_quantity, low_stock_threshold, sku, image, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query,
		product.ID, product.CategoryID, product.Name, product.Description, product.Price,
		product.StockQuantity, product.LowStockThreshold, product.SKU, product.Image, product.Status).
		Scan(&product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	product := &models.Product{}

	query := `
        SELECT p.id, p.category_id, p.name, p.description, p.price,
               p.stock_quantity, p.low_stock_threshold, p.sku, p.image, p.status, p.created_at, p.updated_at,
               c.id, c.name, c.description
        FROM products p
        LEFT JOIN categories c ON p.category_id = c.id
        WHERE p.id = $1`

	var category models.Category

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(
		&product.ID, &product.CategoryID, &product.Name, &product.Description, &product.Price,
		&product.StockQuantity, &product.LowStockThreshold, &product.SKU, &product.Image, &product.Status,
		&product.CreatedAt, &product.UpdatedAt,
		&category.ID, &category.Name, &category.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	product.Category = &category

	return product, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products SET category_id = $1, name = $2, description = $3, price = $4, stock_quantity = $5,
			low_stock_threshold = $6, image = $7, status = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query,
		product.CategoryID, product.Name, product.Description, product.Price, product.StockQuantity,
		product.LowStockThreshold, product.Image, product.Status, product.ID).
		Scan(&product.UpdatedAt)
}

// DeleteProduct retires a product instead of removing the row; order items
// keep their snapshots either way, but carts still referencing it must see
// it as unavailable rather than gone.
func (r *productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE products SET status = 'discontinued', updated_at = NOW() WHERE id = $1`

	result, err := r.DB.ExecContext(dbCtx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
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

func (r *productRepository) ListProducts(ctx context.Context, page, size int) ([]*models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `SELECT COUNT(*) FROM products`

	err := r.DB.QueryRowContext(dbCtx, countQuery).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * size

	query := `
		SELECT p.id, p.category_id, p.name, p.description, p.price,
		p.stock_quantity, p.low_stock_threshold, p.sku, p.image, p.status, p.created_at, p.updated_at,
		c.id, c.name, c.description
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.DB.QueryContext(dbCtx, query, size, offset)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	var products []*models.Product

	for rows.Next() {
		product := &models.Product{}
		category := &models.Category{}

		err := rows.Scan(
			&product.ID, &product.CategoryID, &product.Name, &product.Description, &product.Price,
			&product.StockQuantity, &product.LowStockThreshold, &product.SKU, &product.Image, &product.Status,
			&product.CreatedAt, &product.UpdatedAt,
			&category.ID, &category.Name, &category.Description)
		if err != nil {
			return nil, 0, err
		}

		product.Category = category
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) ListLowStock(ctx context.Context) ([]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, category_id, name, description, price, stock_quantity, low_stock_threshold, sku, image, status, created_at, updated_at
		FROM products
		WHERE status = 'active' AND stock_quantity <= low_stock_threshold
		ORDER BY stock_quantity ASC
	`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}

	defer rows.Close()

	var products []*models.Product

	for rows.Next() {
		product := &models.Product{}

		err := rows.Scan(
			&product.ID, &product.CategoryID, &product.Name, &product.Description, &product.Price,
			&product.StockQuantity, &product.LowStockThreshold, &product.SKU, &product.Image, &product.Status,
			&product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	return products, rows.Err()
}

func (r *productRepository) GetStock(ctx context.Context, id uuid.UUID) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var quantity int

	query := `SELECT stock_quantity FROM products WHERE id = $1`

	if err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&quantity); err != nil {
		return 0, err
	}

	return quantity, nil
}

// ReserveStock decrements available stock with a conditional UPDATE so two
// concurrent reservations can never drive the count negative.
func (r *productRepository) ReserveStock(ctx context.Context, id uuid.UUID, quantity int) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $1, updated_at = NOW()
		WHERE id = $2 AND stock_quantity >= $1
	`

	result, err := r.DB.ExecContext(dbCtx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return ErrInsufficientStock
	}

	return nil
}

// ReleaseStock is the exact inverse of ReserveStock for quantities actually
// reserved.
func (r *productRepository) ReleaseStock(ctx context.Context, id uuid.UUID, quantity int) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.DB.ExecContext(dbCtx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
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
