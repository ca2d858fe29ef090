package service

import (
	"context"
	"database/sql"
	goerrors "errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/neoshop/neoshop-platform/internal/api/middleware"
	"github.com/neoshop/neoshop-platform/internal/cache"
	"github.com/neoshop/neoshop-platform/internal/config"
	"github.com/neoshop/neoshop-platform/internal/errors"
	"github.com/neoshop/neoshop-platform/internal/models"
	repository "github.com/neoshop/neoshop-platform/internal/repositories"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, page, pageSize int) ([]*models.Product, int, error)
	ListLowStock(ctx context.Context) ([]*models.Product, error)
}

type productService struct {
	repo      repository.ProductRepository
	cache     cache.Cache
	cfg       *config.CacheConfig
	sanitizer *bluemonday.Policy
}

func NewProductService(repo repository.ProductRepository, c cache.Cache, cfg *config.CacheConfig) ProductService {
	return &productService{
		repo:  repo,
		cache: c,
		cfg:   cfg,
		// Descriptions come from merchandising staff and may carry basic
		// markup; UGCPolicy keeps formatting and strips scripts.
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	product := &models.Product{
		ID:                uuid.New(),
		CategoryID:        req.CategoryID,
		Name:              s.sanitizer.Sanitize(req.Name),
		Description:       s.sanitizer.Sanitize(req.Description),
		Price:             req.Price,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
		SKU:               req.SKU,
		Image:             req.Image,
		Status:            "active",
	}

	if product.Price.IsNegative() {
		return nil, errors.BadRequestError("Product price cannot be negative")
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, errors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	logger := middleware.LoggerFromContext(ctx)

	cacheKey := cache.Key(cache.ProductKeyPrefix, id.String())

	var cached models.Product

	hit, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		logger.Warn("Product cache read failed", slog.String("key", cacheKey), slog.Any("error", err))
	}

	if hit {
		return &cached, nil
	}

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to load product").WithError(err)
	}

	if err := s.cache.Set(ctx, cacheKey, product, s.cfg.ProductTTL); err != nil {
		logger.Warn("Product cache write failed", slog.String("key", cacheKey), slog.Any("error", err))
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	logger := middleware.LoggerFromContext(ctx)

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to load product").WithError(err)
	}

	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}

	if req.Name != nil {
		product.Name = s.sanitizer.Sanitize(*req.Name)
	}

	if req.Description != nil {
		product.Description = s.sanitizer.Sanitize(*req.Description)
	}

	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, errors.BadRequestError("Product price cannot be negative")
		}

		product.Price = *req.Price
	}

	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}

	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}

	if req.Image != nil {
		product.Image = *req.Image
	}

	if req.Status != nil {
		product.Status = *req.Status
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, errors.DatabaseError("Failed to update product").WithError(err)
	}

	// Stale reads are acceptable for a TTL window but not after an
	// explicit edit.
	if err := s.cache.Delete(ctx, cache.Key(cache.ProductKeyPrefix, id.String())); err != nil {
		logger.Warn("Product cache invalidation failed", slog.Any("error", err))
	}

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	logger := middleware.LoggerFromContext(ctx)

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("Product not found").WithError(err)
		}

		return errors.DatabaseError("Failed to delete product").WithError(err)
	}

	if err := s.cache.Delete(ctx, cache.Key(cache.ProductKeyPrefix, id.String())); err != nil {
		logger.Warn("Product cache invalidation failed", slog.Any("error", err))
	}

	return nil
}

func (s *productService) ListProducts(ctx context.Context, page, pageSize int) ([]*models.Product, int, error) {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 || pageSize > 50 {
		pageSize = 10
	}

	products, total, err := s.repo.ListProducts(ctx, page, pageSize)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return products, total, nil
}

func (s *productService) ListLowStock(ctx context.Context) ([]*models.Product, error) {
	products, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch low stock products").WithError(err)
	}

	return products, nil
}
