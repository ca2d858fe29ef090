package service

import (
	"context"
	"database/sql"
	goerrors "errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/neoshop/neoshop-platform/internal/api/middleware"
	"github.com/neoshop/neoshop-platform/internal/errors"
	"github.com/neoshop/neoshop-platform/internal/metrics"
	"github.com/neoshop/neoshop-platform/internal/models"
	repository "github.com/neoshop/neoshop-platform/internal/repositories"
)

// InventoryService owns stock movements. Reservations are conditional at the
// database so concurrent orders cannot oversell; releases are the
// compensating move when an order is cancelled or returned.
type InventoryService struct {
	productRepo repository.ProductRepository
	metrics     *metrics.Metrics
}

func NewInventoryService(productRepo repository.ProductRepository, m *metrics.Metrics) *InventoryService {
	return &InventoryService{productRepo: productRepo, metrics: m}
}

func (s *InventoryService) GetAvailable(ctx context.Context, productID uuid.UUID) (int, error) {
	quantity, err := s.productRepo.GetStock(ctx, productID)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return 0, errors.NotFoundError("Product not found").WithError(err)
		}

		return 0, errors.DatabaseError("Failed to read stock").WithError(err)
	}

	return quantity, nil
}

func (s *InventoryService) Reserve(ctx context.Context, productID uuid.UUID, quantity int) error {
	logger := middleware.LoggerFromContext(ctx)

	if quantity <= 0 {
		return errors.BadRequestError("Reservation quantity must be positive")
	}

	if err := s.productRepo.ReserveStock(ctx, productID, quantity); err != nil {
		if goerrors.Is(err, repository.ErrInsufficientStock) {
			s.metrics.StockConflicts.Inc()
			logger.Warn("Stock reservation rejected",
				slog.String("productId", productID.String()),
				slog.Int("quantity", quantity))

			return errors.InsufficientStockError("Not enough stock available").WithError(err)
		}

		return errors.DatabaseError("Failed to reserve stock").WithError(err)
	}

	return nil
}

// Release returns previously reserved units to the pool. It is the undo of
// Reserve and must never be called with units that were not reserved first.
func (s *InventoryService) Release(ctx context.Context, productID uuid.UUID, quantity int) error {
	logger := middleware.LoggerFromContext(ctx)

	if quantity <= 0 {
		return errors.BadRequestError("Release quantity must be positive")
	}

	if err := s.productRepo.ReleaseStock(ctx, productID, quantity); err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("Product not found").WithError(err)
		}

		return errors.DatabaseError("Failed to release stock").WithError(err)
	}

	logger.Info("Stock released",
		slog.String("productId", productID.String()),
		slog.Int("quantity", quantity))

	return nil
}

// ReleaseItems restores stock for every line of an order, logging and
// continuing on per-product failures so one bad row cannot strand the rest.
func (s *InventoryService) ReleaseItems(ctx context.Context, items []models.OrderItem) {
	logger := middleware.LoggerFromContext(ctx)

	for _, item := range items {
		if err := s.Release(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Error("Failed to restore stock for order item",
				slog.String("productId", item.ProductID.String()),
				slog.Int("quantity", item.Quantity),
				slog.Any("error", err))
		}
	}
}
