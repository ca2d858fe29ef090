package service

import (
	"context"
	"database/sql"
	goerrors "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/neoshop/neoshop-platform/internal/api/middleware"
	"github.com/neoshop/neoshop-platform/internal/config"
	"github.com/neoshop/neoshop-platform/internal/errors"
	"github.com/neoshop/neoshop-platform/internal/metrics"
	"github.com/neoshop/neoshop-platform/internal/models"
	"github.com/neoshop/neoshop-platform/internal/pricing"
	repository "github.com/neoshop/neoshop-platform/internal/repositories"
)

// maxMutationAttempts bounds the optimistic retry loop. Three losses in a row
// on a single-owner cart means something unusual is going on; give up and let
// the client retry.
const maxMutationAttempts = 3

type CartService struct {
	repo        repository.CartRepository
	productRepo repository.ProductRepository
	inventory   *InventoryService
	engine      *pricing.Engine
	cfg         *config.Pricing
	metrics     *metrics.Metrics
}

func NewCartService(repo repository.CartRepository, productRepo repository.ProductRepository, inventory *InventoryService, engine *pricing.Engine, cfg *config.Pricing, m *metrics.Metrics) *CartService {
	return &CartService{repo: repo, productRepo: productRepo, inventory: inventory, engine: engine, cfg: cfg, metrics: m}
}

// GetCart returns the owner's cart, lazily creating an empty one on first
// touch. Totals are always computed fresh from the current items and coupon.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.withTotals(cart), nil
}

func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error) {
	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to load product").WithError(err)
	}

	if !product.IsActive() {
		return nil, errors.BadRequestError("Product is not available")
	}

	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		key := req.ProductID.String()

		quantity := req.Quantity
		if existing, ok := cart.Items[key]; ok {
			quantity += existing.Quantity
		}

		if quantity > s.cfg.MaxItemQuantity {
			return errors.QuantityExceededError("Item quantity cannot exceed the per-item limit")
		}

		if quantity > product.StockQuantity {
			return errors.InsufficientStockError("Not enough stock available")
		}

		item, ok := cart.Items[key]
		if !ok {
			// Price is snapshotted on first add and kept stable across
			// later quantity changes.
			item = models.CartItem{
				ProductID: req.ProductID,
				UnitPrice: product.Price,
				AddedAt:   time.Now(),
			}
		}

		item.Quantity = quantity
		cart.Items[key] = item

		return nil
	})
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, req *models.UpdateQuantityRequest) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		key := req.ProductID.String()

		item, ok := cart.Items[key]
		if !ok {
			return errors.ItemNotFoundError("Item not found in the cart")
		}

		if req.Quantity == 0 {
			delete(cart.Items, key)

			return nil
		}

		if req.Quantity > s.cfg.MaxItemQuantity {
			return errors.QuantityExceededError("Item quantity cannot exceed the per-item limit")
		}

		available, err := s.inventory.GetAvailable(ctx, req.ProductID)
		if err != nil {
			return err
		}

		if req.Quantity > available {
			return errors.InsufficientStockError("Not enough stock available")
		}

		item.Quantity = req.Quantity
		cart.Items[key] = item

		return nil
	})
}

// RemoveItem deletes the line if present. Removing an absent item is a no-op,
// not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		delete(cart.Items, productID.String())

		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		cart.Items = make(map[string]models.CartItem)
		cart.Coupon = nil

		return nil
	})
}

func (s *CartService) ApplyCoupon(ctx context.Context, userID uuid.UUID, req *models.ApplyCouponRequest) (*models.Cart, error) {
	if req.Value.IsNegative() {
		return nil, errors.BadRequestError("Coupon value cannot be negative")
	}

	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		// A cart carries at most one coupon; applying replaces any
		// previous one.
		cart.Coupon = &models.Coupon{Code: req.Code, Type: req.Type, Value: req.Value}

		return nil
	})
}

func (s *CartService) RemoveCoupon(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		cart.Coupon = nil

		return nil
	})
}

// mutate runs fn against a fresh read of the cart and writes it back under
// the optimistic version check, retrying on conflict. fn must be pure on the
// cart: it is re-run from scratch each attempt.
func (s *CartService) mutate(ctx context.Context, userID uuid.UUID, fn func(cart *models.Cart) error) (*models.Cart, error) {
	logger := middleware.LoggerFromContext(ctx)

	for attempt := 1; attempt <= maxMutationAttempts; attempt++ {
		cart, err := s.getOrCreate(ctx, userID)
		if err != nil {
			return nil, err
		}

		if err := fn(cart); err != nil {
			return nil, err
		}

		cart.UpdatedAt = time.Now()

		err = s.repo.UpdateCart(ctx, cart)
		if err == nil {
			return s.withTotals(cart), nil
		}

		if !goerrors.Is(err, repository.ErrVersionConflict) {
			return nil, errors.DatabaseError("Failed to update cart").WithError(err)
		}

		s.metrics.CartRetries.Inc()
		logger.Warn("Cart version conflict, retrying",
			slog.String("userId", userID.String()),
			slog.Int("attempt", attempt))
	}

	return nil, errors.ConcurrencyConflictError("Cart is being modified concurrently, please retry")
}

func (s *CartService) getOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.GetCartByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}

	if !goerrors.Is(err, sql.ErrNoRows) {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	cart = &models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items:  make(map[string]models.CartItem),
	}

	if err := s.repo.CreateCart(ctx, cart); err != nil {
		return nil, errors.DatabaseError("Failed to create cart").WithError(err)
	}

	return cart, nil
}

func (s *CartService) withTotals(cart *models.Cart) *models.Cart {
	var rules []models.Coupon
	if cart.Coupon != nil {
		rules = append(rules, *cart.Coupon)
	}

	totals := s.engine.Compute(cart.ItemList(), rules)
	cart.Totals = &totals

	return cart
}
