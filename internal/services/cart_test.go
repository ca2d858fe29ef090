package service_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/neoshop/neoshop-platform/internal/config"
	appErrors "github.com/neoshop/neoshop-platform/internal/errors"
	"github.com/neoshop/neoshop-platform/internal/metrics"
	"github.com/neoshop/neoshop-platform/internal/models"
	"github.com/neoshop/neoshop-platform/internal/pricing"
	repository "github.com/neoshop/neoshop-platform/internal/repositories"
	service "github.com/neoshop/neoshop-platform/internal/services"
	"github.com/neoshop/neoshop-platform/internal/services/mocks"
)

func pricingConfig() *config.Pricing {
	return &config.Pricing{
		TaxRate:               0.18,
		FreeShippingThreshold: 500,
		ShippingFee:           50,
		MaxItemQuantity:       10,
		Currency:              "inr",
	}
}

func newCartService(t *testing.T) (*service.CartService, *mocks.CartRepository, *mocks.ProductRepository) {
	t.Helper()

	cartRepo := &mocks.CartRepository{}
	productRepo := &mocks.ProductRepository{}
	cfg := pricingConfig()
	m := metrics.New()

	inventory := service.NewInventoryService(productRepo, m)
	svc := service.NewCartService(cartRepo, productRepo, inventory, pricing.NewEngine(cfg), cfg, m)

	return svc, cartRepo, productRepo
}

func activeProduct(id uuid.UUID, price int64, stock int) *models.Product {
	return &models.Product{
		ID:            id,
		Name:          "Wireless Mouse",
		SKU:           "NS-MSE-001",
		Price:         decimal.NewFromInt(price),
		StockQuantity: stock,
		Status:        "active",
	}
}

func cartWith(userID uuid.UUID, items map[string]models.CartItem) *models.Cart {
	if items == nil {
		items = make(map[string]models.CartItem)
	}

	return &models.Cart{
		ID:      uuid.New(),
		UserID:  userID,
		Items:   items,
		Version: 1,
	}
}

func TestGetCart(t *testing.T) {
	svc, cartRepo, _ := newCartService(t)
	ctx := t.Context()
	userID := uuid.New()

	t.Run("Existing Cart With Totals", func(t *testing.T) {
		// Arrange
		productID := uuid.New()
		existing := cartWith(userID, map[string]models.CartItem{
			productID.String(): {ProductID: productID, Quantity: 1, UnitPrice: decimal.NewFromInt(1000)},
		})
		cartRepo.On("GetCartByUserID", ctx, userID).Return(existing, nil).Once()

		// Act
		cart, err := svc.GetCart(ctx, userID)

		// Assert
		require.NoError(t, err)
		require.NotNil(t, cart.Totals)
		assert.True(t, cart.Totals.Subtotal.Equal(decimal.NewFromInt(1000)))
		assert.True(t, cart.Totals.Tax.Equal(decimal.NewFromInt(180)))
		assert.True(t, cart.Totals.Shipping.IsZero(), "order above threshold ships free")
		assert.True(t, cart.Totals.Total.Equal(decimal.NewFromInt(1180)))
		cartRepo.AssertExpectations(t)
	})

	t.Run("Lazily Creates Missing Cart", func(t *testing.T) {
		// Arrange
		cartRepo.On("GetCartByUserID", ctx, userID).Return(nil, sql.ErrNoRows).Once()
		cartRepo.On("CreateCart", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		// Act
		cart, err := svc.GetCart(ctx, userID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, userID, cart.UserID)
		assert.Empty(t, cart.Items)
		require.NotNil(t, cart.Totals)
		assert.True(t, cart.Totals.Total.IsZero(), "empty cart totals are all zero")
		assert.True(t, cart.Totals.Shipping.IsZero(), "empty cart owes no shipping")
		cartRepo.AssertExpectations(t)
	})
}

func TestAddItem(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()
	productID := uuid.New()

	t.Run("Merges Quantities For Same Product", func(t *testing.T) {
		// Arrange
		svc, cartRepo, productRepo := newCartService(t)
		existing := cartWith(userID, map[string]models.CartItem{
			productID.String(): {ProductID: productID, Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		})

		productRepo.On("GetProductByID", ctx, productID).Return(activeProduct(productID, 120, 10), nil).Once()
		cartRepo.On("GetCartByUserID", ctx, userID).Return(existing, nil).Once()
		cartRepo.On("UpdateCart", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		// Act
		cart, err := svc.AddItem(ctx, userID, &models.AddItemRequest{ProductID: productID, Quantity: 3})

		// Assert
		require.NoError(t, err)
		item := cart.Items[productID.String()]
		assert.Equal(t, 5, item.Quantity, "quantities merge into a single line")
		assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(100)), "price stays at the first-add snapshot")
		assert.Len(t, cart.Items, 1)
		cartRepo.AssertExpectations(t)
		productRepo.AssertExpectations(t)
	})

	t.Run("Rejects Quantity Above Per-Item Limit", func(t *testing.T) {
		// Arrange
		svc, cartRepo, productRepo := newCartService(t)
		existing := cartWith(userID, map[string]models.CartItem{
			productID.String(): {ProductID: productID, Quantity: 8, UnitPrice: decimal.NewFromInt(100)},
		})

		productRepo.On("GetProductByID", ctx, productID).Return(activeProduct(productID, 100, 100), nil).Once()
		cartRepo.On("GetCartByUserID", ctx, userID).Return(existing, nil).Once()

		// Act
		cart, err := svc.AddItem(ctx, userID, &models.AddItemRequest{ProductID: productID, Quantity: 3})

		// Assert
		require.Error(t, err)
		assert.Nil(t, cart)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeQuantityExceeded))
		cartRepo.AssertNotCalled(t, "UpdateCart", mock.Anything, mock.Anything)
	})

	t.Run("Rejects Quantity Above Available Stock", func(t *testing.T) {
		// Arrange
		svc, cartRepo, productRepo := newCartService(t)

		productRepo.On("GetProductByID", ctx, productID).Return(activeProduct(productID, 100, 5), nil).Once()
		cartRepo.On("GetCartByUserID", ctx, userID).Return(cartWith(userID, nil), nil).Once()

		// Act
		cart, err := svc.AddItem(ctx, userID, &models.AddItemRequest{ProductID: productID, Quantity: 6})

		// Assert
		require.Error(t, err)
		assert.Nil(t, cart)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeInsufficientStock))
	})

	t.Run("Rejects Inactive Product", func(t *testing.T) {
		// Arrange
		svc, _, productRepo := newCartService(t)
		inactive := activeProduct(productID, 100, 5)
		inactive.Status = "discontinued"

		productRepo.On("GetProductByID", ctx, productID).Return(inactive, nil).Once()

		// Act
		_, err := svc.AddItem(ctx, userID, &models.AddItemRequest{ProductID: productID, Quantity: 1})

		// Assert
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeBadRequest))
	})

	t.Run("Retries On Version Conflict", func(t *testing.T) {
		// Arrange: first write loses the race, re-read and second write win.
		svc, cartRepo, productRepo := newCartService(t)

		productRepo.On("GetProductByID", ctx, productID).Return(activeProduct(productID, 100, 10), nil).Once()
		// each attempt re-reads the cart; hand out a fresh copy per read
		cartRepo.On("GetCartByUserID", ctx, userID).Return(cartWith(userID, nil), nil).Once()
		cartRepo.On("GetCartByUserID", ctx, userID).Return(cartWith(userID, nil), nil).Once()
		cartRepo.On("UpdateCart", ctx, mock.AnythingOfType("*models.Cart")).Return(repository.ErrVersionConflict).Once()
		cartRepo.On("UpdateCart", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		// Act
		cart, err := svc.AddItem(ctx, userID, &models.AddItemRequest{ProductID: productID, Quantity: 2})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 2, cart.Items[productID.String()].Quantity)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Gives Up After Repeated Conflicts", func(t *testing.T) {
		// Arrange
		svc, cartRepo, productRepo := newCartService(t)

		productRepo.On("GetProductByID", ctx, productID).Return(activeProduct(productID, 100, 10), nil).Once()
		cartRepo.On("GetCartByUserID", ctx, userID).Return(cartWith(userID, nil), nil).Times(3)
		cartRepo.On("UpdateCart", ctx, mock.AnythingOfType("*models.Cart")).Return(repository.ErrVersionConflict).Times(3)

		// Act
		cart, err := svc.AddItem(ctx, userID, &models.AddItemRequest{ProductID: productID, Quantity: 2})

		// Assert
		require.Error(t, err)
		assert.Nil(t, cart)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeConcurrencyConflict))
		cartRepo.AssertExpectations(t)
	})
}

func TestUpdateQuantity(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()
	productID := uuid.New()

	t.Run("Zero Quantity Removes The Line", func(t *testing.T) {
		// Arrange
		svc, cartRepo, _ := newCartService(t)
		existing := cartWith(userID, map[string]models.CartItem{
			productID.String(): {ProductID: productID, Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		})

		cartRepo.On("GetCartByUserID", ctx, userID).Return(existing, nil).Once()
		cartRepo.On("UpdateCart", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		// Act
		cart, err := svc.UpdateQuantity(ctx, userID, &models.UpdateQuantityRequest{ProductID: productID, Quantity: 0})

		// Assert
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Unknown Item", func(t *testing.T) {
		// Arrange
		svc, cartRepo, _ := newCartService(t)
		cartRepo.On("GetCartByUserID", ctx, userID).Return(cartWith(userID, nil), nil).Once()

		// Act
		cart, err := svc.UpdateQuantity(ctx, userID, &models.UpdateQuantityRequest{ProductID: productID, Quantity: 2})

		// Assert
		require.Error(t, err)
		assert.Nil(t, cart)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeItemNotFound))
	})

	t.Run("Checks Live Stock", func(t *testing.T) {
		// Arrange: 5 units in the cart is fine until stock drops below it.
		svc, cartRepo, productRepo := newCartService(t)
		existing := cartWith(userID, map[string]models.CartItem{
			productID.String(): {ProductID: productID, Quantity: 5, UnitPrice: decimal.NewFromInt(100)},
		})

		cartRepo.On("GetCartByUserID", ctx, userID).Return(existing, nil).Once()
		productRepo.On("GetStock", ctx, productID).Return(3, nil).Once()

		// Act
		_, err := svc.UpdateQuantity(ctx, userID, &models.UpdateQuantityRequest{ProductID: productID, Quantity: 4})

		// Assert
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeInsufficientStock))
	})
}

func TestRemoveItem(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()
	productID := uuid.New()

	t.Run("Removing Absent Item Is Idempotent", func(t *testing.T) {
		// Arrange
		svc, cartRepo, _ := newCartService(t)
		cartRepo.On("GetCartByUserID", ctx, userID).Return(cartWith(userID, nil), nil).Once()
		cartRepo.On("UpdateCart", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		// Act
		cart, err := svc.RemoveItem(ctx, userID, productID)

		// Assert
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	})
}

func TestApplyCoupon(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()
	productID := uuid.New()

	t.Run("Percentage Coupon Reflected In Totals", func(t *testing.T) {
		// Arrange
		svc, cartRepo, _ := newCartService(t)
		existing := cartWith(userID, map[string]models.CartItem{
			productID.String(): {ProductID: productID, Quantity: 1, UnitPrice: decimal.NewFromInt(1000)},
		})

		cartRepo.On("GetCartByUserID", ctx, userID).Return(existing, nil).Once()
		cartRepo.On("UpdateCart", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		// Act
		cart, err := svc.ApplyCoupon(ctx, userID, &models.ApplyCouponRequest{
			Code:  "SAVE10",
			Type:  models.DiscountTypePercentage,
			Value: decimal.NewFromInt(10),
		})

		// Assert
		require.NoError(t, err)
		require.NotNil(t, cart.Coupon)
		assert.True(t, cart.Totals.Discount.Equal(decimal.NewFromInt(100)))
		assert.True(t, cart.Totals.Total.Equal(decimal.NewFromInt(1080)))
	})

	t.Run("Negative Value Rejected", func(t *testing.T) {
		// Arrange
		svc, _, _ := newCartService(t)

		// Act
		_, err := svc.ApplyCoupon(ctx, userID, &models.ApplyCouponRequest{
			Code:  "BROKEN",
			Type:  models.DiscountTypeFixed,
			Value: decimal.NewFromInt(-5),
		})

		// Assert
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeBadRequest))
	})
}

func TestCartDatabaseFailures(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()

	t.Run("Load Failure Is A Database Error", func(t *testing.T) {
		// Arrange
		svc, cartRepo, _ := newCartService(t)
		dbErr := errors.New("connection refused")
		cartRepo.On("GetCartByUserID", ctx, userID).Return(nil, dbErr).Once()

		// Act
		cart, err := svc.GetCart(ctx, userID)

		// Assert
		require.Error(t, err)
		assert.Nil(t, cart)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeDatabaseError))
		assert.ErrorIs(t, err, dbErr)
	})
}
