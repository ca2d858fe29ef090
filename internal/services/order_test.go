package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v81"

	appErrors "github.com/neoshop/neoshop-platform/internal/errors"
	"github.com/neoshop/neoshop-platform/internal/metrics"
	"github.com/neoshop/neoshop-platform/internal/models"
	"github.com/neoshop/neoshop-platform/internal/pricing"
	repository "github.com/neoshop/neoshop-platform/internal/repositories"
	service "github.com/neoshop/neoshop-platform/internal/services"
	"github.com/neoshop/neoshop-platform/internal/services/mocks"
)

type orderFixture struct {
	svc         *service.OrderService
	orderRepo   *mocks.OrderRepository
	productRepo *mocks.ProductRepository
	userRepo    *mocks.UserRepository
	cartRepo    *mocks.CartRepository
	payments    *mocks.StripeClient
	email       *mocks.EmailService
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	cfg := pricingConfig()
	cfg.ReturnWindow = 720 * time.Hour

	f := &orderFixture{
		orderRepo:   &mocks.OrderRepository{},
		productRepo: &mocks.ProductRepository{},
		userRepo:    &mocks.UserRepository{},
		cartRepo:    &mocks.CartRepository{},
		payments:    &mocks.StripeClient{},
		email:       &mocks.EmailService{},
	}

	m := metrics.New()
	engine := pricing.NewEngine(cfg)
	inventory := service.NewInventoryService(f.productRepo, m)
	cartService := service.NewCartService(f.cartRepo, f.productRepo, inventory, engine, cfg, m)

	f.svc = service.NewOrderService(
		f.orderRepo, f.productRepo, f.userRepo,
		cartService, inventory, f.payments, f.email, cfg, m)

	return f
}

func shippingAddress() models.Address {
	return models.Address{
		Name:       "Asha Rao",
		Street:     "12 MG Road",
		City:       "Bengaluru",
		State:      "KA",
		PostalCode: "560001",
		Country:    "IN",
	}
}

func deliveredOrder(userID uuid.UUID, deliveredAgo time.Duration) *models.Order {
	now := time.Now()

	return &models.Order{
		ID:          uuid.New(),
		UserID:      userID,
		OrderNumber: "NS-20260801-WXYZ",
		Status:      models.OrderStatusDelivered,
		Items: []models.OrderItem{
			{ProductID: uuid.New(), Name: "Wireless Mouse", Quantity: 2, UnitPrice: decimal.NewFromInt(500), Total: decimal.NewFromInt(1000)},
		},
		Totals: models.PricingSnapshot{
			Subtotal: decimal.NewFromInt(1000),
			Tax:      decimal.NewFromInt(180),
			Shipping: decimal.Zero,
			Discount: decimal.Zero,
			Total:    decimal.NewFromInt(1180),
		},
		Payment: models.Payment{Method: models.PaymentMethodCOD, Status: models.PaymentStatusPending},
		Timeline: []models.TimelineEntry{
			{Status: models.OrderStatusPending, Timestamp: now.Add(-deliveredAgo - 72*time.Hour)},
			{Status: models.OrderStatusDelivered, Timestamp: now.Add(-deliveredAgo)},
		},
		CreatedAt: now.Add(-deliveredAgo - 72*time.Hour),
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()
	productID := uuid.New()

	cartWithOneItem := func() *models.Cart {
		return cartWith(userID, map[string]models.CartItem{
			productID.String(): {ProductID: productID, Quantity: 2, UnitPrice: decimal.NewFromInt(500)},
		})
	}

	t.Run("Success With COD", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)

		f.cartRepo.On("GetCartByUserID", ctx, userID).Return(cartWithOneItem(), nil).Once()
		f.productRepo.On("GetProductByID", ctx, productID).Return(activeProduct(productID, 500, 10), nil).Once()
		f.productRepo.On("ReserveStock", ctx, productID, 2).Return(nil).Once()
		f.orderRepo.On("CreateOrder", ctx, mock.AnythingOfType("*models.Order")).Return(nil).Once()
		// clearing the cart after checkout
		f.cartRepo.On("GetCartByUserID", ctx, userID).Return(cartWithOneItem(), nil).Once()
		f.cartRepo.On("UpdateCart", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()
		f.userRepo.On("GetUserByID", ctx, userID).Return(&models.User{ID: userID, Email: "asha@example.com"}, nil).Once()
		f.email.On("Send", ctx, mock.AnythingOfType("*models.EmailNotificationRequest")).Return(nil).Once()

		// Act
		order, err := f.svc.CreateOrder(ctx, userID, &models.CreateOrderRequest{
			ShippingAddress: shippingAddress(),
			PaymentMethod:   models.PaymentMethodCOD,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.Equal(t, models.PaymentStatusPending, order.Payment.Status, "payment stays pending at creation")
		assert.True(t, strings.HasPrefix(order.OrderNumber, "NS-"))
		assert.True(t, order.Totals.Total.Equal(decimal.NewFromInt(1180)), "cart snapshot is frozen into the order")
		require.Len(t, order.Items, 1)
		assert.Equal(t, "Wireless Mouse", order.Items[0].Name)
		assert.Equal(t, "NS-MSE-001", order.Items[0].SKU)
		require.Len(t, order.Timeline, 1)
		assert.Equal(t, models.OrderStatusPending, order.Timeline[0].Status)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), order.Shipping.EstimatedDelivery, time.Minute)
		f.orderRepo.AssertExpectations(t)
		f.productRepo.AssertExpectations(t)
		f.payments.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Card Payment Creates Intent", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)

		f.cartRepo.On("GetCartByUserID", ctx, userID).Return(cartWithOneItem(), nil).Once()
		f.productRepo.On("GetProductByID", ctx, productID).Return(activeProduct(productID, 500, 10), nil).Once()
		f.productRepo.On("ReserveStock", ctx, productID, 2).Return(nil).Once()
		f.payments.On("CreatePaymentIntent", int64(118000), "inr", mock.AnythingOfType("string")).
			Return(&stripego.PaymentIntent{ID: "pi_test_123"}, nil).Once()
		f.orderRepo.On("CreateOrder", ctx, mock.AnythingOfType("*models.Order")).Return(nil).Once()
		f.cartRepo.On("GetCartByUserID", ctx, userID).Return(cartWithOneItem(), nil).Once()
		f.cartRepo.On("UpdateCart", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()
		f.userRepo.On("GetUserByID", ctx, userID).Return(&models.User{ID: userID, Email: "asha@example.com"}, nil).Once()
		f.email.On("Send", ctx, mock.Anything).Return(nil).Once()

		// Act
		order, err := f.svc.CreateOrder(ctx, userID, &models.CreateOrderRequest{
			ShippingAddress: shippingAddress(),
			PaymentMethod:   models.PaymentMethodCard,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "pi_test_123", order.Payment.TransactionID)
		f.payments.AssertExpectations(t)
	})

	t.Run("Empty Cart", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)
		f.cartRepo.On("GetCartByUserID", ctx, userID).Return(cartWith(userID, nil), nil).Once()

		// Act
		order, err := f.svc.CreateOrder(ctx, userID, &models.CreateOrderRequest{
			ShippingAddress: shippingAddress(),
			PaymentMethod:   models.PaymentMethodCOD,
		})

		// Assert
		require.Error(t, err)
		assert.Nil(t, order)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeBadRequest))
		f.orderRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Insufficient Stock Releases Prior Reservations", func(t *testing.T) {
		// Arrange: two lines; the second reservation fails, the first must be
		// handed back.
		f := newOrderFixture(t)
		secondID := uuid.New()
		cart := cartWith(userID, map[string]models.CartItem{
			productID.String(): {ProductID: productID, Quantity: 2, UnitPrice: decimal.NewFromInt(500)},
			secondID.String():  {ProductID: secondID, Quantity: 5, UnitPrice: decimal.NewFromInt(100)},
		})

		f.cartRepo.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()
		f.productRepo.On("GetProductByID", ctx, productID).Return(activeProduct(productID, 500, 10), nil).Once()
		f.productRepo.On("GetProductByID", ctx, secondID).Return(activeProduct(secondID, 100, 3), nil).Once()
		f.productRepo.On("ReserveStock", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		f.productRepo.On("ReserveStock", ctx, mock.Anything, mock.Anything).Return(repository.ErrInsufficientStock).Once()
		f.productRepo.On("ReleaseStock", ctx, mock.Anything, mock.Anything).Return(nil).Once()

		// Act
		order, err := f.svc.CreateOrder(ctx, userID, &models.CreateOrderRequest{
			ShippingAddress: shippingAddress(),
			PaymentMethod:   models.PaymentMethodCOD,
		})

		// Assert
		require.Error(t, err)
		assert.Nil(t, order)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeInsufficientStock))
		f.productRepo.AssertExpectations(t)
		f.orderRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()

	t.Run("Cancellable From Processing Restores Stock", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)
		order := deliveredOrder(userID, 0)
		order.Status = models.OrderStatusProcessing
		order.Timeline = order.Timeline[:1]

		f.orderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()
		f.orderRepo.On("UpdateStatus", ctx, order, mock.AnythingOfType("models.TimelineEntry")).Return(nil).Once()
		f.productRepo.On("ReleaseStock", ctx, order.Items[0].ProductID, 2).Return(nil).Once()

		// Act
		cancelled, err := f.svc.CancelOrder(ctx, userID, order.ID, &models.CancelOrderRequest{Reason: "changed my mind"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
		assert.Equal(t, "changed my mind", cancelled.CancellationReason)
		require.Len(t, cancelled.Timeline, 2, "exactly one timeline entry per status change")
		assert.Equal(t, models.OrderStatusCancelled, cancelled.Timeline[1].Status)
		f.productRepo.AssertExpectations(t)
	})

	t.Run("Not Cancellable Once Shipped", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)
		order := deliveredOrder(userID, 0)
		order.Status = models.OrderStatusShipped

		f.orderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()

		// Act
		cancelled, err := f.svc.CancelOrder(ctx, userID, order.ID, &models.CancelOrderRequest{})

		// Assert
		require.Error(t, err)
		assert.Nil(t, cancelled)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeInvalidTransition))
		f.productRepo.AssertNotCalled(t, "ReleaseStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Someone Else's Order Looks Missing", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)
		order := deliveredOrder(uuid.New(), 0)

		f.orderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()

		// Act
		_, err := f.svc.CancelOrder(ctx, userID, order.ID, &models.CancelOrderRequest{})

		// Assert
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
	})
}

func TestReturnOrder(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()

	t.Run("Within Window", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)
		order := deliveredOrder(userID, 10*24*time.Hour)

		f.orderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()
		f.orderRepo.On("UpdateStatus", ctx, order, mock.AnythingOfType("models.TimelineEntry")).Return(nil).Once()
		f.productRepo.On("ReleaseStock", ctx, order.Items[0].ProductID, 2).Return(nil).Once()

		// Act
		returned, err := f.svc.ReturnOrder(ctx, userID, order.ID, &models.ReturnOrderRequest{Reason: "wrong size"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusReturned, returned.Status)
		assert.Equal(t, "wrong size", returned.ReturnReason)
		f.productRepo.AssertExpectations(t)
	})

	t.Run("Window Expired", func(t *testing.T) {
		// Arrange: delivered 31 days ago against a 30 day window.
		f := newOrderFixture(t)
		order := deliveredOrder(userID, 31*24*time.Hour)

		f.orderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()

		// Act
		returned, err := f.svc.ReturnOrder(ctx, userID, order.ID, &models.ReturnOrderRequest{Reason: "too late"})

		// Assert
		require.Error(t, err)
		assert.Nil(t, returned)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeReturnWindowExpired))
	})

	t.Run("Only Delivered Orders Return", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)
		order := deliveredOrder(userID, 0)
		order.Status = models.OrderStatusShipped

		f.orderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()

		// Act
		_, err := f.svc.ReturnOrder(ctx, userID, order.ID, &models.ReturnOrderRequest{Reason: "nope"})

		// Assert
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeInvalidTransition))
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()

	t.Run("Full Forward Walk", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)
		order := deliveredOrder(userID, 0)
		order.Status = models.OrderStatusPending
		order.Timeline = order.Timeline[:1]

		path := []models.OrderStatus{
			models.OrderStatusConfirmed,
			models.OrderStatusProcessing,
			models.OrderStatusShipped,
			models.OrderStatusOutForDelivery,
			models.OrderStatusDelivered,
		}

		f.orderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Times(len(path))
		f.orderRepo.On("UpdateStatus", ctx, order, mock.AnythingOfType("models.TimelineEntry")).Return(nil).Times(len(path))

		// Act + Assert
		for _, next := range path {
			updated, err := f.svc.UpdateStatus(ctx, order.ID, &models.UpdateOrderStatusRequest{Status: next})
			require.NoError(t, err, "transition to %s should be allowed", next)
			assert.Equal(t, next, updated.Status)
		}

		assert.Len(t, order.Timeline, 1+len(path), "one timeline entry per transition")
		assert.NotNil(t, order.Shipping.ActualDelivery, "delivery stamps the actual delivery time")
		assert.Equal(t, models.PaymentStatusCompleted, order.Payment.Status, "confirmation captures payment")
	})

	t.Run("Cancel Releases Reserved Stock", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)
		order := deliveredOrder(userID, 0)
		order.Status = models.OrderStatusProcessing
		order.Timeline = order.Timeline[:1]
		productID := order.Items[0].ProductID

		f.orderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()
		f.orderRepo.On("UpdateStatus", ctx, order, mock.AnythingOfType("models.TimelineEntry")).Return(nil).Once()
		f.productRepo.On("ReleaseStock", ctx, productID, 2).Return(nil).Once()

		// Act
		updated, err := f.svc.UpdateStatus(ctx, order.ID,
			&models.UpdateOrderStatusRequest{Status: models.OrderStatusCancelled, Note: "undeliverable address"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, updated.Status)
		assert.Equal(t, "undeliverable address", updated.CancellationReason)
		f.productRepo.AssertExpectations(t)
	})

	t.Run("Return Releases Reserved Stock", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)
		order := deliveredOrder(userID, 24*time.Hour)
		productID := order.Items[0].ProductID

		f.orderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()
		f.orderRepo.On("UpdateStatus", ctx, order, mock.AnythingOfType("models.TimelineEntry")).Return(nil).Once()
		f.productRepo.On("ReleaseStock", ctx, productID, 2).Return(nil).Once()

		// Act
		updated, err := f.svc.UpdateStatus(ctx, order.ID,
			&models.UpdateOrderStatusRequest{Status: models.OrderStatusReturned, Note: "damaged in transit"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusReturned, updated.Status)
		assert.Equal(t, "damaged in transit", updated.ReturnReason)
		f.productRepo.AssertExpectations(t)
	})

	t.Run("No Backward Moves", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)
		order := deliveredOrder(userID, 0)

		f.orderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()

		// Act
		updated, err := f.svc.UpdateStatus(ctx, order.ID, &models.UpdateOrderStatusRequest{Status: models.OrderStatusProcessing})

		// Assert
		require.Error(t, err)
		assert.Nil(t, updated)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeInvalidTransition))
	})

	t.Run("Same Status Is Not A Transition", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)
		order := deliveredOrder(userID, 0)

		f.orderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()

		// Act
		_, err := f.svc.UpdateStatus(ctx, order.ID, &models.UpdateOrderStatusRequest{Status: models.OrderStatusDelivered})

		// Assert
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeInvalidTransition))
	})

	t.Run("Refund Only From Cancelled Or Returned", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)

		delivered := deliveredOrder(userID, 0)
		f.orderRepo.On("GetOrderByID", ctx, delivered.ID).Return(delivered, nil).Once()

		cancelled := deliveredOrder(userID, 0)
		cancelled.Status = models.OrderStatusCancelled
		f.orderRepo.On("GetOrderByID", ctx, cancelled.ID).Return(cancelled, nil).Once()
		f.orderRepo.On("UpdateStatus", ctx, cancelled, mock.AnythingOfType("models.TimelineEntry")).Return(nil).Once()

		// Act
		_, errFromDelivered := f.svc.UpdateStatus(ctx, delivered.ID, &models.UpdateOrderStatusRequest{Status: models.OrderStatusRefunded})
		refunded, errFromCancelled := f.svc.UpdateStatus(ctx, cancelled.ID, &models.UpdateOrderStatusRequest{Status: models.OrderStatusRefunded})

		// Assert
		require.Error(t, errFromDelivered)
		assert.True(t, appErrors.HasCode(errFromDelivered, appErrors.ErrCodeInvalidTransition))
		require.NoError(t, errFromCancelled)
		assert.Equal(t, models.OrderStatusRefunded, refunded.Status)
	})
}

func TestProcessPaymentWebhook(t *testing.T) {
	ctx := t.Context()
	payload := []byte(`{"id": "evt_1"}`)
	signature := "t=123,v1=abc"

	intentEvent := func(eventType string) stripego.Event {
		return stripego.Event{
			ID:   "evt_1",
			Type: stripego.EventType(eventType),
			Data: &stripego.EventData{Object: map[string]any{"id": "pi_test_123"}},
		}
	}

	t.Run("Succeeded Intent Marks Payment Completed", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)

		f.payments.On("VerifyWebhookSignature", payload, signature).
			Return(intentEvent("payment_intent.succeeded"), nil).Once()
		f.orderRepo.On("UpdatePaymentByIntent", ctx, "pi_test_123", models.PaymentStatusCompleted, mock.AnythingOfType("*time.Time")).
			Return(nil).Once()

		// Act
		event, err := f.svc.ProcessPaymentWebhook(ctx, payload, signature)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "evt_1", event.ID)
		f.orderRepo.AssertExpectations(t)
	})

	t.Run("Failed Intent Marks Payment Failed", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)

		f.payments.On("VerifyWebhookSignature", payload, signature).
			Return(intentEvent("payment_intent.payment_failed"), nil).Once()
		f.orderRepo.On("UpdatePaymentByIntent", ctx, "pi_test_123", models.PaymentStatusFailed, mock.Anything).
			Return(nil).Once()

		// Act
		_, err := f.svc.ProcessPaymentWebhook(ctx, payload, signature)

		// Assert
		require.NoError(t, err)
		f.orderRepo.AssertExpectations(t)
	})

	t.Run("Invalid Signature Is Rejected", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)

		f.payments.On("VerifyWebhookSignature", payload, signature).
			Return(stripego.Event{}, assert.AnError).Once()

		// Act
		_, err := f.svc.ProcessPaymentWebhook(ctx, payload, signature)

		// Assert
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeThirdPartyError))
		f.orderRepo.AssertNotCalled(t, "UpdatePaymentByIntent")
	})

	t.Run("Unrelated Event Is Ignored", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)

		f.payments.On("VerifyWebhookSignature", payload, signature).
			Return(intentEvent("customer.created"), nil).Once()

		// Act
		_, err := f.svc.ProcessPaymentWebhook(ctx, payload, signature)

		// Assert
		require.NoError(t, err)
		f.orderRepo.AssertNotCalled(t, "UpdatePaymentByIntent")
	})
}

func TestListOrders(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()

	t.Run("Pagination Defaults", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)
		f.orderRepo.On("ListOrdersByUser", ctx, userID, 1, 10, models.OrderStatus("")).
			Return([]models.Order{*deliveredOrder(userID, 0)}, 1, nil).Once()

		// Act
		resp, err := f.svc.ListOrders(ctx, userID, 0, 500, "")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 10, resp.Size)
		assert.Equal(t, 1, resp.Total)
		require.Len(t, resp.Orders, 1)
		f.orderRepo.AssertExpectations(t)
	})

	t.Run("Bad Status Filter", func(t *testing.T) {
		// Arrange
		f := newOrderFixture(t)

		// Act
		_, err := f.svc.ListOrders(ctx, userID, 1, 10, "misplaced")

		// Assert
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeBadRequest))
	})
}
