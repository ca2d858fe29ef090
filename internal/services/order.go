package service

import (
	"context"
	"database/sql"
	goerrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/neoshop/neoshop-platform/internal/api/middleware"
	"github.com/neoshop/neoshop-platform/internal/config"
	"github.com/neoshop/neoshop-platform/internal/errors"
	"github.com/neoshop/neoshop-platform/internal/metrics"
	"github.com/neoshop/neoshop-platform/internal/models"
	repository "github.com/neoshop/neoshop-platform/internal/repositories"
	"github.com/neoshop/neoshop-platform/internal/utils"
	"github.com/neoshop/neoshop-platform/pkg/sendgrid"
	"github.com/neoshop/neoshop-platform/pkg/stripe"
)

const (
	// estimatedDeliveryLead is added to the order time for the delivery
	// estimate shown to the customer.
	estimatedDeliveryLead = 7 * 24 * time.Hour

	// maxOrderNumberAttempts bounds regeneration when the random order
	// number collides with an existing one.
	maxOrderNumberAttempts = 3
)

// hundred converts whole currency units to the gateway's smallest unit.
var hundred = decimal.NewFromInt(100)

type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	cartService *CartService
	inventory   *InventoryService
	payments    stripe.Client
	email       sendgrid.EmailService
	cfg         *config.Pricing
	metrics     *metrics.Metrics
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	cartService *CartService,
	inventory *InventoryService,
	payments stripe.Client,
	email sendgrid.EmailService,
	cfg *config.Pricing,
	m *metrics.Metrics,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		cartService: cartService,
		inventory:   inventory,
		payments:    payments,
		email:       email,
		cfg:         cfg,
		metrics:     m,
	}
}

// CreateOrder turns the owner's cart into an order: reserves stock for every
// line, freezes the cart's pricing snapshot and item details, and clears the
// cart. Stock reserved before a later step fails is released again.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error) {
	logger := middleware.LoggerFromContext(ctx)

	cart, err := s.cartService.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(cart.Items) == 0 {
		return nil, errors.BadRequestError("Cannot create order with empty cart")
	}

	items, err := s.buildOrderItems(ctx, cart)
	if err != nil {
		return nil, err
	}

	reserved, err := s.reserveAll(ctx, items)
	if err != nil {
		s.releaseAll(ctx, reserved)

		return nil, err
	}

	now := time.Now()

	order := &models.Order{
		ID:     uuid.New(),
		UserID: userID,
		Status: models.OrderStatusPending,
		Items:  items,
		// The cart's snapshot is frozen into the order; later catalog or
		// rule changes never reprice it.
		Totals: *cart.Totals,
		Coupon: cart.Coupon,
		Shipping: models.Shipping{
			Address:           req.ShippingAddress,
			Method:            "standard",
			Cost:              cart.Totals.Shipping,
			EstimatedDelivery: now.Add(estimatedDeliveryLead),
		},
		Payment: models.Payment{
			Method: req.PaymentMethod,
			Status: models.PaymentStatusPending,
		},
		Timeline: []models.TimelineEntry{
			{Status: models.OrderStatusPending, Timestamp: now, Note: "Order placed"},
		},
	}

	if req.PaymentMethod == models.PaymentMethodCard {
		intent, err := s.payments.CreatePaymentIntent(
			order.Totals.Total.Mul(hundred).IntPart(),
			s.cfg.Currency,
			fmt.Sprintf("NeoShop order for user %s", userID))
		if err != nil {
			s.releaseAll(ctx, reserved)

			return nil, errors.ThirdPartyError("Failed to initiate payment").WithError(err)
		}

		order.Payment.TransactionID = intent.ID
	}

	if err := s.persistWithFreshNumber(ctx, order); err != nil {
		s.releaseAll(ctx, reserved)

		return nil, err
	}

	s.metrics.OrdersCreated.Inc()
	logger.Info("Order created",
		slog.String("orderId", order.ID.String()),
		slog.String("orderNumber", order.OrderNumber),
		slog.String("total", order.Totals.Total.String()))

	if _, err := s.cartService.Clear(ctx, userID); err != nil {
		logger.Error("Failed to clear cart after order creation", slog.Any("error", err))
	}

	s.sendConfirmation(ctx, order)

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, errors.NotFoundError("Order not found").WithError(err)
	}

	// Owner-scoped: other users' orders look like they do not exist.
	if order.UserID != userID {
		return nil, errors.NotFoundError("Order not found")
	}

	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, page, size int, status models.OrderStatus) (*models.OrderHistoryResponse, error) {
	if page < 1 {
		page = 1
	}

	if size < 1 || size > 50 {
		size = 10
	}

	if status != "" && !status.Valid() {
		return nil, errors.BadRequestError("Unknown order status filter")
	}

	orders, total, err := s.orderRepo.ListOrdersByUser(ctx, userID, page, size, status)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return &models.OrderHistoryResponse{
		Orders: orders,
		Total:  total,
		Page:   page,
		Size:   size,
	}, nil
}

// CancelOrder moves a not-yet-shipped order to cancelled and restores the
// reserved stock. Shipped and later stages can only go through a return.
func (s *OrderService) CancelOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, req *models.CancelOrderRequest) (*models.Order, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanBeCancelled() {
		return nil, errors.InvalidTransitionError(
			fmt.Sprintf("Order in status %q cannot be cancelled", order.Status))
	}

	order.Status = models.OrderStatusCancelled
	order.CancellationReason = req.Reason

	s.refundIfPaid(ctx, order)

	entry := models.TimelineEntry{
		Status:    models.OrderStatusCancelled,
		Timestamp: time.Now(),
		Note:      req.Reason,
	}

	if err := s.orderRepo.UpdateStatus(ctx, order, entry); err != nil {
		return nil, errors.DatabaseError("Failed to cancel order").WithError(err)
	}

	order.Timeline = append(order.Timeline, entry)

	s.inventory.ReleaseItems(ctx, order.Items)
	s.metrics.OrdersCancelled.Inc()

	return order, nil
}

// ReturnOrder accepts a return of a delivered order within the return window
// and restores stock.
func (s *OrderService) ReturnOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, req *models.ReturnOrderRequest) (*models.Order, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanBeReturned() {
		return nil, errors.InvalidTransitionError(
			fmt.Sprintf("Order in status %q cannot be returned", order.Status))
	}

	windowStart := order.CreatedAt
	if deliveredAt := order.DeliveredAt(); deliveredAt != nil {
		windowStart = *deliveredAt
	}

	if time.Since(windowStart) > s.cfg.ReturnWindow {
		return nil, errors.ReturnWindowExpiredError("Return window has expired for this order")
	}

	order.Status = models.OrderStatusReturned
	order.ReturnReason = req.Reason

	entry := models.TimelineEntry{
		Status:    models.OrderStatusReturned,
		Timestamp: time.Now(),
		Note:      req.Reason,
	}

	if err := s.orderRepo.UpdateStatus(ctx, order, entry); err != nil {
		return nil, errors.DatabaseError("Failed to return order").WithError(err)
	}

	order.Timeline = append(order.Timeline, entry)

	s.inventory.ReleaseItems(ctx, order.Items)
	s.metrics.OrdersReturned.Inc()

	return order, nil
}

// UpdateStatus is the admin path for advancing fulfilment. Transitions are
// validated against the state machine; each accepted one appends exactly one
// timeline entry.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Order not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to load order").WithError(err)
	}

	if !req.Status.Valid() {
		return nil, errors.BadRequestError("Unknown order status")
	}

	if !order.Status.CanTransitionTo(req.Status) {
		return nil, errors.InvalidTransitionError(
			fmt.Sprintf("Cannot transition order from %q to %q", order.Status, req.Status))
	}

	now := time.Now()

	switch req.Status {
	case models.OrderStatusConfirmed:
		if order.Payment.Status == models.PaymentStatusPending {
			order.Payment.Status = models.PaymentStatusCompleted
			order.Payment.PaidAt = &now
		}
	case models.OrderStatusDelivered:
		order.Shipping.ActualDelivery = &now
	case models.OrderStatusCancelled:
		order.CancellationReason = req.Note
	case models.OrderStatusReturned:
		order.ReturnReason = req.Note
	case models.OrderStatusRefunded:
		s.refundIfPaid(ctx, order)
	}

	order.Status = req.Status

	entry := models.TimelineEntry{Status: req.Status, Timestamp: now, Note: req.Note}

	if err := s.orderRepo.UpdateStatus(ctx, order, entry); err != nil {
		return nil, errors.DatabaseError("Failed to update order status").WithError(err)
	}

	order.Timeline = append(order.Timeline, entry)

	// Leaving the forward path hands the reservation back, exactly as the
	// customer cancel/return flows do.
	switch req.Status {
	case models.OrderStatusCancelled:
		s.inventory.ReleaseItems(ctx, order.Items)
		s.metrics.OrdersCancelled.Inc()
	case models.OrderStatusReturned:
		s.inventory.ReleaseItems(ctx, order.Items)
		s.metrics.OrdersReturned.Inc()
	}

	return order, nil
}

// ProcessPaymentWebhook verifies a gateway callback signature and applies
// the payment outcome to the order carrying that payment intent.
func (s *OrderService) ProcessPaymentWebhook(ctx context.Context, payload []byte, signature string) (stripe.Event, error) {
	event, err := s.payments.VerifyWebhookSignature(payload, signature)
	if err != nil {
		return stripe.Event{}, errors.ThirdPartyError("Webhook signature verification failed").WithError(err)
	}

	switch event.Type {
	case "payment_intent.succeeded":
		intentID, err := intentIDFromEvent(event)
		if err != nil {
			return event, err
		}

		now := time.Now()
		if err := s.applyPaymentOutcome(ctx, intentID, models.PaymentStatusCompleted, &now); err != nil {
			return event, err
		}
	case "payment_intent.payment_failed":
		intentID, err := intentIDFromEvent(event)
		if err != nil {
			return event, err
		}

		if err := s.applyPaymentOutcome(ctx, intentID, models.PaymentStatusFailed, nil); err != nil {
			return event, err
		}
	default:
		middleware.LoggerFromContext(ctx).Info("Ignoring webhook event",
			slog.String("type", string(event.Type)))
	}

	return event, nil
}

func (s *OrderService) applyPaymentOutcome(ctx context.Context, intentID string, status models.PaymentStatus, paidAt *time.Time) error {
	if err := s.orderRepo.UpdatePaymentByIntent(ctx, intentID, status, paidAt); err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("No order matches the payment intent").WithError(err)
		}

		return errors.DatabaseError("Failed to update payment status").WithError(err)
	}

	return nil
}

func intentIDFromEvent(event stripe.Event) (string, error) {
	id, ok := event.Data.Object["id"].(string)
	if !ok || id == "" {
		return "", errors.ThirdPartyError("Missing payment intent ID in webhook")
	}

	return id, nil
}

func (s *OrderService) buildOrderItems(ctx context.Context, cart *models.Cart) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(cart.Items))

	for _, line := range cart.ItemList() {
		product, err := s.productRepo.GetProductByID(ctx, line.ProductID)
		if err != nil {
			return nil, errors.NotFoundError("Product not found: " + line.ProductID.String()).WithError(err)
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			SKU:       product.SKU,
			Image:     product.Image,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Total:     line.LineTotal(),
		})
	}

	return items, nil
}

// reserveAll reserves stock line by line and returns what it managed to
// reserve, even on failure, so the caller can compensate.
func (s *OrderService) reserveAll(ctx context.Context, items []models.OrderItem) ([]models.OrderItem, error) {
	var reserved []models.OrderItem

	for _, item := range items {
		if err := s.inventory.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			return reserved, err
		}

		reserved = append(reserved, item)
	}

	return reserved, nil
}

func (s *OrderService) releaseAll(ctx context.Context, reserved []models.OrderItem) {
	if len(reserved) > 0 {
		s.inventory.ReleaseItems(ctx, reserved)
	}
}

func (s *OrderService) persistWithFreshNumber(ctx context.Context, order *models.Order) error {
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = utils.GenerateOrderNumber(time.Now())

		err := s.orderRepo.CreateOrder(ctx, order)
		if err == nil {
			return nil
		}

		if !goerrors.Is(err, repository.ErrDuplicateOrderNumber) {
			return errors.DatabaseError("Failed to create order").WithError(err)
		}
	}

	return errors.InternalError("Could not allocate a unique order number")
}

// refundIfPaid pushes a refund through the gateway for captured card
// payments. Gateway failures are logged, not fatal: the status change still
// lands and the refund is retried out of band.
func (s *OrderService) refundIfPaid(ctx context.Context, order *models.Order) {
	logger := middleware.LoggerFromContext(ctx)

	if order.Payment.Status != models.PaymentStatusCompleted || order.Payment.TransactionID == "" {
		return
	}

	amount := order.Totals.Total.Mul(hundred).IntPart()

	if _, err := s.payments.RefundPayment(order.Payment.TransactionID, amount); err != nil {
		logger.Error("Refund request failed",
			slog.String("orderId", order.ID.String()),
			slog.String("transactionId", order.Payment.TransactionID),
			slog.Any("error", err))

		return
	}

	now := time.Now()
	order.Payment.Status = models.PaymentStatusRefunded
	order.Payment.RefundedAt = &now
}

func (s *OrderService) sendConfirmation(ctx context.Context, order *models.Order) {
	logger := middleware.LoggerFromContext(ctx)

	user, err := s.userRepo.GetUserByID(ctx, order.UserID)
	if err != nil {
		logger.Error("Failed to load user for order confirmation", slog.Any("error", err))

		return
	}

	if err := s.email.Send(ctx, sendgrid.OrderConfirmation(user.Email, order)); err != nil {
		logger.Error("Failed to send order confirmation email",
			slog.String("orderNumber", order.OrderNumber),
			slog.Any("error", err))
	}
}
