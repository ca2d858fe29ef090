package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	stripego "github.com/stripe/stripe-go/v81"

	"github.com/neoshop/neoshop-platform/internal/models"
	"github.com/neoshop/neoshop-platform/pkg/stripe"
)

type StripeClient struct {
	mock.Mock
}

func (m *StripeClient) CreatePaymentIntent(amount int64, currency string, description string) (*stripego.PaymentIntent, error) {
	args := m.Called(amount, currency, description)

	if intent, ok := args.Get(0).(*stripego.PaymentIntent); ok {
		return intent, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *StripeClient) RefundPayment(paymentIntentID string, amount int64) (*stripego.Refund, error) {
	args := m.Called(paymentIntentID, amount)

	if r, ok := args.Get(0).(*stripego.Refund); ok {
		return r, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *StripeClient) VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error) {
	args := m.Called(payload, signature)

	if event, ok := args.Get(0).(stripe.Event); ok {
		return event, args.Error(1)
	}

	return stripe.Event{}, args.Error(1)
}

type EmailService struct {
	mock.Mock
}

func (m *EmailService) Send(ctx context.Context, req *models.EmailNotificationRequest) error {
	args := m.Called(ctx, req)

	return args.Error(0)
}

type Cache struct {
	mock.Mock
}

func (m *Cache) Get(ctx context.Context, key string, value any) (bool, error) {
	args := m.Called(ctx, key, value)

	return args.Bool(0), args.Error(1)
}

func (m *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)

	return args.Error(0)
}

func (m *Cache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)

	return args.Error(0)
}

func (m *Cache) Close() error {
	args := m.Called()

	return args.Error(0)
}
