package sendgrid

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/neoshop/neoshop-platform/internal/models"
)

type EmailService interface {
	Send(ctx context.Context, req *models.EmailNotificationRequest) error
}

type emailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey string, fromEmail string, fromName string) EmailService {
	return &emailService{client: sendgrid.NewSendClient(apiKey), fromEmail: fromEmail, fromName: fromName}
}

func (e *emailService) Send(ctx context.Context, req *models.EmailNotificationRequest) error {
	from := mail.NewEmail(e.fromName, e.fromEmail)
	to := mail.NewEmail("", req.To)

	message := mail.NewV3Mail()
	message.SetFrom(from)

	personalization := mail.NewPersonalization()
	personalization.AddTos(to)
	personalization.Subject = req.Subject
	message.AddPersonalizations(personalization)

	message.AddContent(mail.NewContent("text/plain", req.Content))

	if req.HTMLContent != "" {
		message.AddContent(mail.NewContent("text/html", req.HTMLContent))
	}

	response, err := e.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}

	return nil
}

// OrderConfirmation builds the plain-text confirmation mail for a freshly
// placed order.
func OrderConfirmation(to string, order *models.Order) *models.EmailNotificationRequest {
	content := fmt.Sprintf(
		"Thank you for your order!\n\nOrder number: %s\nItems: %d\nTotal: %s\n\nWe will let you know as soon as it ships.",
		order.OrderNumber, len(order.Items), order.Totals.Total.StringFixed(2))

	return &models.EmailNotificationRequest{
		To:      to,
		Subject: fmt.Sprintf("Your NeoShop order %s is confirmed", order.OrderNumber),
		Content: content,
	}
}
