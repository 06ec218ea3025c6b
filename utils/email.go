package utils

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/keighl/postmark"

	"sauvage-server/models"
)

// EmailService handles sending emails using Postmark
type EmailService struct {
	client *postmark.Client
	sender string
}

// emailTimeout bounds one Postmark API call
const emailTimeout = 10 * time.Second

// NewEmailService returns nil when no API token is configured, which disables receipts.
func NewEmailService(apiToken, sender string) *EmailService {
	if apiToken == "" {
		return nil
	}
	client := postmark.NewClient(apiToken, "")
	client.HTTPClient = &http.Client{Timeout: emailTimeout}
	return &EmailService{
		client: client,
		sender: sender,
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent, textContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: textContent,
		Tag:      "receipt",
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Debug("email sent", "to", toEmail, "subject", subject)
	return nil
}

// SendPaymentReceipt mails the payer a summary of a recorded payment
func (es *EmailService) SendPaymentReceipt(payment models.Payment) error {
	subject, html, text := PaymentReceipt(payment)
	return es.SendEmail(payment.Email, subject, html, text)
}

// PaymentReceipt renders the subject, HTML body and text body of a receipt
func PaymentReceipt(payment models.Payment) (subject, html, text string) {
	subject = "Your Sauvage order is confirmed"

	items := "your order"
	if len(payment.ItemNames) > 0 {
		items = strings.Join(payment.ItemNames, ", ")
	}

	html = fmt.Sprintf(
		"<strong>Thank you for dining with Sauvage!</strong><br><br>We received your payment for %s.<br><br>Total Paid: <strong>$%.2f</strong><br>Transaction: <strong>%s</strong>",
		items,
		payment.Price,
		payment.TransactionID,
	)
	text = fmt.Sprintf(
		"Thank you for dining with Sauvage!\n\nWe received your payment for %s.\n\nTotal Paid: $%.2f\nTransaction: %s\n",
		items,
		payment.Price,
		payment.TransactionID,
	)
	return subject, html, text
}
