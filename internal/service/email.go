package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"toolshare-backend/internal/logger"
)

type sendGridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

// NewEmailService returns a SendGrid-backed EmailService. With an empty API
// key every send becomes a logged no-op, which keeps local development and
// tests off the wire.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridEmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) SendBorrowRequestNotification(ctx context.Context, ownerEmail, borrowerName, toolName string) error {
	subject := fmt.Sprintf("New borrow request: %s", toolName)
	plainText := fmt.Sprintf("%s wants to borrow your %s. Log in to review the request.", borrowerName, toolName)
	htmlContent := fmt.Sprintf("<p><strong>%s</strong> wants to borrow your <strong>%s</strong>. Log in to review the request.</p>", borrowerName, toolName)
	return s.send(ctx, ownerEmail, subject, plainText, htmlContent)
}

func (s *sendGridEmailService) SendRequestApprovedNotification(ctx context.Context, borrowerEmail, toolName, ownerResponse string) error {
	subject := fmt.Sprintf("Your request for %s was approved", toolName)
	plainText := fmt.Sprintf("Your borrow request for %s was approved.", toolName)
	if ownerResponse != "" {
		plainText += " Owner's note: " + ownerResponse
	}
	htmlContent := fmt.Sprintf("<p>Your borrow request for <strong>%s</strong> was approved.</p>", toolName)
	if ownerResponse != "" {
		htmlContent += fmt.Sprintf("<p>Owner's note: %s</p>", ownerResponse)
	}
	return s.send(ctx, borrowerEmail, subject, plainText, htmlContent)
}

func (s *sendGridEmailService) SendRequestRejectedNotification(ctx context.Context, borrowerEmail, toolName, ownerResponse string) error {
	subject := fmt.Sprintf("Your request for %s was declined", toolName)
	plainText := fmt.Sprintf("Your borrow request for %s was declined.", toolName)
	if ownerResponse != "" {
		plainText += " Owner's note: " + ownerResponse
	}
	htmlContent := fmt.Sprintf("<p>Your borrow request for <strong>%s</strong> was declined.</p>", toolName)
	if ownerResponse != "" {
		htmlContent += fmt.Sprintf("<p>Owner's note: %s</p>", ownerResponse)
	}
	return s.send(ctx, borrowerEmail, subject, plainText, htmlContent)
}

func (s *sendGridEmailService) SendDepositForfeitedNotification(ctx context.Context, borrowerEmail, toolName string, amountCents int32) error {
	subject := fmt.Sprintf("Deposit forfeited for overdue rental: %s", toolName)
	plainText := fmt.Sprintf("Your rental of %s is overdue and the security deposit of $%.2f has been forfeited.", toolName, float64(amountCents)/100)
	htmlContent := fmt.Sprintf("<p>Your rental of <strong>%s</strong> is overdue and the security deposit of <strong>$%.2f</strong> has been forfeited.</p>", toolName, float64(amountCents)/100)
	return s.send(ctx, borrowerEmail, subject, plainText, htmlContent)
}

func (s *sendGridEmailService) send(ctx context.Context, to, subject, plainText, htmlContent string) error {
	if s.apiKey == "" {
		logger.InfoContext(ctx, "email sending disabled, skipping", "to", to, "subject", subject)
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	logger.ExternalServiceCall("sendgrid", "send", "to", to, "subject", subject)
	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		err = fmt.Errorf("failed to send email: %w", err)
	} else if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "to", to)
	return err
}
