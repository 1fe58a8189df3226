package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"sharebite/internal/domain"
	"sharebite/internal/logger"
)

// sender delivers one plain text message.
type sender interface {
	send(ctx context.Context, to, toName, subject, body string) error
}

type emailService struct {
	sender sender
}

// NewEmailService sends through SendGrid when an API key is configured and
// otherwise only logs the messages.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	if apiKey == "" {
		return &emailService{sender: logSender{}}
	}
	return &emailService{sender: &sendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
	}}
}

type sendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

func (s *sendGridSender) send(ctx context.Context, to, toName, subject, body string) error {
	message := mail.NewSingleEmail(s.from, subject, mail.NewEmail(toName, to), body, "")

	logger.ExternalServiceCall("sendgrid", "send", "to", to, "subject", subject)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type logSender struct{}

func (logSender) send(ctx context.Context, to, toName, subject, body string) error {
	logger.Info("Email not sent (no provider configured)", "to", to, "subject", subject)
	return nil
}

const signature = "\n\nBest regards,\nThe Share a Bite Team"

func (s *emailService) SendRegistrationReceived(ctx context.Context, email, name string) error {
	body := fmt.Sprintf("Hello %s,\n\nThank you for registering with Share a Bite. Your organization is now pending verification. You will be able to log in once an administrator has approved your application.", name)
	return s.sender.send(ctx, email, name, "Registration received", body+signature)
}

func (s *emailService) SendVerificationDecision(ctx context.Context, email, name string, status domain.VerificationStatus, notes string) error {
	var subject, body string
	if status == domain.VerificationStatusApproved {
		subject = "Your organization has been approved"
		body = fmt.Sprintf("Hello %s,\n\nYour organization has been verified. You can now log in and start sharing food.", name)
	} else {
		subject = "Your organization application was not approved"
		body = fmt.Sprintf("Hello %s,\n\nAfter review, your organization application was not approved.", name)
	}
	if notes != "" {
		body += fmt.Sprintf("\n\nNotes from the reviewer: %s", notes)
	}
	return s.sender.send(ctx, email, name, subject, body+signature)
}

func (s *emailService) SendSuspensionNotice(ctx context.Context, email, name string, action domain.SuspensionAction, reason string) error {
	subject := "Your account has been suspended"
	body := fmt.Sprintf("Hello %s,\n\nYour organization's account has been suspended. You can still log in, but you cannot post or claim donations.", name)
	if action == domain.ActionUnsuspend {
		subject = "Your account has been reinstated"
		body = fmt.Sprintf("Hello %s,\n\nYour organization's account is active again.", name)
	}
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	return s.sender.send(ctx, email, name, subject, body+signature)
}

func (s *emailService) SendClaimNotification(ctx context.Context, restaurantEmail, restaurantName, postTitle, claimantName string) error {
	subject := fmt.Sprintf("Your donation \"%s\" was claimed", postTitle)
	body := fmt.Sprintf("Hello %s,\n\n%s has claimed your donation \"%s\". Please have it ready for pickup within the window you specified, then mark it as completed.", restaurantName, claimantName, postTitle)
	return s.sender.send(ctx, restaurantEmail, restaurantName, subject, body+signature)
}

func (s *emailService) SendAdminNotification(ctx context.Context, adminEmail, subject, message string) error {
	return s.sender.send(ctx, adminEmail, "Administrator", subject, message)
}
