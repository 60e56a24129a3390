package services

import (
	"fmt"
	"log"
	"net/smtp"

	"loanapply/internal/adapters/persistence/models"
)

// EmailSender delivers a single message over an external transport.
type EmailSender interface {
	Send(recipient, subject, body string) error
}

// SMTPSender sends mail over plain SMTP.
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send delivers one message. Callers are expected to treat failures as
// best-effort; nothing here retries.
func (s *SMTPSender) Send(recipient, subject, body string) error {
	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + recipient + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	return smtp.SendMail(addr, auth, s.from, []string{recipient}, msg)
}

// NotificationService sends application emails. Every send is
// best-effort: dispatched off the request path, failures logged and
// swallowed, never surfaced to the triggering operation.
type NotificationService struct {
	sender  EmailSender
	enabled bool
}

// NewNotificationService creates a new notification service. A nil
// sender disables dispatch entirely.
func NewNotificationService(sender EmailSender) *NotificationService {
	return &NotificationService{
		sender:  sender,
		enabled: sender != nil,
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// dispatch sends on a background goroutine so the caller never blocks
// on transport, and recovers panics so a broken sender cannot take the
// request down with it.
func (s *NotificationService) dispatch(recipient, subject, body string) {
	if !s.enabled || recipient == "" {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("⚠️ Notification dispatch panicked: %v", r)
			}
		}()

		if err := s.sender.Send(recipient, subject, body); err != nil {
			log.Printf("⚠️ Failed to send notification to %s: %v", recipient, err)
		}
	}()
}

// NotifySubmitted sends the submission confirmation
func (s *NotificationService) NotifySubmitted(app *models.Application) {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour loan application has been received.\n\nApplication ID: %s\nLoan type: %s\nAmount: %.2f\n\nYou will be notified once it has been reviewed.",
		app.ApplicantName,
		app.ApplicationID,
		app.LoanType,
		app.LoanAmount,
	)

	s.dispatch(app.EmailID, "Loan application received", body)
}

// NotifyDecision sends a status-specific message after an admin
// decision on the application.
func (s *NotificationService) NotifyDecision(app *models.Application) {
	var subject, body string

	switch app.Status {
	case models.StatusApproved:
		subject = "Loan application approved"
		body = fmt.Sprintf(
			"Dear %s,\n\nCongratulations! Your loan application %s has been approved.\n\nAmount: %.2f\nTenure: %d years\n\nOur team will contact you with the next steps.",
			app.ApplicantName, app.ApplicationID, app.LoanAmount, app.LoanTenure,
		)
	case models.StatusRejected:
		subject = "Loan application update"
		body = fmt.Sprintf(
			"Dear %s,\n\nWe regret to inform you that your loan application %s could not be approved at this time.",
			app.ApplicantName, app.ApplicationID,
		)
	default:
		subject = "Loan application status changed"
		body = fmt.Sprintf(
			"Dear %s,\n\nThe status of your loan application %s is now: %s.",
			app.ApplicantName, app.ApplicationID, app.Status,
		)
	}

	s.dispatch(app.EmailID, subject, body)
}

// NotifyPendingReminder reminds a submitter that their application is
// still awaiting review.
func (s *NotificationService) NotifyPendingReminder(app *models.Application) {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour loan application %s is still pending review. No action is needed; we will notify you once a decision is made.",
		app.ApplicantName,
		app.ApplicationID,
	)

	s.dispatch(app.EmailID, "Loan application pending", body)
}
