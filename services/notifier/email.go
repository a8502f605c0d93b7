package notifier

import (
	"context"
	"time"

	"sjsage522/carwatcher/config"
	"sjsage522/carwatcher/internal/crawler"
	"sjsage522/carwatcher/internal/criteria"
	"sjsage522/carwatcher/logger"
	scerrors "sjsage522/carwatcher/pkg/errors"

	mail "github.com/xhit/go-simple-mail/v2"
)

// EmailNotifier sends listings as an HTML email over SMTP with STARTTLS
type EmailNotifier struct {
	smtp     config.SMTPConfig
	criteria criteria.Criteria
	timeout  time.Duration
	log      *logger.Logger

	// send delivers a rendered message, replaceable in tests
	send func(ctx context.Context, subject, body string) error
}

// NewEmailNotifier creates an email notifier
func NewEmailNotifier(smtp config.SMTPConfig, c criteria.Criteria, timeout time.Duration) *EmailNotifier {
	n := &EmailNotifier{
		smtp:     smtp,
		criteria: c,
		timeout:  timeout,
		log:      logger.ForNotifier(config.NotifyEmail),
	}
	n.send = n.sendSMTP
	return n
}

// Name returns the notification mode
func (n *EmailNotifier) Name() string {
	return config.NotifyEmail
}

// Notify renders and sends one email for the whole batch
func (n *EmailNotifier) Notify(ctx context.Context, listings []crawler.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	body, err := RenderEmailBody(listings, n.criteria)
	if err != nil {
		return scerrors.NewNotify("email", "failed to render email", err)
	}

	subject := Subject(n.criteria, len(listings))
	if err := n.send(ctx, subject, body); err != nil {
		return scerrors.NewNotify("email", "failed to send email", err)
	}

	n.log.Info().
		Int("count", len(listings)).
		Str("recipient", n.smtp.RecipientAddress).
		Msg("Email sent")
	return nil
}

func (n *EmailNotifier) sendSMTP(ctx context.Context, subject, body string) error {
	server := mail.NewSMTPClient()
	server.Host = n.smtp.Host
	server.Port = n.smtp.Port
	server.Username = n.smtp.SenderAddress
	server.Password = n.smtp.SenderSecret
	server.Encryption = mail.EncryptionSTARTTLS
	server.Authentication = mail.AuthLogin
	if n.timeout > 0 {
		server.ConnectTimeout = n.timeout
		server.SendTimeout = n.timeout
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := server.Connect()
	if err != nil {
		return err
	}
	defer client.Close()

	email := mail.NewMSG()
	email.SetFrom(n.smtp.SenderAddress).
		AddTo(n.smtp.RecipientAddress).
		SetSubject(subject).
		SetBody(mail.TextHTML, body)
	if email.Error != nil {
		return email.Error
	}

	return email.Send(client)
}
