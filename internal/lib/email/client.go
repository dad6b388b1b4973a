// Package email renders HTML templates and sends them through Resend.
//
// Sends run behind a circuit breaker so a Resend outage fails tasks fast
// and lets asynq retry them later.
package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/deppfellow/gpthub/internal/config"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

//go:embed templates/*.html
var templateFS embed.FS

const senderName = "GPT Hub"

// Template names a file under templates/.
type Template string

const (
	TemplateNewsletterWelcome   Template = "newsletter_welcome"
	TemplateContactNotification Template = "contact_notification"
)

// Sender is the part of the Resend API the client needs.
type Sender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Client renders the embedded HTML templates and sends them through Resend.
//
// Sends go through a circuit breaker: after five consecutive failures the
// client stops calling Resend for 30s and SendEmail fails fast with
// gobreaker.ErrOpenState, which asynq treats as a normal failure and
// retries later.
type Client struct {
	sender    Sender
	from      string
	templates *template.Template
	cb        *gobreaker.CircuitBreaker
	logger    *zerolog.Logger
}

// NewClient builds a client on the Resend API key from cfg.
func NewClient(cfg *config.Config, logger *zerolog.Logger) (*Client, error) {
	return NewClientWithSender(resend.NewClient(cfg.Integration.ResendAPIKey).Emails, cfg.Integration.FromEmail, logger)
}

// NewClientWithSender parses the embedded templates and wraps sender.
func NewClientWithSender(sender Sender, fromEmail string, logger *zerolog.Logger) (*Client, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse email templates")
	}

	st := gobreaker.Settings{
		Name:        "resend",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("email circuit breaker state changed")
		},
	}

	return &Client{
		sender:    sender,
		from:      fmt.Sprintf("%s <%s>", senderName, fromEmail),
		templates: tmpl,
		cb:        gobreaker.NewCircuitBreaker(st),
		logger:    logger,
	}, nil
}

// Render executes a template with data.
func (c *Client) Render(templateName Template, data map[string]string) (string, error) {
	var body bytes.Buffer
	if err := c.templates.ExecuteTemplate(&body, string(templateName)+".html", data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", templateName)
	}
	return body.String(), nil
}

// SendEmail renders templateName with data and sends it to one recipient.
func (c *Client) SendEmail(to, subject string, templateName Template, data map[string]string) error {
	body, err := c.Render(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}

	_, err = c.cb.Execute(func() (any, error) {
		return c.sender.Send(params)
	})
	if err != nil {
		return errors.Wrapf(err, "failed to send %s email", templateName)
	}

	c.logger.Debug().
		Str("template", string(templateName)).
		Str("to", to).
		Msg("email sent")

	return nil
}
