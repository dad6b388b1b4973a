package email

import (
	"errors"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "email_1"}, nil
}

func newTestClient(t *testing.T, sender Sender) *Client {
	t.Helper()

	logger := zerolog.Nop()
	client, err := NewClientWithSender(sender, "hello@gpthub.dev", &logger)
	require.NoError(t, err)
	return client
}

func TestEveryTemplateRenders(t *testing.T) {
	client := newTestClient(t, &fakeSender{})

	samples := map[Template]map[string]string{
		TemplateNewsletterWelcome: {
			"Email": "ada@example.com",
		},
		TemplateContactNotification: {
			"Name":    "Ada Lovelace",
			"Email":   "ada@example.com",
			"Company": "Analytical Engines",
			"Message": "We'd like to list our GPT.",
		},
	}

	for name, data := range samples {
		body, err := client.Render(name, data)
		require.NoError(t, err, "template %s", name)
		assert.Contains(t, body, data["Email"])
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	client := newTestClient(t, &fakeSender{})

	body, err := client.Render(TemplateContactNotification, map[string]string{
		"Name":    "<script>alert(1)</script>",
		"Email":   "ada@example.com",
		"Company": "ACME",
		"Message": "hi",
	})

	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestRenderUnknownTemplate(t *testing.T) {
	client := newTestClient(t, &fakeSender{})

	_, err := client.Render(Template("missing"), nil)

	assert.Error(t, err)
}

func TestSendNewsletterWelcomeEmail(t *testing.T) {
	sender := &fakeSender{}
	client := newTestClient(t, sender)

	require.NoError(t, client.SendNewsletterWelcomeEmail("ada@example.com"))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "GPT Hub <hello@gpthub.dev>", sender.sent[0].From)
	assert.Equal(t, []string{"ada@example.com"}, sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Html, "ada@example.com")
}

func TestSendContactNotificationEmail(t *testing.T) {
	sender := &fakeSender{}
	client := newTestClient(t, sender)

	err := client.SendContactNotificationEmail("inbox@gpthub.dev", ContactDetails{
		Name:    "Ada",
		Email:   "ada@example.com",
		Company: "Analytical",
		Message: "Hello",
	})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"inbox@gpthub.dev"}, sender.sent[0].To)
	assert.Equal(t, "New contact form submission from Ada", sender.sent[0].Subject)
}

func TestSendEmailOpensBreakerAfterRepeatedFailures(t *testing.T) {
	sender := &fakeSender{err: errors.New("resend unavailable")}
	client := newTestClient(t, sender)

	for range 5 {
		err := client.SendNewsletterWelcomeEmail("ada@example.com")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "resend unavailable")
	}

	sender.err = nil
	err := client.SendNewsletterWelcomeEmail("ada@example.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	assert.Empty(t, sender.sent)
}
