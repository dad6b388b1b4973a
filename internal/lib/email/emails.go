package email

// ContactDetails is what a contact notification shows to the inbox owner.
type ContactDetails struct {
	Name    string
	Email   string
	Company string
	Message string
}

// SendNewsletterWelcomeEmail confirms a newsletter subscription.
func (c *Client) SendNewsletterWelcomeEmail(to string) error {
	return c.SendEmail(
		to,
		"You're subscribed to the GPT Hub newsletter",
		TemplateNewsletterWelcome,
		map[string]string{
			"Email": to,
		},
	)
}

// SendContactNotificationEmail forwards a contact submission to inbox.
func (c *Client) SendContactNotificationEmail(inbox string, details ContactDetails) error {
	return c.SendEmail(
		inbox,
		"New contact form submission from "+details.Name,
		TemplateContactNotification,
		map[string]string{
			"Name":    details.Name,
			"Email":   details.Email,
			"Company": details.Company,
			"Message": details.Message,
		},
	)
}
