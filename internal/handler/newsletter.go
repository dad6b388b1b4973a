package handler

import (
	"context"
	"net/http"

	"github.com/deppfellow/gpthub/internal/model"
	"github.com/deppfellow/gpthub/internal/server"
	"github.com/labstack/echo/v4"
)

// newsletterMessages hides every storage failure, duplicates included, behind
// one failure text, so the endpoint never reveals whether an address is
// already subscribed.
var newsletterMessages = Messages{
	Success: "Successfully subscribed to newsletter",
	Failure: "Failed to subscribe to newsletter",
}

// NewsletterSubscriber is the part of the newsletter service the handler
// needs. *service.NewsletterService satisfies it; tests use a fake.
type NewsletterSubscriber interface {
	Subscribe(ctx context.Context, input model.InsertNewsletterSubscription) (*model.NewsletterSubscription, error)
}

// NewsletterHandler serves the newsletter sign-up form.
type NewsletterHandler struct {
	Handler
	service NewsletterSubscriber
}

// NewNewsletterHandler constructs the handler.
//
// service does the storage and the welcome email; the handler only binds,
// validates and answers with the standard envelope (201 on success, 400 with
// field errors on bad input, 500 with the failure text otherwise).
func NewNewsletterHandler(s *server.Server, service NewsletterSubscriber) *NewsletterHandler {
	return &NewsletterHandler{
		Handler: NewHandler(s),
		service: service,
	}
}

// Subscribe serves POST /api/newsletter.
func (h *NewsletterHandler) Subscribe() echo.HandlerFunc {
	return Handle(h.Handler, h.subscribe, http.StatusCreated, newRequest[model.InsertNewsletterSubscription], newsletterMessages)
}

func (h *NewsletterHandler) subscribe(c echo.Context, req *model.InsertNewsletterSubscription) (*model.NewsletterSubscription, error) {
	return h.service.Subscribe(c.Request().Context(), *req)
}
