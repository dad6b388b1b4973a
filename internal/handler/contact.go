package handler

import (
	"context"
	"net/http"

	"github.com/deppfellow/gpthub/internal/model"
	"github.com/deppfellow/gpthub/internal/server"
	"github.com/labstack/echo/v4"
)

// contactMessages mirror the newsletter form: storage errors never reach the
// client in detail.
var contactMessages = Messages{
	Success: "Contact form submitted successfully",
	Failure: "Failed to submit contact form",
}

// ContactSubmitter stores a contact form submission.
type ContactSubmitter interface {
	Submit(ctx context.Context, input model.InsertContactSubmission) (*model.ContactSubmission, error)
}

// ContactHandler serves the public contact form.
type ContactHandler struct {
	Handler
	service ContactSubmitter
}

// NewContactHandler constructs the handler.
//
// Every field of the form is required and checked by
// model.InsertContactSubmission before service is called. Unknown JSON keys
// are dropped during binding.
func NewContactHandler(s *server.Server, service ContactSubmitter) *ContactHandler {
	return &ContactHandler{
		Handler: NewHandler(s),
		service: service,
	}
}

// Submit serves POST /api/contact.
func (h *ContactHandler) Submit() echo.HandlerFunc {
	return Handle(h.Handler, h.submit, http.StatusCreated, newRequest[model.InsertContactSubmission], contactMessages)
}

func (h *ContactHandler) submit(c echo.Context, req *model.InsertContactSubmission) (*model.ContactSubmission, error) {
	return h.service.Submit(c.Request().Context(), *req)
}
