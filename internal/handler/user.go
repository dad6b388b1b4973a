package handler

import (
	"context"
	"net/http"

	"github.com/deppfellow/gpthub/internal/model"
	"github.com/deppfellow/gpthub/internal/server"
	"github.com/labstack/echo/v4"
)

// UserRegistrar creates an account from a registration form.
type UserRegistrar interface {
	Register(ctx context.Context, input model.InsertUser) (*model.User, error)
}

// UserHandler serves account registration.
type UserHandler struct {
	Handler
	service UserRegistrar
}

// NewUserHandler constructs the handler.
func NewUserHandler(s *server.Server, service UserRegistrar) *UserHandler {
	return &UserHandler{
		Handler: NewHandler(s),
		service: service,
	}
}

// Register serves POST /api/users. The password hash is never serialized.
func (h *UserHandler) Register() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.InsertUser) (*model.User, error) {
		return h.service.Register(c.Request().Context(), *req)
	}, http.StatusCreated, newRequest[model.InsertUser], Messages{Success: "User registered successfully"})
}
