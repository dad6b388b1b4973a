package handler

import (
	"context"
	"net/http"

	"github.com/deppfellow/gpthub/internal/model"
	"github.com/deppfellow/gpthub/internal/server"
	"github.com/labstack/echo/v4"
)

// GptDirectory is the custom GPT catalogue as the HTTP layer sees it.
//
// List with an empty category returns every GPT. Get returns an
// *errs.HTTPError with status 404 when the id does not exist, which the
// handler passes through unchanged.
type GptDirectory interface {
	Create(ctx context.Context, input model.InsertCustomGpt) (*model.CustomGpt, error)
	List(ctx context.Context, category string) ([]model.CustomGpt, error)
	Get(ctx context.Context, id int64) (*model.CustomGpt, error)
}

// GptHandler serves the GPT directory under /api/gpts.
type GptHandler struct {
	Handler
	service GptDirectory
}

// NewGptHandler constructs the handler. Listings are served from the Redis
// cache when the service is built on repository.CachedGptRepository; the
// handler does not know either way.
func NewGptHandler(s *server.Server, service GptDirectory) *GptHandler {
	return &GptHandler{
		Handler: NewHandler(s),
		service: service,
	}
}

// List serves GET /api/gpts?category=.
func (h *GptHandler) List() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.ListGptsRequest) ([]model.CustomGpt, error) {
		return h.service.List(c.Request().Context(), req.Category)
	}, http.StatusOK, newRequest[model.ListGptsRequest], Messages{Success: "GPTs retrieved successfully"})
}

// Get serves GET /api/gpts/:id.
func (h *GptHandler) Get() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.GetGptRequest) (*model.CustomGpt, error) {
		return h.service.Get(c.Request().Context(), req.ID)
	}, http.StatusOK, newRequest[model.GetGptRequest], Messages{Success: "GPT retrieved successfully"})
}

// Create serves POST /api/gpts.
func (h *GptHandler) Create() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.InsertCustomGpt) (*model.CustomGpt, error) {
		return h.service.Create(c.Request().Context(), *req)
	}, http.StatusCreated, newRequest[model.InsertCustomGpt], Messages{Success: "GPT created successfully"})
}
