package handler

import (
	"fmt"
	"net/http"
	"os"

	"github.com/deppfellow/gpthub/internal/server"
	"github.com/labstack/echo/v4"
)

// DefaultOpenAPIPage is the docs page path, relative to the working directory.
const DefaultOpenAPIPage = "static/openapi.html"

// OpenAPIHandler serves the docs UI. The page loads static/openapi.json.
type OpenAPIHandler struct {
	Handler
	page string
}

// NewOpenAPIHandler serves page, or DefaultOpenAPIPage when page is empty.
func NewOpenAPIHandler(s *server.Server, page string) *OpenAPIHandler {
	if page == "" {
		page = DefaultOpenAPIPage
	}
	return &OpenAPIHandler{
		Handler: NewHandler(s),
		page:    page,
	}
}

// ServeOpenAPIUI reads the page on every request so edits show up without
// a restart.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	page, err := os.ReadFile(h.page)
	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err := c.HTML(http.StatusOK, string(page)); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}
	return nil
}
