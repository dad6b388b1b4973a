// Package router builds the Echo instance: global middleware, the error
// handler and every route.
package router

import (
	"github.com/deppfellow/gpthub/internal/handler"
	"github.com/deppfellow/gpthub/internal/middleware"
	"github.com/deppfellow/gpthub/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance with every route mounted.
//
// The global chain runs in a fixed order: the request id, the New Relic
// transaction, the request logger built from both, access logging, panic
// recovery, security headers, CORS and the body limit. Route groups then add
// the form limiter and RequireAuth where needed. sessions resolves the
// Clerk caller for RequireAuth.
func NewRouter(s *server.Server, h *handler.Handlers, sessions middleware.SessionResolver) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s, sessions)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request id and the transaction must exist before
	// the request logger is built from them.
	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
		middlewares.Global.BodyLimit(),
	)

	registerSystemRoutes(router, h)

	api := router.Group("/api")
	registerFormRoutes(api, h, middlewares)
	registerDirectoryRoutes(api, h)
	registerForumRoutes(api, h, middlewares)

	return router
}

// registerFormRoutes mounts the public forms. Both share one per-IP limiter.
func registerFormRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	limiter := m.RateLimit.FormLimiter()

	api.POST("/newsletter", h.Newsletter.Subscribe(), limiter)
	api.POST("/contact", h.Contact.Submit(), limiter)
	api.POST("/users", h.User.Register(), limiter)
}

func registerDirectoryRoutes(api *echo.Group, h *handler.Handlers) {
	gpts := api.Group("/gpts")
	gpts.GET("", h.Gpt.List())
	gpts.GET("/:id", h.Gpt.Get())
	gpts.POST("", h.Gpt.Create())
}

func registerForumRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	forum := api.Group("/forum")

	forum.GET("/categories", h.Forum.ListCategories())
	forum.POST("/categories", h.Forum.CreateCategory(), m.Auth.RequireAuth)
	forum.GET("/categories/:slug/topics", h.Forum.ListTopics())

	forum.POST("/topics", h.Forum.CreateTopic())
	forum.GET("/topics/:slug", h.Forum.ViewTopic())

	forum.GET("/posts", h.Forum.ListPosts())
	forum.POST("/posts", h.Forum.CreatePost())
}
