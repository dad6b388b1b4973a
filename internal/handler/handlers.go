// Package handler is the HTTP layer. Each endpoint binds and validates its
// request, calls one service method and writes the response envelope.
package handler

import (
	"github.com/deppfellow/gpthub/internal/server"
	"github.com/deppfellow/gpthub/internal/service"
)

// Handlers groups every HTTP handler.
type Handlers struct {
	Health     *HealthHandler
	OpenAPI    *OpenAPIHandler
	Newsletter *NewsletterHandler
	Contact    *ContactHandler
	User       *UserHandler
	Gpt        *GptHandler
	Forum      *ForumHandler
}

// NewHandlers constructs every handler from the services container.
//
// Each handler receives only the service it calls, typed as the narrow
// interface it declares (NewsletterSubscriber, GptDirectory, Forum, ...), so
// handlers can be tested against fakes without a database.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(s),
		OpenAPI:    NewOpenAPIHandler(s, DefaultOpenAPIPage),
		Newsletter: NewNewsletterHandler(s, services.Newsletter),
		Contact:    NewContactHandler(s, services.Contact),
		User:       NewUserHandler(s, services.User),
		Gpt:        NewGptHandler(s, services.Gpt),
		Forum:      NewForumHandler(s, services.Forum),
	}
}
