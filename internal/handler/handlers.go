// Package handler is the HTTP layer. It binds and validates requests,
// calls the service layer and shapes the responses: status codes, the
// Location header, entity alert headers and pagination headers.
package handler

import (
	"github.com/deppfellow/formapplication/internal/server"
	"github.com/deppfellow/formapplication/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Form    *FormHandler
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Form:    NewFormHandler(s, services.Form),
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
