// Package service contains the business layer.
//
// It sits between the handler and repository layers. For forms it is a
// thin pass-through: the handlers enforce the request rules and the
// repository owns persistence.
package service

import (
	"github.com/deppfellow/formapplication/internal/repository"
	"github.com/deppfellow/formapplication/internal/server"
)

type Services struct {
	Form *FormService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Form: NewFormService(repos.Form),
	}
}
