package repository

import (
	"fmt"

	"github.com/deppfellow/formapplication/internal/config"
	"github.com/deppfellow/formapplication/internal/server"
)

// Repositories is the container for all repository instances.
type Repositories struct {
	Form FormRepository
}

// NewRepositories builds the repositories on the storage connection the
// server opened for the configured driver.
func NewRepositories(s *server.Server) (*Repositories, error) {
	var form FormRepository

	switch s.Config.Database.Driver {
	case config.DriverMongo:
		if s.Mongo == nil {
			return nil, fmt.Errorf("driver %q selected but no mongodb client is connected", config.DriverMongo)
		}
		form = NewFormMongoRepository(s.Mongo.Database.Collection(s.Config.Database.Mongo.Collection))
	case config.DriverPostgres:
		if s.DB == nil {
			return nil, fmt.Errorf("driver %q selected but no database pool is connected", config.DriverPostgres)
		}
		form = NewFormPostgresRepository(s.DB.Pool)
	case config.DriverMemory:
		form = NewFormMemoryRepository()
	default:
		return nil, fmt.Errorf("unknown database driver %q", s.Config.Database.Driver)
	}

	return &Repositories{Form: form}, nil
}
