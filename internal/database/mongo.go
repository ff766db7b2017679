package database

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/formapplication/internal/config"
	loggerConfig "github.com/deppfellow/formapplication/internal/logger"
	"github.com/newrelic/go-agent/v3/integrations/nrmongo"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo wraps a MongoDB client and the database the forms live in.
type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
	log      *zerolog.Logger
}

// NewMongo connects to MongoDB and pings the primary.
//
// Commands are logged through zerolog in the local environment and traced
// as New Relic datastore segments when loggerService carries an application.
func NewMongo(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Mongo, error) {
	mongoCfg := cfg.Database.Mongo

	var monitor *event.CommandMonitor
	if cfg.Primary.Env == "local" {
		monitor = loggerConfig.NewMongoCommandLogger(*logger, cfg.Observability.Logging.SlowQueryThreshold).Monitor()
	}
	if loggerService.GetApplication() != nil {
		monitor = nrmongo.NewCommandMonitor(monitor)
	}

	opts := options.Client().
		ApplyURI(mongoCfg.URI).
		SetAppName(config.ServiceName)
	if monitor != nil {
		opts.SetMonitor(monitor)
	}

	timeout := time.Duration(mongoCfg.ConnectTimeout) * time.Second
	if timeout <= 0 {
		timeout = DatabasePingTimeout * time.Second
	}
	opts.SetConnectTimeout(timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info().
		Str("driver", config.DriverMongo).
		Str("database", mongoCfg.Name).
		Msg("connected to the database")

	return &Mongo{
		Client:   client,
		Database: client.Database(mongoCfg.Name),
		log:      logger,
	}, nil
}

// Ping checks the primary is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	m.log.Info().Msg("closing mongodb client")
	return m.Client.Disconnect(ctx)
}
