package logger

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
)

// NewPgxLogger returns a console logger for pgx query tracing.
// The "sql" field is rendered on its own line to keep queries readable.
func NewPgxLogger(level zerolog.Level) zerolog.Logger {
	writer := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: timeFormat,
		FormatFieldValue: func(i any) string {
			switch v := i.(type) {
			case string:
				if len(v) > 200 {
					return v[:200] + "..."
				}
				return v
			default:
				return zerolog.ConsoleWriter{}.FormatFieldValue(i)
			}
		},
	}

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("component", "database").
		Logger()
}

// GetPgxTraceLogLevel maps a zerolog level onto the pgx tracelog level.
func GetPgxTraceLogLevel(level zerolog.Level) tracelog.LogLevel {
	switch level {
	case zerolog.DebugLevel, zerolog.TraceLevel:
		return tracelog.LogLevelDebug
	case zerolog.InfoLevel:
		return tracelog.LogLevelInfo
	case zerolog.WarnLevel:
		return tracelog.LogLevelWarn
	case zerolog.ErrorLevel:
		return tracelog.LogLevelError
	default:
		return tracelog.LogLevelNone
	}
}

// MongoCommandLogger logs MongoDB driver commands, flagging those slower
// than slowThreshold. It is the Mongo counterpart of the pgx tracelog.
type MongoCommandLogger struct {
	logger        zerolog.Logger
	slowThreshold time.Duration

	mu       sync.Mutex
	commands map[int64]string
}

// NewMongoCommandLogger builds a command logger writing to logger.
func NewMongoCommandLogger(logger zerolog.Logger, slowThreshold time.Duration) *MongoCommandLogger {
	return &MongoCommandLogger{
		logger:        logger.With().Str("component", "database").Logger(),
		slowThreshold: slowThreshold,
		commands:      make(map[int64]string),
	}
}

// Monitor returns the driver command monitor.
func (l *MongoCommandLogger) Monitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(_ context.Context, e *event.CommandStartedEvent) {
			l.mu.Lock()
			l.commands[e.RequestID] = e.Command.String()
			l.mu.Unlock()

			l.logger.Debug().
				Str("command", e.CommandName).
				Str("database", e.DatabaseName).
				Int64("request_id", e.RequestID).
				Msg("mongo command started")
		},
		Succeeded: func(_ context.Context, e *event.CommandSucceededEvent) {
			command := l.take(e.RequestID)

			evt := l.logger.Debug()
			if l.slowThreshold > 0 && e.Duration > l.slowThreshold {
				evt = l.logger.Warn().Str("query", command).Bool("slow", true)
			}
			evt.Str("command", e.CommandName).
				Int64("request_id", e.RequestID).
				Dur("duration", e.Duration).
				Msg("mongo command succeeded")
		},
		Failed: func(_ context.Context, e *event.CommandFailedEvent) {
			command := l.take(e.RequestID)

			l.logger.Error().
				Str("command", e.CommandName).
				Str("query", command).
				Int64("request_id", e.RequestID).
				Dur("duration", e.Duration).
				Str("failure", e.Failure).
				Msg("mongo command failed")
		},
	}
}

func (l *MongoCommandLogger) take(requestID int64) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	command := l.commands[requestID]
	delete(l.commands, requestID)
	return command
}
